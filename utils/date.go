package utils

import "time"

// DayBounds returns the [start, end) of the calendar day containing t,
// in t's own location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// HoursBetween is elapsed wall-clock time in fractional hours, never negative.
func HoursBetween(from, to time.Time) float64 {
	h := to.Sub(from).Hours()
	if h < 0 {
		return 0
	}
	return h
}
