package core

import "time"

// Clock abstracts wall-clock reads so elapsed-time logic is testable
// without sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func SystemClock() Clock {
	return systemClock{}
}

// FixedClock always returns the same instant. Advance it between steps to
// simulate elapsed time in tests.
type FixedClock struct {
	Current time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.Current
}

func (c *FixedClock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{Current: t}
}
