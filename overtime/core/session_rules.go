package core

import (
	"time"

	"crewtime.app/crewtime/overtime/model"
	"crewtime.app/crewtime/utils"
)

const (
	// ManagerReminderFraction of the approved budget at which the manager
	// gets a heads-up.
	ManagerReminderFraction = 0.9

	// FinalWarningHours left on the budget when the worker gets the
	// last-call warning.
	FinalWarningHours = 0.25
)

// Usage is the live recomputation of a session's counters. Both the
// interactive hours update and the periodic sweep go through this one
// function so the two write paths can never disagree.
type Usage struct {
	HoursUsed      float64
	HoursRemaining float64
	PercentUsed    float64
}

func ComputeUsage(start, now time.Time, approvedHours float64) Usage {
	used := utils.HoursBetween(start, now)

	remaining := approvedHours - used
	if remaining < 0 {
		remaining = 0
	}

	percent := 100.0
	if approvedHours > 0 {
		percent = used / approvedHours * 100.0
	}

	return Usage{
		HoursUsed:      used,
		HoursRemaining: remaining,
		PercentUsed:    percent,
	}
}

// ThresholdActions says which once-only notifications and the forced
// close are due for a session at this instant. Latches already stamped on
// the session suppress their action here, so a benign race between the
// tracker and the sweep at worst duplicates a single delivery.
type ThresholdActions struct {
	ManagerReminder bool
	FinalWarning    bool
	ForceClose      bool
}

func EvaluateThresholds(sess *model.OvertimeSession, now time.Time) (Usage, ThresholdActions) {
	usage := ComputeUsage(sess.SessionStartTime, now, sess.ApprovedHours)

	var actions ThresholdActions
	if sess.Status != model.SessionStatusActive {
		return usage, actions
	}

	if sess.ManagerNotifiedAt == nil && usage.HoursUsed >= sess.ApprovedHours*ManagerReminderFraction {
		actions.ManagerReminder = true
	}

	if sess.AutoClockOutWarningAt == nil && usage.HoursRemaining <= FinalWarningHours {
		actions.FinalWarning = true
	}

	if usage.HoursUsed >= sess.MaxHours() {
		actions.ForceClose = true
	}

	return usage, actions
}

// ExceededBy is the hours over budget at the end of a session, never
// negative.
func ExceededBy(hoursUsed, approvedHours float64) float64 {
	over := hoursUsed - approvedHours
	if over < 0 {
		return 0
	}
	return over
}
