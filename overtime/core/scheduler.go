package core

import (
	"context"
	"fmt"
	"log"

	"crewtime.app/crewtime/overtime/model"
	"gorm.io/gorm"
)

// SweepStats summarizes one auto clock-out pass.
type SweepStats struct {
	Scanned          int `json:"scanned"`
	ManagerReminders int `json:"managerReminders"`
	FinalWarnings    int `json:"finalWarnings"`
	ForcedClosures   int `json:"forcedClosures"`
	Errors           int `json:"errors"`
}

// SweepDeps carries the sweep's capabilities; the lambda and the tests
// inject different clocks and sinks.
type SweepDeps struct {
	Notifier Notifier
	Clock    Clock
}

// RunAutoClockOutSweep walks every active session, stamps due
// notifications and force-closes sessions past approved hours plus
// grace. A failure on one session is counted and skipped so one bad row
// cannot stall the fleet; only a driver-level failure aborts the pass.
func RunAutoClockOutSweep(ctx context.Context, db *gorm.DB, deps SweepDeps) (SweepStats, error) {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock()
	}

	var stats SweepStats

	var sessions []model.OvertimeSession
	err := db.WithContext(ctx).
		Where("status = ?", model.SessionStatusActive).
		Order("session_start_time ASC").
		Find(&sessions).Error
	if err != nil {
		return stats, fmt.Errorf("failed to list active sessions: %w", err)
	}

	stats.Scanned = len(sessions)

	for i := range sessions {
		if err := processSession(ctx, db, &sessions[i], clock, deps.Notifier, &stats); err != nil {
			stats.Errors++
			log.Printf("[ERROR] sweep failed on session %s: %v", sessions[i].ID, err)
		}
	}

	log.Printf("[INFO] auto clock-out sweep: %d scanned, %d reminders, %d warnings, %d forced, %d errors",
		stats.Scanned, stats.ManagerReminders, stats.FinalWarnings, stats.ForcedClosures, stats.Errors)
	return stats, nil
}

func processSession(ctx context.Context, db *gorm.DB, session *model.OvertimeSession, clock Clock, notifier Notifier, stats *SweepStats) error {
	now := clock.Now()
	usage, actions := EvaluateThresholds(session, now)

	if actions.ForceClose {
		if err := forceCloseSession(ctx, db, session, clock); err != nil {
			return err
		}
		stats.ForcedClosures++

		sendQuiet(ctx, notifier, NotificationInput{
			OrganizationID: session.OrganizationID,
			UserID:         session.UserID,
			Type:           model.NotificationAutoClockOut,
			Title:          "Automatically clocked out",
			Message: fmt.Sprintf("Your overtime ran out at %.1fh plus grace and you have been clocked out.",
				session.ApprovedHours),
			RelatedID: session.ID,
		})
		sendQuiet(ctx, notifier, NotificationInput{
			OrganizationID: session.OrganizationID,
			UserID:         session.ManagerID,
			Type:           model.NotificationAutoClockOut,
			Title:          "Crew member auto clocked out",
			Message: fmt.Sprintf("%s was automatically clocked out %.2fh over their approved overtime.",
				session.UserName, session.ExceededBy),
			RelatedID:      session.ID,
			RequiresReview: true,
		})
		return nil
	}

	// No forced close due: stamp whatever latches fired. The same guarded
	// update as the interactive path, so a concurrent end wins cleanly.
	if !actions.ManagerReminder && !actions.FinalWarning {
		return nil
	}

	updates := map[string]interface{}{
		"hours_used":      usage.HoursUsed,
		"hours_remaining": usage.HoursRemaining,
		"updated_at":      now,
	}
	if actions.ManagerReminder {
		updates["manager_notified_at"] = now
	}
	if actions.FinalWarning {
		updates["auto_clock_out_warning_at"] = now
	}

	result := db.WithContext(ctx).Model(&model.OvertimeSession{}).
		Where("id = ? AND status = ?", session.ID, model.SessionStatusActive).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to stamp session latches: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil
	}

	if actions.ManagerReminder {
		stats.ManagerReminders++
		sendQuiet(ctx, notifier, NotificationInput{
			OrganizationID: session.OrganizationID,
			UserID:         session.ManagerID,
			Type:           model.NotificationManagerReminder,
			Title:          "Overtime nearly used up",
			Message: fmt.Sprintf("%s has used %.0f%% of %.1fh approved overtime",
				session.UserName, usage.PercentUsed, session.ApprovedHours),
			RelatedID: session.ID,
		})
	}
	if actions.FinalWarning {
		stats.FinalWarnings++
		sendQuiet(ctx, notifier, NotificationInput{
			OrganizationID: session.OrganizationID,
			UserID:         session.UserID,
			Type:           model.NotificationFinalWarning,
			Title:          "Overtime ends in 15 minutes",
			Message:        "Your approved overtime is nearly used up. You will be clocked out automatically when it runs out.",
			RelatedID:      session.ID,
		})
	}
	return nil
}

// forceCloseSession closes a session past its hard ceiling inside one
// transaction. A session whose parent request somehow left the approved
// state still gets closed; the mismatch is flagged and logged rather
// than leaving the worker clocked in forever.
func forceCloseSession(ctx context.Context, db *gorm.DB, session *model.OvertimeSession, clock Clock) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request model.OvertimeRequest
		if err := loadRequest(tx, session.OvertimeRequestID, &request); err != nil {
			return err
		}
		if request.Status != model.RequestStatusApproved {
			log.Printf("[WARN] active session %s under request %s in status %s, closing anyway",
				session.ID, request.ID, request.Status)
		}

		now := clock.Now()
		if err := closeSession(tx, session, now, model.SessionStatusAutoClockedOut); err != nil {
			return err
		}
		return nil
	})
}
