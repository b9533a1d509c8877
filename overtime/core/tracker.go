package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"crewtime.app/crewtime/overtime/model"
	"crewtime.app/crewtime/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionTracker starts, recomputes and ends live overtime sessions. It
// never force-terminates; that authority belongs to the sweep alone.
type SessionTracker struct {
	notifier Notifier
	clock    Clock
}

func NewSessionTracker(notifier Notifier, clock Clock) *SessionTracker {
	if clock == nil {
		clock = SystemClock()
	}
	return &SessionTracker{notifier: notifier, clock: clock}
}

type StartSessionInput struct {
	OrganizationID    string
	OvertimeRequestID string
	TimecardEntryID   string
	CallerID          string
	CallerName        string
}

// Start opens a session against an approved request and an open clock-in.
// The daily cap and the one-active-session rule are both enforced here;
// the final is_active flip is a guarded update so two racing starts
// cannot both win.
func (t *SessionTracker) Start(ctx context.Context, db *gorm.DB, in StartSessionInput) (*model.OvertimeSession, error) {
	var session *model.OvertimeSession

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request model.OvertimeRequest
		if err := loadRequest(tx, in.OvertimeRequestID, &request); err != nil {
			return err
		}
		if request.OrganizationID != in.OrganizationID {
			return NewNotFoundError("overtime request", in.OvertimeRequestID)
		}
		if request.Status != model.RequestStatusApproved {
			return NewStateError("start session", string(request.Status))
		}
		if request.EmployeeID != in.CallerID {
			return NewPermissionError("only the approved employee may start this session")
		}

		// One active session per worker, which also covers the request.
		var activeCount int64
		if err := tx.Model(&model.OvertimeSession{}).
			Where("organization_id = ? AND user_id = ? AND status = ?",
				in.OrganizationID, in.CallerID, model.SessionStatusActive).
			Count(&activeCount).Error; err != nil {
			return fmt.Errorf("failed to check active sessions: %w", err)
		}
		if activeCount > 0 {
			return NewResourceLimitError("user %s already has an active session", in.CallerID)
		}

		policy, err := loadPolicy(tx, in.OrganizationID)
		if err != nil {
			return err
		}

		// The session binds to the worker's live clock-in; when the caller
		// does not name the entry we locate their open one.
		entryID := in.TimecardEntryID
		if entryID == "" {
			entry, err := findOpenTimecardEntry(tx, in.OrganizationID, in.CallerID)
			if err != nil {
				return err
			}
			entryID = entry.ID
		}

		now := t.clock.Now()
		sumToday, err := approvedHoursToday(tx, in.OrganizationID, in.CallerID, now)
		if err != nil {
			return err
		}
		if sumToday+request.ApprovedHours > policy.DailyMaxHours {
			return NewResourceLimitError(
				"daily overtime cap reached: %.2fh already approved today, %.2fh requested, cap %.2fh",
				sumToday, request.ApprovedHours, policy.DailyMaxHours)
		}

		session = &model.OvertimeSession{
			ID:                 uuid.New().String(),
			OrganizationID:     in.OrganizationID,
			OvertimeRequestID:  request.ID,
			UserID:             in.CallerID,
			UserName:           in.CallerName,
			ManagerID:          request.ManagerID,
			TimecardEntryID:    entryID,
			SessionStartTime:   now,
			ApprovedHours:      request.ApprovedHours,
			HoursUsed:          0,
			HoursRemaining:     request.ApprovedHours,
			Status:             model.SessionStatusActive,
			DailyMaxHours:      policy.DailyMaxHours,
			SessionMaxHours:    policy.SessionMaxHours,
			GracePeriodMinutes: policy.GracePeriodMinutes,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("failed to create overtime session: %w", err)
		}

		// Guarded flip: loses to any concurrent start on the same request.
		result := tx.Model(&model.OvertimeRequest{}).
			Where("id = ? AND is_active = ? AND version = ?", request.ID, false, request.Version).
			Updates(map[string]interface{}{
				"is_active":         true,
				"active_session_id": session.ID,
				"version":           gorm.Expr("version + 1"),
				"updated_at":        now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to activate request: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return NewResourceLimitError("request %s was activated concurrently", request.ID)
		}

		return stampTimecardEntry(tx, entryID, session.ID)
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// UpdateHours is the interactive recompute. It shares the threshold
// evaluation with the periodic sweep, so both paths stamp the same
// once-only latches.
func (t *SessionTracker) UpdateHours(ctx context.Context, db *gorm.DB, sessionID, callerID string) (*model.OvertimeSession, Usage, error) {
	var session model.OvertimeSession
	var usage Usage
	var actions ThresholdActions

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadSession(tx, sessionID, &session); err != nil {
			return err
		}
		if callerID != session.UserID && callerID != session.ManagerID {
			return NewPermissionError("only the session owner or their manager may update hours")
		}
		if session.Status != model.SessionStatusActive {
			return NewStateError("update hours", string(session.Status))
		}

		now := t.clock.Now()
		usage, actions = EvaluateThresholds(&session, now)

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

		result := tx.Model(&model.OvertimeSession{}).
			Where("id = ? AND status = ?", session.ID, model.SessionStatusActive).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update session hours: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return NewStateError("update hours", "closed concurrently")
		}

		return tx.Where("id = ?", session.ID).First(&session).Error
	})
	if err != nil {
		return nil, Usage{}, err
	}

	if actions.ManagerReminder {
		t.sendManagerReminder(ctx, &session, usage)
	}
	if actions.FinalWarning {
		t.sendFinalWarning(ctx, &session)
	}

	return &session, usage, nil
}

// End is the worker-initiated close. Final hours roll up into the parent
// request and the backing timecard entry is closed with totals.
func (t *SessionTracker) End(ctx context.Context, db *gorm.DB, sessionID, callerID string) (*model.OvertimeSession, error) {
	var session model.OvertimeSession

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadSession(tx, sessionID, &session); err != nil {
			return err
		}
		if callerID != session.UserID {
			return NewPermissionError("only the session owner may end the session")
		}
		if session.Status != model.SessionStatusActive {
			return NewStateError("end session", string(session.Status))
		}

		now := t.clock.Now()
		return closeSession(tx, &session, now, model.SessionStatusCompleted)
	})
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// GetActive returns the user's single active session with live
// recomputed counters, or nil when there is none.
func (t *SessionTracker) GetActive(ctx context.Context, db *gorm.DB, organizationID, userID string) (*model.OvertimeSession, error) {
	var session model.OvertimeSession
	err := db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ? AND status = ?", organizationID, userID, model.SessionStatusActive).
		Order("session_start_time DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active session: %w", err)
	}

	usage := ComputeUsage(session.SessionStartTime, t.clock.Now(), session.ApprovedHours)
	session.HoursUsed = usage.HoursUsed
	session.HoursRemaining = usage.HoursRemaining
	return &session, nil
}

func (t *SessionTracker) sendManagerReminder(ctx context.Context, session *model.OvertimeSession, usage Usage) {
	sendQuiet(ctx, t.notifier, NotificationInput{
		OrganizationID: session.OrganizationID,
		UserID:         session.ManagerID,
		Type:           model.NotificationManagerReminder,
		Title:          "Overtime nearly used up",
		Message: fmt.Sprintf("%s has used %.0f%% of %.1fh approved overtime",
			session.UserName, usage.PercentUsed, session.ApprovedHours),
		RelatedID: session.ID,
	})
}

func (t *SessionTracker) sendFinalWarning(ctx context.Context, session *model.OvertimeSession) {
	sendQuiet(ctx, t.notifier, NotificationInput{
		OrganizationID: session.OrganizationID,
		UserID:         session.UserID,
		Type:           model.NotificationFinalWarning,
		Title:          "Overtime ends in 15 minutes",
		Message:        "Your approved overtime is nearly used up. You will be clocked out automatically when it runs out.",
		RelatedID:      session.ID,
	})
}

// closeSession finalizes counters, rolls them into the parent request and
// closes the ledger entry. Shared by the worker-initiated end and the
// sweep's forced close so the arithmetic cannot diverge. A missing or
// already-closed ledger entry does not stop the session from closing;
// the gap is logged for reconciliation.
func closeSession(tx *gorm.DB, session *model.OvertimeSession, now time.Time, status model.SessionStatus) error {
	usage := ComputeUsage(session.SessionStartTime, now, session.ApprovedHours)
	exceeded := ExceededBy(usage.HoursUsed, session.ApprovedHours)

	result := tx.Model(&model.OvertimeSession{}).
		Where("id = ? AND status = ?", session.ID, model.SessionStatusActive).
		Updates(map[string]interface{}{
			"status":             status,
			"session_end_time":   now,
			"hours_used":         usage.HoursUsed,
			"hours_remaining":    usage.HoursRemaining,
			"exceeded_by":        exceeded,
			"flagged_for_review": exceeded > 0 || status == model.SessionStatusAutoClockedOut,
			"updated_at":         now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to close session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewStateError("close session", "already closed")
	}

	if err := rollIntoRequest(tx, session, usage.HoursUsed, now); err != nil {
		return err
	}

	ledgerStatus := model.TimecardStatusClockedOut
	if status == model.SessionStatusAutoClockedOut {
		ledgerStatus = model.TimecardStatusAutoClockedOut
	}
	entry, err := loadTimecardEntry(tx, session.TimecardEntryID)
	if err == nil {
		err = closeTimecardEntry(tx, entry, now, ledgerStatus)
	}
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			log.Printf("[WARN] session %s closed without ledger entry: %v", session.ID, err)
		} else {
			return err
		}
	}

	return tx.Where("id = ?", session.ID).First(session).Error
}

// rollIntoRequest folds a finished session's hours into the request's
// cumulative counters and releases the active-session slot.
func rollIntoRequest(tx *gorm.DB, session *model.OvertimeSession, finalHours float64, now time.Time) error {
	var request model.OvertimeRequest
	if err := loadRequest(tx, session.OvertimeRequestID, &request); err != nil {
		return err
	}

	newUsed := request.HoursUsed + finalHours
	remaining := request.ApprovedHours - newUsed
	if remaining < 0 {
		remaining = 0
	}

	result := tx.Model(&model.OvertimeRequest{}).
		Where("id = ? AND version = ?", request.ID, request.Version).
		Updates(map[string]interface{}{
			"hours_used":        newUsed,
			"hours_remaining":   remaining,
			"is_active":         false,
			"active_session_id": nil,
			"version":           gorm.Expr("version + 1"),
			"updated_at":        now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to roll hours into request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewStateError("roll into request", "request modified concurrently")
	}
	return nil
}

func loadSession(tx *gorm.DB, sessionID string, session *model.OvertimeSession) error {
	err := tx.Where("id = ?", sessionID).First(session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFoundError("overtime session", sessionID)
	}
	if err != nil {
		return fmt.Errorf("failed to load overtime session: %w", err)
	}
	return nil
}

func loadPolicy(tx *gorm.DB, organizationID string) (model.OvertimePolicy, error) {
	var policy model.OvertimePolicy
	err := tx.Where("organization_id = ?", organizationID).First(&policy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DefaultPolicy(organizationID), nil
	}
	if err != nil {
		return policy, fmt.Errorf("failed to load overtime policy: %w", err)
	}
	return policy, nil
}

// approvedHoursToday sums the approved budgets of the user's sessions
// whose start falls on the calendar day of now. Auto-clocked-out
// sessions count too; only a never-started budget is free again.
func approvedHoursToday(tx *gorm.DB, organizationID, userID string, now time.Time) (float64, error) {
	dayStart, dayEnd := utils.DayBounds(now)

	var sessions []model.OvertimeSession
	err := tx.
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		Where("session_start_time >= ? AND session_start_time < ?", dayStart, dayEnd).
		Where("status IN ?", []model.SessionStatus{
			model.SessionStatusActive,
			model.SessionStatusCompleted,
			model.SessionStatusAutoClockedOut,
		}).
		Find(&sessions).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum today's sessions: %w", err)
	}

	var sum float64
	for _, s := range sessions {
		sum += s.ApprovedHours
	}
	return sum, nil
}
