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

// Workflow drives the overtime request approval chain:
// pending -> responded -> certified -> (pending_exec_approval) -> approved|rejected.
// Transitions are one-directional; a violated guard returns StateError and
// leaves the stored request untouched.
type Workflow struct {
	auth     Authorizer
	notifier Notifier
	clock    Clock
}

func NewWorkflow(auth Authorizer, notifier Notifier, clock Clock) *Workflow {
	if clock == nil {
		clock = SystemClock()
	}
	return &Workflow{auth: auth, notifier: notifier, clock: clock}
}

type CreateRequestInput struct {
	OrganizationID string
	RequesterID    string
	RequesterName  string
	RequestType    string
	RecipientID    string
	RecipientName  string
	ManagerID      string
	EmployeeID     string
	ProjectID      *string
	Reason         string
	EstimatedHours float64
	RequestedDate  *time.Time
}

func (w *Workflow) Create(ctx context.Context, db *gorm.DB, in CreateRequestInput) (*model.OvertimeRequest, error) {
	switch {
	case in.OrganizationID == "":
		return nil, NewValidationError("organizationId", "is required")
	case in.RequestType != model.RequestTypeStandard && in.RequestType != model.RequestTypeManagerInquiry:
		return nil, NewValidationError("requestType", "must be standard_request or manager_inquiry")
	case in.RecipientID == "":
		return nil, NewValidationError("recipientId", "is required")
	case in.ManagerID == "":
		return nil, NewValidationError("managerId", "is required")
	case in.EmployeeID == "":
		return nil, NewValidationError("employeeId", "is required")
	case in.Reason == "":
		return nil, NewValidationError("reason", "is required")
	case in.EstimatedHours < 0:
		return nil, NewValidationError("estimatedHours", "must not be negative")
	}

	now := w.clock.Now()
	request := &model.OvertimeRequest{
		ID:             uuid.New().String(),
		OrganizationID: in.OrganizationID,
		ProjectID:      in.ProjectID,
		RequestType:    in.RequestType,
		RequesterID:    in.RequesterID,
		RequesterName:  in.RequesterName,
		RecipientID:    in.RecipientID,
		RecipientName:  in.RecipientName,
		EmployeeID:     in.EmployeeID,
		ManagerID:      in.ManagerID,
		Reason:         in.Reason,
		EstimatedHours: in.EstimatedHours,
		RequestedDate:  in.RequestedDate,
		Status:         model.RequestStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create overtime request: %w", err)
	}

	sendQuiet(ctx, w.notifier, NotificationInput{
		OrganizationID: request.OrganizationID,
		UserID:         request.RecipientID,
		Type:           model.NotificationRequestCreated,
		Title:          "New overtime request",
		Message:        fmt.Sprintf("%s requested overtime: %s", request.RequesterName, request.Reason),
		RelatedID:      request.ID,
	})

	return request, nil
}

// Respond records the recipient's accept/decline. A second call returns
// StateError instead of silently succeeding so clients can detect
// double submission.
func (w *Workflow) Respond(ctx context.Context, db *gorm.DB, requestID, callerID, response, responseReason string) (*model.OvertimeRequest, error) {
	if response != model.ResponseAccepted && response != model.ResponseDeclined {
		return nil, NewValidationError("response", "must be accepted or declined")
	}

	var request model.OvertimeRequest
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadRequest(tx, requestID, &request); err != nil {
			return err
		}
		if callerID != request.RecipientID {
			return NewPermissionError("only the recipient may respond to request %s", requestID)
		}
		if request.Status != model.RequestStatusPending {
			return NewStateError("respond", string(request.Status))
		}

		now := w.clock.Now()
		return transitionRequest(tx, &request, map[string]interface{}{
			"status":          model.RequestStatusResponded,
			"response":        response,
			"response_reason": responseReason,
			"responded_at":    now,
			"updated_at":      now,
		})
	})
	if err != nil {
		return nil, err
	}

	sendQuiet(ctx, w.notifier, NotificationInput{
		OrganizationID: request.OrganizationID,
		UserID:         request.RequesterID,
		Type:           model.NotificationRequestResponded,
		Title:          "Overtime request " + response,
		Message:        fmt.Sprintf("%s %s the overtime request", request.RecipientName, response),
		RelatedID:      request.ID,
	})

	return &request, nil
}

// Certify is the manager's sign-off on an accepted response. It fans a
// notification out to every executive in the organization plus a status
// notification to the employee.
func (w *Workflow) Certify(ctx context.Context, db *gorm.DB, requestID, callerID, certificationNotes string) (*model.OvertimeRequest, error) {
	var request model.OvertimeRequest
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadRequest(tx, requestID, &request); err != nil {
			return err
		}
		if callerID != request.ManagerID {
			return NewPermissionError("only the manager may certify request %s", requestID)
		}
		if request.Status != model.RequestStatusResponded || request.Response != model.ResponseAccepted {
			return NewStateError("certify", string(request.Status))
		}

		now := w.clock.Now()
		return transitionRequest(tx, &request, map[string]interface{}{
			"status":              model.RequestStatusCertified,
			"certified_by":        callerID,
			"certified_at":        now,
			"certification_notes": certificationNotes,
			"updated_at":          now,
		})
	})
	if err != nil {
		return nil, err
	}

	execs, err := w.auth.ListExecutives(db.WithContext(ctx), request.OrganizationID)
	if err != nil {
		// Fan-out is a notification concern; the certification stands.
		execs = nil
		log.Printf("[WARN] executive fan-out lookup failed for request %s: %v", request.ID, err)
	}
	for _, exec := range execs {
		sendQuiet(ctx, w.notifier, NotificationInput{
			OrganizationID: request.OrganizationID,
			UserID:         exec.ID,
			Type:           model.NotificationRequestCertified,
			Title:          "Overtime request awaiting approval",
			Message:        fmt.Sprintf("A certified overtime request for %.1fh needs an executive decision", request.EstimatedHours),
			RelatedID:      request.ID,
		})
	}

	sendQuiet(ctx, w.notifier, NotificationInput{
		OrganizationID: request.OrganizationID,
		UserID:         request.EmployeeID,
		Type:           model.NotificationRequestCertified,
		Title:          "Overtime request certified",
		Message:        "Your overtime request was certified and sent for executive approval",
		RelatedID:      request.ID,
	})

	return &request, nil
}

// Approve is the executive decision. approvedHours defaults to the
// estimate when no explicit figure was set earlier.
func (w *Workflow) Approve(ctx context.Context, db *gorm.DB, requestID, callerID, execNotes string) (*model.OvertimeRequest, error) {
	var request model.OvertimeRequest
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := w.guardExecDecision(tx, requestID, callerID, "approve", &request); err != nil {
			return err
		}

		approvedHours := request.ApprovedHours
		if approvedHours <= 0 {
			approvedHours = request.EstimatedHours
		}

		now := w.clock.Now()
		return transitionRequest(tx, &request, map[string]interface{}{
			"status":           model.RequestStatusApproved,
			"approved_hours":   approvedHours,
			"hours_used":       0.0,
			"hours_remaining":  approvedHours,
			"exec_approver_id": callerID,
			"exec_approved_at": now,
			"exec_notes":       execNotes,
			"updated_at":       now,
		})
	})
	if err != nil {
		return nil, err
	}

	w.notifyDecision(ctx, &request, model.NotificationRequestApproved,
		"Overtime request approved",
		fmt.Sprintf("Overtime approved for %.1fh", request.ApprovedHours))

	return &request, nil
}

func (w *Workflow) Reject(ctx context.Context, db *gorm.DB, requestID, callerID, rejectionReason string) (*model.OvertimeRequest, error) {
	if rejectionReason == "" {
		return nil, NewValidationError("rejectionReason", "is required")
	}

	var request model.OvertimeRequest
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := w.guardExecDecision(tx, requestID, callerID, "reject", &request); err != nil {
			return err
		}

		now := w.clock.Now()
		return transitionRequest(tx, &request, map[string]interface{}{
			"status":           model.RequestStatusRejected,
			"rejection_reason": rejectionReason,
			"exec_approver_id": callerID,
			"exec_approved_at": now,
			"updated_at":       now,
		})
	})
	if err != nil {
		return nil, err
	}

	w.notifyDecision(ctx, &request, model.NotificationRequestRejected,
		"Overtime request rejected", rejectionReason)

	return &request, nil
}

func (w *Workflow) Get(ctx context.Context, db *gorm.DB, requestID string) (*model.OvertimeRequest, error) {
	var request model.OvertimeRequest
	if err := loadRequest(db.WithContext(ctx), requestID, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns an organization's requests, optionally filtered by status
// or a participant (requester, recipient, employee or manager).
func (w *Workflow) List(ctx context.Context, db *gorm.DB, organizationID, status, participantID string, limit int) ([]model.OvertimeRequest, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}

	query := db.WithContext(ctx).Where("organization_id = ?", organizationID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if participantID != "" {
		query = query.Where(
			"requester_id = ? OR recipient_id = ? OR employee_id = ? OR manager_id = ?",
			participantID, participantID, participantID, participantID)
	}

	var requests []model.OvertimeRequest
	if err := query.Order("created_at DESC").Limit(limit).Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list overtime requests: %w", err)
	}
	return requests, nil
}

func (w *Workflow) guardExecDecision(tx *gorm.DB, requestID, callerID, op string, request *model.OvertimeRequest) error {
	if err := loadRequest(tx, requestID, request); err != nil {
		return err
	}

	isExec, err := w.auth.IsExecutive(tx, request.OrganizationID, callerID)
	if err != nil {
		return err
	}
	if !isExec {
		return NewPermissionError("caller %s is not an executive in organization %s", callerID, request.OrganizationID)
	}

	if !request.AwaitingExecDecision() {
		return NewStateError(op, string(request.Status))
	}
	return nil
}

// notifyDecision tells the employee, manager and requester, deduplicated
// when one person wears several hats.
func (w *Workflow) notifyDecision(ctx context.Context, request *model.OvertimeRequest, notifType, title, message string) {
	participants := utils.Dedupe([]string{request.EmployeeID, request.ManagerID, request.RequesterID})
	for _, userID := range participants {
		sendQuiet(ctx, w.notifier, NotificationInput{
			OrganizationID: request.OrganizationID,
			UserID:         userID,
			Type:           notifType,
			Title:          title,
			Message:        message,
			RelatedID:      request.ID,
		})
	}
}

func loadRequest(tx *gorm.DB, requestID string, request *model.OvertimeRequest) error {
	err := tx.Where("id = ?", requestID).First(request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFoundError("overtime request", requestID)
	}
	if err != nil {
		return fmt.Errorf("failed to load overtime request: %w", err)
	}
	return nil
}

// transitionRequest applies a guarded update: the row must still hold the
// version the transition was decided on, so two concurrent transitions
// cannot both land.
func transitionRequest(tx *gorm.DB, request *model.OvertimeRequest, updates map[string]interface{}) error {
	updates["version"] = gorm.Expr("version + 1")

	result := tx.Model(&model.OvertimeRequest{}).
		Where("id = ? AND version = ?", request.ID, request.Version).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update overtime request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewStateError("transition", string(request.Status))
	}

	return tx.Where("id = ?", request.ID).First(request).Error
}
