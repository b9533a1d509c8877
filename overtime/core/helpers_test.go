package core

import (
	"context"
	"testing"
	"time"

	"crewtime.app/crewtime/overtime/model"
	"crewtime.app/crewtime/overtime/testutil"
	"gorm.io/gorm"
)

// recordingNotifier captures deliveries for assertions.
type recordingNotifier struct {
	sent []NotificationInput
}

func (r *recordingNotifier) Send(_ context.Context, in NotificationInput) error {
	r.sent = append(r.sent, in)
	return nil
}

func (r *recordingNotifier) ofType(notifType string) []NotificationInput {
	var matched []NotificationInput
	for _, in := range r.sent {
		if in.Type == notifType {
			matched = append(matched, in)
		}
	}
	return matched
}

const (
	testOrg       = "org-1"
	testWorker    = "worker-1"
	testManager   = "manager-1"
	testExecutive = "exec-1"
)

func seedOrg(t *testing.T, db *gorm.DB) {
	t.Helper()
	testutil.SeedUser(t, db, testWorker, testOrg, "jo.grip", model.RoleCrew)
	testutil.SeedUser(t, db, testManager, testOrg, "sam.gaffer", model.RoleManager)
	testutil.SeedUser(t, db, testExecutive, testOrg, "lee.producer", model.RoleProducer)
}

func createInput() CreateRequestInput {
	return CreateRequestInput{
		OrganizationID: testOrg,
		RequesterID:    testManager,
		RequesterName:  "sam.gaffer",
		RequestType:    model.RequestTypeStandard,
		RecipientID:    testWorker,
		RecipientName:  "jo.grip",
		ManagerID:      testManager,
		EmployeeID:     testWorker,
		Reason:         "night shoot overrun",
		EstimatedHours: 3,
	}
}

// approvedRequest drives one request through the whole approval chain.
func approvedRequest(t *testing.T, db *gorm.DB, w *Workflow) *model.OvertimeRequest {
	t.Helper()
	ctx := context.Background()

	request, err := w.Create(ctx, db, createInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := w.Respond(ctx, db, request.ID, testWorker, model.ResponseAccepted, ""); err != nil {
		t.Fatalf("respond failed: %v", err)
	}
	if _, err := w.Certify(ctx, db, request.ID, testManager, "confirmed on set"); err != nil {
		t.Fatalf("certify failed: %v", err)
	}
	request, err = w.Approve(ctx, db, request.ID, testExecutive, "")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	return request
}

func testStart() time.Time {
	return time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
}
