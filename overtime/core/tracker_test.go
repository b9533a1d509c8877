package core

import (
	"context"
	"testing"
	"time"

	"crewtime.app/crewtime/overtime/model"
	"crewtime.app/crewtime/overtime/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startInput(requestID string) StartSessionInput {
	return StartSessionInput{
		OrganizationID:    testOrg,
		OvertimeRequestID: requestID,
		TimecardEntryID:   "entry-1",
		CallerID:          testWorker,
		CallerName:        "jo.grip",
	}
}

func TestStartSession(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedOrg(t, db)
	w := NewWorkflow(NewRoleAuthorizer(), nil, nil)
	clock := NewFixedClock(testStart())
	tracker := NewSessionTracker(nil, clock)
	ctx := context.Background()

	request := approvedRequest(t, db, w)
	testutil.SeedOpenEntry(t, db, "entry-1", testOrg, testWorker, testStart().Add(-time.Hour))

	session, err := tracker.Start(ctx, db, startInput(request.ID))
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusActive, session.Status)
	assert.Equal(t, 3.0, session.ApprovedHours)
	assert.Equal(t, model.DefaultGracePeriodMinutes, session.GracePeriodMinutes)

	// The request now carries the active back-reference.
	var reloaded model.OvertimeRequest
	require.NoError(t, db.First(&reloaded, "id = ?", request.ID).Error)
	assert.True(t, reloaded.IsActive)
	require.NotNil(t, reloaded.ActiveSessionID)
	assert.Equal(t, session.ID, *reloaded.ActiveSessionID)

	// The ledger entry points back at the session.
	var entry model.TimecardEntry
	require.NoError(t, db.First(&entry, "id = ?", "entry-1").Error)
	require.NotNil(t, entry.OvertimeSessionID)
	assert.Equal(t, session.ID, *entry.OvertimeSessionID)

	t.Run("Second start on same request conflicts", func(t *testing.T) {
		_, err := tracker.Start(ctx, db, startInput(request.ID))
		var limit *ResourceLimitError
		assert.ErrorAs(t, err, &limit)
	})
}

func TestStartSessionGuards(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedOrg(t, db)
	w := NewWorkflow(NewRoleAuthorizer(), nil, nil)
	tracker := NewSessionTracker(nil, NewFixedClock(testStart()))
	ctx := context.Background()

	t.Run("Unapproved request", func(t *testing.T) {
		request, err := w.Create(ctx, db, createInput())
		require.NoError(t, err)

		_, err = tracker.Start(ctx, db, startInput(request.ID))
		var state *StateError
		assert.ErrorAs(t, err, &state)
	})

	t.Run("Unknown request", func(t *testing.T) {
		_, err := tracker.Start(ctx, db, startInput("missing"))
		var notFound *NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("Only the approved employee", func(t *testing.T) {
		request := approvedRequest(t, db, w)
		in := startInput(request.ID)
		in.CallerID = testManager

		_, err := tracker.Start(ctx, db, in)
		var permission *PermissionError
		assert.ErrorAs(t, err, &permission)
	})

	t.Run("No open clock-in", func(t *testing.T) {
		request := approvedRequest(t, db, w)
		in := startInput(request.ID)
		in.TimecardEntryID = ""

		_, err := tracker.Start(ctx, db, in)
		var notFound *NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestStartSessionDailyCap(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedOrg(t, db)
	w := NewWorkflow(NewRoleAuthorizer(), nil, nil)
	clock := NewFixedClock(testStart())
	tracker := NewSessionTracker(nil, clock)
	ctx := context.Background()

	// 10 hours already spent today against a 12 hour daily cap.
	spent := model.OvertimeSession{
		ID:                "sess-prior",
		OrganizationID:    testOrg,
		OvertimeRequestID: "req-prior",
		UserID:            testWorker,
		ManagerID:         testManager,
		TimecardEntryID:   "entry-prior",
		SessionStartTime:  testStart().Add(-10 * time.Hour),
		ApprovedHours:     10,
		Status:            model.SessionStatusCompleted,
	}
	require.NoError(t, db.Create(&spent).Error)

	request := approvedRequest(t, db, w) // 3 more hours would exceed 12
	testutil.SeedOpenEntry(t, db, "entry-1", testOrg, testWorker, testStart().Add(-time.Hour))

	_, err := tracker.Start(ctx, db, startInput(request.ID))
	var limit *ResourceLimitError
	require.ErrorAs(t, err, &limit)

	// A prior session on another calendar day does not count.
	require.NoError(t, db.Model(&model.OvertimeSession{}).
		Where("id = ?", "sess-prior").
		Update("session_start_time", testStart().Add(-30*time.Hour)).Error)

	session, err := tracker.Start(ctx, db, startInput(request.ID))
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusActive, session.Status)
}

func TestUpdateHours(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedOrg(t, db)
	w := NewWorkflow(NewRoleAuthorizer(), nil, nil)
	notifier := &recordingNotifier{}
	clock := NewFixedClock(testStart())
	tracker := NewSessionTracker(notifier, clock)
	ctx := context.Background()

	request := approvedRequest(t, db, w)
	testutil.SeedOpenEntry(t, db, "entry-1", testOrg, testWorker, testStart())
	session, err := tracker.Start(ctx, db, startInput(request.ID))
	require.NoError(t, err)

	t.Run("Early update carries no warnings", func(t *testing.T) {
		clock.Advance(time.Hour)
		_, usage, err := tracker.UpdateHours(ctx, db, session.ID, testWorker)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, usage.HoursUsed, 1e-9)
		assert.InDelta(t, 2.0, usage.HoursRemaining, 1e-9)
		assert.Empty(t, notifier.sent)
	})

	t.Run("Manager reminder fires once", func(t *testing.T) {
		clock.Advance(time.Duration(1.71 * float64(time.Hour))) // 2.71h elapsed
		updated, usage, err := tracker.UpdateHours(ctx, db, session.ID, testWorker)
		require.NoError(t, err)
		assert.Greater(t, usage.PercentUsed, 90.0)
		assert.NotNil(t, updated.ManagerNotifiedAt)
		require.Len(t, notifier.ofType(model.NotificationManagerReminder), 1)
		assert.Equal(t, testManager, notifier.ofType(model.NotificationManagerReminder)[0].UserID)

		// Second crossing of the threshold stays silent.
		clock.Advance(time.Minute)
		_, _, err = tracker.UpdateHours(ctx, db, session.ID, testWorker)
		require.NoError(t, err)
		assert.Len(t, notifier.ofType(model.NotificationManagerReminder), 1)
	})

	t.Run("Final warning at fifteen minutes remaining", func(t *testing.T) {
		clock.Advance(3 * time.Minute) // 2.78h elapsed, 0.22h remaining
		updated, _, err := tracker.UpdateHours(ctx, db, session.ID, testWorker)
		require.NoError(t, err)
		assert.NotNil(t, updated.AutoClockOutWarningAt)
		require.Len(t, notifier.ofType(model.NotificationFinalWarning), 1)
		assert.Equal(t, testWorker, notifier.ofType(model.NotificationFinalWarning)[0].UserID)
	})

	t.Run("Manager may also poll", func(t *testing.T) {
		_, _, err := tracker.UpdateHours(ctx, db, session.ID, testManager)
		assert.NoError(t, err)
	})

	t.Run("Stranger may not", func(t *testing.T) {
		_, _, err := tracker.UpdateHours(ctx, db, session.ID, testExecutive)
		var permission *PermissionError
		assert.ErrorAs(t, err, &permission)
	})
}

func TestEndSession(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedOrg(t, db)
	w := NewWorkflow(NewRoleAuthorizer(), nil, nil)
	clock := NewFixedClock(testStart())
	tracker := NewSessionTracker(nil, clock)
	ctx := context.Background()

	request := approvedRequest(t, db, w)
	testutil.SeedOpenEntry(t, db, "entry-1", testOrg, testWorker, testStart())
	session, err := tracker.Start(ctx, db, startInput(request.ID))
	require.NoError(t, err)

	t.Run("Only the owner ends it", func(t *testing.T) {
		_, err := tracker.End(ctx, db, session.ID, testManager)
		var permission *PermissionError
		assert.ErrorAs(t, err, &permission)
	})

	clock.Advance(2 * time.Hour)
	ended, err := tracker.End(ctx, db, session.ID, testWorker)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCompleted, ended.Status)
	assert.InDelta(t, 2.0, ended.HoursUsed, 1e-9)
	assert.Equal(t, 0.0, ended.ExceededBy)
	assert.False(t, ended.FlaggedForReview)
	require.NotNil(t, ended.SessionEndTime)

	// Hours rolled up into the request and the slot released.
	var reloaded model.OvertimeRequest
	require.NoError(t, db.First(&reloaded, "id = ?", request.ID).Error)
	assert.InDelta(t, 2.0, reloaded.HoursUsed, 1e-9)
	assert.InDelta(t, 1.0, reloaded.HoursRemaining, 1e-9)
	assert.False(t, reloaded.IsActive)
	assert.Nil(t, reloaded.ActiveSessionID)

	// Ledger entry closed with totals.
	var entry model.TimecardEntry
	require.NoError(t, db.First(&entry, "id = ?", "entry-1").Error)
	assert.Equal(t, model.TimecardStatusClockedOut, entry.Status)
	require.NotNil(t, entry.ClockOutTime)
	assert.InDelta(t, 2.0, entry.TotalHours, 1e-9)

	t.Run("Second end conflicts", func(t *testing.T) {
		_, err := tracker.End(ctx, db, session.ID, testWorker)
		var state *StateError
		assert.ErrorAs(t, err, &state)
	})
}

func TestEndSessionOverBudget(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedOrg(t, db)
	w := NewWorkflow(NewRoleAuthorizer(), nil, nil)
	clock := NewFixedClock(testStart())
	tracker := NewSessionTracker(nil, clock)
	ctx := context.Background()

	request := approvedRequest(t, db, w)
	testutil.SeedOpenEntry(t, db, "entry-1", testOrg, testWorker, testStart())
	session, err := tracker.Start(ctx, db, startInput(request.ID))
	require.NoError(t, err)

	clock.Advance(3*time.Hour + 20*time.Minute)
	ended, err := tracker.End(ctx, db, session.ID, testWorker)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, ended.ExceededBy, 1e-9)
	assert.True(t, ended.FlaggedForReview)

	var reloaded model.OvertimeRequest
	require.NoError(t, db.First(&reloaded, "id = ?", request.ID).Error)
	assert.Equal(t, 0.0, reloaded.HoursRemaining, "never negative")
}

func TestGetActive(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedOrg(t, db)
	w := NewWorkflow(NewRoleAuthorizer(), nil, nil)
	clock := NewFixedClock(testStart())
	tracker := NewSessionTracker(nil, clock)
	ctx := context.Background()

	t.Run("None active", func(t *testing.T) {
		session, err := tracker.GetActive(ctx, db, testOrg, testWorker)
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	request := approvedRequest(t, db, w)
	testutil.SeedOpenEntry(t, db, "entry-1", testOrg, testWorker, testStart())
	started, err := tracker.Start(ctx, db, startInput(request.ID))
	require.NoError(t, err)

	clock.Advance(90 * time.Minute)
	session, err := tracker.GetActive(ctx, db, testOrg, testWorker)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, started.ID, session.ID)
	assert.InDelta(t, 1.5, session.HoursUsed, 1e-9, "recomputed live")
	assert.InDelta(t, 1.5, session.HoursRemaining, 1e-9)
}
