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

func TestSweepQuietInsideBudget(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedOrg(t, db)
	w := NewWorkflow(NewRoleAuthorizer(), nil, nil)
	clock := NewFixedClock(testStart())
	tracker := NewSessionTracker(nil, clock)
	ctx := context.Background()

	request := approvedRequest(t, db, w)
	testutil.SeedOpenEntry(t, db, "entry-1", testOrg, testWorker, testStart())
	_, err := tracker.Start(ctx, db, startInput(request.ID))
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	clock.Advance(time.Hour)
	stats, err := RunAutoClockOutSweep(ctx, db, SweepDeps{Notifier: notifier, Clock: clock})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Scanned)
	assert.Equal(t, 0, stats.ManagerReminders)
	assert.Equal(t, 0, stats.ForcedClosures)
	assert.Empty(t, notifier.sent)
}

func TestSweepStampsLatchesOnce(t *testing.T) {
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

	notifier := &recordingNotifier{}
	clock.Advance(time.Duration(2.75 * float64(time.Hour)))

	stats, err := RunAutoClockOutSweep(ctx, db, SweepDeps{Notifier: notifier, Clock: clock})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ManagerReminders)
	assert.Equal(t, 1, stats.FinalWarnings)
	require.Len(t, notifier.ofType(model.NotificationManagerReminder), 1)
	require.Len(t, notifier.ofType(model.NotificationFinalWarning), 1)

	var reloaded model.OvertimeSession
	require.NoError(t, db.First(&reloaded, "id = ?", session.ID).Error)
	assert.NotNil(t, reloaded.ManagerNotifiedAt)
	assert.NotNil(t, reloaded.AutoClockOutWarningAt)

	// The next pass inside grace stays silent.
	clock.Advance(5 * time.Minute)
	stats, err = RunAutoClockOutSweep(ctx, db, SweepDeps{Notifier: notifier, Clock: clock})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ManagerReminders)
	assert.Equal(t, 0, stats.FinalWarnings)
	assert.Equal(t, 0, stats.ForcedClosures)
	assert.Len(t, notifier.sent, 2)
}

func TestSweepForceClose(t *testing.T) {
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

	notifier := &recordingNotifier{}
	// 3h approved + 30m grace, plus 10 minutes over the line.
	clock.Advance(3*time.Hour + 40*time.Minute)

	stats, err := RunAutoClockOutSweep(ctx, db, SweepDeps{Notifier: notifier, Clock: clock})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ForcedClosures)

	var reloaded model.OvertimeSession
	require.NoError(t, db.First(&reloaded, "id = ?", session.ID).Error)
	assert.Equal(t, model.SessionStatusAutoClockedOut, reloaded.Status)
	assert.True(t, reloaded.FlaggedForReview)
	assert.InDelta(t, 2.0/3.0, reloaded.ExceededBy, 1e-9)
	require.NotNil(t, reloaded.SessionEndTime)

	// The ledger entry is terminated the same way.
	var entry model.TimecardEntry
	require.NoError(t, db.First(&entry, "id = ?", "entry-1").Error)
	assert.Equal(t, model.TimecardStatusAutoClockedOut, entry.Status)
	require.NotNil(t, entry.ClockOutTime)

	// Hours rolled up and the request released.
	var reloadedRequest model.OvertimeRequest
	require.NoError(t, db.First(&reloadedRequest, "id = ?", request.ID).Error)
	assert.False(t, reloadedRequest.IsActive)
	assert.Equal(t, 0.0, reloadedRequest.HoursRemaining)

	// Worker and manager are both told; the manager copy demands review.
	autoNotifs := notifier.ofType(model.NotificationAutoClockOut)
	require.Len(t, autoNotifs, 2)
	var managerCopy *NotificationInput
	for i := range autoNotifs {
		if autoNotifs[i].UserID == testManager {
			managerCopy = &autoNotifs[i]
		}
	}
	require.NotNil(t, managerCopy)
	assert.True(t, managerCopy.RequiresReview)

	// A session first seen past the limit gets only the closeout pair,
	// never a retroactive reminder or warning.
	assert.Empty(t, notifier.ofType(model.NotificationManagerReminder))
	assert.Empty(t, notifier.ofType(model.NotificationFinalWarning))
	assert.Equal(t, 0, stats.ManagerReminders)
	assert.Equal(t, 0, stats.FinalWarnings)

	t.Run("Closed session is not rescanned", func(t *testing.T) {
		stats, err := RunAutoClockOutSweep(ctx, db, SweepDeps{Notifier: notifier, Clock: clock})
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Scanned)
		assert.Equal(t, 0, stats.ForcedClosures)
	})
}

func TestSweepSkipsBrokenSession(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedOrg(t, db)
	w := NewWorkflow(NewRoleAuthorizer(), nil, nil)
	clock := NewFixedClock(testStart())
	tracker := NewSessionTracker(nil, clock)
	ctx := context.Background()

	// An orphan active session pointing at a missing request.
	orphan := model.OvertimeSession{
		ID:                 "sess-orphan",
		OrganizationID:     testOrg,
		OvertimeRequestID:  "req-gone",
		UserID:             "worker-9",
		ManagerID:          testManager,
		TimecardEntryID:    "entry-gone",
		SessionStartTime:   testStart().Add(-6 * time.Hour),
		ApprovedHours:      1,
		Status:             model.SessionStatusActive,
		GracePeriodMinutes: model.DefaultGracePeriodMinutes,
	}
	require.NoError(t, db.Create(&orphan).Error)

	// A healthy session that must still be processed.
	request := approvedRequest(t, db, w)
	testutil.SeedOpenEntry(t, db, "entry-1", testOrg, testWorker, testStart())
	session, err := tracker.Start(ctx, db, startInput(request.ID))
	require.NoError(t, err)

	clock.Advance(4 * time.Hour)
	stats, err := RunAutoClockOutSweep(ctx, db, SweepDeps{Notifier: nil, Clock: clock})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.ForcedClosures)

	var reloaded model.OvertimeSession
	require.NoError(t, db.First(&reloaded, "id = ?", session.ID).Error)
	assert.Equal(t, model.SessionStatusAutoClockedOut, reloaded.Status)
}
