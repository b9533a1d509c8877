package core

import (
	"testing"
	"time"

	"crewtime.app/crewtime/overtime/model"
	"crewtime.app/crewtime/utils"
	"github.com/stretchr/testify/assert"
)

func TestComputeUsage(t *testing.T) {
	start := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		elapsed       time.Duration
		approvedHours float64
		wantUsed      float64
		wantRemaining float64
		wantPercent   float64
	}{
		{
			name:          "Nothing elapsed",
			elapsed:       0,
			approvedHours: 3,
			wantUsed:      0,
			wantRemaining: 3,
			wantPercent:   0,
		},
		{
			name:          "Half used",
			elapsed:       90 * time.Minute,
			approvedHours: 3,
			wantUsed:      1.5,
			wantRemaining: 1.5,
			wantPercent:   50,
		},
		{
			name:          "Over budget clamps remaining at zero",
			elapsed:       4 * time.Hour,
			approvedHours: 3,
			wantUsed:      4,
			wantRemaining: 0,
			wantPercent:   400.0 / 3.0,
		},
		{
			name:          "Zero budget reads as fully used",
			elapsed:       time.Minute,
			approvedHours: 0,
			wantUsed:      1.0 / 60.0,
			wantRemaining: 0,
			wantPercent:   100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usage := ComputeUsage(start, start.Add(tt.elapsed), tt.approvedHours)
			assert.InDelta(t, tt.wantUsed, usage.HoursUsed, 1e-9)
			assert.InDelta(t, tt.wantRemaining, usage.HoursRemaining, 1e-9)
			assert.InDelta(t, tt.wantPercent, usage.PercentUsed, 1e-9)
		})
	}
}

func TestComputeUsageNeverNegative(t *testing.T) {
	start := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

	// Clock skew: now before start still reports zero, not negative.
	usage := ComputeUsage(start, start.Add(-time.Hour), 3)
	assert.Equal(t, 0.0, usage.HoursUsed)
	assert.Equal(t, 3.0, usage.HoursRemaining)
}

func newActiveSession(start time.Time, approvedHours float64) *model.OvertimeSession {
	return &model.OvertimeSession{
		ID:                 "sess-1",
		SessionStartTime:   start,
		ApprovedHours:      approvedHours,
		Status:             model.SessionStatusActive,
		DailyMaxHours:      model.DefaultDailyMaxHours,
		SessionMaxHours:    model.DefaultSessionMaxHours,
		GracePeriodMinutes: model.DefaultGracePeriodMinutes,
	}
}

func TestEvaluateThresholds(t *testing.T) {
	start := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		mutate  func(s *model.OvertimeSession)
		want    ThresholdActions
	}{
		{
			name:    "Well inside budget",
			elapsed: time.Hour,
			want:    ThresholdActions{},
		},
		{
			name:    "Manager reminder at 90.3 percent",
			elapsed: time.Duration(2.71 * float64(time.Hour)),
			want:    ThresholdActions{ManagerReminder: true},
		},
		{
			name:    "Reminder latch suppresses repeat",
			elapsed: time.Duration(2.71 * float64(time.Hour)),
			mutate: func(s *model.OvertimeSession) {
				s.ManagerNotifiedAt = utils.Ptr(start.Add(2 * time.Hour))
			},
			want: ThresholdActions{},
		},
		{
			name:    "Final warning at 15 minutes remaining",
			elapsed: 3*time.Hour - 15*time.Minute,
			mutate: func(s *model.OvertimeSession) {
				s.ManagerNotifiedAt = utils.Ptr(start.Add(2 * time.Hour))
			},
			want: ThresholdActions{FinalWarning: true},
		},
		{
			name:    "Budget exhausted but inside grace",
			elapsed: 3*time.Hour + 10*time.Minute,
			mutate: func(s *model.OvertimeSession) {
				s.ManagerNotifiedAt = utils.Ptr(start)
				s.AutoClockOutWarningAt = utils.Ptr(start)
			},
			want: ThresholdActions{},
		},
		{
			name:    "Force close past budget plus grace",
			elapsed: 3*time.Hour + 30*time.Minute,
			mutate: func(s *model.OvertimeSession) {
				s.ManagerNotifiedAt = utils.Ptr(start)
				s.AutoClockOutWarningAt = utils.Ptr(start)
			},
			want: ThresholdActions{ForceClose: true},
		},
		{
			name:    "Closed session never acts",
			elapsed: 5 * time.Hour,
			mutate: func(s *model.OvertimeSession) {
				s.Status = model.SessionStatusCompleted
			},
			want: ThresholdActions{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := newActiveSession(start, 3)
			if tt.mutate != nil {
				tt.mutate(sess)
			}

			_, actions := EvaluateThresholds(sess, start.Add(tt.elapsed))
			assert.Equal(t, tt.want.ManagerReminder, actions.ManagerReminder, "manager reminder")
			assert.Equal(t, tt.want.FinalWarning, actions.FinalWarning, "final warning")
			assert.Equal(t, tt.want.ForceClose, actions.ForceClose, "force close")
		})
	}
}

func TestExceededBy(t *testing.T) {
	assert.Equal(t, 0.0, ExceededBy(2.5, 3))
	assert.Equal(t, 0.0, ExceededBy(3, 3))
	assert.InDelta(t, 0.5, ExceededBy(3.5, 3), 1e-9)
}
