package model

import "time"

type SessionStatus string

const (
	SessionStatusActive         SessionStatus = "active"
	SessionStatusCompleted      SessionStatus = "completed"
	SessionStatusAutoClockedOut SessionStatus = "auto_clocked_out"
)

// OvertimeSession is the live monitoring window for one approved request
// and one clock-in. Sessions are never deleted; historical rows persist
// after the owning request forgets them.
type OvertimeSession struct {
	ID                string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	OrganizationID    string `gorm:"column:organization_id;type:varchar(36);not null;index" json:"organizationId"`
	OvertimeRequestID string `gorm:"column:overtime_request_id;type:varchar(36);not null;index" json:"overtimeRequestId"`
	UserID            string `gorm:"column:user_id;type:varchar(36);not null;index" json:"userId"`
	UserName          string `gorm:"column:user_name;type:varchar(100)" json:"userName"`
	ManagerID         string `gorm:"column:manager_id;type:varchar(36);not null" json:"managerId"`
	TimecardEntryID   string `gorm:"column:timecard_entry_id;type:varchar(36);not null" json:"timecardEntryId"`

	SessionStartTime time.Time  `gorm:"column:session_start_time;not null" json:"sessionStartTime"`
	SessionEndTime   *time.Time `gorm:"column:session_end_time" json:"sessionEndTime,omitempty"`

	// ApprovedHours is copied from the request at start and immutable after.
	ApprovedHours  float64 `gorm:"column:approved_hours;type:decimal(10,2);not null" json:"approvedHours"`
	HoursUsed      float64 `gorm:"column:hours_used;type:decimal(10,2)" json:"hoursUsed"`
	HoursRemaining float64 `gorm:"column:hours_remaining;type:decimal(10,2)" json:"hoursRemaining"`

	Status SessionStatus `gorm:"column:status;type:varchar(30);not null;index" json:"status"`

	// Policy snapshot at start time.
	DailyMaxHours      float64 `gorm:"column:daily_max_hours;type:decimal(10,2)" json:"dailyMaxHours"`
	SessionMaxHours    float64 `gorm:"column:session_max_hours;type:decimal(10,2)" json:"sessionMaxHours"`
	GracePeriodMinutes int     `gorm:"column:grace_period_minutes" json:"gracePeriodMinutes"`

	FlaggedForReview bool    `gorm:"column:flagged_for_review;not null" json:"flaggedForReview"`
	ExceededBy       float64 `gorm:"column:exceeded_by;type:decimal(10,2)" json:"exceededBy"`

	// Once-only notification latches.
	ManagerNotifiedAt     *time.Time `gorm:"column:manager_notified_at" json:"managerNotifiedAt,omitempty"`
	AutoClockOutWarningAt *time.Time `gorm:"column:auto_clock_out_warning_at" json:"autoClockOutWarningAt,omitempty"`

	CreatedAt time.Time `gorm:"not null;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (OvertimeSession) TableName() string {
	return "overtime_sessions"
}

// GraceHours is the grace period expressed in fractional hours.
func (s *OvertimeSession) GraceHours() float64 {
	return float64(s.GracePeriodMinutes) / 60.0
}

// MaxHours is the hard ceiling before forced termination.
func (s *OvertimeSession) MaxHours() float64 {
	return s.ApprovedHours + s.GraceHours()
}
