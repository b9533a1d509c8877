package model

import "time"

const (
	TimecardStatusClockedIn      = "clocked_in"
	TimecardStatusClockedOut     = "clocked_out"
	TimecardStatusAutoClockedOut = "auto_clocked_out"
)

// TimecardEntry mirrors the payroll ledger's clock-in records. The core
// only reads them, stamps the overtime back-reference, and closes them;
// creation belongs to the time-clock devices upstream.
type TimecardEntry struct {
	ID             string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	OrganizationID string `gorm:"column:organization_id;type:varchar(36);not null;index" json:"organizationId"`
	UserID         string `gorm:"column:user_id;type:varchar(36);not null;index" json:"userId"`

	ClockInTime  time.Time  `gorm:"column:clock_in_time;not null" json:"clockInTime"`
	ClockOutTime *time.Time `gorm:"column:clock_out_time" json:"clockOutTime,omitempty"`
	TotalHours   float64    `gorm:"column:total_hours;type:decimal(10,2)" json:"totalHours"`

	Status string `gorm:"column:status;type:varchar(30);not null" json:"status"`

	OvertimeSessionID *string `gorm:"column:overtime_session_id;type:varchar(36)" json:"overtimeSessionId,omitempty"`

	CreatedAt time.Time `gorm:"not null;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (TimecardEntry) TableName() string {
	return "timecard_entries"
}
