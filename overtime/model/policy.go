package model

import "time"

const (
	DefaultDailyMaxHours      = 12.0
	DefaultSessionMaxHours    = 16.0
	DefaultGracePeriodMinutes = 30
)

// OvertimePolicy is the per-organization limit set snapshotted onto every
// session at start time.
type OvertimePolicy struct {
	OrganizationID     string  `gorm:"primaryKey;column:organization_id;type:varchar(36)" json:"organizationId"`
	DailyMaxHours      float64 `gorm:"column:daily_max_hours;type:decimal(10,2);not null" json:"dailyMaxHours"`
	SessionMaxHours    float64 `gorm:"column:session_max_hours;type:decimal(10,2);not null" json:"sessionMaxHours"`
	GracePeriodMinutes int     `gorm:"column:grace_period_minutes;not null" json:"gracePeriodMinutes"`

	CreatedAt time.Time `gorm:"not null;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (OvertimePolicy) TableName() string {
	return "overtime_policies"
}

// DefaultPolicy is used when an organization has no stored override.
func DefaultPolicy(organizationID string) OvertimePolicy {
	return OvertimePolicy{
		OrganizationID:     organizationID,
		DailyMaxHours:      DefaultDailyMaxHours,
		SessionMaxHours:    DefaultSessionMaxHours,
		GracePeriodMinutes: DefaultGracePeriodMinutes,
	}
}
