package model

import "time"

const (
	NotificationRequestCreated   = "overtime_request_created"
	NotificationRequestResponded = "overtime_request_responded"
	NotificationRequestCertified = "overtime_request_certified"
	NotificationRequestApproved  = "overtime_request_approved"
	NotificationRequestRejected  = "overtime_request_rejected"
	NotificationManagerReminder  = "overtime_manager_reminder"
	NotificationFinalWarning     = "overtime_final_warning"
	NotificationAutoClockOut     = "overtime_auto_clock_out"
)

// Notification is one in-app inbox row. Push delivery (email) rides along
// best-effort; the row is the record.
type Notification struct {
	ID             string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	OrganizationID string `gorm:"column:organization_id;type:varchar(36);not null;index" json:"organizationId"`
	UserID         string `gorm:"column:user_id;type:varchar(36);not null;index" json:"userId"`

	Type    string `gorm:"column:type;type:varchar(50);not null" json:"type"`
	Title   string `gorm:"column:title;type:varchar(200)" json:"title"`
	Message string `gorm:"column:message;type:text" json:"message"`

	// RelatedID points at the request or session the notification is about.
	RelatedID      string `gorm:"column:related_id;type:varchar(36);index" json:"relatedId,omitempty"`
	RequiresReview bool   `gorm:"column:requires_review;not null" json:"requiresReview"`

	ReadAt    *time.Time `gorm:"column:read_at" json:"readAt,omitempty"`
	CreatedAt time.Time  `gorm:"not null;<-:create" json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}
