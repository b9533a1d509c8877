package model

import "time"

const (
	RoleExecutiveProducer = "executive_producer"
	RoleProducer          = "producer"
	RoleAccounting        = "accounting"
	RoleAdmin             = "admin"
	RoleOwner             = "owner"
	RoleManager           = "manager"
	RoleCrew              = "crew"
)

// OrgUser is the role oracle's view of a member. Authentication stays in
// the JWT; this table only answers role and fan-out queries.
type OrgUser struct {
	ID             string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	OrganizationID string `gorm:"column:organization_id;type:varchar(36);not null;index" json:"organizationId"`
	Name           string `gorm:"column:name;type:varchar(100)" json:"name"`
	Email          string `gorm:"column:email;type:varchar(255)" json:"email"`
	Role           string `gorm:"column:role;type:varchar(30);not null" json:"role"`

	CreatedAt time.Time `gorm:"not null;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (OrgUser) TableName() string {
	return "org_users"
}
