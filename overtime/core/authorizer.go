package core

import (
	"fmt"

	"crewtime.app/crewtime/overtime/model"
	"gorm.io/gorm"
)

// Authorizer decouples the workflow from any specific role taxonomy. The
// workflow only ever asks "may this caller make the executive decision"
// and "who should the certification fan-out reach".
type Authorizer interface {
	IsExecutive(db *gorm.DB, organizationID, userID string) (bool, error)
	ListExecutives(db *gorm.DB, organizationID string) ([]model.OrgUser, error)
}

// RoleAuthorizer answers from the org_users table with a fixed role set.
type RoleAuthorizer struct {
	ExecutiveRoles []string
}

func NewRoleAuthorizer() *RoleAuthorizer {
	return &RoleAuthorizer{
		ExecutiveRoles: []string{
			model.RoleExecutiveProducer,
			model.RoleProducer,
			model.RoleAccounting,
			model.RoleAdmin,
			model.RoleOwner,
		},
	}
}

func (a *RoleAuthorizer) IsExecutive(db *gorm.DB, organizationID, userID string) (bool, error) {
	var count int64
	err := db.Model(&model.OrgUser{}).
		Where("organization_id = ? AND id = ? AND role IN ?", organizationID, userID, a.ExecutiveRoles).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check executive role: %w", err)
	}
	return count > 0, nil
}

func (a *RoleAuthorizer) ListExecutives(db *gorm.DB, organizationID string) ([]model.OrgUser, error) {
	var users []model.OrgUser
	err := db.
		Where("organization_id = ? AND role IN ?", organizationID, a.ExecutiveRoles).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list executives: %w", err)
	}
	return users, nil
}
