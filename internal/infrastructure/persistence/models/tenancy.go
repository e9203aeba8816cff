package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/tenancy"
	"github.com/google/uuid"
)

// TenantMembershipModel stores each user's default tenant.
type TenantMembershipModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TenantMembershipModel) TableName() string {
	return "tenant_memberships"
}

// ToDomain converts the persistence model to a domain Membership.
func (m *TenantMembershipModel) ToDomain() *tenancy.Membership {
	return &tenancy.Membership{
		UserID:    m.UserID,
		TenantID:  m.TenantID,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

// TenantMembershipModelFromDomain creates a new persistence model from a domain Membership.
func TenantMembershipModelFromDomain(m *tenancy.Membership) *TenantMembershipModel {
	return &TenantMembershipModel{
		UserID:    m.UserID,
		TenantID:  m.TenantID,
		CreatedAt: m.CreatedAt.UTC(),
	}
}
