package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel holds the identity and timestamp columns, stored in UTC
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts the columns to a domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt.UTC(), UpdatedAt: m.UpdatedAt.UTC()}
}

// FromDomainBaseEntity copies a domain BaseEntity into the columns
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID, m.CreatedAt, m.UpdatedAt = e.ID, e.CreatedAt.UTC(), e.UpdatedAt.UTC()
}

// TenantAggregateModel adds the owning tenant, the author and the optimistic
// locking version used by products, customers and suppliers.
type TenantAggregateModel struct {
	BaseModel
	Version   int        `gorm:"not null;default:1"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

// FromDomainTenantAggregateRoot copies a domain root into the columns
func (m *TenantAggregateModel) FromDomainTenantAggregateRoot(r shared.TenantAggregateRoot) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.Version = r.Version
	m.TenantID = r.TenantID
	m.CreatedBy = r.CreatedBy
}

// ToTenantAggregateRoot builds the domain root from the columns
func (m *TenantAggregateModel) ToTenantAggregateRoot() shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		CreatedBy:  m.CreatedBy,
		Version:    m.Version,
	}
}

// nullableString stores "" as NULL so partial unique indexes skip it
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
