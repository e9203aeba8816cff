package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and UTC timestamps
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntityAt stamps a fresh entity with now, converted to UTC
func NewBaseEntityAt(now time.Time) BaseEntity {
	now = now.UTC()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch records a modification
func (e *BaseEntity) Touch(now time.Time) {
	e.UpdatedAt = now.UTC()
}

// TenantAggregateRoot is the root of every record owned by a tenant.
// Version starts at 1 and guards catalog and party edits with optimistic locking.
type TenantAggregateRoot struct {
	BaseEntity
	TenantID  uuid.UUID
	CreatedBy *uuid.UUID
	Version   int
}

// NewTenantAggregateRoot creates a root owned by tenantID
func NewTenantAggregateRoot(tenantID uuid.UUID, now time.Time) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseEntity: NewBaseEntityAt(now),
		TenantID:   tenantID,
		Version:    1,
	}
}

// OwnedBy reports whether the record belongs to tenantID
func (r *TenantAggregateRoot) OwnedBy(tenantID uuid.UUID) bool {
	return r.TenantID == tenantID
}

// SetCreatedBy records the author. The nil UUID means an anonymous caller.
func (r *TenantAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}
	r.CreatedBy = &userID
}

// GetVersion returns the optimistic locking version
func (r *TenantAggregateRoot) GetVersion() int {
	return r.Version
}

// IncrementVersion bumps the version after a successful edit
func (r *TenantAggregateRoot) IncrementVersion() {
	r.Version++
}
