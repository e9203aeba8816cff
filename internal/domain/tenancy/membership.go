// Package tenancy models which tenant a user acts for when the token does not say.
package tenancy

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Membership binds a user to their default tenant
type Membership struct {
	UserID    uuid.UUID
	TenantID  uuid.UUID
	CreatedAt time.Time
}

// NewMembership creates a membership
func NewMembership(userID, tenantID uuid.UUID, now time.Time) (*Membership, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("User ID is required")
	}
	if tenantID == uuid.Nil {
		return nil, shared.ErrNoTenantBound
	}
	return &Membership{UserID: userID, TenantID: tenantID, CreatedAt: now.UTC()}, nil
}

// MembershipRepository looks up default tenants
type MembershipRepository interface {
	// FindDefaultTenant returns the user's default tenant, or ErrNoTenantBound if none
	FindDefaultTenant(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)

	// Save creates or replaces the user's default tenant
	Save(ctx context.Context, m *Membership) error
}
