package partner

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// PartyRepository persists one kind of party (customers or suppliers)
type PartyRepository interface {
	// Kind returns the kind of party this repository stores
	Kind() Kind

	// FindByIDForTenant finds a party by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Party, error)

	// ExistsForTenant checks that the party exists within the tenant
	ExistsForTenant(ctx context.Context, tenantID, id uuid.UUID) (bool, error)

	// FindAllForTenant lists parties ordered by name, returning the page and the total count
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Party, int64, error)

	// Create inserts a new party
	Create(ctx context.Context, party *Party) error

	// Update replaces the stored profile, guarded by the party version
	Update(ctx context.Context, party *Party) error
}
