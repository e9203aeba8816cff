package persistence

import (
	"context"
	"errors"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPartyRepository implements PartyRepository for one party kind.
// Customers and suppliers share columns but live in separate tables.
type GormPartyRepository struct {
	db    *gorm.DB
	kind  partner.Kind
	table string
}

// NewGormCustomerRepository creates a repository over the customers table
func NewGormCustomerRepository(db *gorm.DB) *GormPartyRepository {
	return newGormPartyRepository(db, partner.KindCustomer)
}

// NewGormSupplierRepository creates a repository over the suppliers table
func NewGormSupplierRepository(db *gorm.DB) *GormPartyRepository {
	return newGormPartyRepository(db, partner.KindSupplier)
}

func newGormPartyRepository(db *gorm.DB, kind partner.Kind) *GormPartyRepository {
	return &GormPartyRepository{db: db, kind: kind, table: models.PartyTable(kind)}
}

// Kind returns the kind of party this repository stores
func (r *GormPartyRepository) Kind() partner.Kind {
	return r.kind
}

func (r *GormPartyRepository) notFound() error {
	return shared.ErrNotFound.WithMessage(r.kind.Label() + " not found")
}

// FindByIDForTenant finds a party by ID within a tenant
func (r *GormPartyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Party, error) {
	var model models.PartyModel
	if err := r.db.WithContext(ctx).
		Table(r.table).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, r.notFound()
		}
		return nil, classifyError(err)
	}
	return model.ToDomain(r.kind), nil
}

// ExistsForTenant checks that the party exists within the tenant
func (r *GormPartyRepository) ExistsForTenant(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table(r.table).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Count(&count).Error; err != nil {
		return false, classifyError(err)
	}
	return count > 0, nil
}

// FindAllForTenant lists parties ordered by name with optional search over name, document and email
func (r *GormPartyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Party, int64, error) {
	filter = filter.Normalized()
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Table(r.table).Where("tenant_id = ?", tenantID)
		if filter.Search != "" {
			pattern := searchPattern(filter.Search)
			query = query.Where("LOWER(name) LIKE ? OR LOWER(document) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, classifyError(err)
	}

	var rows []models.PartyModel
	if err := scoped().
		Order("name ASC, id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, classifyError(err)
	}

	parties := make([]partner.Party, len(rows))
	for i := range rows {
		parties[i] = *rows[i].ToDomain(r.kind)
	}
	return parties, total, nil
}

// Create inserts a new party
func (r *GormPartyRepository) Create(ctx context.Context, party *partner.Party) error {
	if party.Kind != r.kind {
		return shared.ErrInvalidInput.WithMessage("Party kind does not match repository")
	}
	return classifyError(r.db.WithContext(ctx).Table(r.table).Create(models.PartyModelFromDomain(party)).Error)
}

// Update replaces the stored profile, guarded by the expected version.
// party.Version must already be incremented by the domain.
func (r *GormPartyRepository) Update(ctx context.Context, party *partner.Party) error {
	model := models.PartyModelFromDomain(party)
	result := r.db.WithContext(ctx).
		Table(r.table).
		Where("tenant_id = ? AND id = ? AND version = ?", party.TenantID, party.ID, party.Version-1).
		Updates(map[string]interface{}{
			"name":       model.Name,
			"document":   model.Document,
			"email":      model.Email,
			"phone":      model.Phone,
			"address":    model.Address,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return classifyError(result.Error)
	}
	if result.RowsAffected == 0 {
		exists, err := r.ExistsForTenant(ctx, party.TenantID, party.ID)
		if err != nil {
			return err
		}
		if !exists {
			return r.notFound()
		}
		return shared.ErrConcurrencyConflict.WithMessage(party.Kind.Label() + " was modified by another request")
	}
	return nil
}

// Ensure GormPartyRepository implements PartyRepository
var _ partner.PartyRepository = (*GormPartyRepository)(nil)
