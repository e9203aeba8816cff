package persistence

import (
	"context"
	"errors"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/tenancy"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMembershipRepository implements tenancy.MembershipRepository using GORM
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewGormMembershipRepository creates a new GormMembershipRepository
func NewGormMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	return &GormMembershipRepository{db: db}
}

// FindDefaultTenant returns the user's default tenant
func (r *GormMembershipRepository) FindDefaultTenant(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var model models.TenantMembershipModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, shared.ErrNoTenantBound
		}
		return uuid.Nil, classifyError(err)
	}
	return model.TenantID, nil
}

// Save creates or replaces the user's default tenant
func (r *GormMembershipRepository) Save(ctx context.Context, m *tenancy.Membership) error {
	return classifyError(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"tenant_id"}),
		}).
		Create(models.TenantMembershipModelFromDomain(m)).Error)
}

// Ensure GormMembershipRepository implements MembershipRepository
var _ tenancy.MembershipRepository = (*GormMembershipRepository)(nil)
