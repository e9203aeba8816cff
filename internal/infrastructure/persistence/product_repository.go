package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository and StockAdjuster using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByIDForTenant finds a product by ID within a tenant
func (r *GormProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Product not found")
		}
		return nil, classifyError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDsForTenant finds multiple products by their IDs
func (r *GormProductRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}

	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&rows).Error; err != nil {
		return nil, classifyError(err)
	}
	return productsToDomain(rows), nil
}

// FindAllForTenant lists products for a tenant ordered by name
func (r *GormProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	filter.Filter = filter.Normalized()
	scoped := func() *gorm.DB {
		return r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("tenant_id = ?", tenantID), filter)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, classifyError(err)
	}

	var rows []models.ProductModel
	if err := scoped().
		Order("name ASC, id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, classifyError(err)
	}
	return productsToDomain(rows), total, nil
}

// FindActiveForTenant returns every active product for a tenant ordered by name
func (r *GormProductRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("name ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, classifyError(err)
	}
	return productsToDomain(rows), nil
}

// ExistsByBarcode checks if another product in the tenant uses the barcode
func (r *GormProductRepository) ExistsByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string, excludeID uuid.UUID) (bool, error) {
	if barcode == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("tenant_id = ? AND barcode = ? AND id <> ?", tenantID, barcode, excludeID).
		Count(&count).Error; err != nil {
		return false, classifyError(err)
	}
	return count > 0, nil
}

// Create inserts a new product
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		err = classifyError(err)
		if errors.Is(err, shared.ErrAlreadyExists) {
			return shared.ErrAlreadyExists.WithMessage("Barcode is already used by another product")
		}
		return err
	}
	return nil
}

// UpdateDetails writes the editable columns guarded by the expected version.
// product.Version must already be incremented by the domain.
func (r *GormProductRepository) UpdateDetails(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", product.TenantID, product.ID, product.Version-1).
		Updates(map[string]interface{}{
			"name":       model.Name,
			"category":   model.Category,
			"unit":       model.Unit,
			"cost_price": model.CostPrice,
			"sale_price": model.SalePrice,
			"min_stock":  model.MinStock,
			"barcode":    model.Barcode,
			"is_active":  model.IsActive,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		err := classifyError(result.Error)
		if errors.Is(err, shared.ErrAlreadyExists) {
			return shared.ErrAlreadyExists.WithMessage("Barcode is already used by another product")
		}
		return err
	}
	if result.RowsAffected == 0 {
		exists, err := r.exists(ctx, product.TenantID, product.ID)
		if err != nil {
			return err
		}
		if !exists {
			return shared.ErrNotFound.WithMessage("Product not found")
		}
		return shared.ErrConcurrencyConflict.WithMessage("Product was modified by another request")
	}
	return nil
}

// AdjustStock adds delta to stock_qty in one UPDATE so concurrent writers never
// lose increments. The guard conditions are part of the same statement, so a
// product deactivated by a concurrent request is seen by the writer's transaction.
func (r *GormProductRepository) AdjustStock(ctx context.Context, tenantID, productID uuid.UUID, delta decimal.Decimal, guard catalog.StockGuard) error {
	query := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID)
	if guard.RequireActive {
		query = query.Where("is_active = ?", true)
	}
	if guard.RejectNegative && delta.IsNegative() {
		query = query.Where("stock_qty + ? >= 0", delta)
	}

	result := query.Updates(map[string]interface{}{
		"stock_qty":  gorm.Expr("stock_qty + ?", delta),
		"updated_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return classifyError(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var state struct{ IsActive bool }
	err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Select("is_active").
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Take(&state).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound.WithMessage("Product not found")
	case err != nil:
		return classifyError(err)
	case guard.RequireActive && !state.IsActive:
		return catalog.ErrProductInactive
	}
	return shared.ErrInsufficientStock.WithMessage("Insufficient stock for product " + productID.String())
}

func (r *GormProductRepository) exists(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Count(&count).Error; err != nil {
		return false, classifyError(err)
	}
	return count > 0, nil
}

// applyFilter applies search and status filters to the query
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := searchPattern(filter.Search)
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(category) LIKE ? OR LOWER(barcode) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if category, ok := filter.Filters["category"].(string); ok && category != "" {
		query = query.Where("category = ?", category)
	}
	return query
}

// searchPattern builds a case-insensitive LIKE pattern, portable across postgres and sqlite
func searchPattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

func productsToDomain(rows []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products
}

// Ensure GormProductRepository implements the catalog interfaces
var (
	_ catalog.ProductRepository = (*GormProductRepository)(nil)
	_ catalog.StockAdjuster     = (*GormProductRepository)(nil)
)
