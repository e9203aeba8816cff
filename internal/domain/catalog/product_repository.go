package catalog

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductFilter narrows a product listing
type ProductFilter struct {
	shared.Filter
	ActiveOnly bool
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByIDForTenant finds a product by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindByIDsForTenant finds the products with the given IDs; missing IDs are skipped
	FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Product, error)

	// FindAllForTenant lists products ordered by name, returning the page and the total count
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ProductFilter) ([]Product, int64, error)

	// FindActiveForTenant returns every active product ordered by name
	FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]Product, error)

	// ExistsByBarcode checks if another product in the tenant already uses the barcode
	ExistsByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string, excludeID uuid.UUID) (bool, error)

	// Create inserts a new product
	Create(ctx context.Context, product *Product) error

	// UpdateDetails writes the editable attributes guarded by the product version.
	// The stock column is never written.
	UpdateDetails(ctx context.Context, product *Product) error
}

// StockGuard lists the conditions checked by the same statement that moves
// the stock. The zero value applies the movement unconditionally.
type StockGuard struct {
	// RequireActive refuses the movement when the product is inactive
	RequireActive bool
	// RejectNegative refuses a movement that would leave stock below zero
	RejectNegative bool
}

// StockAdjuster applies signed stock movements atomically in storage
type StockAdjuster interface {
	// AdjustStock adds delta to the product's stock in a single atomic update.
	// A refused guard returns ErrProductInactive or shared.ErrInsufficientStock.
	AdjustStock(ctx context.Context, tenantID, productID uuid.UUID, delta decimal.Decimal, guard StockGuard) error
}
