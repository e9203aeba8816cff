package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormProductRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	tenantID := uuid.New()

	p, err := catalog.NewProduct(tenantID, catalog.ProductDetails{
		Name:      "Coffee 500g",
		Category:  "Beverages",
		CostPrice: decimal.RequireFromString("8"),
		SalePrice: decimal.RequireFromString("12"),
		MinStock:  decimal.RequireFromString("5"),
		Barcode:   "7891000",
		IsActive:  true,
	}, testNow)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, p))

	found, err := repo.FindByIDForTenant(ctx, tenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coffee 500g", found.Name)
	assert.Equal(t, "7891000", found.Barcode)
	assert.True(t, found.SalePrice.Equal(decimal.RequireFromString("12")))
	assert.True(t, found.StockQty.IsZero())
	assert.Equal(t, 1, found.Version)

	t.Run("other tenant cannot see it", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), p.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("barcode lookup excludes the product itself", func(t *testing.T) {
		exists, err := repo.ExistsByBarcode(ctx, tenantID, "7891000", p.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.ExistsByBarcode(ctx, tenantID, "7891000", uuid.Nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByBarcode(ctx, uuid.New(), "7891000", uuid.Nil)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("batch lookup skips missing ids", func(t *testing.T) {
		products, err := repo.FindByIDsForTenant(ctx, tenantID, []uuid.UUID{p.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, p.ID, products[0].ID)
	})
}

func TestGormProductRepository_FindAllForTenant(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	tenantID := uuid.New()

	seedProduct(t, db, tenantID, "Sugar", "10")
	seedProduct(t, db, tenantID, "Black Coffee", "4")
	inactive := seedProduct(t, db, tenantID, "Coffee Filter", "0")
	seedProduct(t, db, uuid.New(), "Coffee Elsewhere", "1")

	require.NoError(t, db.Table("products").Where("id = ?", inactive.ID).Update("is_active", false).Error)

	t.Run("orders by name and pages", func(t *testing.T) {
		products, total, err := repo.FindAllForTenant(ctx, tenantID, catalog.ProductFilter{
			Filter: shared.Filter{Page: 1, PageSize: 2},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, products, 2)
		assert.Equal(t, "Black Coffee", products[0].Name)
		assert.Equal(t, "Coffee Filter", products[1].Name)
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		products, total, err := repo.FindAllForTenant(ctx, tenantID, catalog.ProductFilter{
			Filter: shared.Filter{Search: "COFFEE"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, products, 2)
	})

	t.Run("active only", func(t *testing.T) {
		products, total, err := repo.FindAllForTenant(ctx, tenantID, catalog.ProductFilter{
			Filter:     shared.Filter{Search: "coffee"},
			ActiveOnly: true,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, products, 1)
		assert.Equal(t, "Black Coffee", products[0].Name)
	})

	t.Run("active products for reports", func(t *testing.T) {
		products, err := repo.FindActiveForTenant(ctx, tenantID)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "Black Coffee", products[0].Name)
		assert.Equal(t, "Sugar", products[1].Name)
	})
}

func TestGormProductRepository_UpdateDetails(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	tenantID := uuid.New()
	seeded := seedProduct(t, db, tenantID, "Tea", "7")

	t.Run("writes metadata but never stock", func(t *testing.T) {
		p, err := repo.FindByIDForTenant(ctx, tenantID, seeded.ID)
		require.NoError(t, err)

		// a sale lands between the read and the edit
		require.NoError(t, repo.AdjustStock(ctx, tenantID, p.ID, decimal.NewFromInt(-2), catalog.StockGuard{}))

		details := p.Details()
		details.Name = "Green Tea"
		details.SalePrice = decimal.RequireFromString("6")
		require.NoError(t, p.UpdateDetails(details, nil, testNow.Add(time.Minute)))
		require.NoError(t, repo.UpdateDetails(ctx, p))

		stored, err := repo.FindByIDForTenant(ctx, tenantID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Green Tea", stored.Name)
		assert.Equal(t, 2, stored.Version)
		assert.True(t, stored.StockQty.Equal(decimal.NewFromInt(5)), "stock written by the ledger survives the edit")
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		stale := *seeded
		details := stale.Details()
		details.Name = "Stale"
		require.NoError(t, stale.UpdateDetails(details, nil, testNow))

		err := repo.UpdateDetails(ctx, &stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("missing product", func(t *testing.T) {
		ghost := *seeded
		ghost.ID = uuid.New()
		err := repo.UpdateDetails(ctx, &ghost)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProductRepository_AdjustStock(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	tenantID := uuid.New()
	p := seedProduct(t, db, tenantID, "Rice", "3")

	t.Run("increments and decrements", func(t *testing.T) {
		require.NoError(t, repo.AdjustStock(ctx, tenantID, p.ID, decimal.NewFromInt(10), catalog.StockGuard{}))
		require.NoError(t, repo.AdjustStock(ctx, tenantID, p.ID, decimal.NewFromInt(-4), catalog.StockGuard{}))
		assert.True(t, stockOf(t, db, p.ID).Equal(decimal.NewFromInt(9)))
	})

	t.Run("guard refuses to go below zero", func(t *testing.T) {
		err := repo.AdjustStock(ctx, tenantID, p.ID, decimal.NewFromInt(-10), catalog.StockGuard{RejectNegative: true})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.True(t, stockOf(t, db, p.ID).Equal(decimal.NewFromInt(9)))

		require.NoError(t, repo.AdjustStock(ctx, tenantID, p.ID, decimal.NewFromInt(-9), catalog.StockGuard{RejectNegative: true}))
		assert.True(t, stockOf(t, db, p.ID).IsZero())
	})

	t.Run("negative stock allowed without guard", func(t *testing.T) {
		require.NoError(t, repo.AdjustStock(ctx, tenantID, p.ID, decimal.NewFromInt(-2), catalog.StockGuard{}))
		assert.True(t, stockOf(t, db, p.ID).Equal(decimal.NewFromInt(-2)))
	})

	t.Run("inactive product refuses sales but not purchases", func(t *testing.T) {
		idle := seedProduct(t, db, tenantID, "Barley", "5")
		require.NoError(t, db.Model(&models.ProductModel{}).Where("id = ?", idle.ID).Update("is_active", false).Error)

		err := repo.AdjustStock(ctx, tenantID, idle.ID, decimal.NewFromInt(-1), catalog.StockGuard{RequireActive: true})
		assert.ErrorIs(t, err, catalog.ErrProductInactive)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.True(t, stockOf(t, db, idle.ID).Equal(decimal.NewFromInt(5)))

		require.NoError(t, repo.AdjustStock(ctx, tenantID, idle.ID, decimal.NewFromInt(4), catalog.StockGuard{}))
		assert.True(t, stockOf(t, db, idle.ID).Equal(decimal.NewFromInt(9)))
	})

	t.Run("guard on an active product with no stock reports shortage", func(t *testing.T) {
		empty := seedProduct(t, db, tenantID, "Oats", "0")
		err := repo.AdjustStock(ctx, tenantID, empty.ID, decimal.NewFromInt(-1), catalog.StockGuard{RequireActive: true, RejectNegative: true})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("unknown product or foreign tenant", func(t *testing.T) {
		err := repo.AdjustStock(ctx, tenantID, uuid.New(), decimal.NewFromInt(1), catalog.StockGuard{})
		assert.ErrorIs(t, err, shared.ErrNotFound)

		err = repo.AdjustStock(ctx, uuid.New(), p.ID, decimal.NewFromInt(1), catalog.StockGuard{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
