package persistence

import (
	"fmt"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

// newTestDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps the memory database alive and serializes transactions.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	cfg := GormConfig(logger.Default.LogMode(logger.Silent))
	cfg.PrepareStmt = false
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.ProductModel{},
		&models.LedgerTransactionModel{},
		&models.LedgerLineItemModel{},
		&models.ObligationModel{},
		&models.TenantMembershipModel{},
	))
	require.NoError(t, db.Table(models.CustomersTable).AutoMigrate(&models.PartyModel{}))
	require.NoError(t, db.Table(models.SuppliersTable).AutoMigrate(&models.PartyModel{}))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name, stock string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(tenantID, catalog.ProductDetails{
		Name:      name,
		Category:  "grocery",
		CostPrice: decimal.RequireFromString("2"),
		SalePrice: decimal.RequireFromString("5"),
		MinStock:  decimal.RequireFromString("3"),
		IsActive:  true,
	}, testNow)
	require.NoError(t, err)
	p.StockQty = decimal.RequireFromString(stock)
	require.NoError(t, db.Create(models.ProductModelFromDomain(p)).Error)
	return p
}

func seedParty(t *testing.T, db *gorm.DB, tenantID uuid.UUID, kind partner.Kind, name string) *partner.Party {
	t.Helper()
	party, err := partner.NewParty(tenantID, kind, partner.Profile{Name: name}, testNow)
	require.NoError(t, err)
	require.NoError(t, db.Table(models.PartyTable(kind)).Create(models.PartyModelFromDomain(party)).Error)
	return party
}

func stockOf(t *testing.T, db *gorm.DB, productID uuid.UUID) decimal.Decimal {
	t.Helper()
	var model models.ProductModel
	require.NoError(t, db.First(&model, "id = ?", productID).Error)
	return model.StockQty
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Table(table).Count(&count).Error)
	return count
}
