//go:build integration

package integration

import (
	"context"
	"testing"

	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	ledgerapp "github.com/erp/backoffice/internal/application/ledger"
	partnerapp "github.com/erp/backoffice/internal/application/partner"
	reportapp "github.com/erp/backoffice/internal/application/report"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// ledgerStack wires the application services over one test database
type ledgerStack struct {
	db           *TestDB
	productRepo  *persistence.GormProductRepository
	products     *catalogapp.ProductService
	customers    *partnerapp.PartyService
	suppliers    *partnerapp.PartyService
	writer       *ledgerapp.Writer
	obligations  *ledgerapp.ObligationTracker
	transactions *ledgerapp.QueryService
	reports      *reportapp.AggregationService
}

func newLedgerStack(t *testing.T, cfg ledgerapp.WriterConfig) *ledgerStack {
	t.Helper()

	tdb := NewTestDB(t)
	log := zaptest.NewLogger(t)

	productRepo := persistence.NewGormProductRepository(tdb.DB)
	customerRepo := persistence.NewGormCustomerRepository(tdb.DB)
	supplierRepo := persistence.NewGormSupplierRepository(tdb.DB)
	transactionRepo := persistence.NewGormTransactionRepository(tdb.DB)
	obligationRepo := persistence.NewGormObligationRepository(tdb.DB)

	return &ledgerStack{
		db:          tdb,
		productRepo: productRepo,
		products:    catalogapp.NewProductService(productRepo),
		customers:   partnerapp.NewPartyService(customerRepo),
		suppliers:   partnerapp.NewPartyService(supplierRepo),
		writer: ledgerapp.NewWriter(persistence.NewGormTransactionScope(tdb.DB),
			productRepo, customerRepo, supplierRepo, transactionRepo, cfg, log),
		obligations:  ledgerapp.NewObligationTracker(obligationRepo, log),
		transactions: ledgerapp.NewQueryService(transactionRepo),
		reports: reportapp.NewAggregationService(productRepo, obligationRepo,
			persistence.NewGormReportRepository(tdb.DB), log),
	}
}

func (s *ledgerStack) createProduct(t *testing.T, tenantID uuid.UUID, name, salePrice, minStock string) uuid.UUID {
	t.Helper()
	sale := decimal.RequireFromString(salePrice)
	cost := sale.Div(decimal.NewFromInt(2))
	minQty := decimal.RequireFromString(minStock)
	p, err := s.products.Create(context.Background(), tenantID, catalogapp.CreateProductRequest{
		ProductInput: catalogapp.ProductInput{
			Name:      name,
			Category:  "grocery",
			Unit:      "un",
			CostPrice: &cost,
			SalePrice: &sale,
			MinStock:  &minQty,
		},
	})
	require.NoError(t, err)
	return p.ID
}

func (s *ledgerStack) createCustomer(t *testing.T, tenantID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	c, err := s.customers.Create(context.Background(), tenantID, partnerapp.PartyRequest{Name: name})
	require.NoError(t, err)
	return c.ID
}

func (s *ledgerStack) createSupplier(t *testing.T, tenantID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	c, err := s.suppliers.Create(context.Background(), tenantID, partnerapp.PartyRequest{Name: name})
	require.NoError(t, err)
	return c.ID
}

// restock records a purchase of qty units of productID
func (s *ledgerStack) restock(t *testing.T, tenantID, supplierID, productID uuid.UUID, qty int64) {
	t.Helper()
	_, err := s.writer.RecordPurchase(context.Background(), tenantID, ledgerapp.RecordPurchaseRequest{
		SupplierID: supplierID,
		Items: []ledgerapp.ItemRequest{{
			ProductID: productID,
			Quantity:  decimal.NewFromInt(qty),
			UnitPrice: decimal.NewFromInt(2),
		}},
	})
	require.NoError(t, err)
}

func (s *ledgerStack) stockOf(t *testing.T, tenantID, productID uuid.UUID) decimal.Decimal {
	t.Helper()
	p, err := s.products.GetByID(context.Background(), tenantID, productID)
	require.NoError(t, err)
	return p.StockQty
}

func (s *ledgerStack) count(t *testing.T, table string, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.DB.Table(table).Where(where, args...).Count(&n).Error)
	return n
}
