//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	ledgerapp "github.com/erp/backoffice/internal/application/ledger"
	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saleOf(customerID, productID uuid.UUID, qty int64) ledgerapp.RecordSaleRequest {
	return ledgerapp.RecordSaleRequest{
		CustomerID: customerID,
		Items: []ledgerapp.ItemRequest{{
			ProductID: productID,
			Quantity:  decimal.NewFromInt(qty),
			UnitPrice: decimal.NewFromInt(5),
		}},
	}
}

func TestConcurrentSales_ConserveStock(t *testing.T) {
	s := newLedgerStack(t, ledgerapp.DefaultWriterConfig())
	tenantID := testutil.TenantA()
	ctx := testutil.ContextWithTimeout(t, time.Minute)

	productID := s.createProduct(t, tenantID, "Rice 5kg", "5", "0")
	customerID := s.createCustomer(t, tenantID, "Maria")
	s.restock(t, tenantID, s.createSupplier(t, tenantID, "Wholesale Co"), productID, 100)

	const workers = 20
	errs := testutil.RunConcurrently(workers, func(int) error {
		_, err := s.writer.RecordSale(ctx, tenantID, saleOf(customerID, productID, 3))
		return err
	})
	for i, err := range errs {
		require.NoError(t, err, "sale %d", i)
	}

	assert.True(t, decimal.NewFromInt(100-workers*3).Equal(s.stockOf(t, tenantID, productID)))
	assert.Equal(t, int64(workers), s.count(t, "ledger_transactions", "tenant_id = ? AND kind = ?", tenantID, ledger.KindSale))
	assert.Equal(t, int64(workers), s.count(t, "obligations", "tenant_id = ? AND kind = ?", tenantID, ledger.ObligationReceivable))

	var receivableTotal decimal.Decimal
	row := s.db.DB.Table("obligations").
		Select("COALESCE(SUM(amount), 0)").
		Where("tenant_id = ? AND kind = ?", tenantID, ledger.ObligationReceivable).
		Row()
	require.NoError(t, row.Scan(&receivableTotal))
	assert.True(t, decimal.NewFromInt(workers*3*5).Equal(receivableTotal), "got %s", receivableTotal)
}

func TestConcurrentSales_NegativeStockGuard(t *testing.T) {
	cfg := ledgerapp.DefaultWriterConfig()
	cfg.RejectNegativeStock = true
	s := newLedgerStack(t, cfg)
	tenantID := testutil.TenantA()
	ctx := testutil.ContextWithTimeout(t, time.Minute)

	productID := s.createProduct(t, tenantID, "Olive oil", "5", "0")
	customerID := s.createCustomer(t, tenantID, "Joao")
	s.restock(t, tenantID, s.createSupplier(t, tenantID, "Oils Ltd"), productID, 10)

	errs := testutil.RunConcurrently(8, func(int) error {
		_, err := s.writer.RecordSale(ctx, tenantID, saleOf(customerID, productID, 2))
		return err
	})

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, shared.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 3, rejected)
	assert.True(t, decimal.Zero.Equal(s.stockOf(t, tenantID, productID)))
	assert.Equal(t, int64(5), s.count(t, "ledger_transactions", "tenant_id = ? AND kind = ?", tenantID, ledger.KindSale))
	assert.Equal(t, int64(5), s.count(t, "obligations", "tenant_id = ? AND kind = ?", tenantID, ledger.ObligationReceivable),
		"rejected sales must leave no receivable behind")
}

func TestConcurrentSettlement_ExactlyOnce(t *testing.T) {
	s := newLedgerStack(t, ledgerapp.DefaultWriterConfig())
	tenantID := testutil.TenantA()
	ctx := testutil.ContextWithTimeout(t, time.Minute)

	productID := s.createProduct(t, tenantID, "Coffee", "5", "0")
	customerID := s.createCustomer(t, tenantID, "Ana")
	_, err := s.writer.RecordSale(ctx, tenantID, saleOf(customerID, productID, 1))
	require.NoError(t, err)

	page, err := s.obligations.ListObligations(ctx, tenantID, ledger.ObligationReceivable, ledgerapp.ListFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	receivableID := page.Items[0].ID

	errs := testutil.RunConcurrently(10, func(int) error {
		_, err := s.obligations.Settle(ctx, tenantID, receivableID, ledger.ObligationReceivable)
		return err
	})

	var settled, already int
	for _, err := range errs {
		switch {
		case err == nil:
			settled++
		case errors.Is(err, shared.ErrAlreadySettled):
			already++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, settled)
	assert.Equal(t, 9, already)
	assert.Equal(t, int64(1), s.count(t, "obligations", "id = ? AND status = ? AND settled_at IS NOT NULL",
		receivableID, ledger.StatusReceived))
}

func TestConcurrentSales_SameIdempotencyKey(t *testing.T) {
	s := newLedgerStack(t, ledgerapp.DefaultWriterConfig())
	tenantID := testutil.TenantA()
	ctx := testutil.ContextWithTimeout(t, time.Minute)

	productID := s.createProduct(t, tenantID, "Beans", "5", "0")
	customerID := s.createCustomer(t, tenantID, "Pedro")
	s.restock(t, tenantID, s.createSupplier(t, tenantID, "Farm"), productID, 50)

	results := make([]*ledgerapp.RecordResult, 6)
	errs := testutil.RunConcurrently(len(results), func(i int) error {
		req := saleOf(customerID, productID, 4)
		req.IdempotencyKey = "checkout-42"
		res, err := s.writer.RecordSale(ctx, tenantID, req)
		results[i] = res
		return err
	})

	for i, err := range errs {
		require.NoError(t, err, "request %d", i)
	}
	fresh := 0
	for _, res := range results {
		assert.Equal(t, results[0].TransactionID, res.TransactionID)
		if !res.Replayed {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh)
	assert.True(t, decimal.NewFromInt(46).Equal(s.stockOf(t, tenantID, productID)), "stock moves once")
	assert.Equal(t, int64(1), s.count(t, "obligations", "tenant_id = ?", tenantID))
}

func TestSale_UnknownProductLeavesNoTrace(t *testing.T) {
	s := newLedgerStack(t, ledgerapp.DefaultWriterConfig())
	tenantID := testutil.TenantA()
	ctx := context.Background()

	customerID := s.createCustomer(t, tenantID, "Lia")
	_, err := s.writer.RecordSale(ctx, tenantID, saleOf(customerID, uuid.New(), 1))

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, int64(0), s.count(t, "ledger_transactions", "tenant_id = ?", tenantID))
	assert.Equal(t, int64(0), s.count(t, "obligations", "tenant_id = ?", tenantID))
}

func TestSale_StockGoesNegativeByDefault(t *testing.T) {
	s := newLedgerStack(t, ledgerapp.DefaultWriterConfig())
	tenantID := testutil.TenantA()

	productID := s.createProduct(t, tenantID, fmt.Sprintf("Sugar %d", time.Now().UnixNano()), "5", "0")
	customerID := s.createCustomer(t, tenantID, "Rui")

	_, err := s.writer.RecordSale(context.Background(), tenantID, saleOf(customerID, productID, 3))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-3).Equal(s.stockOf(t, tenantID, productID)))
}
