package persistence

import (
	"context"
	"testing"
	"time"

	appledger "github.com/erp/backoffice/internal/application/ledger"
	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/report"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestWriter(db *gorm.DB, cfg appledger.WriterConfig) *appledger.Writer {
	w := appledger.NewWriter(
		NewGormTransactionScope(db),
		NewGormProductRepository(db),
		NewGormCustomerRepository(db),
		NewGormSupplierRepository(db),
		NewGormTransactionRepository(db),
		cfg,
		nil,
	)
	w.SetClock(func() time.Time { return testNow })
	return w
}

func TestLedgerWrite_CommitsAllStages(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tenantID := uuid.New()
	customer := seedParty(t, db, tenantID, partner.KindCustomer, "Maria")
	coffee := seedProduct(t, db, tenantID, "Coffee", "10")
	sugar := seedProduct(t, db, tenantID, "Sugar", "1")

	writer := newTestWriter(db, appledger.DefaultWriterConfig())
	result, err := writer.RecordSale(ctx, tenantID, appledger.RecordSaleRequest{
		CustomerID: customer.ID,
		Items: []appledger.ItemRequest{
			{ProductID: coffee.ID, Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(5)},
			{ProductID: sugar.ID, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(2)},
		},
		Discount: decimal.NewFromInt(4),
		Notes:    "walk-in",
	})
	require.NoError(t, err)
	assert.True(t, result.TotalAmount.Equal(decimal.NewFromInt(15)))

	tx, err := NewGormTransactionRepository(db).FindByIDForTenant(ctx, tenantID, result.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, ledger.KindSale, tx.Kind)
	require.Len(t, tx.Items, 2)
	assert.Equal(t, coffee.ID, tx.Items[0].ProductID, "items keep entry order")
	assert.Equal(t, "walk-in", tx.Notes)

	assert.True(t, stockOf(t, db, coffee.ID).Equal(decimal.NewFromInt(7)))
	assert.True(t, stockOf(t, db, sugar.ID).Equal(decimal.NewFromInt(-1)), "negative stock is allowed by default")

	due, err := NewGormObligationRepository(db).FindOpenDueBy(ctx, tenantID, testNow.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, ledger.ObligationReceivable, due[0].Kind)
	assert.Equal(t, result.TransactionID, due[0].SourceTransactionID)
	assert.True(t, due[0].Amount.Equal(decimal.NewFromInt(15)))
	assert.True(t, due[0].DueDate.Equal(testNow.AddDate(0, 0, 5)))
}

func TestLedgerWrite_FailedStageLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tenantID := uuid.New()
	supplier := seedParty(t, db, tenantID, partner.KindSupplier, "Acme")
	flour := seedProduct(t, db, tenantID, "Flour", "4")

	require.NoError(t, db.Migrator().DropTable(&models.ObligationModel{}))

	writer := newTestWriter(db, appledger.DefaultWriterConfig())
	_, err := writer.RecordPurchase(ctx, tenantID, appledger.RecordPurchaseRequest{
		SupplierID: supplier.ID,
		Items:      []appledger.ItemRequest{{ProductID: flour.ID, Quantity: decimal.NewFromInt(6), UnitPrice: decimal.NewFromInt(3)}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrObligationWriteFailed)

	assert.Zero(t, countRows(t, db, "ledger_transactions"))
	assert.Zero(t, countRows(t, db, "ledger_line_items"))
	assert.True(t, stockOf(t, db, flour.ID).Equal(decimal.NewFromInt(4)), "stock movement rolled back")
}

func TestLedgerWrite_GuardRollsBackEarlierMovements(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tenantID := uuid.New()
	customer := seedParty(t, db, tenantID, partner.KindCustomer, "Maria")
	plenty := seedProduct(t, db, tenantID, "Plenty", "100")
	scarce := seedProduct(t, db, tenantID, "Scarce", "1")

	writer := newTestWriter(db, appledger.WriterConfig{ReceivableDueDays: 5, PayableDueDays: 7, RejectNegativeStock: true})
	_, err := writer.RecordSale(ctx, tenantID, appledger.RecordSaleRequest{
		CustomerID: customer.ID,
		Items: []appledger.ItemRequest{
			{ProductID: plenty.ID, Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(1)},
			{ProductID: scarce.ID, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(1)},
		},
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.True(t, stockOf(t, db, plenty.ID).Equal(decimal.NewFromInt(100)))
	assert.True(t, stockOf(t, db, scarce.ID).Equal(decimal.NewFromInt(1)))
	assert.Zero(t, countRows(t, db, "obligations"))
}

func TestLedgerWrite_IdempotencyKey(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tenantID := uuid.New()
	customer := seedParty(t, db, tenantID, partner.KindCustomer, "Maria")
	tea := seedProduct(t, db, tenantID, "Tea", "10")

	writer := newTestWriter(db, appledger.DefaultWriterConfig())
	req := appledger.RecordSaleRequest{
		CustomerID:     customer.ID,
		Items:          []appledger.ItemRequest{{ProductID: tea.ID, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(3)}},
		IdempotencyKey: "pos-42",
	}

	first, err := writer.RecordSale(ctx, tenantID, req)
	require.NoError(t, err)
	second, err := writer.RecordSale(ctx, tenantID, req)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.True(t, stockOf(t, db, tea.ID).Equal(decimal.NewFromInt(9)))
	assert.Equal(t, int64(1), countRows(t, db, "obligations"))

	t.Run("transactions without a key never collide", func(t *testing.T) {
		req.IdempotencyKey = ""
		_, err := writer.RecordSale(ctx, tenantID, req)
		require.NoError(t, err)
		_, err = writer.RecordSale(ctx, tenantID, req)
		require.NoError(t, err)
		assert.Equal(t, int64(3), countRows(t, db, "ledger_transactions"))
	})

	t.Run("duplicate key is classified as already exists", func(t *testing.T) {
		dup, err := ledger.NewSale(tenantID, customer.ID, []ledger.ItemInput{
			{ProductID: tea.ID, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(3)},
		}, decimal.Zero, testNow)
		require.NoError(t, err)
		require.NoError(t, dup.SetIdempotencyKey("pos-42"))

		err = NewGormTransactionRepository(db).Create(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestGormTransactionRepository_FindSummariesForTenant(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tenantID := uuid.New()
	maria := seedParty(t, db, tenantID, partner.KindCustomer, "Maria")
	ana := seedParty(t, db, tenantID, partner.KindCustomer, "Ana")
	bread := seedProduct(t, db, tenantID, "Bread", "50")
	repo := NewGormTransactionRepository(db)

	record := func(customerID uuid.UUID, at time.Time, qty int64) *ledger.Transaction {
		sale, err := ledger.NewSale(tenantID, customerID, []ledger.ItemInput{
			{ProductID: bread.ID, Quantity: decimal.NewFromInt(qty), UnitPrice: decimal.NewFromInt(2)},
			{ProductID: bread.ID, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(2)},
		}, decimal.Zero, at)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, sale))
		return sale
	}
	older := record(maria.ID, testNow, 1)
	newer := record(ana.ID, testNow.Add(time.Hour), 2)
	orphan := record(uuid.New(), testNow.Add(2*time.Hour), 3)

	summaries, total, err := repo.FindSummariesForTenant(ctx, tenantID, ledger.KindSale, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, summaries, 3)
	assert.Equal(t, orphan.ID, summaries[0].ID)
	assert.Equal(t, report.UnknownCustomerName, summaries[0].CounterpartyName)
	assert.Equal(t, newer.ID, summaries[1].ID)
	assert.Equal(t, "Ana", summaries[1].CounterpartyName)
	assert.Equal(t, older.ID, summaries[2].ID)
	assert.Equal(t, 2, summaries[2].ItemCount)

	summaries, total, err = repo.FindSummariesForTenant(ctx, tenantID, ledger.KindSale, shared.Filter{Search: "mar"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, older.ID, summaries[0].ID)

	_, total, err = repo.FindSummariesForTenant(ctx, tenantID, ledger.KindPurchase, shared.Filter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGormObligationRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tenantID := uuid.New()
	acme := seedParty(t, db, tenantID, partner.KindSupplier, "Acme")
	repo := NewGormObligationRepository(db)

	newPayable := func(due time.Time) *ledger.Obligation {
		o := &ledger.Obligation{
			BaseEntity:          shared.NewBaseEntityAt(testNow),
			TenantID:            tenantID,
			Kind:                ledger.ObligationPayable,
			CounterpartyID:      acme.ID,
			SourceTransactionID: uuid.New(),
			Amount:              decimal.NewFromInt(30),
			DueDate:             due,
			Status:              ledger.StatusOpen,
		}
		require.NoError(t, repo.Create(ctx, o))
		return o
	}
	late := newPayable(testNow.AddDate(0, 0, 10))
	soon := newPayable(testNow.AddDate(0, 0, 2))

	t.Run("one obligation per transaction", func(t *testing.T) {
		dup := *soon
		dup.ID = uuid.New()
		assert.ErrorIs(t, repo.Create(ctx, &dup), shared.ErrAlreadyExists)
	})

	t.Run("open due by cutoff, earliest first", func(t *testing.T) {
		due, err := repo.FindOpenDueBy(ctx, tenantID, testNow.AddDate(0, 0, 10))
		require.NoError(t, err)
		require.Len(t, due, 2)
		assert.Equal(t, soon.ID, due[0].ID)
		assert.Equal(t, late.ID, due[1].ID)

		due, err = repo.FindOpenDueBy(ctx, tenantID, testNow.AddDate(0, 0, 9))
		require.NoError(t, err)
		assert.Len(t, due, 1)
	})

	t.Run("settles exactly once", func(t *testing.T) {
		settledAt := testNow.Add(time.Hour)
		ok, err := repo.MarkSettled(ctx, tenantID, soon.ID, ledger.ObligationPayable, settledAt)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.MarkSettled(ctx, tenantID, soon.ID, ledger.ObligationPayable, settledAt.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, ok)

		stored, err := repo.FindByIDForTenant(ctx, tenantID, soon.ID, ledger.ObligationPayable)
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusPaid, stored.Status)
		require.NotNil(t, stored.SettledAt)
		assert.True(t, stored.SettledAt.Equal(settledAt))

		ok, err = repo.MarkSettled(ctx, tenantID, late.ID, ledger.ObligationReceivable, settledAt)
		require.NoError(t, err)
		assert.False(t, ok, "kind must match")
	})

	t.Run("summaries filter by status", func(t *testing.T) {
		open := ledger.StatusOpen
		summaries, total, err := repo.FindSummariesForTenant(ctx, tenantID, ledger.ObligationPayable,
			ledger.ObligationFilter{Status: &open})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, summaries, 1)
		assert.Equal(t, late.ID, summaries[0].ID)
		assert.Equal(t, "Acme", summaries[0].CounterpartyName)

		_, total, err = repo.FindSummariesForTenant(ctx, tenantID, ledger.ObligationPayable, ledger.ObligationFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})
}
