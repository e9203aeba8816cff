package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// WriterConfig holds the ledger policies that are configuration rather than code
type WriterConfig struct {
	ReceivableDueDays   int
	PayableDueDays      int
	RejectNegativeStock bool
}

// DefaultWriterConfig returns the standard payment terms with negative stock allowed
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		ReceivableDueDays: 5,
		PayableDueDays:    7,
	}
}

// Writer records sales and purchases. Each call writes the header, line items,
// stock movements and the obligation in one database transaction.
type Writer struct {
	scope        TransactionScope
	products     catalog.ProductRepository
	customers    partner.PartyRepository
	suppliers    partner.PartyRepository
	transactions ledger.TransactionRepository
	cfg          WriterConfig
	logger       *zap.Logger
	metrics      MetricsRecorder
	now          func() time.Time
}

// NewWriter creates a new Writer
func NewWriter(
	scope TransactionScope,
	products catalog.ProductRepository,
	customers partner.PartyRepository,
	suppliers partner.PartyRepository,
	transactions ledger.TransactionRepository,
	cfg WriterConfig,
	logger *zap.Logger,
) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		scope:        scope,
		products:     products,
		customers:    customers,
		suppliers:    suppliers,
		transactions: transactions,
		cfg:          cfg,
		logger:       logger,
		metrics:      noopMetrics{},
		now:          time.Now,
	}
}

// SetMetrics sets the business metrics recorder
func (w *Writer) SetMetrics(m MetricsRecorder) {
	if m != nil {
		w.metrics = m
	}
}

// SetClock replaces the time source
func (w *Writer) SetClock(now func() time.Time) {
	w.now = now
}

// RecordSale records a sale to a customer and opens the matching receivable
func (w *Writer) RecordSale(ctx context.Context, tenantID uuid.UUID, req RecordSaleRequest) (*RecordResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "record_sale")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrCounterpartyID, req.CustomerID.String(),
		telemetry.SpanAttrItemCount, len(req.Items),
	)

	tx, err := ledger.NewSale(tenantID, req.CustomerID, toItemInputs(req.Items), req.Discount, w.now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	result, err := w.record(ctx, tx, w.customers, req.Notes, req.IdempotencyKey, req.CreatedBy, w.cfg.ReceivableDueDays)
	endRecordSpan(span, result, err)
	return result, err
}

// RecordPurchase records a purchase from a supplier and opens the matching payable
func (w *Writer) RecordPurchase(ctx context.Context, tenantID uuid.UUID, req RecordPurchaseRequest) (*RecordResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "record_purchase")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrCounterpartyID, req.SupplierID.String(),
		telemetry.SpanAttrItemCount, len(req.Items),
	)

	tx, err := ledger.NewPurchase(tenantID, req.SupplierID, toItemInputs(req.Items), w.now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	result, err := w.record(ctx, tx, w.suppliers, req.Notes, req.IdempotencyKey, req.CreatedBy, w.cfg.PayableDueDays)
	endRecordSpan(span, result, err)
	return result, err
}

func endRecordSpan(span trace.Span, result *RecordResult, err error) {
	if err != nil {
		telemetry.RecordError(span, err)
		return
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTransactionID, result.TransactionID.String(),
		telemetry.SpanAttrAmount, result.TotalAmount.String(),
		telemetry.SpanAttrReplayed, result.Replayed,
	)
}

func (w *Writer) record(
	ctx context.Context,
	tx *ledger.Transaction,
	parties partner.PartyRepository,
	notes, idempotencyKey string,
	createdBy *uuid.UUID,
	dueInDays int,
) (*RecordResult, error) {
	tx.SetNotes(notes)
	if err := tx.SetIdempotencyKey(idempotencyKey); err != nil {
		return nil, err
	}
	if createdBy != nil {
		tx.SetCreatedBy(*createdBy)
	}

	if tx.IdempotencyKey != "" {
		if result, err := w.replay(ctx, tx); result != nil || err != nil {
			return result, err
		}
	}

	if err := w.checkReferences(ctx, tx, parties); err != nil {
		return nil, err
	}

	obligation := tx.NewObligation(dueInDays)
	guard := catalog.StockGuard{
		RequireActive:  tx.Kind == ledger.KindSale,
		RejectNegative: w.cfg.RejectNegativeStock,
	}
	started := false
	err := w.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		started = true
		if err := repos.TransactionRepo().Create(ctx, tx); err != nil {
			return stageError(ledger.StageHeader, err)
		}
		for _, m := range tx.StockMovements() {
			if err := repos.StockAdjuster().AdjustStock(ctx, tx.TenantID, m.ProductID, m.Delta, guard); err != nil {
				return stageError(ledger.StageStock, err)
			}
		}
		if err := repos.ObligationRepo().Create(ctx, obligation); err != nil {
			return stageError(ledger.StageObligation, err)
		}
		return nil
	})
	if err != nil {
		return w.handleWriteError(ctx, tx, started, err)
	}

	w.metrics.TransactionRecorded(ctx, tx.Kind, tx.TotalAmount)
	w.logger.Info("Ledger transaction recorded",
		zap.String("tenant_id", tx.TenantID.String()),
		zap.String("kind", string(tx.Kind)),
		zap.String("transaction_id", tx.ID.String()),
		zap.String("obligation_id", obligation.ID.String()),
		zap.String("total_amount", tx.TotalAmount.String()),
		zap.Int("items", len(tx.Items)))

	return &RecordResult{TransactionID: tx.ID, TotalAmount: tx.TotalAmount}, nil
}

// replay returns the earlier transaction recorded under the same key, if any
func (w *Writer) replay(ctx context.Context, tx *ledger.Transaction) (*RecordResult, error) {
	existing, err := w.transactions.FindByIdempotencyKey(ctx, tx.TenantID, tx.Kind, tx.IdempotencyKey)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	w.logger.Info("Idempotent replay of ledger transaction",
		zap.String("tenant_id", tx.TenantID.String()),
		zap.String("kind", string(tx.Kind)),
		zap.String("transaction_id", existing.ID.String()))
	return &RecordResult{TransactionID: existing.ID, TotalAmount: existing.TotalAmount, Replayed: true}, nil
}

// checkReferences verifies the counterparty and every product exist in the tenant.
// Sales additionally require active products.
func (w *Writer) checkReferences(ctx context.Context, tx *ledger.Transaction, parties partner.PartyRepository) error {
	exists, err := parties.ExistsForTenant(ctx, tx.TenantID, tx.CounterpartyID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.ErrNotFound.WithMessage(parties.Kind().Label() + " not found")
	}

	ids := tx.ProductIDs()
	products, err := w.products.FindByIDsForTenant(ctx, tx.TenantID, ids)
	if err != nil {
		return err
	}
	found := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		found[products[i].ID] = &products[i]
	}
	for _, id := range ids {
		p, ok := found[id]
		if !ok {
			return shared.ErrNotFound.WithMessage("Product not found: " + id.String())
		}
		if tx.Kind == ledger.KindSale && !p.IsActive {
			return shared.ErrInvalidInput.WithMessage("Product is inactive: " + p.Name)
		}
	}
	return nil
}

func (w *Writer) handleWriteError(ctx context.Context, tx *ledger.Transaction, started bool, err error) (*RecordResult, error) {
	var writeErr *ledger.WriteFailedError
	if !errors.As(err, &writeErr) && !isGuardError(err) {
		// begin failed before the header, or commit failed after the obligation
		stage := ledger.StageHeader
		if started {
			stage = ledger.StageObligation
		}
		writeErr = ledger.NewWriteFailedError(stage, err)
		err = writeErr
	}

	if writeErr != nil && writeErr.Stage == ledger.StageHeader && tx.IdempotencyKey != "" &&
		errors.Is(writeErr.Err, shared.ErrAlreadyExists) {
		// a concurrent request with the same key won the unique index
		if result, replayErr := w.replay(ctx, tx); result != nil {
			return result, nil
		} else if replayErr != nil {
			err = replayErr
		}
	}

	stage := "guard"
	if writeErr != nil {
		stage = string(writeErr.Stage)
	}
	w.metrics.TransactionFailed(ctx, tx.Kind, stage)
	telemetry.SetAttributes(trace.SpanFromContext(ctx), telemetry.SpanAttrStage, stage)
	w.logger.Warn("Ledger transaction rolled back",
		zap.String("tenant_id", tx.TenantID.String()),
		zap.String("kind", string(tx.Kind)),
		zap.String("stage", stage),
		zap.Bool("retryable", shared.IsRetryable(err)),
		zap.Error(err))
	return nil, err
}

// stageError wraps a storage failure with the stage it happened in. Guard
// refusals and rejected values reach the caller unchanged: retrying the same
// request cannot succeed.
func stageError(stage ledger.WriteStage, err error) error {
	if isGuardError(err) {
		return err
	}
	return ledger.NewWriteFailedError(stage, err)
}

func isGuardError(err error) bool {
	return errors.Is(err, shared.ErrInsufficientStock) || errors.Is(err, shared.ErrInvalidInput)
}

func toItemInputs(items []ItemRequest) []ledger.ItemInput {
	inputs := make([]ledger.ItemInput, len(items))
	for i, item := range items {
		inputs[i] = ledger.ItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return inputs
}
