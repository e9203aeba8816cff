package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// LowStockSource reports, per tenant, how many active products sit at or
// below their minimum stock
type LowStockSource interface {
	LowStockCounts(ctx context.Context) (map[uuid.UUID]int64, error)
}

// LedgerMetrics exports ledger business events and the low-stock gauge
type LedgerMetrics struct {
	recorded  *Counter
	amount    *Histogram
	failed    *Counter
	settled   *Counter
	lowStock  *Gauge
	logger    *zap.Logger
	stopCh    chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewLedgerMetrics creates the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter, logger *zap.Logger) (*LedgerMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	recorded, err := NewCounter(meter, "ledger_transactions_total",
		"Committed sales and purchases", "{transaction}")
	if err != nil {
		return nil, err
	}
	amount, err := NewHistogram(meter, HistogramOpts{
		Name:        "ledger_transaction_amount",
		Description: "Total amount of committed transactions",
		Unit:        "{currency}",
		Boundaries:  AmountBuckets,
	})
	if err != nil {
		return nil, err
	}
	failed, err := NewCounter(meter, "ledger_transaction_failures_total",
		"Transactions rolled back, by failing stage", "{transaction}")
	if err != nil {
		return nil, err
	}
	settled, err := NewCounter(meter, "ledger_obligations_settled_total",
		"Payables paid and receivables received", "{obligation}")
	if err != nil {
		return nil, err
	}
	lowStock, err := NewGauge(meter, "catalog_low_stock_products",
		"Active products at or below their minimum stock", "{product}")
	if err != nil {
		return nil, err
	}

	return &LedgerMetrics{
		recorded: recorded,
		amount:   amount,
		failed:   failed,
		settled:  settled,
		lowStock: lowStock,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// TransactionRecorded counts a committed transaction and its total
func (m *LedgerMetrics) TransactionRecorded(ctx context.Context, kind ledger.Kind, amount decimal.Decimal) {
	m.recorded.Inc(ctx, AttrKind.String(string(kind)))
	m.amount.Observe(ctx, amount.InexactFloat64(), AttrKind.String(string(kind)))
}

// TransactionFailed counts a rolled back transaction by stage
func (m *LedgerMetrics) TransactionFailed(ctx context.Context, kind ledger.Kind, stage string) {
	m.failed.Inc(ctx, AttrKind.String(string(kind)), AttrStage.String(stage))
}

// ObligationSettled counts a settlement
func (m *LedgerMetrics) ObligationSettled(ctx context.Context, kind ledger.ObligationKind) {
	m.settled.Inc(ctx, AttrKind.String(string(kind)))
}

// StartLowStockCollection samples source every interval until ctx is done or
// Stop is called. Calling it more than once has no effect.
func (m *LedgerMetrics) StartLowStockCollection(ctx context.Context, source LowStockSource, interval time.Duration) {
	m.startOnce.Do(func() {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			m.CollectLowStock(ctx, source)
			for {
				select {
				case <-ticker.C:
					m.CollectLowStock(ctx, source)
				case <-m.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
		m.logger.Info("Started low stock collection", zap.Duration("interval", interval))
	})
}

// CollectLowStock records one sample of the low-stock gauge
func (m *LedgerMetrics) CollectLowStock(ctx context.Context, source LowStockSource) {
	counts, err := source.LowStockCounts(ctx)
	if err != nil {
		m.logger.Warn("Failed to collect low stock counts", zap.Error(err))
		return
	}
	for tenantID, count := range counts {
		m.lowStock.Set(ctx, count, AttrTenantID.String(tenantID.String()))
	}
}

// Stop ends the low-stock collection. Safe to call more than once.
func (m *LedgerMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
	})
}
