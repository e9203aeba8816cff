package ledger

import (
	"context"

	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// MetricsRecorder receives ledger business events for metrics export
type MetricsRecorder interface {
	TransactionRecorded(ctx context.Context, kind ledger.Kind, amount decimal.Decimal)
	TransactionFailed(ctx context.Context, kind ledger.Kind, stage string)
	ObligationSettled(ctx context.Context, kind ledger.ObligationKind)
}

type noopMetrics struct{}

func (noopMetrics) TransactionRecorded(context.Context, ledger.Kind, decimal.Decimal) {}
func (noopMetrics) TransactionFailed(context.Context, ledger.Kind, string)            {}
func (noopMetrics) ObligationSettled(context.Context, ledger.ObligationKind)          {}
