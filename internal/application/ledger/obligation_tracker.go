package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObligationTracker settles and lists payables and receivables
type ObligationTracker struct {
	obligations ledger.ObligationRepository
	logger      *zap.Logger
	metrics     MetricsRecorder
	now         func() time.Time
}

// NewObligationTracker creates a new ObligationTracker
func NewObligationTracker(obligations ledger.ObligationRepository, logger *zap.Logger) *ObligationTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObligationTracker{
		obligations: obligations,
		logger:      logger,
		metrics:     noopMetrics{},
		now:         time.Now,
	}
}

// SetMetrics sets the business metrics recorder
func (t *ObligationTracker) SetMetrics(m MetricsRecorder) {
	if m != nil {
		t.metrics = m
	}
}

// SetClock replaces the time source
func (t *ObligationTracker) SetClock(now func() time.Time) {
	t.now = now
}

// Settle marks an open obligation as received (receivable) or paid (payable).
// Of two concurrent calls exactly one succeeds; the other gets ErrAlreadySettled.
func (t *ObligationTracker) Settle(ctx context.Context, tenantID, id uuid.UUID, kind ledger.ObligationKind) (*ObligationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "settle_"+string(kind))
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrObligationID, id.String(),
	)

	resp, err := t.settle(ctx, tenantID, id, kind)
	telemetry.RecordError(span, err)
	return resp, err
}

func (t *ObligationTracker) settle(ctx context.Context, tenantID, id uuid.UUID, kind ledger.ObligationKind) (*ObligationResponse, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrNoTenantBound
	}
	if !kind.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("Unknown obligation kind")
	}

	now := t.now().UTC()
	settled, err := t.obligations.MarkSettled(ctx, tenantID, id, kind, now)
	if err != nil {
		return nil, err
	}

	current, err := t.obligations.FindByIDForTenant(ctx, tenantID, id, kind)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.ErrNotFound.WithMessage(obligationLabel(kind) + " not found")
	}
	if err != nil {
		return nil, err
	}
	if !settled {
		return nil, ledger.ErrObligationAlreadySettled
	}

	t.metrics.ObligationSettled(ctx, kind)
	t.logger.Info("Obligation settled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("obligation_id", id.String()),
		zap.String("kind", string(kind)),
		zap.String("amount", current.Amount.String()))

	response := ToObligationResponse(current, "", now)
	return &response, nil
}

// ListOpenDueBy lists open obligations due on or before cutoff, earliest first
func (t *ObligationTracker) ListOpenDueBy(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) ([]ObligationResponse, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrNoTenantBound
	}
	obligations, err := t.obligations.FindOpenDueBy(ctx, tenantID, cutoff.UTC())
	if err != nil {
		return nil, err
	}
	now := t.now().UTC()
	responses := make([]ObligationResponse, len(obligations))
	for i := range obligations {
		responses[i] = ToObligationResponse(&obligations[i], "", now)
	}
	return responses, nil
}

// ListOpenDueOn lists open obligations due by the end of the given calendar day (UTC)
func (t *ObligationTracker) ListOpenDueOn(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]ObligationResponse, error) {
	endOfDay := utcDay(day).Add(24*time.Hour - time.Nanosecond)
	return t.ListOpenDueBy(ctx, tenantID, endOfDay)
}

// ListObligations lists obligations of one kind with the counterparty name, earliest due first
func (t *ObligationTracker) ListObligations(ctx context.Context, tenantID uuid.UUID, kind ledger.ObligationKind, filter ListFilter) (shared.Paginated[ObligationResponse], error) {
	if tenantID == uuid.Nil {
		return shared.Paginated[ObligationResponse]{}, shared.ErrNoTenantBound
	}
	f := ledger.ObligationFilter{
		Filter: shared.Filter{Page: filter.Page, PageSize: filter.PageSize, Search: filter.Search}.Normalized(),
	}
	if filter.Status != "" {
		status := ledger.ObligationStatus(filter.Status)
		if status != ledger.StatusOpen && status != kind.SettledStatus() {
			return shared.Paginated[ObligationResponse]{}, shared.ErrInvalidInput.WithMessage("Unknown status: " + filter.Status)
		}
		f.Status = &status
	}

	summaries, total, err := t.obligations.FindSummariesForTenant(ctx, tenantID, kind, f)
	if err != nil {
		return shared.Paginated[ObligationResponse]{}, err
	}
	now := t.now().UTC()
	items := make([]ObligationResponse, len(summaries))
	for i := range summaries {
		items[i] = ToObligationResponse(&summaries[i].Obligation, summaries[i].CounterpartyName, now)
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

func obligationLabel(kind ledger.ObligationKind) string {
	if kind == ledger.ObligationPayable {
		return "Payable"
	}
	return "Receivable"
}
