package ledger

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// QueryService reads recorded sales and purchases
type QueryService struct {
	transactions ledger.TransactionRepository
}

// NewQueryService creates a new QueryService
func NewQueryService(transactions ledger.TransactionRepository) *QueryService {
	return &QueryService{transactions: transactions}
}

// GetTransaction returns a transaction with its line items.
// A transaction of a different kind than requested is reported as not found.
func (s *QueryService) GetTransaction(ctx context.Context, tenantID, id uuid.UUID, kind ledger.Kind) (*TransactionResponse, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrNoTenantBound
	}
	tx, err := s.transactions.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if tx.Kind != kind {
		return nil, shared.ErrNotFound.WithMessage(kindLabel(kind) + " not found")
	}
	response := ToTransactionResponse(tx)
	return &response, nil
}

// ListSales lists sales newest first with the customer name
func (s *QueryService) ListSales(ctx context.Context, tenantID uuid.UUID, filter ListFilter) (shared.Paginated[TransactionSummaryResponse], error) {
	return s.list(ctx, tenantID, ledger.KindSale, filter)
}

// ListPurchases lists purchases newest first with the supplier name
func (s *QueryService) ListPurchases(ctx context.Context, tenantID uuid.UUID, filter ListFilter) (shared.Paginated[TransactionSummaryResponse], error) {
	return s.list(ctx, tenantID, ledger.KindPurchase, filter)
}

func (s *QueryService) list(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, filter ListFilter) (shared.Paginated[TransactionSummaryResponse], error) {
	if tenantID == uuid.Nil {
		return shared.Paginated[TransactionSummaryResponse]{}, shared.ErrNoTenantBound
	}
	f := shared.Filter{Page: filter.Page, PageSize: filter.PageSize, Search: filter.Search}.Normalized()

	summaries, total, err := s.transactions.FindSummariesForTenant(ctx, tenantID, kind, f)
	if err != nil {
		return shared.Paginated[TransactionSummaryResponse]{}, err
	}

	items := make([]TransactionSummaryResponse, len(summaries))
	for i, summary := range summaries {
		items[i] = TransactionSummaryResponse{
			ID:               summary.ID,
			Kind:             summary.Kind,
			CounterpartyID:   summary.CounterpartyID,
			CounterpartyName: summary.CounterpartyName,
			Subtotal:         summary.Subtotal,
			Discount:         summary.Discount,
			TotalAmount:      summary.TotalAmount,
			Notes:            summary.Notes,
			ItemCount:        summary.ItemCount,
			CreatedAt:        summary.CreatedAt.UTC(),
		}
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

func kindLabel(kind ledger.Kind) string {
	if kind == ledger.KindPurchase {
		return "Purchase"
	}
	return "Sale"
}

// utcDay truncates a timestamp to midnight UTC
func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
