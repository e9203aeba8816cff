package ledger

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionSummary is a transaction header joined with its counterparty name
type TransactionSummary struct {
	ID               uuid.UUID
	Kind             Kind
	CounterpartyID   uuid.UUID
	CounterpartyName string
	Subtotal         decimal.Decimal
	Discount         decimal.Decimal
	TotalAmount      decimal.Decimal
	Notes            string
	ItemCount        int
	CreatedAt        time.Time
}

// ObligationSummary is an obligation joined with its counterparty name
type ObligationSummary struct {
	Obligation
	CounterpartyName string
}

// ObligationFilter narrows an obligation listing
type ObligationFilter struct {
	shared.Filter
	Status *ObligationStatus
}

// TransactionRepository persists ledger transactions and their line items
type TransactionRepository interface {
	// Create inserts the header and every line item
	Create(ctx context.Context, t *Transaction) error

	// FindByIDForTenant loads a transaction with its items
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Transaction, error)

	// FindByIdempotencyKey loads the transaction recorded under a client key
	FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, kind Kind, key string) (*Transaction, error)

	// FindSummariesForTenant lists transactions of one kind, newest first
	FindSummariesForTenant(ctx context.Context, tenantID uuid.UUID, kind Kind, filter shared.Filter) ([]TransactionSummary, int64, error)
}

// ObligationRepository persists payables and receivables
type ObligationRepository interface {
	// Create inserts a new obligation
	Create(ctx context.Context, o *Obligation) error

	// FindByIDForTenant loads an obligation of the given kind
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID, kind ObligationKind) (*Obligation, error)

	// MarkSettled moves an open obligation to its settled status in one
	// conditional update. It reports false when no open row matched.
	MarkSettled(ctx context.Context, tenantID, id uuid.UUID, kind ObligationKind, settledAt time.Time) (bool, error)

	// FindOpenDueBy lists open obligations due on or before cutoff, earliest first
	FindOpenDueBy(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) ([]Obligation, error)

	// FindSummariesForTenant lists obligations of one kind ordered by due date
	FindSummariesForTenant(ctx context.Context, tenantID uuid.UUID, kind ObligationKind, filter ObligationFilter) ([]ObligationSummary, int64, error)
}
