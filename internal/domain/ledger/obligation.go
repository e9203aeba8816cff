package ledger

import (
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationKind distinguishes money owed to the tenant from money it owes
type ObligationKind string

const (
	ObligationReceivable ObligationKind = "receivable"
	ObligationPayable    ObligationKind = "payable"
)

// IsValid reports whether the kind is known
func (k ObligationKind) IsValid() bool {
	return k == ObligationReceivable || k == ObligationPayable
}

// SettledStatus returns the terminal status for this kind
func (k ObligationKind) SettledStatus() ObligationStatus {
	if k == ObligationPayable {
		return StatusPaid
	}
	return StatusReceived
}

// TransactionKind returns the kind of transaction that spawns this obligation
func (k ObligationKind) TransactionKind() Kind {
	if k == ObligationPayable {
		return KindPurchase
	}
	return KindSale
}

// ObligationStatus is the lifecycle state of an obligation
type ObligationStatus string

const (
	StatusOpen     ObligationStatus = "open"
	StatusPaid     ObligationStatus = "paid"
	StatusReceived ObligationStatus = "received"
)

// IsSettled reports whether the status is terminal
func (s ObligationStatus) IsSettled() bool {
	return s == StatusPaid || s == StatusReceived
}

// Obligation is a payable or receivable spawned by exactly one transaction.
// Status moves from open to settled once and never back.
type Obligation struct {
	shared.BaseEntity
	TenantID            uuid.UUID
	Kind                ObligationKind
	CounterpartyID      uuid.UUID
	SourceTransactionID uuid.UUID
	Amount              decimal.Decimal
	DueDate             time.Time
	Status              ObligationStatus
	SettledAt           *time.Time
}

// IsOpen reports whether the obligation still awaits settlement
func (o *Obligation) IsOpen() bool {
	return o.Status == StatusOpen
}

// Settle marks the obligation as paid or received
func (o *Obligation) Settle(now time.Time) error {
	if !o.IsOpen() {
		return ErrObligationAlreadySettled
	}
	settledAt := now.UTC()
	o.Status = o.Kind.SettledStatus()
	o.SettledAt = &settledAt
	o.Touch(now)
	return nil
}

// ErrObligationAlreadySettled is returned when settling a settled obligation
var ErrObligationAlreadySettled = shared.ErrAlreadySettled
