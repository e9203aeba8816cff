package ledger

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind identifies the direction of a ledger transaction
type Kind string

const (
	KindSale     Kind = "sale"
	KindPurchase Kind = "purchase"
)

// IsValid reports whether the kind is known
func (k Kind) IsValid() bool {
	return k == KindSale || k == KindPurchase
}

// ObligationKind returns the kind of obligation a transaction of this kind spawns
func (k Kind) ObligationKind() ObligationKind {
	if k == KindPurchase {
		return ObligationPayable
	}
	return ObligationReceivable
}

// stockSign is -1 for sales (stock leaves) and +1 for purchases (stock arrives)
func (k Kind) stockSign() decimal.Decimal {
	if k == KindSale {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// MaxIdempotencyKeyLength bounds client-supplied idempotency keys
const MaxIdempotencyKeyLength = 100

// ItemInput is a requested line of a sale or purchase
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// LineItem is a committed line of a transaction
type LineItem struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	ProductID     uuid.UUID
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	LineTotal     decimal.Decimal
}

// Transaction is a sale or purchase header with its line items.
// It is written once and never updated.
type Transaction struct {
	shared.BaseEntity
	TenantID       uuid.UUID
	Kind           Kind
	CounterpartyID uuid.UUID
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	TotalAmount    decimal.Decimal
	Notes          string
	IdempotencyKey string
	CreatedBy      *uuid.UUID
	Items          []LineItem
}

// StockMovement is the net stock change a transaction applies to one product
type StockMovement struct {
	ProductID uuid.UUID
	Delta     decimal.Decimal
}

// NewSale builds a sale to a customer. Discount is subtracted from the subtotal.
func NewSale(tenantID, customerID uuid.UUID, items []ItemInput, discount decimal.Decimal, now time.Time) (*Transaction, error) {
	return newTransaction(tenantID, KindSale, customerID, items, discount, now)
}

// NewPurchase builds a purchase from a supplier
func NewPurchase(tenantID, supplierID uuid.UUID, items []ItemInput, now time.Time) (*Transaction, error) {
	return newTransaction(tenantID, KindPurchase, supplierID, items, decimal.Zero, now)
}

func newTransaction(tenantID uuid.UUID, kind Kind, counterpartyID uuid.UUID, items []ItemInput, discount decimal.Decimal, now time.Time) (*Transaction, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrNoTenantBound
	}
	if counterpartyID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Counterparty is required")
	}
	if len(items) == 0 {
		return nil, shared.ErrInvalidInput.WithMessage("At least one item is required")
	}
	if discount.IsNegative() {
		return nil, shared.ErrInvalidInput.WithMessage("Discount cannot be negative")
	}
	if err := shared.CheckStoredDecimal("Discount", discount); err != nil {
		return nil, err
	}

	t := &Transaction{
		BaseEntity:     shared.NewBaseEntityAt(now),
		TenantID:       tenantID,
		Kind:           kind,
		CounterpartyID: counterpartyID,
		Discount:       discount,
		Items:          make([]LineItem, 0, len(items)),
	}

	subtotal := decimal.Zero
	for i, in := range items {
		if in.ProductID == uuid.Nil {
			return nil, shared.ErrInvalidInput.WithMessage(itemMessage(i, "product is required"))
		}
		if !in.Quantity.IsPositive() {
			return nil, shared.ErrInvalidInput.WithMessage(itemMessage(i, "quantity must be positive"))
		}
		if in.UnitPrice.IsNegative() {
			return nil, shared.ErrInvalidInput.WithMessage(itemMessage(i, "unit price cannot be negative"))
		}
		if err := shared.CheckStoredDecimal(itemMessage(i, "quantity"), in.Quantity); err != nil {
			return nil, err
		}
		if err := shared.CheckStoredDecimal(itemMessage(i, "unit price"), in.UnitPrice); err != nil {
			return nil, err
		}
		lineTotal := shared.RoundStored(in.Quantity.Mul(in.UnitPrice))
		if err := shared.CheckStoredDecimal(itemMessage(i, "line total"), lineTotal); err != nil {
			return nil, err
		}
		t.Items = append(t.Items, LineItem{
			ID:            uuid.New(),
			TransactionID: t.ID,
			ProductID:     in.ProductID,
			Quantity:      in.Quantity,
			UnitPrice:     in.UnitPrice,
			LineTotal:     lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	if err := shared.CheckStoredDecimal("Subtotal", subtotal); err != nil {
		return nil, err
	}
	t.Subtotal = subtotal
	t.TotalAmount = subtotal.Sub(discount)
	if t.TotalAmount.IsNegative() {
		return nil, shared.ErrInvalidInput.WithMessage("Discount cannot exceed the subtotal")
	}
	return t, nil
}

// SetNotes attaches a free-text note
func (t *Transaction) SetNotes(notes string) {
	t.Notes = strings.TrimSpace(notes)
}

// SetIdempotencyKey records the client key used to deduplicate retries
func (t *Transaction) SetIdempotencyKey(key string) error {
	key = strings.TrimSpace(key)
	if len(key) > MaxIdempotencyKeyLength {
		return shared.ErrInvalidInput.WithMessage("Idempotency key is too long")
	}
	t.IdempotencyKey = key
	return nil
}

// SetCreatedBy records the user who recorded the transaction
func (t *Transaction) SetCreatedBy(userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}
	t.CreatedBy = &userID
}

// ProductIDs returns the distinct products referenced by the items, sorted
func (t *Transaction) ProductIDs() []uuid.UUID {
	movements := t.StockMovements()
	ids := make([]uuid.UUID, len(movements))
	for i, m := range movements {
		ids[i] = m.ProductID
	}
	return ids
}

// StockMovements returns one net movement per product, ordered by product ID
// so concurrent writers lock product rows in the same order.
func (t *Transaction) StockMovements() []StockMovement {
	sign := t.Kind.stockSign()
	byProduct := make(map[uuid.UUID]decimal.Decimal, len(t.Items))
	for _, item := range t.Items {
		byProduct[item.ProductID] = byProduct[item.ProductID].Add(item.Quantity.Mul(sign))
	}

	movements := make([]StockMovement, 0, len(byProduct))
	for productID, delta := range byProduct {
		movements = append(movements, StockMovement{ProductID: productID, Delta: delta})
	}
	sort.Slice(movements, func(i, j int) bool {
		return movements[i].ProductID.String() < movements[j].ProductID.String()
	})
	return movements
}

// NewObligation spawns the open payable or receivable for this transaction,
// due the given number of days after the transaction was recorded.
func (t *Transaction) NewObligation(dueInDays int) *Obligation {
	return &Obligation{
		BaseEntity:          shared.NewBaseEntityAt(t.CreatedAt),
		TenantID:            t.TenantID,
		Kind:                t.Kind.ObligationKind(),
		CounterpartyID:      t.CounterpartyID,
		SourceTransactionID: t.ID,
		Amount:              t.TotalAmount,
		DueDate:             t.CreatedAt.AddDate(0, 0, dueInDays),
		Status:              StatusOpen,
	}
}

func itemMessage(index int, msg string) string {
	return "Item " + strconv.Itoa(index+1) + ": " + msg
}
