package ledger

import (
	"time"

	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemRequest is one requested line of a sale or purchase
type ItemRequest struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// RecordSaleRequest represents a sale to record
type RecordSaleRequest struct {
	CustomerID     uuid.UUID
	Items          []ItemRequest
	Discount       decimal.Decimal
	Notes          string
	IdempotencyKey string
	CreatedBy      *uuid.UUID
}

// RecordPurchaseRequest represents a purchase to record
type RecordPurchaseRequest struct {
	SupplierID     uuid.UUID
	Items          []ItemRequest
	Notes          string
	IdempotencyKey string
	CreatedBy      *uuid.UUID
}

// RecordResult identifies the written transaction.
// Replayed is true when an earlier transaction with the same idempotency key was returned.
type RecordResult struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Replayed      bool            `json:"replayed"`
}

// LineItemResponse represents a transaction line in API responses
type LineItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// TransactionResponse represents a transaction with its items
type TransactionResponse struct {
	ID             uuid.UUID          `json:"id"`
	Kind           ledger.Kind        `json:"kind"`
	CounterpartyID uuid.UUID          `json:"counterparty_id"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	Discount       decimal.Decimal    `json:"discount"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	Notes          string             `json:"notes"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
	CreatedBy      *uuid.UUID         `json:"created_by,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	Items          []LineItemResponse `json:"items"`
}

// ToTransactionResponse converts a domain Transaction to a response
func ToTransactionResponse(t *ledger.Transaction) TransactionResponse {
	items := make([]LineItemResponse, len(t.Items))
	for i, item := range t.Items {
		items[i] = LineItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		}
	}
	return TransactionResponse{
		ID:             t.ID,
		Kind:           t.Kind,
		CounterpartyID: t.CounterpartyID,
		Subtotal:       t.Subtotal,
		Discount:       t.Discount,
		TotalAmount:    t.TotalAmount,
		Notes:          t.Notes,
		IdempotencyKey: t.IdempotencyKey,
		CreatedBy:      t.CreatedBy,
		CreatedAt:      t.CreatedAt,
		Items:          items,
	}
}

// TransactionSummaryResponse represents one row of a sales or purchases listing
type TransactionSummaryResponse struct {
	ID               uuid.UUID       `json:"id"`
	Kind             ledger.Kind     `json:"kind"`
	CounterpartyID   uuid.UUID       `json:"counterparty_id"`
	CounterpartyName string          `json:"counterparty_name"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Discount         decimal.Decimal `json:"discount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Notes            string          `json:"notes"`
	ItemCount        int             `json:"item_count"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ObligationResponse represents a payable or receivable
type ObligationResponse struct {
	ID                  uuid.UUID               `json:"id"`
	Kind                ledger.ObligationKind   `json:"kind"`
	CounterpartyID      uuid.UUID               `json:"counterparty_id"`
	CounterpartyName    string                  `json:"counterparty_name,omitempty"`
	SourceTransactionID uuid.UUID               `json:"source_transaction_id"`
	Amount              decimal.Decimal         `json:"amount"`
	DueDate             time.Time               `json:"due_date"`
	Status              ledger.ObligationStatus `json:"status"`
	SettledAt           *time.Time              `json:"settled_at,omitempty"`
	Overdue             bool                    `json:"overdue"`
}

// ToObligationResponse converts a domain Obligation to a response.
// Overdue is judged against now.
func ToObligationResponse(o *ledger.Obligation, counterpartyName string, now time.Time) ObligationResponse {
	return ObligationResponse{
		ID:                  o.ID,
		Kind:                o.Kind,
		CounterpartyID:      o.CounterpartyID,
		CounterpartyName:    counterpartyName,
		SourceTransactionID: o.SourceTransactionID,
		Amount:              o.Amount,
		DueDate:             o.DueDate,
		Status:              o.Status,
		SettledAt:           o.SettledAt,
		Overdue:             o.IsOpen() && o.DueDate.Before(now),
	}
}

// ListFilter narrows transaction and obligation listings
type ListFilter struct {
	Search   string
	Status   string
	Page     int
	PageSize int
}
