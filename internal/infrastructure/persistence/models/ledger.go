package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerTransactionModel is the persistence model for a sale or purchase header.
// Rows are written once and never updated.
type LedgerTransactionModel struct {
	BaseModel
	TenantID       uuid.UUID             `gorm:"type:uuid;not null;index:idx_ledger_tx_tenant_created,priority:1;uniqueIndex:idx_ledger_tx_idempotency,priority:1"`
	Kind           ledger.Kind           `gorm:"type:varchar(20);not null;uniqueIndex:idx_ledger_tx_idempotency,priority:2"`
	CounterpartyID uuid.UUID             `gorm:"type:uuid;not null;index"`
	Subtotal       decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Discount       decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount    decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Notes          string                `gorm:"type:text"`
	IdempotencyKey *string               `gorm:"type:varchar(100);uniqueIndex:idx_ledger_tx_idempotency,priority:3"`
	CreatedBy      *uuid.UUID            `gorm:"type:uuid"`
	Items          []LedgerLineItemModel `gorm:"foreignKey:TransactionID;references:ID"`
}

// TableName returns the table name for GORM
func (LedgerTransactionModel) TableName() string {
	return "ledger_transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *LedgerTransactionModel) ToDomain() *ledger.Transaction {
	t := &ledger.Transaction{
		BaseEntity:     m.BaseModel.ToDomain(),
		TenantID:       m.TenantID,
		Kind:           m.Kind,
		CounterpartyID: m.CounterpartyID,
		Subtotal:       m.Subtotal,
		Discount:       m.Discount,
		TotalAmount:    m.TotalAmount,
		Notes:          m.Notes,
		IdempotencyKey: derefString(m.IdempotencyKey),
		CreatedBy:      m.CreatedBy,
		Items:          make([]ledger.LineItem, len(m.Items)),
	}
	for i := range m.Items {
		t.Items[i] = m.Items[i].ToDomain()
	}
	return t
}

// FromDomain populates the persistence model from a domain Transaction.
func (m *LedgerTransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.TenantID = t.TenantID
	m.Kind = t.Kind
	m.CounterpartyID = t.CounterpartyID
	m.Subtotal = t.Subtotal
	m.Discount = t.Discount
	m.TotalAmount = t.TotalAmount
	m.Notes = t.Notes
	m.IdempotencyKey = nullableString(t.IdempotencyKey)
	m.CreatedBy = t.CreatedBy
	m.Items = make([]LedgerLineItemModel, len(t.Items))
	for i, item := range t.Items {
		m.Items[i].FromDomain(item, t.CreatedAt)
		m.Items[i].LineNo = i + 1
	}
}

// LedgerTransactionModelFromDomain creates a new persistence model from a domain Transaction.
func LedgerTransactionModelFromDomain(t *ledger.Transaction) *LedgerTransactionModel {
	m := &LedgerTransactionModel{}
	m.FromDomain(t)
	return m
}

// LedgerLineItemModel is the persistence model for a transaction line.
type LedgerLineItemModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo        int             `gorm:"not null;default:0"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerLineItemModel) TableName() string {
	return "ledger_line_items"
}

// ToDomain converts the persistence model to a domain LineItem.
func (m *LedgerLineItemModel) ToDomain() ledger.LineItem {
	return ledger.LineItem{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		ProductID:     m.ProductID,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		LineTotal:     m.LineTotal,
	}
}

// FromDomain populates the persistence model from a domain LineItem.
func (m *LedgerLineItemModel) FromDomain(i ledger.LineItem, createdAt time.Time) {
	m.ID = i.ID
	m.TransactionID = i.TransactionID
	m.ProductID = i.ProductID
	m.Quantity = i.Quantity
	m.UnitPrice = i.UnitPrice
	m.LineTotal = i.LineTotal
	m.CreatedAt = createdAt.UTC()
}

// ObligationModel is the persistence model for payables and receivables.
type ObligationModel struct {
	BaseModel
	TenantID            uuid.UUID               `gorm:"type:uuid;not null;index:idx_obligation_tenant_status_due,priority:1"`
	Kind                ledger.ObligationKind   `gorm:"type:varchar(20);not null"`
	CounterpartyID      uuid.UUID               `gorm:"type:uuid;not null;index"`
	SourceTransactionID uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex"`
	Amount              decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	DueDate             time.Time               `gorm:"not null;index:idx_obligation_tenant_status_due,priority:3"`
	Status              ledger.ObligationStatus `gorm:"type:varchar(20);not null;default:'open';index:idx_obligation_tenant_status_due,priority:2"`
	SettledAt           *time.Time
}

// TableName returns the table name for GORM
func (ObligationModel) TableName() string {
	return "obligations"
}

// ToDomain converts the persistence model to a domain Obligation.
func (m *ObligationModel) ToDomain() *ledger.Obligation {
	o := &ledger.Obligation{
		BaseEntity:          m.BaseModel.ToDomain(),
		TenantID:            m.TenantID,
		Kind:                m.Kind,
		CounterpartyID:      m.CounterpartyID,
		SourceTransactionID: m.SourceTransactionID,
		Amount:              m.Amount,
		DueDate:             m.DueDate.UTC(),
		Status:              m.Status,
	}
	if m.SettledAt != nil {
		settledAt := m.SettledAt.UTC()
		o.SettledAt = &settledAt
	}
	return o
}

// FromDomain populates the persistence model from a domain Obligation.
func (m *ObligationModel) FromDomain(o *ledger.Obligation) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.TenantID = o.TenantID
	m.Kind = o.Kind
	m.CounterpartyID = o.CounterpartyID
	m.SourceTransactionID = o.SourceTransactionID
	m.Amount = o.Amount
	m.DueDate = o.DueDate.UTC()
	m.Status = o.Status
	m.SettledAt = o.SettledAt
}

// ObligationModelFromDomain creates a new persistence model from a domain Obligation.
func ObligationModelFromDomain(o *ledger.Obligation) *ObligationModel {
	m := &ObligationModel{}
	m.FromDomain(o)
	return m
}
