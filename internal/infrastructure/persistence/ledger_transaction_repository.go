package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/report"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTransactionRepository implements ledger.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create inserts the header followed by its line items
func (r *GormTransactionRepository) Create(ctx context.Context, t *ledger.Transaction) error {
	model := models.LedgerTransactionModelFromDomain(t)
	db := r.db.WithContext(ctx)

	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return classifyError(err)
	}
	if len(model.Items) == 0 {
		return nil
	}
	return classifyError(db.Create(&model.Items).Error)
}

// FindByIDForTenant loads a transaction with its items in entry order
func (r *GormTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.LedgerTransactionModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Transaction not found")
		}
		return nil, classifyError(err)
	}
	return model.ToDomain(), nil
}

// FindByIdempotencyKey loads the transaction recorded under a client key
func (r *GormTransactionRepository) FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, key string) (*ledger.Transaction, error) {
	var model models.LedgerTransactionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND kind = ? AND idempotency_key = ?", tenantID, kind, key).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Transaction not found")
		}
		return nil, classifyError(err)
	}
	return model.ToDomain(), nil
}

type transactionSummaryRow struct {
	ID               uuid.UUID
	Kind             ledger.Kind
	CounterpartyID   uuid.UUID
	CounterpartyName *string
	Subtotal         decimal.Decimal
	Discount         decimal.Decimal
	TotalAmount      decimal.Decimal
	Notes            string
	ItemCount        int64
	CreatedAt        time.Time
}

// FindSummariesForTenant lists transactions of one kind newest first, with the
// counterparty name joined in. Search matches the counterparty name.
func (r *GormTransactionRepository) FindSummariesForTenant(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, filter shared.Filter) ([]ledger.TransactionSummary, int64, error) {
	filter = filter.Normalized()
	partyTable := counterpartyTable(kind)
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).
			Table("ledger_transactions AS t").
			Joins("LEFT JOIN "+partyTable+" AS p ON p.id = t.counterparty_id AND p.tenant_id = t.tenant_id").
			Where("t.tenant_id = ? AND t.kind = ?", tenantID, kind)
		if filter.Search != "" {
			query = query.Where("LOWER(p.name) LIKE ?", searchPattern(filter.Search))
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, classifyError(err)
	}

	var rows []transactionSummaryRow
	if err := scoped().
		Select(`t.id, t.kind, t.counterparty_id, p.name AS counterparty_name,
			t.subtotal, t.discount, t.total_amount, t.notes, t.created_at,
			(SELECT COUNT(*) FROM ledger_line_items li WHERE li.transaction_id = t.id) AS item_count`).
		Order("t.created_at DESC, t.id DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Scan(&rows).Error; err != nil {
		return nil, 0, classifyError(err)
	}

	summaries := make([]ledger.TransactionSummary, len(rows))
	for i, row := range rows {
		summaries[i] = ledger.TransactionSummary{
			ID:               row.ID,
			Kind:             row.Kind,
			CounterpartyID:   row.CounterpartyID,
			CounterpartyName: derefOr(row.CounterpartyName, report.UnknownCounterpartyName(kind)),
			Subtotal:         row.Subtotal,
			Discount:         row.Discount,
			TotalAmount:      row.TotalAmount,
			Notes:            row.Notes,
			ItemCount:        int(row.ItemCount),
			CreatedAt:        row.CreatedAt.UTC(),
		}
	}
	return summaries, total, nil
}

// counterpartyTable returns the party table a transaction kind references
func counterpartyTable(kind ledger.Kind) string {
	if kind == ledger.KindPurchase {
		return models.PartyTable(partner.KindSupplier)
	}
	return models.PartyTable(partner.KindCustomer)
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

// Ensure GormTransactionRepository implements TransactionRepository
var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
