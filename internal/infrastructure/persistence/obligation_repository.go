package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/erp/backoffice/internal/domain/report"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormObligationRepository implements ledger.ObligationRepository using GORM
type GormObligationRepository struct {
	db *gorm.DB
}

// NewGormObligationRepository creates a new GormObligationRepository
func NewGormObligationRepository(db *gorm.DB) *GormObligationRepository {
	return &GormObligationRepository{db: db}
}

// Create inserts a new obligation. A second obligation for the same
// transaction violates the unique source index.
func (r *GormObligationRepository) Create(ctx context.Context, o *ledger.Obligation) error {
	return classifyError(r.db.WithContext(ctx).Create(models.ObligationModelFromDomain(o)).Error)
}

// FindByIDForTenant loads an obligation of the given kind
func (r *GormObligationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID, kind ledger.ObligationKind) (*ledger.Obligation, error) {
	var model models.ObligationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ? AND kind = ?", tenantID, id, kind).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Obligation not found")
		}
		return nil, classifyError(err)
	}
	return model.ToDomain(), nil
}

// MarkSettled flips an open obligation to its settled status. The status
// predicate makes concurrent settlements race on the row: exactly one wins.
func (r *GormObligationRepository) MarkSettled(ctx context.Context, tenantID, id uuid.UUID, kind ledger.ObligationKind, settledAt time.Time) (bool, error) {
	settledAt = settledAt.UTC()
	result := r.db.WithContext(ctx).
		Model(&models.ObligationModel{}).
		Where("tenant_id = ? AND id = ? AND kind = ? AND status = ?", tenantID, id, kind, ledger.StatusOpen).
		Updates(map[string]interface{}{
			"status":     kind.SettledStatus(),
			"settled_at": settledAt,
			"updated_at": settledAt,
		})
	if result.Error != nil {
		return false, classifyError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

// FindOpenDueBy lists open obligations due on or before cutoff, earliest first
func (r *GormObligationRepository) FindOpenDueBy(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) ([]ledger.Obligation, error) {
	var rows []models.ObligationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND due_date <= ?", tenantID, ledger.StatusOpen, cutoff.UTC()).
		Order("due_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, classifyError(err)
	}

	obligations := make([]ledger.Obligation, len(rows))
	for i := range rows {
		obligations[i] = *rows[i].ToDomain()
	}
	return obligations, nil
}

type obligationSummaryRow struct {
	ID                  uuid.UUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
	TenantID            uuid.UUID
	Kind                ledger.ObligationKind
	CounterpartyID      uuid.UUID
	CounterpartyName    *string
	SourceTransactionID uuid.UUID
	Amount              decimal.Decimal
	DueDate             time.Time
	Status              ledger.ObligationStatus
	SettledAt           *time.Time
}

// FindSummariesForTenant lists obligations of one kind by due date with the
// counterparty name joined in
func (r *GormObligationRepository) FindSummariesForTenant(ctx context.Context, tenantID uuid.UUID, kind ledger.ObligationKind, filter ledger.ObligationFilter) ([]ledger.ObligationSummary, int64, error) {
	filter.Filter = filter.Normalized()
	txKind := kind.TransactionKind()
	partyTable := counterpartyTable(txKind)
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).
			Table("obligations AS o").
			Joins("LEFT JOIN "+partyTable+" AS p ON p.id = o.counterparty_id AND p.tenant_id = o.tenant_id").
			Where("o.tenant_id = ? AND o.kind = ?", tenantID, kind)
		if filter.Status != nil {
			query = query.Where("o.status = ?", *filter.Status)
		}
		if filter.Search != "" {
			query = query.Where("LOWER(p.name) LIKE ?", searchPattern(filter.Search))
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, classifyError(err)
	}

	var rows []obligationSummaryRow
	if err := scoped().
		Select(`o.id, o.created_at, o.updated_at, o.tenant_id, o.kind, o.counterparty_id,
			p.name AS counterparty_name, o.source_transaction_id, o.amount, o.due_date,
			o.status, o.settled_at`).
		Order("o.due_date ASC, o.id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Scan(&rows).Error; err != nil {
		return nil, 0, classifyError(err)
	}

	summaries := make([]ledger.ObligationSummary, len(rows))
	for i, row := range rows {
		o := ledger.Obligation{
			BaseEntity: shared.BaseEntity{
				ID:        row.ID,
				CreatedAt: row.CreatedAt.UTC(),
				UpdatedAt: row.UpdatedAt.UTC(),
			},
			TenantID:            row.TenantID,
			Kind:                row.Kind,
			CounterpartyID:      row.CounterpartyID,
			SourceTransactionID: row.SourceTransactionID,
			Amount:              row.Amount,
			DueDate:             row.DueDate.UTC(),
			Status:              row.Status,
		}
		if row.SettledAt != nil {
			settledAt := row.SettledAt.UTC()
			o.SettledAt = &settledAt
		}
		summaries[i] = ledger.ObligationSummary{
			Obligation:       o,
			CounterpartyName: derefOr(row.CounterpartyName, report.UnknownCounterpartyName(txKind)),
		}
	}
	return summaries, total, nil
}

// Ensure GormObligationRepository implements ObligationRepository
var _ ledger.ObligationRepository = (*GormObligationRepository)(nil)
