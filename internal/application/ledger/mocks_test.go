package ledger

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, t *ledger.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, key string) (*ledger.Transaction, error) {
	args := m.Called(ctx, tenantID, kind, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindSummariesForTenant(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, filter shared.Filter) ([]ledger.TransactionSummary, int64, error) {
	args := m.Called(ctx, tenantID, kind, filter)
	return args.Get(0).([]ledger.TransactionSummary), args.Get(1).(int64), args.Error(2)
}

// MockObligationRepository is a mock implementation of ObligationRepository
type MockObligationRepository struct {
	mock.Mock
}

func (m *MockObligationRepository) Create(ctx context.Context, o *ledger.Obligation) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockObligationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID, kind ledger.ObligationKind) (*ledger.Obligation, error) {
	args := m.Called(ctx, tenantID, id, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Obligation), args.Error(1)
}

func (m *MockObligationRepository) MarkSettled(ctx context.Context, tenantID, id uuid.UUID, kind ledger.ObligationKind, settledAt time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, id, kind, settledAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockObligationRepository) FindOpenDueBy(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) ([]ledger.Obligation, error) {
	args := m.Called(ctx, tenantID, cutoff)
	return args.Get(0).([]ledger.Obligation), args.Error(1)
}

func (m *MockObligationRepository) FindSummariesForTenant(ctx context.Context, tenantID uuid.UUID, kind ledger.ObligationKind, filter ledger.ObligationFilter) ([]ledger.ObligationSummary, int64, error) {
	args := m.Called(ctx, tenantID, kind, filter)
	return args.Get(0).([]ledger.ObligationSummary), args.Get(1).(int64), args.Error(2)
}

// MockStockAdjuster is a mock implementation of StockAdjuster
type MockStockAdjuster struct {
	mock.Mock
}

func (m *MockStockAdjuster) AdjustStock(ctx context.Context, tenantID, productID uuid.UUID, delta decimal.Decimal, guard catalog.StockGuard) error {
	return m.Called(ctx, tenantID, productID, delta, guard).Error(0)
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) ExistsByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, barcode, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) UpdateDetails(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

// MockPartyRepository is a mock implementation of PartyRepository
type MockPartyRepository struct {
	mock.Mock
	kind partner.Kind
}

func (m *MockPartyRepository) Kind() partner.Kind {
	return m.kind
}

func (m *MockPartyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Party, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Party), args.Error(1)
}

func (m *MockPartyRepository) ExistsForTenant(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPartyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Party, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]partner.Party), args.Get(1).(int64), args.Error(2)
}

func (m *MockPartyRepository) Create(ctx context.Context, party *partner.Party) error {
	return m.Called(ctx, party).Error(0)
}

func (m *MockPartyRepository) Update(ctx context.Context, party *partner.Party) error {
	return m.Called(ctx, party).Error(0)
}

// MockMetricsRecorder records ledger business events
type MockMetricsRecorder struct {
	mock.Mock
}

func (m *MockMetricsRecorder) TransactionRecorded(ctx context.Context, kind ledger.Kind, amount decimal.Decimal) {
	m.Called(ctx, kind, amount)
}

func (m *MockMetricsRecorder) TransactionFailed(ctx context.Context, kind ledger.Kind, stage string) {
	m.Called(ctx, kind, stage)
}

func (m *MockMetricsRecorder) ObligationSettled(ctx context.Context, kind ledger.ObligationKind) {
	m.Called(ctx, kind)
}
