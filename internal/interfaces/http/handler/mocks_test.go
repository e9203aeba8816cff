package handler

import (
	"context"
	"time"

	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	ledgerapp "github.com/erp/backoffice/internal/application/ledger"
	partnerapp "github.com/erp/backoffice/internal/application/partner"
	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/report"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductService implements ProductService for testing
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, tenantID uuid.UUID, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *MockProductService) List(ctx context.Context, tenantID uuid.UUID, filter catalogapp.ProductListFilter) ([]catalogapp.ProductResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]catalogapp.ProductResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, tenantID, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

// MockPartyService implements PartyService for testing
type MockPartyService struct {
	mock.Mock
	kind partner.Kind
}

func (m *MockPartyService) Kind() partner.Kind {
	return m.kind
}

func (m *MockPartyService) Create(ctx context.Context, tenantID uuid.UUID, req partnerapp.PartyRequest) (*partnerapp.PartyResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.PartyResponse), args.Error(1)
}

func (m *MockPartyService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*partnerapp.PartyResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.PartyResponse), args.Error(1)
}

func (m *MockPartyService) List(ctx context.Context, tenantID uuid.UUID, filter partnerapp.PartyListFilter) ([]partnerapp.PartyResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]partnerapp.PartyResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockPartyService) Update(ctx context.Context, tenantID, id uuid.UUID, req partnerapp.PartyRequest) (*partnerapp.PartyResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.PartyResponse), args.Error(1)
}

// MockLedgerWriter implements LedgerWriter for testing
type MockLedgerWriter struct {
	mock.Mock
}

func (m *MockLedgerWriter) RecordSale(ctx context.Context, tenantID uuid.UUID, req ledgerapp.RecordSaleRequest) (*ledgerapp.RecordResult, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.RecordResult), args.Error(1)
}

func (m *MockLedgerWriter) RecordPurchase(ctx context.Context, tenantID uuid.UUID, req ledgerapp.RecordPurchaseRequest) (*ledgerapp.RecordResult, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.RecordResult), args.Error(1)
}

// MockLedgerQueries implements LedgerQueries for testing
type MockLedgerQueries struct {
	mock.Mock
}

func (m *MockLedgerQueries) GetTransaction(ctx context.Context, tenantID, id uuid.UUID, kind ledger.Kind) (*ledgerapp.TransactionResponse, error) {
	args := m.Called(ctx, tenantID, id, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.TransactionResponse), args.Error(1)
}

func (m *MockLedgerQueries) ListSales(ctx context.Context, tenantID uuid.UUID, filter ledgerapp.ListFilter) (shared.Paginated[ledgerapp.TransactionSummaryResponse], error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(shared.Paginated[ledgerapp.TransactionSummaryResponse]), args.Error(1)
}

func (m *MockLedgerQueries) ListPurchases(ctx context.Context, tenantID uuid.UUID, filter ledgerapp.ListFilter) (shared.Paginated[ledgerapp.TransactionSummaryResponse], error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(shared.Paginated[ledgerapp.TransactionSummaryResponse]), args.Error(1)
}

// MockObligationService implements ObligationService for testing
type MockObligationService struct {
	mock.Mock
}

func (m *MockObligationService) Settle(ctx context.Context, tenantID, id uuid.UUID, kind ledger.ObligationKind) (*ledgerapp.ObligationResponse, error) {
	args := m.Called(ctx, tenantID, id, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.ObligationResponse), args.Error(1)
}

func (m *MockObligationService) ListOpenDueOn(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]ledgerapp.ObligationResponse, error) {
	args := m.Called(ctx, tenantID, day)
	return args.Get(0).([]ledgerapp.ObligationResponse), args.Error(1)
}

func (m *MockObligationService) ListObligations(ctx context.Context, tenantID uuid.UUID, kind ledger.ObligationKind, filter ledgerapp.ListFilter) (shared.Paginated[ledgerapp.ObligationResponse], error) {
	args := m.Called(ctx, tenantID, kind, filter)
	return args.Get(0).(shared.Paginated[ledgerapp.ObligationResponse]), args.Error(1)
}

// MockReportService implements ReportService for testing
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Dashboard(ctx context.Context, tenantID uuid.UUID) (*report.Dashboard, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Dashboard), args.Error(1)
}

func (m *MockReportService) StockSummary(ctx context.Context, tenantID uuid.UUID) (*report.StockSummary, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.StockSummary), args.Error(1)
}

func (m *MockReportService) MonthlyTotals(ctx context.Context, tenantID uuid.UUID, month time.Time) (*report.MonthlyTotals, error) {
	args := m.Called(ctx, tenantID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.MonthlyTotals), args.Error(1)
}

func (m *MockReportService) UpcomingObligations(ctx context.Context, tenantID uuid.UUID, horizonDays int) (*report.UpcomingObligations, error) {
	args := m.Called(ctx, tenantID, horizonDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.UpcomingObligations), args.Error(1)
}

func (m *MockReportService) TopProducts(ctx context.Context, tenantID uuid.UUID, limit int) ([]report.ProductRanking, error) {
	args := m.Called(ctx, tenantID, limit)
	return args.Get(0).([]report.ProductRanking), args.Error(1)
}

func (m *MockReportService) TopCustomers(ctx context.Context, tenantID uuid.UUID, limit int) ([]report.CustomerRanking, error) {
	args := m.Called(ctx, tenantID, limit)
	return args.Get(0).([]report.CustomerRanking), args.Error(1)
}

var (
	_ ProductService    = (*MockProductService)(nil)
	_ PartyService      = (*MockPartyService)(nil)
	_ LedgerWriter      = (*MockLedgerWriter)(nil)
	_ LedgerQueries     = (*MockLedgerQueries)(nil)
	_ ObligationService = (*MockObligationService)(nil)
	_ ReportService     = (*MockReportService)(nil)
)
