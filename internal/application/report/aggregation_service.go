package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/erp/backoffice/internal/domain/report"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultRankingLimit is used when a ranking is requested without a limit
	DefaultRankingLimit = 10
	// MaxRankingLimit caps the rows of a ranking
	MaxRankingLimit = 100
	// DashboardHorizonDays is the obligation horizon shown on the dashboard
	DashboardHorizonDays = 7
)

// ActiveProductLister lists a tenant's active products
type ActiveProductLister interface {
	FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]catalog.Product, error)
}

// OpenObligationFinder lists open obligations due by a cutoff
type OpenObligationFinder interface {
	FindOpenDueBy(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) ([]ledger.Obligation, error)
}

// AggregationService computes read-only summaries over the catalog and the ledger.
// Every figure is derived on demand from committed rows.
type AggregationService struct {
	products    ActiveProductLister
	obligations OpenObligationFinder
	reports     report.Repository
	logger      *zap.Logger
	now         func() time.Time
}

// NewAggregationService creates a new AggregationService
func NewAggregationService(
	products ActiveProductLister,
	obligations OpenObligationFinder,
	reports report.Repository,
	logger *zap.Logger,
) *AggregationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AggregationService{
		products:    products,
		obligations: obligations,
		reports:     reports,
		logger:      logger,
		now:         time.Now,
	}
}

// SetClock replaces the reference time used for the current month and horizons
func (s *AggregationService) SetClock(now func() time.Time) {
	s.now = now
}

// StockSummary totals stock over active products and lists those at or below minimum
func (s *AggregationService) StockSummary(ctx context.Context, tenantID uuid.UUID) (*report.StockSummary, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrNoTenantBound
	}
	products, err := s.products.FindActiveForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	summary := &report.StockSummary{
		ActiveProducts:   len(products),
		TotalStockQty:    decimal.Zero,
		LowStockProducts: []report.LowStockProduct{},
	}
	for i := range products {
		p := &products[i]
		summary.TotalStockQty = summary.TotalStockQty.Add(p.StockQty)
		if p.IsLowStock() {
			summary.LowStockProducts = append(summary.LowStockProducts, report.LowStockProduct{
				ProductID: p.ID,
				Name:      p.Name,
				Unit:      p.Unit,
				StockQty:  p.StockQty,
				MinStock:  p.MinStock,
			})
		}
	}
	sort.SliceStable(summary.LowStockProducts, func(i, j int) bool {
		return summary.LowStockProducts[i].Name < summary.LowStockProducts[j].Name
	})
	return summary, nil
}

// MonthlyTotals sums sales and purchases recorded in the calendar month (UTC)
// containing month
func (s *AggregationService) MonthlyTotals(ctx context.Context, tenantID uuid.UUID, month time.Time) (*report.MonthlyTotals, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrNoTenantBound
	}
	start, end := MonthBounds(month)

	salesTotal, salesCount, err := s.reports.SumTransactions(ctx, tenantID, ledger.KindSale, start, end)
	if err != nil {
		return nil, err
	}
	purchasesTotal, purchasesCount, err := s.reports.SumTransactions(ctx, tenantID, ledger.KindPurchase, start, end)
	if err != nil {
		return nil, err
	}

	return &report.MonthlyTotals{
		Month:          start.Format("2006-01"),
		PeriodStart:    start,
		PeriodEnd:      end,
		SalesTotal:     salesTotal,
		SalesCount:     salesCount,
		PurchasesTotal: purchasesTotal,
		PurchasesCount: purchasesCount,
	}, nil
}

// UpcomingObligations sums open payables and receivables due within horizonDays of now.
// Overdue obligations are included.
func (s *AggregationService) UpcomingObligations(ctx context.Context, tenantID uuid.UUID, horizonDays int) (*report.UpcomingObligations, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrNoTenantBound
	}
	if horizonDays < 0 {
		return nil, shared.ErrInvalidInput.WithMessage("Horizon cannot be negative")
	}

	cutoff := s.now().UTC().AddDate(0, 0, horizonDays)
	open, err := s.obligations.FindOpenDueBy(ctx, tenantID, cutoff)
	if err != nil {
		return nil, err
	}

	result := &report.UpcomingObligations{
		HorizonDays:    horizonDays,
		Cutoff:         cutoff,
		PayablesDue:    decimal.Zero,
		ReceivablesDue: decimal.Zero,
	}
	for _, o := range open {
		result.Add(o)
	}
	return result, nil
}

// TopProducts ranks products by quantity sold, with revenue and margin over cost
func (s *AggregationService) TopProducts(ctx context.Context, tenantID uuid.UUID, limit int) ([]report.ProductRanking, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrNoTenantBound
	}
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}

	sales, err := s.reports.TopProductSales(ctx, tenantID, limit)
	if err != nil {
		return nil, err
	}

	rankings := make([]report.ProductRanking, len(sales))
	for i, row := range sales {
		name := report.UnknownProductName
		if row.ProductName != nil {
			name = *row.ProductName
		}
		cost := decimal.Zero
		if row.CostPrice != nil {
			cost = *row.CostPrice
		}
		rankings[i] = report.ProductRanking{
			Rank:         i + 1,
			ProductID:    row.ProductID,
			ProductName:  name,
			TotalQtySold: row.TotalQtySold,
			TotalRevenue: row.TotalRevenue,
			Margin:       row.TotalRevenue.Sub(cost.Mul(row.TotalQtySold)),
		}
	}
	return rankings, nil
}

// TopCustomers ranks customers by total spent, with the average ticket
func (s *AggregationService) TopCustomers(ctx context.Context, tenantID uuid.UUID, limit int) ([]report.CustomerRanking, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrNoTenantBound
	}
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}

	sales, err := s.reports.TopCustomerSales(ctx, tenantID, limit)
	if err != nil {
		return nil, err
	}

	rankings := make([]report.CustomerRanking, len(sales))
	for i, row := range sales {
		name := report.UnknownCustomerName
		if row.CustomerName != nil {
			name = *row.CustomerName
		}
		average := decimal.Zero
		if row.SalesCount > 0 {
			average = row.TotalSpent.Div(decimal.NewFromInt(row.SalesCount)).Round(2)
		}
		rankings[i] = report.CustomerRanking{
			Rank:          i + 1,
			CustomerID:    row.CustomerID,
			CustomerName:  name,
			TotalSpent:    row.TotalSpent,
			SalesCount:    row.SalesCount,
			AverageTicket: average,
		}
	}
	return rankings, nil
}

// Dashboard combines the stock summary, the current month and the next week of obligations
func (s *AggregationService) Dashboard(ctx context.Context, tenantID uuid.UUID) (*report.Dashboard, error) {
	now := s.now().UTC()

	stock, err := s.StockSummary(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	month, err := s.MonthlyTotals(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}
	obligations, err := s.UpcomingObligations(ctx, tenantID, DashboardHorizonDays)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Dashboard computed",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("low_stock", len(stock.LowStockProducts)),
		zap.Int("open_obligations", obligations.PayablesCount+obligations.ReceivablesCount))

	return &report.Dashboard{
		GeneratedAt: now,
		Stock:       *stock,
		Month:       *month,
		Obligations: *obligations,
	}, nil
}

// MonthBounds returns [first day of the month 00:00, first day of the next month) in UTC
func MonthBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// ParseMonth parses a YYYY-MM month
func ParseMonth(value string) (time.Time, error) {
	month, err := time.Parse("2006-01", value)
	if err != nil {
		return time.Time{}, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Invalid month %q, expected YYYY-MM", value))
	}
	return month, nil
}

func normalizeLimit(limit int) (int, error) {
	if limit == 0 {
		return DefaultRankingLimit, nil
	}
	if limit < 1 || limit > MaxRankingLimit {
		return 0, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Limit must be between 1 and %d", MaxRankingLimit))
	}
	return limit, nil
}
