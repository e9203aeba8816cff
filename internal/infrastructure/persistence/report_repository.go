package persistence

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/erp/backoffice/internal/domain/report"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReportRepository implements report.Repository using GORM
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// SumTransactions totals transactions of one kind created in [from, to)
func (r *GormReportRepository) SumTransactions(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, from, to time.Time) (decimal.Decimal, int64, error) {
	var result struct {
		Total decimal.Decimal
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Table("ledger_transactions").
		Select("COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS count").
		Where("tenant_id = ? AND kind = ?", tenantID, kind).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Scan(&result).Error; err != nil {
		return decimal.Zero, 0, classifyError(err)
	}
	return result.Total, result.Count, nil
}

// TopProductSales groups sale line items by product
func (r *GormReportRepository) TopProductSales(ctx context.Context, tenantID uuid.UUID, limit int) ([]report.ProductSales, error) {
	var rows []struct {
		ProductID    uuid.UUID
		ProductName  *string
		CostPrice    decimal.NullDecimal
		TotalQtySold decimal.Decimal
		TotalRevenue decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Table("ledger_line_items AS li").
		Select(`li.product_id,
			MAX(p.name) AS product_name,
			MAX(p.cost_price) AS cost_price,
			SUM(li.quantity) AS total_qty_sold,
			SUM(li.line_total) AS total_revenue`).
		Joins("JOIN ledger_transactions AS t ON t.id = li.transaction_id").
		Joins("LEFT JOIN products AS p ON p.id = li.product_id AND p.tenant_id = t.tenant_id").
		Where("t.tenant_id = ? AND t.kind = ?", tenantID, ledger.KindSale).
		Group("li.product_id").
		Order("total_qty_sold DESC, li.product_id ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, classifyError(err)
	}

	sales := make([]report.ProductSales, len(rows))
	for i, row := range rows {
		sales[i] = report.ProductSales{
			ProductID:    row.ProductID,
			ProductName:  row.ProductName,
			TotalQtySold: row.TotalQtySold,
			TotalRevenue: row.TotalRevenue,
		}
		if row.CostPrice.Valid {
			cost := row.CostPrice.Decimal
			sales[i].CostPrice = &cost
		}
	}
	return sales, nil
}

// TopCustomerSales groups sale headers by customer
func (r *GormReportRepository) TopCustomerSales(ctx context.Context, tenantID uuid.UUID, limit int) ([]report.CustomerSales, error) {
	var rows []struct {
		CustomerID   uuid.UUID
		CustomerName *string
		TotalSpent   decimal.Decimal
		SalesCount   int64
	}
	if err := r.db.WithContext(ctx).
		Table("ledger_transactions AS t").
		Select(`t.counterparty_id AS customer_id,
			MAX(c.name) AS customer_name,
			SUM(t.total_amount) AS total_spent,
			COUNT(*) AS sales_count`).
		Joins("LEFT JOIN customers AS c ON c.id = t.counterparty_id AND c.tenant_id = t.tenant_id").
		Where("t.tenant_id = ? AND t.kind = ?", tenantID, ledger.KindSale).
		Group("t.counterparty_id").
		Order("total_spent DESC, t.counterparty_id ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, classifyError(err)
	}

	sales := make([]report.CustomerSales, len(rows))
	for i, row := range rows {
		sales[i] = report.CustomerSales{
			CustomerID:   row.CustomerID,
			CustomerName: row.CustomerName,
			TotalSpent:   row.TotalSpent,
			SalesCount:   row.SalesCount,
		}
	}
	return sales, nil
}

// Ensure GormReportRepository implements report.Repository
var _ report.Repository = (*GormReportRepository)(nil)
