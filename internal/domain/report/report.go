// Package report holds the read models derived from the ledger and catalog.
// Nothing here is persisted; every value is computed on demand.
package report

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Placeholder names for rows whose product or counterparty no longer resolves
const (
	UnknownProductName  = "unknown product"
	UnknownCustomerName = "unknown customer"
	UnknownSupplierName = "unknown supplier"
)

// UnknownCounterpartyName returns the placeholder for a missing customer or
// supplier, depending on the transaction kind.
func UnknownCounterpartyName(kind ledger.Kind) string {
	if kind == ledger.KindPurchase {
		return UnknownSupplierName
	}
	return UnknownCustomerName
}

// LowStockProduct is an active product at or below its minimum stock
type LowStockProduct struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	StockQty  decimal.Decimal `json:"stock_qty"`
	MinStock  decimal.Decimal `json:"min_stock"`
}

// StockSummary aggregates stock over active products
type StockSummary struct {
	ActiveProducts   int               `json:"active_products"`
	TotalStockQty    decimal.Decimal   `json:"total_stock_qty"`
	LowStockProducts []LowStockProduct `json:"low_stock_products"`
}

// MonthlyTotals sums the transactions recorded in one calendar month (UTC)
type MonthlyTotals struct {
	Month          string          `json:"month"`
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	SalesTotal     decimal.Decimal `json:"sales_total"`
	SalesCount     int64           `json:"sales_count"`
	PurchasesTotal decimal.Decimal `json:"purchases_total"`
	PurchasesCount int64           `json:"purchases_count"`
}

// UpcomingObligations sums open obligations due within a horizon
type UpcomingObligations struct {
	HorizonDays      int             `json:"horizon_days"`
	Cutoff           time.Time       `json:"cutoff"`
	PayablesDue      decimal.Decimal `json:"payables_due"`
	PayablesCount    int             `json:"payables_count"`
	ReceivablesDue   decimal.Decimal `json:"receivables_due"`
	ReceivablesCount int             `json:"receivables_count"`
}

// Add accumulates one open obligation
func (u *UpcomingObligations) Add(o ledger.Obligation) {
	switch o.Kind {
	case ledger.ObligationPayable:
		u.PayablesDue = u.PayablesDue.Add(o.Amount)
		u.PayablesCount++
	case ledger.ObligationReceivable:
		u.ReceivablesDue = u.ReceivablesDue.Add(o.Amount)
		u.ReceivablesCount++
	}
}

// ProductRanking is one row of the top products report
type ProductRanking struct {
	Rank         int             `json:"rank"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	TotalQtySold decimal.Decimal `json:"total_qty_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Margin       decimal.Decimal `json:"margin"`
}

// CustomerRanking is one row of the top customers report
type CustomerRanking struct {
	Rank          int             `json:"rank"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	SalesCount    int64           `json:"sales_count"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// Dashboard combines the headline metrics shown on the landing page
type Dashboard struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Stock       StockSummary        `json:"stock"`
	Month       MonthlyTotals       `json:"month"`
	Obligations UpcomingObligations `json:"obligations"`
}

// ProductSales is the raw per-product accumulation over sale line items.
// Name and CostPrice are nil when the product no longer resolves.
type ProductSales struct {
	ProductID    uuid.UUID
	ProductName  *string
	CostPrice    *decimal.Decimal
	TotalQtySold decimal.Decimal
	TotalRevenue decimal.Decimal
}

// CustomerSales is the raw per-customer accumulation over sale headers
type CustomerSales struct {
	CustomerID   uuid.UUID
	CustomerName *string
	TotalSpent   decimal.Decimal
	SalesCount   int64
}

// Repository runs the grouped scans the aggregation engine needs
type Repository interface {
	// SumTransactions totals transactions of one kind created in [from, to)
	SumTransactions(ctx context.Context, tenantID uuid.UUID, kind ledger.Kind, from, to time.Time) (decimal.Decimal, int64, error)

	// TopProductSales groups sale line items by product, ordered by quantity
	// descending then product ID, truncated to limit
	TopProductSales(ctx context.Context, tenantID uuid.UUID, limit int) ([]ProductSales, error)

	// TopCustomerSales groups sale headers by customer, ordered by total spent
	// descending then customer ID, truncated to limit
	TopCustomerSales(ctx context.Context, tenantID uuid.UUID, limit int) ([]CustomerSales, error)
}
