package handler

import (
	"context"
	"time"

	reportapp "github.com/erp/backoffice/internal/application/report"
	"github.com/erp/backoffice/internal/domain/report"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportService computes the read-only summaries
type ReportService interface {
	Dashboard(ctx context.Context, tenantID uuid.UUID) (*report.Dashboard, error)
	StockSummary(ctx context.Context, tenantID uuid.UUID) (*report.StockSummary, error)
	MonthlyTotals(ctx context.Context, tenantID uuid.UUID, month time.Time) (*report.MonthlyTotals, error)
	UpcomingObligations(ctx context.Context, tenantID uuid.UUID, horizonDays int) (*report.UpcomingObligations, error)
	TopProducts(ctx context.Context, tenantID uuid.UUID, limit int) ([]report.ProductRanking, error)
	TopCustomers(ctx context.Context, tenantID uuid.UUID, limit int) ([]report.CustomerRanking, error)
}

// ReportHandler handles the dashboard and report endpoints
type ReportHandler struct {
	BaseHandler
	reports ReportService
	now     func() time.Time
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports ReportService) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		now:     time.Now,
	}
}

// MonthQuery selects a calendar month
type MonthQuery struct {
	Month string `form:"month" binding:"omitempty,datetime=2006-01" example:"2026-03"`
}

// HorizonQuery selects how many days ahead obligations are summed
type HorizonQuery struct {
	HorizonDays *int `form:"horizon_days" binding:"omitempty,min=0,max=365" example:"7"`
}

// RankingQuery bounds the rows of a ranking
type RankingQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100" example:"10"`
}

// Dashboard godoc
// @ID           getDashboard
// @Summary      Dashboard
// @Description  Stock summary, current month totals and obligations due in the next 7 days
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[report.Dashboard]
// @Security     BearerAuth
// @Router       /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	dashboard, err := h.reports.Dashboard(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// Stock godoc
// @ID           getStockSummary
// @Summary      Stock summary
// @Description  Total stock over active products and the products at or below minimum
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[report.StockSummary]
// @Security     BearerAuth
// @Router       /reports/stock [get]
func (h *ReportHandler) Stock(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	summary, err := h.reports.StockSummary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Monthly godoc
// @ID           getMonthlyTotals
// @Summary      Monthly totals
// @Description  Sales and purchases recorded in a calendar month (UTC). Defaults to the current month.
// @Tags         reports
// @Produce      json
// @Param        month query string false "Month as YYYY-MM"
// @Success      200 {object} APIResponse[report.MonthlyTotals]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/monthly [get]
func (h *ReportHandler) Monthly(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	var query MonthQuery
	if !h.bindQuery(c, &query) {
		return
	}
	month := h.now().UTC()
	if query.Month != "" {
		parsed, err := reportapp.ParseMonth(query.Month)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		month = parsed
	}

	totals, err := h.reports.MonthlyTotals(c.Request.Context(), tenantID, month)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, totals)
}

// Obligations godoc
// @ID           getUpcomingObligations
// @Summary      Upcoming obligations
// @Description  Open payables and receivables due within the horizon, overdue ones included
// @Tags         reports
// @Produce      json
// @Param        horizon_days query int false "Days ahead" default(7)
// @Success      200 {object} APIResponse[report.UpcomingObligations]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/obligations [get]
func (h *ReportHandler) Obligations(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	var query HorizonQuery
	if !h.bindQuery(c, &query) {
		return
	}
	horizon := reportapp.DashboardHorizonDays
	if query.HorizonDays != nil {
		horizon = *query.HorizonDays
	}

	upcoming, err := h.reports.UpcomingObligations(c.Request.Context(), tenantID, horizon)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upcoming)
}

// TopProducts godoc
// @ID           getTopProducts
// @Summary      Best-selling products
// @Description  Ranked by quantity sold, with revenue and margin over cost
// @Tags         reports
// @Produce      json
// @Param        limit query int false "Rows" default(10)
// @Success      200 {object} APIResponse[[]report.ProductRanking]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/top-products [get]
func (h *ReportHandler) TopProducts(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	var query RankingQuery
	if !h.bindQuery(c, &query) {
		return
	}

	rankings, err := h.reports.TopProducts(c.Request.Context(), tenantID, query.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rankings)
}

// TopCustomers godoc
// @ID           getTopCustomers
// @Summary      Best customers
// @Description  Ranked by total spent, with sales count and average ticket
// @Tags         reports
// @Produce      json
// @Param        limit query int false "Rows" default(10)
// @Success      200 {object} APIResponse[[]report.CustomerRanking]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/top-customers [get]
func (h *ReportHandler) TopCustomers(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	var query RankingQuery
	if !h.bindQuery(c, &query) {
		return
	}

	rankings, err := h.reports.TopCustomers(c.Request.Context(), tenantID, query.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rankings)
}
