package handler

import (
	"context"
	"net/http"
	"time"

	ledgerapp "github.com/erp/backoffice/internal/application/ledger"
	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ObligationService settles and lists payables and receivables
type ObligationService interface {
	Settle(ctx context.Context, tenantID, id uuid.UUID, kind ledger.ObligationKind) (*ledgerapp.ObligationResponse, error)
	ListOpenDueOn(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]ledgerapp.ObligationResponse, error)
	ListObligations(ctx context.Context, tenantID uuid.UUID, kind ledger.ObligationKind, filter ledgerapp.ListFilter) (shared.Paginated[ledgerapp.ObligationResponse], error)
}

// FinanceHandler handles the payables and receivables endpoints
type FinanceHandler struct {
	BaseHandler
	obligations ObligationService
	now         func() time.Time
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(obligations ObligationService) *FinanceHandler {
	return &FinanceHandler{
		obligations: obligations,
		now:         time.Now,
	}
}

// ObligationListQuery narrows an obligation listing
type ObligationListQuery struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=open paid received"`
}

// DueQuery selects the day whose open obligations are listed
type DueQuery struct {
	Cutoff string `form:"cutoff" binding:"omitempty,datetime=2006-01-02" example:"2026-03-20"`
}

// ListReceivables godoc
// @ID           listReceivables
// @Summary      List receivables
// @Description  Earliest due first, with the customer name
// @Tags         finance
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Customer name"
// @Param        status query string false "open or received" Enums(open, received)
// @Success      200 {object} APIResponse[[]ledgerapp.ObligationResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/receivables [get]
func (h *FinanceHandler) ListReceivables(c *gin.Context) {
	h.list(c, ledger.ObligationReceivable)
}

// ListPayables godoc
// @ID           listPayables
// @Summary      List payables
// @Description  Earliest due first, with the supplier name
// @Tags         finance
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Supplier name"
// @Param        status query string false "open or paid" Enums(open, paid)
// @Success      200 {object} APIResponse[[]ledgerapp.ObligationResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/payables [get]
func (h *FinanceHandler) ListPayables(c *gin.Context) {
	h.list(c, ledger.ObligationPayable)
}

func (h *FinanceHandler) list(c *gin.Context, kind ledger.ObligationKind) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	var query ObligationListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	query.Normalize()

	result, err := h.obligations.ListObligations(c.Request.Context(), tenantID, kind, ledgerapp.ListFilter{
		Search:   query.Search,
		Status:   query.Status,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(result.Items, result.Total, result.Page, result.PageSize))
}

// SettleReceivable godoc
// @ID           settleReceivable
// @Summary      Mark a receivable as received
// @Tags         finance
// @Produce      json
// @Param        id path string true "Receivable ID" format(uuid)
// @Success      200 {object} APIResponse[ledgerapp.ObligationResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Already received"
// @Security     BearerAuth
// @Router       /finance/receivables/{id}/settle [post]
func (h *FinanceHandler) SettleReceivable(c *gin.Context) {
	h.settle(c, ledger.ObligationReceivable)
}

// SettlePayable godoc
// @ID           settlePayable
// @Summary      Mark a payable as paid
// @Tags         finance
// @Produce      json
// @Param        id path string true "Payable ID" format(uuid)
// @Success      200 {object} APIResponse[ledgerapp.ObligationResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Already paid"
// @Security     BearerAuth
// @Router       /finance/payables/{id}/settle [post]
func (h *FinanceHandler) SettlePayable(c *gin.Context) {
	h.settle(c, ledger.ObligationPayable)
}

func (h *FinanceHandler) settle(c *gin.Context, kind ledger.ObligationKind) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", string(kind))
	if !ok {
		return
	}

	obligation, err := h.obligations.Settle(c.Request.Context(), tenantID, id, kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, obligation)
}

// ListDue godoc
// @ID           listDueObligations
// @Summary      List open obligations due by a day
// @Description  Open payables and receivables due on or before the end of the cutoff day (UTC), earliest first.
// @Description  The cutoff defaults to today.
// @Tags         finance
// @Produce      json
// @Param        cutoff query string false "Day as YYYY-MM-DD"
// @Success      200 {object} APIResponse[[]ledgerapp.ObligationResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/obligations/due [get]
func (h *FinanceHandler) ListDue(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	var query DueQuery
	if !h.bindQuery(c, &query) {
		return
	}

	day := h.now().UTC()
	if query.Cutoff != "" {
		parsed, err := time.Parse(time.DateOnly, query.Cutoff)
		if err != nil {
			h.BadRequest(c, "Invalid cutoff, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	obligations, err := h.obligations.ListOpenDueOn(c.Request.Context(), tenantID, day)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, obligations)
}
