package handler

import (
	"context"
	"net/http"

	ledgerapp "github.com/erp/backoffice/internal/application/ledger"
	"github.com/erp/backoffice/internal/domain/ledger"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerWriter records sales and purchases
type LedgerWriter interface {
	RecordSale(ctx context.Context, tenantID uuid.UUID, req ledgerapp.RecordSaleRequest) (*ledgerapp.RecordResult, error)
	RecordPurchase(ctx context.Context, tenantID uuid.UUID, req ledgerapp.RecordPurchaseRequest) (*ledgerapp.RecordResult, error)
}

// LedgerQueries reads recorded transactions
type LedgerQueries interface {
	GetTransaction(ctx context.Context, tenantID, id uuid.UUID, kind ledger.Kind) (*ledgerapp.TransactionResponse, error)
	ListSales(ctx context.Context, tenantID uuid.UUID, filter ledgerapp.ListFilter) (shared.Paginated[ledgerapp.TransactionSummaryResponse], error)
	ListPurchases(ctx context.Context, tenantID uuid.UUID, filter ledgerapp.ListFilter) (shared.Paginated[ledgerapp.TransactionSummaryResponse], error)
}

// LedgerHandler handles the sales and purchases endpoints
type LedgerHandler struct {
	BaseHandler
	writer  LedgerWriter
	queries LedgerQueries
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(writer LedgerWriter, queries LedgerQueries) *LedgerHandler {
	return &LedgerHandler{
		writer:  writer,
		queries: queries,
	}
}

// ItemRequest is one line of a sale or purchase
// @Description Transaction line
type ItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required" swaggertype:"string" format:"uuid"`
	Quantity  decimal.Decimal `json:"quantity" swaggertype:"string" example:"2"`
	UnitPrice decimal.Decimal `json:"unit_price" swaggertype:"string" example:"19.90"`
}

// RecordSaleRequest represents a sale to record
// @Description Request body for recording a sale
type RecordSaleRequest struct {
	CustomerID uuid.UUID       `json:"customer_id" binding:"required" swaggertype:"string" format:"uuid"`
	Items      []ItemRequest   `json:"items" binding:"required,min=1,dive"`
	Discount   decimal.Decimal `json:"discount" swaggertype:"string" example:"0"`
	Notes      string          `json:"notes" binding:"max=1000"`
}

// RecordPurchaseRequest represents a purchase to record
// @Description Request body for recording a purchase
type RecordPurchaseRequest struct {
	SupplierID uuid.UUID     `json:"supplier_id" binding:"required" swaggertype:"string" format:"uuid"`
	Items      []ItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes      string        `json:"notes" binding:"max=1000"`
}

func toAppItems(items []ItemRequest) []ledgerapp.ItemRequest {
	out := make([]ledgerapp.ItemRequest, len(items))
	for i, item := range items {
		out[i] = ledgerapp.ItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return out
}

// RecordSale godoc
// @ID           recordSale
// @Summary      Record a sale
// @Description  Writes the sale, decrements stock and opens a receivable in one transaction.
// @Description  Replaying an Idempotency-Key returns the original sale with status 200.
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client key deduplicating retries"
// @Param        request body RecordSaleRequest true "Sale"
// @Success      201 {object} APIResponse[ledgerapp.RecordResult]
// @Success      200 {object} APIResponse[ledgerapp.RecordResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/sales [post]
func (h *LedgerHandler) RecordSale(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	var req RecordSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.writer.RecordSale(c.Request.Context(), tenantID, ledgerapp.RecordSaleRequest{
		CustomerID:     req.CustomerID,
		Items:          toAppItems(req.Items),
		Discount:       req.Discount,
		Notes:          req.Notes,
		IdempotencyKey: c.GetHeader(middleware.IdempotencyKeyHeader),
		CreatedBy:      getUserID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.recorded(c, result)
}

// RecordPurchase godoc
// @ID           recordPurchase
// @Summary      Record a purchase
// @Description  Writes the purchase, increments stock and opens a payable in one transaction.
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client key deduplicating retries"
// @Param        request body RecordPurchaseRequest true "Purchase"
// @Success      201 {object} APIResponse[ledgerapp.RecordResult]
// @Success      200 {object} APIResponse[ledgerapp.RecordResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/purchases [post]
func (h *LedgerHandler) RecordPurchase(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	var req RecordPurchaseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.writer.RecordPurchase(c.Request.Context(), tenantID, ledgerapp.RecordPurchaseRequest{
		SupplierID:     req.SupplierID,
		Items:          toAppItems(req.Items),
		Notes:          req.Notes,
		IdempotencyKey: c.GetHeader(middleware.IdempotencyKeyHeader),
		CreatedBy:      getUserID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.recorded(c, result)
}

func (h *LedgerHandler) recorded(c *gin.Context, result *ledgerapp.RecordResult) {
	if result.Replayed {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// GetSale godoc
// @ID           getSale
// @Summary      Get a sale with its items
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} APIResponse[ledgerapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/sales/{id} [get]
func (h *LedgerHandler) GetSale(c *gin.Context) {
	h.get(c, ledger.KindSale)
}

// GetPurchase godoc
// @ID           getPurchase
// @Summary      Get a purchase with its items
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Purchase ID" format(uuid)
// @Success      200 {object} APIResponse[ledgerapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/purchases/{id} [get]
func (h *LedgerHandler) GetPurchase(c *gin.Context) {
	h.get(c, ledger.KindPurchase)
}

func (h *LedgerHandler) get(c *gin.Context, kind ledger.Kind) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", string(kind))
	if !ok {
		return
	}

	tx, err := h.queries.GetTransaction(c.Request.Context(), tenantID, id, kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tx)
}

// ListSales godoc
// @ID           listSales
// @Summary      List sales
// @Description  Newest first, with the customer name
// @Tags         ledger
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Customer name"
// @Success      200 {object} APIResponse[[]ledgerapp.TransactionSummaryResponse]
// @Security     BearerAuth
// @Router       /ledger/sales [get]
func (h *LedgerHandler) ListSales(c *gin.Context) {
	h.list(c, h.queries.ListSales)
}

// ListPurchases godoc
// @ID           listPurchases
// @Summary      List purchases
// @Description  Newest first, with the supplier name
// @Tags         ledger
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Supplier name"
// @Success      200 {object} APIResponse[[]ledgerapp.TransactionSummaryResponse]
// @Security     BearerAuth
// @Router       /ledger/purchases [get]
func (h *LedgerHandler) ListPurchases(c *gin.Context) {
	h.list(c, h.queries.ListPurchases)
}

type transactionLister func(ctx context.Context, tenantID uuid.UUID, filter ledgerapp.ListFilter) (shared.Paginated[ledgerapp.TransactionSummaryResponse], error)

func (h *LedgerHandler) list(c *gin.Context, lister transactionLister) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	var query dto.ListRequest
	if !h.bindQuery(c, &query) {
		return
	}
	query.Normalize()

	result, err := lister(c.Request.Context(), tenantID, ledgerapp.ListFilter{
		Search:   query.Search,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(result.Items, result.Total, result.Page, result.PageSize))
}
