package handler

import (
	"context"

	partnerapp "github.com/erp/backoffice/internal/application/partner"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PartyService is the customer or supplier use-case surface used by PartyHandler
type PartyService interface {
	Kind() partner.Kind
	Create(ctx context.Context, tenantID uuid.UUID, req partnerapp.PartyRequest) (*partnerapp.PartyResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*partnerapp.PartyResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter partnerapp.PartyListFilter) ([]partnerapp.PartyResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req partnerapp.PartyRequest) (*partnerapp.PartyResponse, error)
}

// PartyHandler serves the customer or the supplier endpoints, depending on
// the kind of its service. One instance is mounted per kind.
type PartyHandler struct {
	BaseHandler
	service PartyService
	label   string
}

// NewPartyHandler creates a new PartyHandler
func NewPartyHandler(service PartyService) *PartyHandler {
	label := "customer"
	if service.Kind() == partner.KindSupplier {
		label = "supplier"
	}
	return &PartyHandler{
		service: service,
		label:   label,
	}
}

// PartyRequest carries a customer or supplier profile. Updates replace every field.
// @Description Request body for creating or replacing a customer or supplier
type PartyRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200" example:"Maria Silva"`
	Document string `json:"document" binding:"max=30" example:"123.456.789-00"`
	Email    string `json:"email" binding:"omitempty,email,max=200" example:"maria@example.com"`
	Phone    string `json:"phone" binding:"max=30" example:"+55 11 98888-7777"`
	Address  string `json:"address" binding:"max=500" example:"Rua A, 10"`
}

func (r PartyRequest) toApp(createdBy *uuid.UUID) partnerapp.PartyRequest {
	return partnerapp.PartyRequest{
		Name:      r.Name,
		Document:  r.Document,
		Email:     r.Email,
		Phone:     r.Phone,
		Address:   r.Address,
		CreatedBy: createdBy,
	}
}

// Create godoc
// @ID           createParty
// @Summary      Create a customer or supplier
// @Tags         partners
// @Accept       json
// @Produce      json
// @Param        kind path string true "customers or suppliers" Enums(customers, suppliers)
// @Param        request body PartyRequest true "Profile"
// @Success      201 {object} APIResponse[partnerapp.PartyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /partner/{kind} [post]
func (h *PartyHandler) Create(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	var req PartyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	party, err := h.service.Create(c.Request.Context(), tenantID, req.toApp(getUserID(c)))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, party)
}

// GetByID godoc
// @ID           getParty
// @Summary      Get a customer or supplier
// @Tags         partners
// @Produce      json
// @Param        kind path string true "customers or suppliers" Enums(customers, suppliers)
// @Param        id path string true "Party ID" format(uuid)
// @Success      200 {object} APIResponse[partnerapp.PartyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /partner/{kind}/{id} [get]
func (h *PartyHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", h.label)
	if !ok {
		return
	}

	party, err := h.service.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, party)
}

// List godoc
// @ID           listParties
// @Summary      List customers or suppliers
// @Description  Ordered by name, optionally searched by name, document or email
// @Tags         partners
// @Produce      json
// @Param        kind path string true "customers or suppliers" Enums(customers, suppliers)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Search term"
// @Success      200 {object} APIResponse[[]partnerapp.PartyResponse]
// @Security     BearerAuth
// @Router       /partner/{kind} [get]
func (h *PartyHandler) List(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	var query dto.ListRequest
	if !h.bindQuery(c, &query) {
		return
	}
	query.Normalize()

	parties, total, err := h.service.List(c.Request.Context(), tenantID, partnerapp.PartyListFilter{
		Search:   query.Search,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, parties, total, query.Page, query.PageSize)
}

// Update godoc
// @ID           updateParty
// @Summary      Replace a customer or supplier profile
// @Tags         partners
// @Accept       json
// @Produce      json
// @Param        kind path string true "customers or suppliers" Enums(customers, suppliers)
// @Param        id path string true "Party ID" format(uuid)
// @Param        request body PartyRequest true "Profile"
// @Success      200 {object} APIResponse[partnerapp.PartyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /partner/{kind}/{id} [put]
func (h *PartyHandler) Update(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", h.label)
	if !ok {
		return
	}

	var req PartyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	party, err := h.service.Update(c.Request.Context(), tenantID, id, req.toApp(nil))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, party)
}
