package handler

import (
	"context"

	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService is the catalog use-case surface used by ProductHandler
type ProductService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error)
	GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*catalogapp.ProductResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter catalogapp.ProductListFilter) ([]catalogapp.ProductResponse, int64, error)
	Update(ctx context.Context, tenantID, productID uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error)
}

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// ProductRequest carries the editable attributes of a product
// @Description Request body for creating a product
type ProductRequest struct {
	Name      string           `json:"name" binding:"required,min=1,max=200" example:"Arabica Coffee 500g"`
	Category  string           `json:"category" binding:"max=100" example:"Beverages"`
	Unit      string           `json:"unit" binding:"max=20" example:"un"`
	CostPrice *decimal.Decimal `json:"cost_price" swaggertype:"string" example:"12.50"`
	SalePrice *decimal.Decimal `json:"sale_price" swaggertype:"string" example:"19.90"`
	MinStock  *decimal.Decimal `json:"min_stock" swaggertype:"string" example:"10"`
	Barcode   string           `json:"barcode" binding:"max=50" example:"7891234567895"`
	IsActive  *bool            `json:"is_active" example:"true"`
}

// UpdateProductRequest replaces every editable attribute of a product.
// A stock_qty that differs from the stored stock is rejected.
// @Description Request body for replacing a product's attributes
type UpdateProductRequest struct {
	ProductRequest
	StockQty *decimal.Decimal `json:"stock_qty" swaggertype:"string" example:"42"`
}

// ProductListQuery narrows a product listing
type ProductListQuery struct {
	dto.ListRequest
	Category   string `form:"category" binding:"max=100"`
	ActiveOnly bool   `form:"active"`
}

func (r ProductRequest) input() catalogapp.ProductInput {
	return catalogapp.ProductInput{
		Name:      r.Name,
		Category:  r.Category,
		Unit:      r.Unit,
		CostPrice: r.CostPrice,
		SalePrice: r.SalePrice,
		MinStock:  r.MinStock,
		Barcode:   r.Barcode,
		IsActive:  r.IsActive,
	}
}

// Create godoc
// @ID           createProduct
// @Summary      Create a new product
// @Description  Create a product with zero stock. Barcodes are unique per tenant.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body ProductRequest true "Product creation request"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	var req ProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), tenantID, catalogapp.CreateProductRequest{
		ProductInput: req.input(),
		CreatedBy:    getUserID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// GetByID godoc
// @ID           getProduct
// @Summary      Get product by ID
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	productID, ok := h.parseID(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// List godoc
// @ID           listProducts
// @Summary      List products
// @Description  Products ordered by name, optionally searched by name, category or barcode
// @Tags         products
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Search term"
// @Param        category query string false "Exact category"
// @Param        active query bool false "Only active products"
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}

	var query ProductListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	query.Normalize()

	products, total, err := h.productService.List(c.Request.Context(), tenantID, catalogapp.ProductListFilter{
		Search:     query.Search,
		Category:   query.Category,
		ActiveOnly: query.ActiveOnly,
		Page:       query.Page,
		PageSize:   query.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, products, total, query.Page, query.PageSize)
}

// Update godoc
// @ID           updateProduct
// @Summary      Replace product attributes
// @Description  Full replace of the product metadata. Stock only moves through sales and purchases.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body UpdateProductRequest true "Product attributes"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	tenantID, ok := h.requireTenant(c)
	if !ok {
		return
	}
	productID, ok := h.parseID(c, "id", "product")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), tenantID, productID, catalogapp.UpdateProductRequest{
		ProductInput: req.input(),
		StockQty:     req.StockQty,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}
