package catalog

import (
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductInput carries the editable attributes of a product.
// Nil prices and min stock mean zero; nil IsActive means active.
type ProductInput struct {
	Name      string
	Category  string
	Unit      string
	CostPrice *decimal.Decimal
	SalePrice *decimal.Decimal
	MinStock  *decimal.Decimal
	Barcode   string
	IsActive  *bool
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	ProductInput
	CreatedBy *uuid.UUID
}

// UpdateProductRequest replaces every editable attribute of a product.
// StockQty, when present, must equal the stored stock.
type UpdateProductRequest struct {
	ProductInput
	StockQty *decimal.Decimal
}

// ProductListFilter narrows a product listing
type ProductListFilter struct {
	Search     string
	Category   string
	ActiveOnly bool
	Page       int
	PageSize   int
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Unit      string          `json:"unit"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
	MinStock  decimal.Decimal `json:"min_stock"`
	StockQty  decimal.Decimal `json:"stock_qty"`
	Barcode   string          `json:"barcode"`
	IsActive  bool            `json:"is_active"`
	LowStock  bool            `json:"low_stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Version   int             `json:"version"`
}

// ToProductResponse converts a domain Product to a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		TenantID:  p.TenantID,
		Name:      p.Name,
		Category:  p.Category,
		Unit:      p.Unit,
		CostPrice: p.CostPrice,
		SalePrice: p.SalePrice,
		MinStock:  p.MinStock,
		StockQty:  p.StockQty,
		Barcode:   p.Barcode,
		IsActive:  p.IsActive,
		LowStock:  p.IsLowStock(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Version:   p.Version,
	}
}

// ToProductResponses converts a slice of domain Products to responses
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

func (in ProductInput) details() catalog.ProductDetails {
	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	return catalog.ProductDetails{
		Name:      in.Name,
		Category:  in.Category,
		Unit:      in.Unit,
		CostPrice: decimalOrZero(in.CostPrice),
		SalePrice: decimalOrZero(in.SalePrice),
		MinStock:  decimalOrZero(in.MinStock),
		Barcode:   in.Barcode,
		IsActive:  isActive,
	}
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
