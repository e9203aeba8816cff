package catalog

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultUnit is used when a product is created without a unit of measure
const DefaultUnit = "un"

// Product represents a sellable item in a tenant's catalog.
// StockQty is owned by the ledger: it only changes through recorded
// sales and purchases, never through a metadata edit.
type Product struct {
	shared.TenantAggregateRoot
	Name      string
	Category  string
	Unit      string
	CostPrice decimal.Decimal
	SalePrice decimal.Decimal
	MinStock  decimal.Decimal
	StockQty  decimal.Decimal
	Barcode   string
	IsActive  bool
}

// ProductDetails holds the user-editable attributes of a product
type ProductDetails struct {
	Name      string
	Category  string
	Unit      string
	CostPrice decimal.Decimal
	SalePrice decimal.Decimal
	MinStock  decimal.Decimal
	Barcode   string
	IsActive  bool
}

// NewProduct creates a new active product with zero stock
func NewProduct(tenantID uuid.UUID, details ProductDetails, now time.Time) (*Product, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrNoTenantBound
	}
	details = details.normalized()
	if err := details.validate(); err != nil {
		return nil, err
	}

	p := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID, now),
		StockQty:            decimal.Zero,
	}
	p.assign(details)
	return p, nil
}

// UpdateDetails replaces every editable attribute of the product.
// requestedStock is the stock quantity the caller believes the product has;
// a value that differs from the ledger's is rejected.
func (p *Product) UpdateDetails(details ProductDetails, requestedStock *decimal.Decimal, now time.Time) error {
	if requestedStock != nil && !requestedStock.Equal(p.StockQty) {
		return ErrStockEditForbidden
	}
	details = details.normalized()
	if err := details.validate(); err != nil {
		return err
	}

	p.assign(details)
	p.Touch(now)
	p.IncrementVersion()
	return nil
}

// IsLowStock reports whether the product is at or below its minimum stock level
func (p *Product) IsLowStock() bool {
	return p.StockQty.LessThanOrEqual(p.MinStock)
}

// Details returns the editable attributes of the product
func (p *Product) Details() ProductDetails {
	return ProductDetails{
		Name:      p.Name,
		Category:  p.Category,
		Unit:      p.Unit,
		CostPrice: p.CostPrice,
		SalePrice: p.SalePrice,
		MinStock:  p.MinStock,
		Barcode:   p.Barcode,
		IsActive:  p.IsActive,
	}
}

func (p *Product) assign(d ProductDetails) {
	p.Name = d.Name
	p.Category = d.Category
	p.Unit = d.Unit
	p.CostPrice = d.CostPrice
	p.SalePrice = d.SalePrice
	p.MinStock = d.MinStock
	p.Barcode = d.Barcode
	p.IsActive = d.IsActive
}

func (d ProductDetails) normalized() ProductDetails {
	d.Name = strings.TrimSpace(d.Name)
	d.Category = strings.TrimSpace(d.Category)
	d.Unit = strings.TrimSpace(d.Unit)
	d.Barcode = strings.TrimSpace(d.Barcode)
	if d.Unit == "" {
		d.Unit = DefaultUnit
	}
	return d
}

func (d ProductDetails) validate() error {
	if d.Name == "" {
		return shared.ErrInvalidInput.WithMessage("Product name cannot be empty")
	}
	if len(d.Name) > 200 {
		return shared.ErrInvalidInput.WithMessage("Product name cannot exceed 200 characters")
	}
	if len(d.Category) > 100 {
		return shared.ErrInvalidInput.WithMessage("Category cannot exceed 100 characters")
	}
	if len(d.Unit) > 20 {
		return shared.ErrInvalidInput.WithMessage("Unit cannot exceed 20 characters")
	}
	if len(d.Barcode) > 50 {
		return shared.ErrInvalidInput.WithMessage("Barcode cannot exceed 50 characters")
	}
	if d.CostPrice.IsNegative() {
		return shared.ErrInvalidInput.WithMessage("Cost price cannot be negative")
	}
	if d.SalePrice.IsNegative() {
		return shared.ErrInvalidInput.WithMessage("Sale price cannot be negative")
	}
	if d.MinStock.IsNegative() {
		return shared.ErrInvalidInput.WithMessage("Minimum stock cannot be negative")
	}
	for _, f := range []struct {
		label string
		value decimal.Decimal
	}{
		{"Cost price", d.CostPrice},
		{"Sale price", d.SalePrice},
		{"Minimum stock", d.MinStock},
	} {
		if err := shared.CheckStoredDecimal(f.label, f.value); err != nil {
			return err
		}
	}
	return nil
}

// ErrProductInactive is returned when an inactive product is sold
var ErrProductInactive = shared.ErrInvalidInput.WithMessage("Product is inactive")

// ErrStockEditForbidden is returned when a metadata edit tries to change stock
var ErrStockEditForbidden = shared.ErrInvalidInput.WithMessage(
	"Stock quantity can only change through recorded sales and purchases",
)
