package models

import (
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	TenantAggregateModel
	Name      string          `gorm:"type:varchar(200);not null;index"`
	Category  string          `gorm:"type:varchar(100)"`
	Unit      string          `gorm:"type:varchar(20);not null;default:'un'"`
	CostPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SalePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinStock  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	StockQty  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Barcode   *string         `gorm:"type:varchar(50);index"`
	IsActive  bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
		Category:            m.Category,
		Unit:                m.Unit,
		CostPrice:           m.CostPrice,
		SalePrice:           m.SalePrice,
		MinStock:            m.MinStock,
		StockQty:            m.StockQty,
		Barcode:             derefString(m.Barcode),
		IsActive:            m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Name = p.Name
	m.Category = p.Category
	m.Unit = p.Unit
	m.CostPrice = p.CostPrice
	m.SalePrice = p.SalePrice
	m.MinStock = p.MinStock
	m.StockQty = p.StockQty
	m.Barcode = nullableString(p.Barcode)
	m.IsActive = p.IsActive
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
