package models

import (
	"github.com/erp/backoffice/internal/domain/partner"
)

// Table names for the two party kinds. Both share PartyModel's columns.
const (
	CustomersTable = "customers"
	SuppliersTable = "suppliers"
)

// PartyTable returns the table that stores parties of the given kind
func PartyTable(kind partner.Kind) string {
	if kind == partner.KindSupplier {
		return SuppliersTable
	}
	return CustomersTable
}

// PartyModel is the persistence model for customers and suppliers.
// Queries select the table explicitly with db.Table(PartyTable(kind)).
type PartyModel struct {
	TenantAggregateModel
	Name     string `gorm:"type:varchar(200);not null;index"`
	Document string `gorm:"type:varchar(50)"`
	Email    string `gorm:"type:varchar(200)"`
	Phone    string `gorm:"type:varchar(50)"`
	Address  string `gorm:"type:text"`
}

// ToDomain converts the persistence model to a domain Party of the given kind.
func (m *PartyModel) ToDomain(kind partner.Kind) *partner.Party {
	return &partner.Party{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Kind:                kind,
		Profile: partner.Profile{
			Name:     m.Name,
			Document: m.Document,
			Email:    m.Email,
			Phone:    m.Phone,
			Address:  m.Address,
		},
	}
}

// FromDomain populates the persistence model from a domain Party.
func (m *PartyModel) FromDomain(p *partner.Party) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Name = p.Name
	m.Document = p.Document
	m.Email = p.Email
	m.Phone = p.Phone
	m.Address = p.Address
}

// PartyModelFromDomain creates a new persistence model from a domain Party.
func PartyModelFromDomain(p *partner.Party) *PartyModel {
	m := &PartyModel{}
	m.FromDomain(p)
	return m
}
