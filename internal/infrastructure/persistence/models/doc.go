// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns; repositories convert with ToDomain / FromDomain.
//
// Structure:
//   - base.go: shared columns (BaseModel, TenantAggregateModel)
//   - catalog.go: products
//   - partner.go: customers and suppliers
//   - ledger.go: transactions, line items and obligations
//   - tenancy.go: tenant memberships
package models
