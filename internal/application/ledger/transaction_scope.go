package ledger

import (
	"context"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/ledger"
)

// TransactionScope provides transactional access to the repositories the
// ledger writes through. Everything done inside Execute commits or rolls back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories bound to one database transaction.
type TransactionalRepositories interface {
	// TransactionRepo writes transaction headers and line items
	TransactionRepo() ledger.TransactionRepository
	// StockAdjuster applies atomic stock movements
	StockAdjuster() catalog.StockAdjuster
	// ObligationRepo writes payables and receivables
	ObligationRepo() ledger.ObligationRepository
}

// NoOpTransactionScope runs the function against plain repositories without a transaction.
// It is meant for tests that exercise the orchestration with fakes.
type NoOpTransactionScope struct {
	transactionRepo ledger.TransactionRepository
	stockAdjuster   catalog.StockAdjuster
	obligationRepo  ledger.ObligationRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	transactionRepo ledger.TransactionRepository,
	stockAdjuster catalog.StockAdjuster,
	obligationRepo ledger.ObligationRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		transactionRepo: transactionRepo,
		stockAdjuster:   stockAdjuster,
		obligationRepo:  obligationRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// TransactionRepo returns the transaction repository.
func (s *NoOpTransactionScope) TransactionRepo() ledger.TransactionRepository {
	return s.transactionRepo
}

// StockAdjuster returns the stock adjuster.
func (s *NoOpTransactionScope) StockAdjuster() catalog.StockAdjuster {
	return s.stockAdjuster
}

// ObligationRepo returns the obligation repository.
func (s *NoOpTransactionScope) ObligationRepo() ledger.ObligationRepository {
	return s.obligationRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
