package inventory

import (
	"context"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/inventory"
)

// TransactionScope provides transactional access to the stock repositories.
// All repository operations inside Execute are committed or rolled back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories bound to one transaction.
//
//   - MaterialRepo / ProductRepo: stock-carrying rows, locked and mutated with conditional updates
//   - ReservationRepo: product reservations counted against available-to-promise
//   - AdjustmentRepo: append-only audit ledger written in the same transaction as the stock change
type TransactionalRepositories interface {
	MaterialRepo() catalog.MaterialRepository
	ProductRepo() catalog.ProductRepository
	ReservationRepo() inventory.StockReservationRepository
	AdjustmentRepo() inventory.InventoryAdjustmentRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	materialRepo    catalog.MaterialRepository
	productRepo     catalog.ProductRepository
	reservationRepo inventory.StockReservationRepository
	adjustmentRepo  inventory.InventoryAdjustmentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	materialRepo catalog.MaterialRepository,
	productRepo catalog.ProductRepository,
	reservationRepo inventory.StockReservationRepository,
	adjustmentRepo inventory.InventoryAdjustmentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		materialRepo:    materialRepo,
		productRepo:     productRepo,
		reservationRepo: reservationRepo,
		adjustmentRepo:  adjustmentRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// MaterialRepo returns the material repository.
func (s *NoOpTransactionScope) MaterialRepo() catalog.MaterialRepository {
	return s.materialRepo
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// ReservationRepo returns the reservation repository.
func (s *NoOpTransactionScope) ReservationRepo() inventory.StockReservationRepository {
	return s.reservationRepo
}

// AdjustmentRepo returns the adjustment repository.
func (s *NoOpTransactionScope) AdjustmentRepo() inventory.InventoryAdjustmentRepository {
	return s.adjustmentRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
