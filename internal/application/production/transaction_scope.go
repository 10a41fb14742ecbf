package production

import (
	"context"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/production"
)

// TransactionScope provides transactional access to the repositories a
// production request touches. All operations inside Execute are committed or
// rolled back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories bound to one transaction.
type TransactionalRepositories interface {
	MaterialRepo() catalog.MaterialRepository
	ProductRepo() catalog.ProductRepository
	BOMRepo() catalog.BOMRepository
	RequestRepo() production.ProductionRequestRepository
	AdjustmentRepo() inventory.InventoryAdjustmentRepository
}

// NoOpTransactionScope runs the function directly against the given repositories.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	materialRepo   catalog.MaterialRepository
	productRepo    catalog.ProductRepository
	bomRepo        catalog.BOMRepository
	requestRepo    production.ProductionRequestRepository
	adjustmentRepo inventory.InventoryAdjustmentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	materialRepo catalog.MaterialRepository,
	productRepo catalog.ProductRepository,
	bomRepo catalog.BOMRepository,
	requestRepo production.ProductionRequestRepository,
	adjustmentRepo inventory.InventoryAdjustmentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		materialRepo:   materialRepo,
		productRepo:    productRepo,
		bomRepo:        bomRepo,
		requestRepo:    requestRepo,
		adjustmentRepo: adjustmentRepo,
	}
}

// Execute runs the function without a real transaction.
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

// BOMRepo returns the bill-of-materials repository.
func (s *NoOpTransactionScope) BOMRepo() catalog.BOMRepository {
	return s.bomRepo
}

// RequestRepo returns the production request repository.
func (s *NoOpTransactionScope) RequestRepo() production.ProductionRequestRepository {
	return s.requestRepo
}

// AdjustmentRepo returns the adjustment repository.
func (s *NoOpTransactionScope) AdjustmentRepo() inventory.InventoryAdjustmentRepository {
	return s.adjustmentRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
