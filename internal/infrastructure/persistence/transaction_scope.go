package persistence

import (
	"context"

	appinv "github.com/erp/manufacturing/internal/application/inventory"
	appprod "github.com/erp/manufacturing/internal/application/production"
	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/production"
	"gorm.io/gorm"
)

// GormInventoryTransactionScope implements the inventory TransactionScope using GORM transactions.
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope.
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return classifyError(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	}))
}

// GormProductionTransactionScope implements the production TransactionScope using GORM transactions.
type GormProductionTransactionScope struct {
	db *gorm.DB
}

// NewGormProductionTransactionScope creates a new GormProductionTransactionScope.
func NewGormProductionTransactionScope(db *gorm.DB) *GormProductionTransactionScope {
	return &GormProductionTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormProductionTransactionScope) Execute(ctx context.Context, fn func(repos appprod.TransactionalRepositories) error) error {
	return classifyError(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	}))
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// MaterialRepo returns the material repository scoped to the current transaction.
func (r *gormTransactionalRepositories) MaterialRepo() catalog.MaterialRepository {
	return NewGormMaterialRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// BOMRepo returns the BOM repository scoped to the current transaction.
func (r *gormTransactionalRepositories) BOMRepo() catalog.BOMRepository {
	return NewGormBOMRepository(r.tx)
}

// RequestRepo returns the production request repository scoped to the current transaction.
func (r *gormTransactionalRepositories) RequestRepo() production.ProductionRequestRepository {
	return NewGormProductionRequestRepository(r.tx)
}

// ReservationRepo returns the reservation repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ReservationRepo() inventory.StockReservationRepository {
	return NewGormStockReservationRepository(r.tx)
}

// AdjustmentRepo returns the adjustment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AdjustmentRepo() inventory.InventoryAdjustmentRepository {
	return NewGormInventoryAdjustmentRepository(r.tx)
}

var (
	_ appinv.TransactionScope           = (*GormInventoryTransactionScope)(nil)
	_ appprod.TransactionScope          = (*GormProductionTransactionScope)(nil)
	_ appinv.TransactionalRepositories  = (*gormTransactionalRepositories)(nil)
	_ appprod.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
