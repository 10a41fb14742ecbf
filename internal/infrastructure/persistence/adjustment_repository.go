package persistence

import (
	"context"
	"errors"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInventoryAdjustmentRepository implements inventory.InventoryAdjustmentRepository using GORM
type GormInventoryAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormInventoryAdjustmentRepository creates a new GormInventoryAdjustmentRepository
func NewGormInventoryAdjustmentRepository(db *gorm.DB) *GormInventoryAdjustmentRepository {
	return &GormInventoryAdjustmentRepository{db: db}
}

// WithTx returns a new repository instance bound to the given transaction
func (r *GormInventoryAdjustmentRepository) WithTx(tx *gorm.DB) *GormInventoryAdjustmentRepository {
	return &GormInventoryAdjustmentRepository{db: tx}
}

// Create appends an adjustment to the ledger
func (r *GormInventoryAdjustmentRepository) Create(ctx context.Context, adj *inventory.InventoryAdjustment) error {
	model := &models.InventoryAdjustmentModel{}
	model.FromDomain(adj)
	return classifyError(r.db.WithContext(ctx).Create(model).Error)
}

// FindByID finds an adjustment by ID
func (r *GormInventoryAdjustmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryAdjustment, error) {
	var model models.InventoryAdjustmentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrAdjustmentNotFound
		}
		return nil, classifyError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists adjustments matching the filter, newest first by default
func (r *GormInventoryAdjustmentRepository) FindAll(ctx context.Context, filter inventory.AdjustmentFilter) ([]inventory.InventoryAdjustment, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InventoryAdjustmentModel{}), filter)
	query = applyPagination(query, filter.Filter, AdjustmentSortFields, "created_at")

	var rows []models.InventoryAdjustmentModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, classifyError(err)
	}

	adjustments := make([]inventory.InventoryAdjustment, len(rows))
	for i := range rows {
		adjustments[i] = *rows[i].ToDomain()
	}
	return adjustments, nil
}

// Count counts adjustments matching the filter
func (r *GormInventoryAdjustmentRepository) Count(ctx context.Context, filter inventory.AdjustmentFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InventoryAdjustmentModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, classifyError(err)
	}
	return count, nil
}

func (r *GormInventoryAdjustmentRepository) applyFilter(query *gorm.DB, filter inventory.AdjustmentFilter) *gorm.DB {
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}
	if filter.AdjustmentType != "" {
		query = query.Where("adjustment_type = ?", filter.AdjustmentType)
	}
	if filter.ReferenceID != nil {
		query = query.Where("reference_id = ?", *filter.ReferenceID)
	}
	return query
}

// Ensure GormInventoryAdjustmentRepository implements the interface
var _ inventory.InventoryAdjustmentRepository = (*GormInventoryAdjustmentRepository)(nil)
