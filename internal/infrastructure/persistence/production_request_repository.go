package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductionRequestRepository implements production.ProductionRequestRepository using GORM
type GormProductionRequestRepository struct {
	db *gorm.DB
}

// NewGormProductionRequestRepository creates a new GormProductionRequestRepository
func NewGormProductionRequestRepository(db *gorm.DB) *GormProductionRequestRepository {
	return &GormProductionRequestRepository{db: db}
}

// WithTx returns a new repository instance bound to the given transaction
func (r *GormProductionRequestRepository) WithTx(tx *gorm.DB) *GormProductionRequestRepository {
	return &GormProductionRequestRepository{db: tx}
}

// FindByID finds a request by ID with its material snapshot
func (r *GormProductionRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.ProductionRequest, error) {
	var model models.ProductionRequestModel
	err := r.db.WithContext(ctx).
		Preload("Materials", func(db *gorm.DB) *gorm.DB {
			return db.Order("material_id ASC")
		}).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, production.ErrRequestNotFound
		}
		return nil, classifyError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the request row first, then loads it with its snapshot.
// The lock is taken by a separate statement so preloads do not inherit FOR UPDATE.
func (r *GormProductionRequestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*production.ProductionRequest, error) {
	var locked struct {
		ID uuid.UUID
	}
	err := lockForUpdate(r.db.WithContext(ctx)).
		Model(&models.ProductionRequestModel{}).
		Select("id").
		Where("id = ?", id).
		Take(&locked).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, production.ErrRequestNotFound
		}
		return nil, classifyError(err)
	}
	return r.FindByID(ctx, id)
}

// FindAll lists requests matching the filter, without their snapshots
func (r *GormProductionRequestRepository) FindAll(ctx context.Context, filter production.RequestFilter) ([]production.ProductionRequest, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductionRequestModel{}), filter)
	query = applyPagination(query, filter.Filter, ProductionRequestSortFields, "requested_at")

	var rows []models.ProductionRequestModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, classifyError(err)
	}

	requests := make([]production.ProductionRequest, len(rows))
	for i := range rows {
		requests[i] = *rows[i].ToDomain()
	}
	return requests, nil
}

// Count counts requests matching the filter
func (r *GormProductionRequestRepository) Count(ctx context.Context, filter production.RequestFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductionRequestModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, classifyError(err)
	}
	return count, nil
}

// Create inserts the request and its snapshot rows in one statement batch
func (r *GormProductionRequestRepository) Create(ctx context.Context, req *production.ProductionRequest) error {
	model := models.ProductionRequestModelFromDomain(req)
	return classifyError(r.db.WithContext(ctx).Create(model).Error)
}

// SaveWithLock persists the lifecycle columns with optimistic locking.
// The domain has already incremented Version, so the stored row must still be at Version-1.
func (r *GormProductionRequestRepository) SaveWithLock(ctx context.Context, req *production.ProductionRequest) error {
	expectedVersion := req.Version - 1
	result := r.db.WithContext(ctx).
		Model(&models.ProductionRequestModel{}).
		Where("id = ? AND version = ?", req.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":        req.Status,
			"completed_by":  req.CompletedBy,
			"started_at":    req.StartedAt,
			"completed_at":  req.CompletedAt,
			"cancelled_at":  req.CancelledAt,
			"cancel_reason": req.CancelReason,
			"version":       req.Version,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return classifyError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.ErrConcurrencyConflict.Code,
			"Production request was modified by another transaction, please retry")
	}
	return nil
}

// ExistsForMaterial reports whether any request snapshot references the material
func (r *GormProductionRequestRepository) ExistsForMaterial(ctx context.Context, materialID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MaterialConsumptionModel{}).
		Where("material_id = ?", materialID).
		Count(&count).Error; err != nil {
		return false, classifyError(err)
	}
	return count > 0, nil
}

func (r *GormProductionRequestRepository) applyFilter(query *gorm.DB, filter production.RequestFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	return query
}

// Ensure GormProductionRequestRepository implements the interface
var _ production.ProductionRequestRepository = (*GormProductionRequestRepository)(nil)
