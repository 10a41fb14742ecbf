package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMaterialRepository implements catalog.MaterialRepository using GORM
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new GormMaterialRepository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// WithTx returns a new repository instance bound to the given transaction
func (r *GormMaterialRepository) WithTx(tx *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: tx}
}

// FindByID finds a material by ID
func (r *GormMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Material, error) {
	var model models.MaterialModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrMaterialNotFound
		}
		return nil, classifyError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a material by ID holding a row lock
func (r *GormMaterialRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Material, error) {
	var model models.MaterialModel
	if err := lockForUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrMaterialNotFound
		}
		return nil, classifyError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the materials with the given IDs ordered by ID. Missing IDs are skipped.
func (r *GormMaterialRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Material, error) {
	return r.findByIDs(r.db.WithContext(ctx), ids)
}

// FindByIDsForUpdate locks the given materials in ascending ID order so two
// transactions touching overlapping sets always acquire locks in the same order.
func (r *GormMaterialRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]catalog.Material, error) {
	return r.findByIDs(lockForUpdate(r.db.WithContext(ctx)), ids)
}

func (r *GormMaterialRepository) findByIDs(query *gorm.DB, ids []uuid.UUID) ([]catalog.Material, error) {
	if len(ids) == 0 {
		return []catalog.Material{}, nil
	}

	var rows []models.MaterialModel
	if err := query.Where("id IN ?", ids).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, classifyError(err)
	}

	materials := make([]catalog.Material, len(rows))
	for i := range rows {
		materials[i] = *rows[i].ToDomain()
	}
	return materials, nil
}

// FindByCode finds a material by its code
func (r *GormMaterialRepository) FindByCode(ctx context.Context, code string) (*catalog.Material, error) {
	var model models.MaterialModel
	err := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrMaterialNotFound
		}
		return nil, classifyError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds materials matching the filter
func (r *GormMaterialRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Material, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.MaterialModel{}), filter)
	query = applyPagination(query, filter, MaterialSortFields, "code")

	var rows []models.MaterialModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, classifyError(err)
	}

	materials := make([]catalog.Material, len(rows))
	for i := range rows {
		materials[i] = *rows[i].ToDomain()
	}
	return materials, nil
}

// Count counts materials matching the filter
func (r *GormMaterialRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.MaterialModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, classifyError(err)
	}
	return count, nil
}

// Save inserts a material, or updates its descriptive columns when it already exists.
// Stock is only written on insert; later changes go through DecrementStock and IncrementStock.
func (r *GormMaterialRepository) Save(ctx context.Context, material *catalog.Material) error {
	model := models.MaterialModelFromDomain(material)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "category", "unit", "reorder_threshold", "updated_at"}),
	}).Create(model).Error
	return classifyError(err)
}

// Delete removes a material
func (r *GormMaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.MaterialModel{})
	if result.Error != nil {
		return classifyError(result.Error)
	}
	if result.RowsAffected == 0 {
		return catalog.ErrMaterialNotFound
	}
	return nil
}

// DecrementStock subtracts quantity only if the stored stock covers it
func (r *GormMaterialRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	return decrementStock(ctx, r.db, &models.MaterialModel{}, id, quantity, catalog.ErrMaterialNotFound)
}

// IncrementStock adds quantity to the stored stock
func (r *GormMaterialRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	return incrementStock(ctx, r.db, &models.MaterialModel{}, id, quantity, catalog.ErrMaterialNotFound)
}

func (r *GormMaterialRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", like, like)
	}
	if category, ok := filter.Filters["category"].(string); ok && category != "" {
		query = query.Where("category = ?", category)
	}
	if below, ok := filter.Filters["below_threshold"].(bool); ok && below {
		query = query.Where("stock <= reorder_threshold")
	}
	return query
}

// Ensure GormMaterialRepository implements the interface
var _ catalog.MaterialRepository = (*GormMaterialRepository)(nil)
