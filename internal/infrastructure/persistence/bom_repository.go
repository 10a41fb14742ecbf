package persistence

import (
	"context"
	"errors"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBOMRepository implements catalog.BOMRepository using GORM
type GormBOMRepository struct {
	db *gorm.DB
}

// NewGormBOMRepository creates a new GormBOMRepository
func NewGormBOMRepository(db *gorm.DB) *GormBOMRepository {
	return &GormBOMRepository{db: db}
}

// WithTx returns a new repository instance bound to the given transaction
func (r *GormBOMRepository) WithTx(tx *gorm.DB) *GormBOMRepository {
	return &GormBOMRepository{db: tx}
}

// FindByProduct returns the product's recipe ordered by material ID
func (r *GormBOMRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.BOMLine, error) {
	var rows []models.BOMLineModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("material_id ASC").
		Find(&rows).Error; err != nil {
		return nil, classifyError(err)
	}

	lines := make([]catalog.BOMLine, 0, len(rows))
	for i := range rows {
		line, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	return lines, nil
}

// FindLine returns the line for one (product, material) pair
func (r *GormBOMRepository) FindLine(ctx context.Context, productID, materialID uuid.UUID) (*catalog.BOMLine, error) {
	var model models.BOMLineModel
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND material_id = ?", productID, materialID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrBOMLineNotFound
		}
		return nil, classifyError(err)
	}
	return model.ToDomain()
}

// Save upserts on the (product_id, material_id) unique key
func (r *GormBOMRepository) Save(ctx context.Context, line *catalog.BOMLine) error {
	model := &models.BOMLineModel{}
	model.FromDomain(line)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "material_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity_basis", "quantity", "unit_override", "updated_at"}),
	}).Create(model).Error
	return classifyError(err)
}

// Delete removes one line of a recipe
func (r *GormBOMRepository) Delete(ctx context.Context, productID, materialID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("product_id = ? AND material_id = ?", productID, materialID).
		Delete(&models.BOMLineModel{})
	if result.Error != nil {
		return classifyError(result.Error)
	}
	if result.RowsAffected == 0 {
		return catalog.ErrBOMLineNotFound
	}
	return nil
}

// ExistsForMaterial reports whether any recipe uses the material
func (r *GormBOMRepository) ExistsForMaterial(ctx context.Context, materialID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.BOMLineModel{}).
		Where("material_id = ?", materialID).
		Count(&count).Error; err != nil {
		return false, classifyError(err)
	}
	return count > 0, nil
}

// Ensure GormBOMRepository implements the interface
var _ catalog.BOMRepository = (*GormBOMRepository)(nil)
