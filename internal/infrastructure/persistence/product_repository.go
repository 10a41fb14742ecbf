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

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx returns a new repository instance bound to the given transaction
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: tx}
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByIDForUpdate finds a product by ID holding a row lock
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.first(lockForUpdate(r.db.WithContext(ctx)).Where("id = ?", id))
}

// FindBySKU finds a product by SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	return r.first(r.db.WithContext(ctx).Where("sku = ?", strings.ToUpper(strings.TrimSpace(sku))))
}

func (r *GormProductRepository) first(query *gorm.DB) (*catalog.Product, error) {
	var model models.ProductModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, classifyError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)
	query = applyPagination(query, filter, ProductSortFields, "sku")

	var rows []models.ProductModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, classifyError(err)
	}

	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, classifyError(err)
	}
	return count, nil
}

// Save inserts a product, or updates its descriptive columns when it already exists.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "reorder_threshold", "updated_at"}),
	}).Create(model).Error
	return classifyError(err)
}

// DecrementStock subtracts quantity only if the stored stock covers it
func (r *GormProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	return decrementStock(ctx, r.db, &models.ProductModel{}, id, quantity, catalog.ErrProductNotFound)
}

// IncrementStock adds quantity to the stored stock
func (r *GormProductRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	return incrementStock(ctx, r.db, &models.ProductModel{}, id, quantity, catalog.ErrProductNotFound)
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("sku LIKE ? OR name LIKE ?", like, like)
	}
	return query
}

// Ensure GormProductRepository implements the interface
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
