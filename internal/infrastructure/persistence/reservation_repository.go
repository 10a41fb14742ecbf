package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockReservationRepository implements inventory.StockReservationRepository using GORM
type GormStockReservationRepository struct {
	db *gorm.DB
}

// NewGormStockReservationRepository creates a new GormStockReservationRepository
func NewGormStockReservationRepository(db *gorm.DB) *GormStockReservationRepository {
	return &GormStockReservationRepository{db: db}
}

// WithTx returns a new repository instance bound to the given transaction
func (r *GormStockReservationRepository) WithTx(tx *gorm.DB) *GormStockReservationRepository {
	return &GormStockReservationRepository{db: tx}
}

// Create inserts a reservation
func (r *GormStockReservationRepository) Create(ctx context.Context, res *inventory.StockReservation) error {
	model := &models.StockReservationModel{}
	model.FromDomain(res)
	return classifyError(r.db.WithContext(ctx).Create(model).Error)
}

// FindByID finds a reservation by ID
func (r *GormStockReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockReservation, error) {
	var model models.StockReservationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrReservationNotFound
		}
		return nil, classifyError(err)
	}
	return model.ToDomain(), nil
}

// FindByProduct lists a product's reservations, oldest first
func (r *GormStockReservationRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockReservation, error) {
	return r.find(r.db.WithContext(ctx).Where("product_id = ?", productID))
}

// FindByOrder lists the reservations held for an order reference
func (r *GormStockReservationRepository) FindByOrder(ctx context.Context, orderRef string) ([]inventory.StockReservation, error) {
	return r.find(r.db.WithContext(ctx).Where("order_ref = ?", orderRef))
}

// FindExpired returns up to limit reservations whose expiry is at or before `at`
func (r *GormStockReservationRepository) FindExpired(ctx context.Context, at time.Time, limit int) ([]inventory.StockReservation, error) {
	query := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", at.UTC())
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.find(query)
}

func (r *GormStockReservationRepository) find(query *gorm.DB) ([]inventory.StockReservation, error) {
	var rows []models.StockReservationModel
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, classifyError(err)
	}

	reservations := make([]inventory.StockReservation, len(rows))
	for i := range rows {
		reservations[i] = *rows[i].ToDomain()
	}
	return reservations, nil
}

// SumActive totals the quantity of the product's reservations that have not expired at `at`
func (r *GormStockReservationRepository) SumActive(ctx context.Context, productID uuid.UUID, at time.Time) (decimal.Decimal, error) {
	active := r.db.WithContext(ctx).
		Model(&models.StockReservationModel{}).
		Where("product_id = ? AND (expires_at IS NULL OR expires_at > ?)", productID, at.UTC())

	if !exactNumericArithmetic(r.db) {
		var quantities []decimal.Decimal
		if err := active.Pluck("quantity", &quantities).Error; err != nil {
			return decimal.Zero, classifyError(err)
		}
		return decimal.Sum(decimal.Zero, quantities...), nil
	}

	var total decimal.NullDecimal
	if err := active.Select("SUM(quantity)").Row().Scan(&total); err != nil {
		return decimal.Zero, classifyError(err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// Delete removes a reservation
func (r *GormStockReservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.StockReservationModel{})
	if result.Error != nil {
		return classifyError(result.Error)
	}
	if result.RowsAffected == 0 {
		return inventory.ErrReservationNotFound
	}
	return nil
}

// DeleteByIDs removes the given reservations and reports how many rows went away
func (r *GormStockReservationRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.StockReservationModel{})
	if result.Error != nil {
		return 0, classifyError(result.Error)
	}
	return result.RowsAffected, nil
}

// Ensure GormStockReservationRepository implements the interface
var _ inventory.StockReservationRepository = (*GormStockReservationRepository)(nil)
