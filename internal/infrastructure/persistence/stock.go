package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// decrementStock performs the conditional decrement
//
//	UPDATE <table> SET stock = stock - ? ... WHERE id = ? AND stock >= ?
//
// and inspects the affected row count. Zero rows means either the row is gone
// (notFound) or the stock no longer covers the quantity (shared.ErrInsufficientStock).
func decrementStock(ctx context.Context, db *gorm.DB, model interface{}, id uuid.UUID, quantity decimal.Decimal, notFound error) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Quantity must be positive")
	}
	if !exactNumericArithmetic(db) {
		return writeStockValue(ctx, db, model, id, quantity.Neg(), notFound)
	}

	result := db.WithContext(ctx).
		Model(model).
		Where("id = ? AND stock >= ?", id, quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", quantity),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return classifyError(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return classifyError(err)
	}
	if count == 0 {
		return notFound
	}
	return shared.ErrInsufficientStock
}

// incrementStock adds quantity to the row's stock.
func incrementStock(ctx context.Context, db *gorm.DB, model interface{}, id uuid.UUID, quantity decimal.Decimal, notFound error) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Quantity must be positive")
	}
	if !exactNumericArithmetic(db) {
		return writeStockValue(ctx, db, model, id, quantity, notFound)
	}

	result := db.WithContext(ctx).
		Model(model).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", quantity),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return classifyError(result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound
	}
	return nil
}

// exactNumericArithmetic reports whether the dialect evaluates decimal columns
// exactly in SQL. SQLite keeps them as REAL, so stock - ? drifts there.
func exactNumericArithmetic(db *gorm.DB) bool {
	return db.Dialector.Name() != "sqlite"
}

type stockRow struct {
	Stock   decimal.Decimal
	Version int
}

// writeStockValue applies delta in Go and writes the resulting value, guarded
// by the version read alongside the stock. A lost version race surfaces as
// shared.ErrConcurrencyConflict.
func writeStockValue(ctx context.Context, db *gorm.DB, model interface{}, id uuid.UUID, delta decimal.Decimal, notFound error) error {
	var row stockRow
	read := db.WithContext(ctx).
		Model(model).
		Select("stock", "version").
		Where("id = ?", id).
		Scan(&row)
	if read.Error != nil {
		return classifyError(read.Error)
	}
	if read.RowsAffected == 0 {
		return notFound
	}

	after := row.Stock.Add(delta)
	if after.IsNegative() {
		return shared.ErrInsufficientStock
	}

	result := db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", id, row.Version).
		Updates(map[string]interface{}{
			"stock":      after,
			"version":    row.Version + 1,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return classifyError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: stock of %s changed concurrently", shared.ErrConcurrencyConflict, id)
	}
	return nil
}

// applyPagination applies offset, limit and a whitelisted sort order.
func applyPagination(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	sortField := ValidateSortField(filter.OrderBy, allowed, defaultField)
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}
