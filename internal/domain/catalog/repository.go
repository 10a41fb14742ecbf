package catalog

import (
	"context"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockRepository applies stock deltas to a stock-carrying row.
// DecrementStock is conditional: it fails with shared.ErrInsufficientStock
// instead of driving stock below zero.
type StockRepository interface {
	DecrementStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error
	IncrementStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error
}

// MaterialRepository defines the interface for material persistence
type MaterialRepository interface {
	StockRepository

	FindByID(ctx context.Context, id uuid.UUID) (*Material, error)

	// FindByIDForUpdate loads a material holding a row lock until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Material, error)

	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Material, error)

	// FindByIDsForUpdate locks the given materials in ascending ID order
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]Material, error)

	FindByCode(ctx context.Context, code string) (*Material, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Material, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates the descriptive fields. Stock is written only on create.
	Save(ctx context.Context, material *Material) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	StockRepository

	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDForUpdate loads a product holding a row lock until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)

	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates the descriptive fields. Stock is written only on create.
	Save(ctx context.Context, product *Product) error
}

// BOMRepository defines the interface for bill-of-materials persistence
type BOMRepository interface {
	// FindByProduct returns every line of a product's recipe
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]BOMLine, error)
	FindLine(ctx context.Context, productID, materialID uuid.UUID) (*BOMLine, error)

	// Save inserts a line or updates the existing line for the same (product, material)
	Save(ctx context.Context, line *BOMLine) error
	Delete(ctx context.Context, productID, materialID uuid.UUID) error

	ExistsForMaterial(ctx context.Context, materialID uuid.UUID) (bool, error)
}
