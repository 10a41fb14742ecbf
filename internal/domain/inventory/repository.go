package inventory

import (
	"context"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentFilter narrows the audit trail query
type AdjustmentFilter struct {
	shared.Filter
	EntityType     EntityType
	EntityID       *uuid.UUID
	AdjustmentType AdjustmentType
	ReferenceID    *uuid.UUID
}

// InventoryAdjustmentRepository is append-only: there is no update or delete
type InventoryAdjustmentRepository interface {
	Create(ctx context.Context, adj *InventoryAdjustment) error
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryAdjustment, error)
	FindAll(ctx context.Context, filter AdjustmentFilter) ([]InventoryAdjustment, error)
	Count(ctx context.Context, filter AdjustmentFilter) (int64, error)
}

// StockReservationRepository defines persistence for reservations
type StockReservationRepository interface {
	Create(ctx context.Context, r *StockReservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*StockReservation, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]StockReservation, error)
	FindByOrder(ctx context.Context, orderRef string) ([]StockReservation, error)

	// SumActive returns the total quantity of reservations for a product that have not expired at `at`
	SumActive(ctx context.Context, productID uuid.UUID, at time.Time) (decimal.Decimal, error)

	// FindExpired returns up to limit reservations whose expiry is before `at`
	FindExpired(ctx context.Context, at time.Time, limit int) ([]StockReservation, error)

	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}
