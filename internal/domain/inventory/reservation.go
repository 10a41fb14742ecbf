package inventory

import (
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReservationType tells where a reservation came from
type ReservationType string

const (
	ReservationTypeOrder  ReservationType = "order"
	ReservationTypeManual ReservationType = "manual"
)

// IsValid returns true if the reservation type is valid
func (t ReservationType) IsValid() bool {
	return t == ReservationTypeOrder || t == ReservationTypeManual
}

// StockReservation promises part of a product's stock to an order.
// It does not change Product.Stock; it only reduces what can still be promised.
type StockReservation struct {
	ID              uuid.UUID
	ProductID       uuid.UUID
	Quantity        decimal.Decimal
	ReservationType ReservationType
	OrderRef        string
	OrderLineRef    string
	ExpiresAt       *time.Time
	CreatedBy       uuid.UUID
	CreatedAt       time.Time
}

// NewStockReservation validates and creates a reservation
func NewStockReservation(
	productID uuid.UUID,
	quantity decimal.Decimal,
	reservationType ReservationType,
	orderRef, orderLineRef string,
	expiresAt *time.Time,
	createdBy uuid.UUID,
) (*StockReservation, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Product ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Reservation quantity must be positive")
	}
	if !reservationType.IsValid() {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Reservation type must be order or manual")
	}
	if reservationType == ReservationTypeOrder && orderRef == "" {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Order reservations require an order reference")
	}
	if len(orderRef) > 64 || len(orderLineRef) > 64 {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Order references cannot exceed 64 characters")
	}
	now := time.Now()
	if expiresAt != nil && !expiresAt.After(now) {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Expiry must be in the future")
	}

	return &StockReservation{
		ID:              uuid.New(),
		ProductID:       productID,
		Quantity:        quantity,
		ReservationType: reservationType,
		OrderRef:        orderRef,
		OrderLineRef:    orderLineRef,
		ExpiresAt:       expiresAt,
		CreatedBy:       createdBy,
		CreatedAt:       now,
	}, nil
}

// IsActive reports whether the reservation still counts against ATP at the given time
func (r *StockReservation) IsActive(at time.Time) bool {
	return r.ExpiresAt == nil || r.ExpiresAt.After(at)
}

// IsExpired reports whether the reservation has passed its expiry
func (r *StockReservation) IsExpired() bool {
	return !r.IsActive(time.Now())
}

// AvailableToPromise is the ATP breakdown for one product
type AvailableToPromise struct {
	ProductID uuid.UUID       `json:"product_id"`
	Stock     decimal.Decimal `json:"stock"`
	Reserved  decimal.Decimal `json:"reserved"`
	Available decimal.Decimal `json:"available"`
}

// NewAvailableToPromise computes stock minus active reservations
func NewAvailableToPromise(productID uuid.UUID, stock, reserved decimal.Decimal) AvailableToPromise {
	return AvailableToPromise{
		ProductID: productID,
		Stock:     stock,
		Reserved:  reserved,
		Available: stock.Sub(reserved),
	}
}

// CanPromise reports whether quantity fits in the available amount
func (a AvailableToPromise) CanPromise(quantity decimal.Decimal) bool {
	return quantity.LessThanOrEqual(a.Available)
}
