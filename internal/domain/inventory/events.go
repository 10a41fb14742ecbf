package inventory

import (
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeStock       = "Stock"
	AggregateTypeReservation = "StockReservation"
)

// Event type constants
const (
	EventTypeStockBelowThreshold = "StockBelowThreshold"
	EventTypeStockReserved       = "StockReserved"
	EventTypeReservationReleased = "ReservationReleased"
)

// StockBelowThresholdEvent is raised when a mutation takes stock from above
// the reorder threshold to at or below it
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	EntityType       EntityType      `json:"entity_type"`
	EntityID         uuid.UUID       `json:"entity_id"`
	Name             string          `json:"name"`
	Stock            decimal.Decimal `json:"stock"`
	ReorderThreshold decimal.Decimal `json:"reorder_threshold"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(entityType EntityType, entityID uuid.UUID, name string, stock, threshold decimal.Decimal) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, AggregateTypeStock, entityID),
		EntityType:       entityType,
		EntityID:         entityID,
		Name:             name,
		Stock:            stock,
		ReorderThreshold: threshold,
	}
}

// CrossedThreshold reports whether moving from before to after crossed threshold downwards
func CrossedThreshold(before, after, threshold decimal.Decimal) bool {
	return before.GreaterThan(threshold) && after.LessThanOrEqual(threshold)
}

// StockReservedEvent is raised when a reservation is accepted
type StockReservedEvent struct {
	shared.BaseDomainEvent
	ReservationID uuid.UUID       `json:"reservation_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	OrderRef      string          `json:"order_ref,omitempty"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(r *StockReservation) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, AggregateTypeReservation, r.ID),
		ReservationID:   r.ID,
		ProductID:       r.ProductID,
		Quantity:        r.Quantity,
		OrderRef:        r.OrderRef,
	}
}

// ReleaseReason tells why a reservation ended
type ReleaseReason string

const (
	ReleaseReasonExplicit  ReleaseReason = "released"
	ReleaseReasonOrder     ReleaseReason = "order_cancelled"
	ReleaseReasonExpired   ReleaseReason = "expired"
	ReleaseReasonFulfilled ReleaseReason = "fulfilled"
)

// ReservationReleasedEvent is raised when a reservation stops counting against ATP
type ReservationReleasedEvent struct {
	shared.BaseDomainEvent
	ReservationID uuid.UUID       `json:"reservation_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Reason        ReleaseReason   `json:"reason"`
}

// NewReservationReleasedEvent creates a new ReservationReleasedEvent
func NewReservationReleasedEvent(r *StockReservation, reason ReleaseReason) *ReservationReleasedEvent {
	return &ReservationReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationReleased, AggregateTypeReservation, r.ID),
		ReservationID:   r.ID,
		ProductID:       r.ProductID,
		Quantity:        r.Quantity,
		Reason:          reason,
	}
}
