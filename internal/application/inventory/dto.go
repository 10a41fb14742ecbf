package inventory

import (
	"time"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReserveInput is the request to hold product stock for an order or manually
type ReserveInput struct {
	ProductID    uuid.UUID
	Quantity     decimal.Decimal
	Type         inventory.ReservationType
	OrderRef     string
	OrderLineRef string
	ExpiresAt    *time.Time
}

// ReservationResponse represents a reservation in API responses
type ReservationResponse struct {
	ID              uuid.UUID                 `json:"id"`
	ProductID       uuid.UUID                 `json:"product_id"`
	Quantity        decimal.Decimal           `json:"quantity"`
	ReservationType inventory.ReservationType `json:"reservation_type"`
	OrderRef        string                    `json:"order_ref,omitempty"`
	OrderLineRef    string                    `json:"order_line_ref,omitempty"`
	ExpiresAt       *time.Time                `json:"expires_at,omitempty"`
	CreatedBy       uuid.UUID                 `json:"created_by"`
	CreatedAt       time.Time                 `json:"created_at"`
}

// ToReservationResponse converts a domain reservation to a response
func ToReservationResponse(r *inventory.StockReservation) ReservationResponse {
	return ReservationResponse{
		ID:              r.ID,
		ProductID:       r.ProductID,
		Quantity:        r.Quantity,
		ReservationType: r.ReservationType,
		OrderRef:        r.OrderRef,
		OrderLineRef:    r.OrderLineRef,
		ExpiresAt:       r.ExpiresAt,
		CreatedBy:       r.CreatedBy,
		CreatedAt:       r.CreatedAt,
	}
}

// ToReservationResponses converts a slice of domain reservations
func ToReservationResponses(rs []inventory.StockReservation) []ReservationResponse {
	out := make([]ReservationResponse, len(rs))
	for i := range rs {
		out[i] = ToReservationResponse(&rs[i])
	}
	return out
}

// ReserveResult is returned by Reserve: the reservation and the ATP after it
type ReserveResult struct {
	Reservation ReservationResponse          `json:"reservation"`
	ATP         inventory.AvailableToPromise `json:"atp"`
}

// FulfillmentResponse is returned when a reservation is consumed
type FulfillmentResponse struct {
	ReservationID uuid.UUID          `json:"reservation_id"`
	ProductID     uuid.UUID          `json:"product_id"`
	Quantity      decimal.Decimal    `json:"quantity"`
	Adjustment    AdjustmentResponse `json:"adjustment"`
}

// ReleaseStats contains statistics about an expiry sweep
type ReleaseStats struct {
	TotalExpired int       `json:"total_expired"`
	Released     int64     `json:"released"`
	Batches      int       `json:"batches"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// AdjustInput is a manual stock correction. Exactly one of NewQuantity and Delta is set.
type AdjustInput struct {
	EntityType  inventory.EntityType
	EntityID    uuid.UUID
	NewQuantity *decimal.Decimal
	Delta       *decimal.Decimal
	Reason      string
}

// AdjustmentResponse represents a ledger entry in API responses
type AdjustmentResponse struct {
	ID             uuid.UUID                `json:"id"`
	EntityType     inventory.EntityType     `json:"entity_type"`
	EntityID       uuid.UUID                `json:"entity_id"`
	AdjustmentType inventory.AdjustmentType `json:"adjustment_type"`
	QuantityBefore decimal.Decimal          `json:"quantity_before"`
	QuantityAfter  decimal.Decimal          `json:"quantity_after"`
	Delta          decimal.Decimal          `json:"delta"`
	Reason         string                   `json:"reason,omitempty"`
	ActorID        uuid.UUID                `json:"actor_id"`
	ActorRole      string                   `json:"actor_role"`
	ReferenceType  inventory.ReferenceType  `json:"reference_type,omitempty"`
	ReferenceID    *uuid.UUID               `json:"reference_id,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
}

// ToAdjustmentResponse converts a domain adjustment to a response
func ToAdjustmentResponse(a *inventory.InventoryAdjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:             a.ID,
		EntityType:     a.EntityType,
		EntityID:       a.EntityID,
		AdjustmentType: a.AdjustmentType,
		QuantityBefore: a.QuantityBefore,
		QuantityAfter:  a.QuantityAfter,
		Delta:          a.Delta(),
		Reason:         a.Reason,
		ActorID:        a.ActorID,
		ActorRole:      a.ActorRole.String(),
		ReferenceType:  a.ReferenceType,
		ReferenceID:    a.ReferenceID,
		CreatedAt:      a.CreatedAt,
	}
}

// ToAdjustmentResponses converts a slice of domain adjustments
func ToAdjustmentResponses(as []inventory.InventoryAdjustment) []AdjustmentResponse {
	out := make([]AdjustmentResponse, len(as))
	for i := range as {
		out[i] = ToAdjustmentResponse(&as[i])
	}
	return out
}

// AdjustmentListFilter represents filter options for the adjustment trail
type AdjustmentListFilter struct {
	EntityType     inventory.EntityType
	EntityID       *uuid.UUID
	AdjustmentType inventory.AdjustmentType
	ReferenceID    *uuid.UUID
	Page           int
	PageSize       int
}
