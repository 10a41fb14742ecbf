package production

import (
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeProductionRequest is the aggregate type for request events
const AggregateTypeProductionRequest = "ProductionRequest"

// Event type constants
const (
	EventTypeRequestCreated   = "ProductionRequestCreated"
	EventTypeRequestStarted   = "ProductionRequestStarted"
	EventTypeRequestCompleted = "ProductionRequestCompleted"
	EventTypeRequestCancelled = "ProductionRequestCancelled"
)

// RequestCreatedEvent is raised when a request is persisted in pending state
type RequestCreatedEvent struct {
	shared.BaseDomainEvent
	RequestID          uuid.UUID       `json:"request_id"`
	ProductID          uuid.UUID       `json:"product_id"`
	Quantity           decimal.Decimal `json:"quantity"`
	RequestedBy        uuid.UUID       `json:"requested_by"`
	SufficientAtCreate bool            `json:"sufficient_at_create"`
}

// NewRequestCreatedEvent creates a new RequestCreatedEvent
func NewRequestCreatedEvent(r *ProductionRequest, sufficient bool) *RequestCreatedEvent {
	return &RequestCreatedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeRequestCreated, AggregateTypeProductionRequest, r.ID),
		RequestID:          r.ID,
		ProductID:          r.ProductID,
		Quantity:           r.QuantityRequested,
		RequestedBy:        r.RequestedBy,
		SufficientAtCreate: sufficient,
	}
}

// RequestStartedEvent is raised when production begins
type RequestStartedEvent struct {
	shared.BaseDomainEvent
	RequestID uuid.UUID `json:"request_id"`
	ProductID uuid.UUID `json:"product_id"`
}

// NewRequestStartedEvent creates a new RequestStartedEvent
func NewRequestStartedEvent(r *ProductionRequest) *RequestStartedEvent {
	return &RequestStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRequestStarted, AggregateTypeProductionRequest, r.ID),
		RequestID:       r.ID,
		ProductID:       r.ProductID,
	}
}

// ConsumedMaterial is one line of a completion event
type ConsumedMaterial struct {
	MaterialID uuid.UUID       `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// RequestCompletedEvent is raised after materials were consumed and the product credited
type RequestCompletedEvent struct {
	shared.BaseDomainEvent
	RequestID   uuid.UUID          `json:"request_id"`
	ProductID   uuid.UUID          `json:"product_id"`
	Quantity    decimal.Decimal    `json:"quantity"`
	CompletedBy uuid.UUID          `json:"completed_by"`
	Materials   []ConsumedMaterial `json:"materials"`
}

// NewRequestCompletedEvent creates a new RequestCompletedEvent
func NewRequestCompletedEvent(r *ProductionRequest) *RequestCompletedEvent {
	materials := make([]ConsumedMaterial, 0, len(r.Materials))
	for _, m := range r.Materials {
		materials = append(materials, ConsumedMaterial{MaterialID: m.MaterialID, Quantity: m.QuantityConsumed})
	}
	var completedBy uuid.UUID
	if r.CompletedBy != nil {
		completedBy = *r.CompletedBy
	}
	return &RequestCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRequestCompleted, AggregateTypeProductionRequest, r.ID),
		RequestID:       r.ID,
		ProductID:       r.ProductID,
		Quantity:        r.QuantityRequested,
		CompletedBy:     completedBy,
		Materials:       materials,
	}
}

// RequestCancelledEvent is raised when a request is abandoned
type RequestCancelledEvent struct {
	shared.BaseDomainEvent
	RequestID uuid.UUID `json:"request_id"`
	Reason    string    `json:"reason,omitempty"`
}

// NewRequestCancelledEvent creates a new RequestCancelledEvent
func NewRequestCancelledEvent(r *ProductionRequest) *RequestCancelledEvent {
	return &RequestCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRequestCancelled, AggregateTypeProductionRequest, r.ID),
		RequestID:       r.ID,
		Reason:          r.CancelReason,
	}
}
