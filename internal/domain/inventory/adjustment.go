package inventory

import (
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntityType identifies which kind of stock row an adjustment refers to
type EntityType string

const (
	EntityTypeMaterial EntityType = "material"
	EntityTypeProduct  EntityType = "product"
)

// IsValid returns true if the entity type is valid
func (e EntityType) IsValid() bool {
	return e == EntityTypeMaterial || e == EntityTypeProduct
}

// String returns the string representation of EntityType
func (e EntityType) String() string {
	return string(e)
}

// AdjustmentType is the kind of stock mutation an adjustment documents
type AdjustmentType string

const (
	// AdjustmentTypeManual is a stock count correction or receipt entered by a user
	AdjustmentTypeManual AdjustmentType = "manual_adjustment"
	// AdjustmentTypeProductionConsumption is a material deducted by a completed production request
	AdjustmentTypeProductionConsumption AdjustmentType = "production_consumption"
	// AdjustmentTypeProductionOutput is the product credit of a completed production request
	AdjustmentTypeProductionOutput AdjustmentType = "production_output"
	// AdjustmentTypeOrderFulfillment is a product shipped against a reservation
	AdjustmentTypeOrderFulfillment AdjustmentType = "order_fulfillment"
)

// IsValid returns true if the adjustment type is valid
func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentTypeManual,
		AdjustmentTypeProductionConsumption,
		AdjustmentTypeProductionOutput,
		AdjustmentTypeOrderFulfillment:
		return true
	}
	return false
}

// String returns the string representation of AdjustmentType
func (t AdjustmentType) String() string {
	return string(t)
}

// ReferenceType names the document that caused an adjustment
type ReferenceType string

const (
	ReferenceTypeNone              ReferenceType = ""
	ReferenceTypeProductionRequest ReferenceType = "production_request"
	ReferenceTypeReservation       ReferenceType = "reservation"
)

// InventoryAdjustment is an immutable audit record of one stock mutation.
// Corrections are made with new adjustments; rows are never updated or deleted.
type InventoryAdjustment struct {
	ID             uuid.UUID
	EntityType     EntityType
	EntityID       uuid.UUID
	AdjustmentType AdjustmentType
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	Reason         string
	ActorID        uuid.UUID
	ActorRole      shared.Role
	ReferenceType  ReferenceType
	ReferenceID    *uuid.UUID
	CreatedAt      time.Time
}

// NewInventoryAdjustment validates and creates an audit record
func NewInventoryAdjustment(
	entityType EntityType,
	entityID uuid.UUID,
	adjustmentType AdjustmentType,
	before, after decimal.Decimal,
	reason string,
	actor shared.Actor,
) (*InventoryAdjustment, error) {
	if !entityType.IsValid() {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Invalid entity type")
	}
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Entity ID cannot be empty")
	}
	if !adjustmentType.IsValid() {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Invalid adjustment type")
	}
	if before.IsNegative() || after.IsNegative() {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Stock quantities cannot be negative")
	}
	if len(reason) > 255 {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Reason cannot exceed 255 characters")
	}

	return &InventoryAdjustment{
		ID:             uuid.New(),
		EntityType:     entityType,
		EntityID:       entityID,
		AdjustmentType: adjustmentType,
		QuantityBefore: before,
		QuantityAfter:  after,
		Reason:         reason,
		ActorID:        actor.ID,
		ActorRole:      actor.Role,
		CreatedAt:      time.Now(),
	}, nil
}

// WithReference links the adjustment to the document that caused it
func (a *InventoryAdjustment) WithReference(refType ReferenceType, refID uuid.UUID) *InventoryAdjustment {
	a.ReferenceType = refType
	a.ReferenceID = &refID
	return a
}

// Delta returns the signed change in stock
func (a *InventoryAdjustment) Delta() decimal.Decimal {
	return a.QuantityAfter.Sub(a.QuantityBefore)
}

// IsIncrease reports whether the adjustment raised stock
func (a *InventoryAdjustment) IsIncrease() bool {
	return a.Delta().IsPositive()
}
