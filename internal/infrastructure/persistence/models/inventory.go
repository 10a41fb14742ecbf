package models

import (
	"time"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryAdjustmentModel is the persistence model for one ledger entry.
// Rows are inserted and never updated.
type InventoryAdjustmentModel struct {
	ID             uuid.UUID                `gorm:"type:uuid;primary_key"`
	EntityType     inventory.EntityType     `gorm:"type:varchar(20);not null;index:idx_adjustment_entity,priority:1"`
	EntityID       uuid.UUID                `gorm:"type:uuid;not null;index:idx_adjustment_entity,priority:2"`
	AdjustmentType inventory.AdjustmentType `gorm:"type:varchar(30);not null;index"`
	QuantityBefore decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	QuantityAfter  decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Reason         string                   `gorm:"type:varchar(500)"`
	ActorID        uuid.UUID                `gorm:"type:uuid;not null"`
	ActorRole      string                   `gorm:"type:varchar(20);not null"`
	ReferenceType  inventory.ReferenceType  `gorm:"type:varchar(30)"`
	ReferenceID    *uuid.UUID               `gorm:"type:uuid;index"`
	CreatedAt      time.Time                `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (InventoryAdjustmentModel) TableName() string {
	return "inventory_adjustments"
}

// ToDomain converts the persistence model to a domain InventoryAdjustment.
func (m *InventoryAdjustmentModel) ToDomain() *inventory.InventoryAdjustment {
	return &inventory.InventoryAdjustment{
		ID:             m.ID,
		EntityType:     m.EntityType,
		EntityID:       m.EntityID,
		AdjustmentType: m.AdjustmentType,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Reason:         m.Reason,
		ActorID:        m.ActorID,
		ActorRole:      shared.Role(m.ActorRole),
		ReferenceType:  m.ReferenceType,
		ReferenceID:    m.ReferenceID,
		CreatedAt:      m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain InventoryAdjustment.
func (m *InventoryAdjustmentModel) FromDomain(a *inventory.InventoryAdjustment) {
	m.ID = a.ID
	m.EntityType = a.EntityType
	m.EntityID = a.EntityID
	m.AdjustmentType = a.AdjustmentType
	m.QuantityBefore = a.QuantityBefore
	m.QuantityAfter = a.QuantityAfter
	m.Reason = a.Reason
	m.ActorID = a.ActorID
	m.ActorRole = a.ActorRole.String()
	m.ReferenceType = a.ReferenceType
	m.ReferenceID = a.ReferenceID
	m.CreatedAt = a.CreatedAt
}

// StockReservationModel is the persistence model for a product reservation.
// Timestamps are stored in UTC so expiry comparisons are lexical-safe on SQLite.
type StockReservationModel struct {
	ID              uuid.UUID                 `gorm:"type:uuid;primary_key"`
	ProductID       uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Quantity        decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	ReservationType inventory.ReservationType `gorm:"type:varchar(20);not null"`
	OrderRef        string                    `gorm:"type:varchar(100);index"`
	OrderLineRef    string                    `gorm:"type:varchar(100)"`
	ExpiresAt       *time.Time                `gorm:"index"`
	CreatedBy       uuid.UUID                 `gorm:"type:uuid;not null"`
	CreatedAt       time.Time                 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockReservationModel) TableName() string {
	return "stock_reservations"
}

// ToDomain converts the persistence model to a domain StockReservation.
func (m *StockReservationModel) ToDomain() *inventory.StockReservation {
	return &inventory.StockReservation{
		ID:              m.ID,
		ProductID:       m.ProductID,
		Quantity:        m.Quantity,
		ReservationType: m.ReservationType,
		OrderRef:        m.OrderRef,
		OrderLineRef:    m.OrderLineRef,
		ExpiresAt:       m.ExpiresAt,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain StockReservation.
func (m *StockReservationModel) FromDomain(r *inventory.StockReservation) {
	m.ID = r.ID
	m.ProductID = r.ProductID
	m.Quantity = r.Quantity
	m.ReservationType = r.ReservationType
	m.OrderRef = r.OrderRef
	m.OrderLineRef = r.OrderLineRef
	m.ExpiresAt = nil
	if r.ExpiresAt != nil {
		t := r.ExpiresAt.UTC()
		m.ExpiresAt = &t
	}
	m.CreatedBy = r.CreatedBy
	m.CreatedAt = r.CreatedAt.UTC()
}

// AllModels lists every persistence model, in dependency order, for AutoMigrate in tests.
func AllModels() []interface{} {
	return []interface{}{
		&MaterialModel{},
		&ProductModel{},
		&BOMLineModel{},
		&ProductionRequestModel{},
		&MaterialConsumptionModel{},
		&InventoryAdjustmentModel{},
		&StockReservationModel{},
	}
}
