package models

import (
	"time"

	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductionRequestModel is the persistence model for the ProductionRequest aggregate root.
type ProductionRequestModel struct {
	AggregateModel
	ProductID         uuid.UUID                `gorm:"type:uuid;not null;index"`
	QuantityRequested decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Status            production.RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	RequestedBy       uuid.UUID                `gorm:"type:uuid;not null"`
	CompletedBy       *uuid.UUID               `gorm:"type:uuid"`
	RequestedAt       time.Time                `gorm:"not null"`
	StartedAt         *time.Time
	CompletedAt       *time.Time
	CancelledAt       *time.Time
	CancelReason      string `gorm:"type:varchar(500)"`
	Notes             string `gorm:"type:text"`
	// Associations
	Materials []MaterialConsumptionModel `gorm:"foreignKey:RequestID;references:ID"`
}

// TableName returns the table name for GORM
func (ProductionRequestModel) TableName() string {
	return "production_requests"
}

// ToDomain converts the persistence model to a domain ProductionRequest.
func (m *ProductionRequestModel) ToDomain() *production.ProductionRequest {
	req := &production.ProductionRequest{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ProductID:         m.ProductID,
		QuantityRequested: m.QuantityRequested,
		Status:            m.Status,
		RequestedBy:       m.RequestedBy,
		CompletedBy:       m.CompletedBy,
		RequestedAt:       m.RequestedAt,
		StartedAt:         m.StartedAt,
		CompletedAt:       m.CompletedAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		Notes:             m.Notes,
		Materials:         make([]production.MaterialConsumptionSnapshot, len(m.Materials)),
	}
	for i := range m.Materials {
		req.Materials[i] = m.Materials[i].ToDomain()
	}
	return req
}

// FromDomain populates the persistence model, including the snapshot rows.
func (m *ProductionRequestModel) FromDomain(req *production.ProductionRequest) {
	m.FromDomainAggregateRoot(req.BaseAggregateRoot)
	m.ProductID = req.ProductID
	m.QuantityRequested = req.QuantityRequested
	m.Status = req.Status
	m.RequestedBy = req.RequestedBy
	m.CompletedBy = req.CompletedBy
	m.RequestedAt = req.RequestedAt
	m.StartedAt = req.StartedAt
	m.CompletedAt = req.CompletedAt
	m.CancelledAt = req.CancelledAt
	m.CancelReason = req.CancelReason
	m.Notes = req.Notes
	m.Materials = make([]MaterialConsumptionModel, len(req.Materials))
	for i := range req.Materials {
		m.Materials[i].FromDomain(req.Materials[i])
	}
}

// ProductionRequestModelFromDomain creates a new persistence model from a domain request.
func ProductionRequestModelFromDomain(req *production.ProductionRequest) *ProductionRequestModel {
	m := &ProductionRequestModel{}
	m.FromDomain(req)
	return m
}

// MaterialConsumptionModel is one snapshot row of a production request.
type MaterialConsumptionModel struct {
	ID                         uuid.UUID       `gorm:"type:uuid;primary_key"`
	RequestID                  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_consumption_request_material,priority:1"`
	MaterialID                 uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_consumption_request_material,priority:2;index"`
	MaterialName               string          `gorm:"type:varchar(200);not null"`
	QuantityConsumed           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityAvailableAtRequest decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt                  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MaterialConsumptionModel) TableName() string {
	return "production_request_materials"
}

// ToDomain converts the persistence model to a domain snapshot row.
func (m *MaterialConsumptionModel) ToDomain() production.MaterialConsumptionSnapshot {
	return production.MaterialConsumptionSnapshot{
		ID:                         m.ID,
		RequestID:                  m.RequestID,
		MaterialID:                 m.MaterialID,
		MaterialName:               m.MaterialName,
		QuantityConsumed:           m.QuantityConsumed,
		QuantityAvailableAtRequest: m.QuantityAvailableAtRequest,
	}
}

// FromDomain populates the persistence model from a domain snapshot row.
func (m *MaterialConsumptionModel) FromDomain(s production.MaterialConsumptionSnapshot) {
	m.ID = s.ID
	m.RequestID = s.RequestID
	m.MaterialID = s.MaterialID
	m.MaterialName = s.MaterialName
	m.QuantityConsumed = s.QuantityConsumed
	m.QuantityAvailableAtRequest = s.QuantityAvailableAtRequest
}
