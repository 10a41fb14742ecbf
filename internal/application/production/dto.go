package production

import (
	"time"

	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateRequestInput is the input for creating a production request
type CreateRequestInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	Notes     string
}

// MaterialConsumptionResponse is one snapshot line of a request
type MaterialConsumptionResponse struct {
	MaterialID                 uuid.UUID       `json:"material_id"`
	MaterialName               string          `json:"material_name"`
	QuantityConsumed           decimal.Decimal `json:"quantity_consumed"`
	QuantityAvailableAtRequest decimal.Decimal `json:"quantity_available_at_request"`
}

// RequestResponse represents a production request in API responses
type RequestResponse struct {
	ID                uuid.UUID                     `json:"id"`
	ProductID         uuid.UUID                     `json:"product_id"`
	QuantityRequested decimal.Decimal               `json:"quantity_requested"`
	Status            production.RequestStatus      `json:"status"`
	RequestedBy       uuid.UUID                     `json:"requested_by"`
	CompletedBy       *uuid.UUID                    `json:"completed_by,omitempty"`
	RequestedAt       time.Time                     `json:"requested_at"`
	StartedAt         *time.Time                    `json:"started_at,omitempty"`
	CompletedAt       *time.Time                    `json:"completed_at,omitempty"`
	CancelledAt       *time.Time                    `json:"cancelled_at,omitempty"`
	CancelReason      string                        `json:"cancel_reason,omitempty"`
	Notes             string                        `json:"notes,omitempty"`
	Materials         []MaterialConsumptionResponse `json:"materials"`
	Version           int                           `json:"version"`
}

// ToRequestResponse converts a domain request to a response
func ToRequestResponse(r *production.ProductionRequest) RequestResponse {
	materials := make([]MaterialConsumptionResponse, len(r.Materials))
	for i, m := range r.Materials {
		materials[i] = MaterialConsumptionResponse{
			MaterialID:                 m.MaterialID,
			MaterialName:               m.MaterialName,
			QuantityConsumed:           m.QuantityConsumed,
			QuantityAvailableAtRequest: m.QuantityAvailableAtRequest,
		}
	}
	return RequestResponse{
		ID:                r.ID,
		ProductID:         r.ProductID,
		QuantityRequested: r.QuantityRequested,
		Status:            r.Status,
		RequestedBy:       r.RequestedBy,
		CompletedBy:       r.CompletedBy,
		RequestedAt:       r.RequestedAt,
		StartedAt:         r.StartedAt,
		CompletedAt:       r.CompletedAt,
		CancelledAt:       r.CancelledAt,
		CancelReason:      r.CancelReason,
		Notes:             r.Notes,
		Materials:         materials,
		Version:           r.GetVersion(),
	}
}

// ToRequestResponses converts a slice of domain requests
func ToRequestResponses(rs []production.ProductionRequest) []RequestResponse {
	out := make([]RequestResponse, len(rs))
	for i := range rs {
		out[i] = ToRequestResponse(&rs[i])
	}
	return out
}

// MaterialAvailabilityResponse is one line of an availability report
type MaterialAvailabilityResponse struct {
	MaterialID   uuid.UUID       `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Required     decimal.Decimal `json:"required"`
	Available    decimal.Decimal `json:"available"`
	Shortfall    decimal.Decimal `json:"shortfall"`
	Sufficient   bool            `json:"sufficient"`
}

// AvailabilityResponse is an availability report in API responses
type AvailabilityResponse struct {
	Sufficient  bool                           `json:"sufficient"`
	PerMaterial []MaterialAvailabilityResponse `json:"per_material"`
}

// ToAvailabilityResponse converts an availability report
func ToAvailabilityResponse(report production.AvailabilityReport) AvailabilityResponse {
	return AvailabilityResponse{
		Sufficient:  report.Sufficient,
		PerMaterial: ToMaterialAvailabilityResponses(report.PerMaterial),
	}
}

// ToMaterialAvailabilityResponses converts availability lines, as used for shortage details
func ToMaterialAvailabilityResponses(lines []production.MaterialAvailability) []MaterialAvailabilityResponse {
	out := make([]MaterialAvailabilityResponse, len(lines))
	for i, l := range lines {
		out[i] = MaterialAvailabilityResponse{
			MaterialID:   l.MaterialID,
			MaterialName: l.MaterialName,
			Required:     l.Required,
			Available:    l.Available,
			Shortfall:    l.Shortfall(),
			Sufficient:   l.Sufficient,
		}
	}
	return out
}

// CreateRequestResult is returned by Create: the pending request and the
// advisory availability seen when it was created
type CreateRequestResult struct {
	Request      RequestResponse      `json:"request"`
	Availability AvailabilityResponse `json:"availability"`
}

// PreviewResult is returned by Preview
type PreviewResult struct {
	ProductID    uuid.UUID            `json:"product_id"`
	Quantity     decimal.Decimal      `json:"quantity"`
	Availability AvailabilityResponse `json:"availability"`
}

// RequestListFilter represents filter options for listing requests
type RequestListFilter struct {
	Status    production.RequestStatus
	ProductID *uuid.UUID
	OrderBy   string
	OrderDir  string
	Page      int
	PageSize  int
}
