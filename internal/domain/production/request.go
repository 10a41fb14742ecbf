package production

import (
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestStatus represents the lifecycle state of a production request
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

// IsValid checks if the status is a known state
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusInProgress, RequestStatusCompleted, RequestStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled
}

// MaterialConsumptionSnapshot records, at creation time, how much of a
// material the request will consume and how much was in stock then.
// It is never modified after the request is created.
type MaterialConsumptionSnapshot struct {
	ID                         uuid.UUID
	RequestID                  uuid.UUID
	MaterialID                 uuid.UUID
	MaterialName               string
	QuantityConsumed           decimal.Decimal
	QuantityAvailableAtRequest decimal.Decimal
}

// SufficientAtRequest reports whether stock covered this line when the request was created
func (s MaterialConsumptionSnapshot) SufficientAtRequest() bool {
	return s.QuantityAvailableAtRequest.GreaterThanOrEqual(s.QuantityConsumed)
}

// ProductionRequest converts materials into a quantity of one product
type ProductionRequest struct {
	shared.BaseAggregateRoot
	ProductID         uuid.UUID
	QuantityRequested decimal.Decimal
	Status            RequestStatus
	RequestedBy       uuid.UUID
	CompletedBy       *uuid.UUID
	RequestedAt       time.Time
	StartedAt         *time.Time
	CompletedAt       *time.Time
	CancelledAt       *time.Time
	CancelReason      string
	Notes             string
	Materials         []MaterialConsumptionSnapshot
}

// NewProductionRequest creates a pending request whose material snapshot is
// taken from an advisory availability report.
func NewProductionRequest(productID uuid.UUID, quantity decimal.Decimal, requestedBy uuid.UUID, notes string, report AvailabilityReport) (*ProductionRequest, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Product ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	if len(report.PerMaterial) == 0 {
		return nil, ErrNoBillOfMaterials
	}
	if len(notes) > 2000 {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Notes cannot exceed 2000 characters")
	}

	req := &ProductionRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		QuantityRequested: quantity,
		Status:            RequestStatusPending,
		RequestedBy:       requestedBy,
		Notes:             notes,
	}
	req.RequestedAt = req.CreatedAt

	req.Materials = make([]MaterialConsumptionSnapshot, 0, len(report.PerMaterial))
	for _, line := range report.PerMaterial {
		req.Materials = append(req.Materials, MaterialConsumptionSnapshot{
			ID:                         uuid.New(),
			RequestID:                  req.ID,
			MaterialID:                 line.MaterialID,
			MaterialName:               line.MaterialName,
			QuantityConsumed:           line.Required,
			QuantityAvailableAtRequest: line.Available,
		})
	}

	req.AddDomainEvent(NewRequestCreatedEvent(req, report.Sufficient))
	return req, nil
}

// Requirements returns the frozen consumption of the request as requirements
func (r *ProductionRequest) Requirements() []Requirement {
	reqs := make([]Requirement, 0, len(r.Materials))
	for _, m := range r.Materials {
		reqs = append(reqs, Requirement{MaterialID: m.MaterialID, QuantityRequired: m.QuantityConsumed})
	}
	return reqs
}

// MaterialIDs returns the IDs of the consumed materials
func (r *ProductionRequest) MaterialIDs() []uuid.UUID {
	return MaterialIDs(r.Requirements())
}

// Start marks the request as in progress. It has no inventory effect.
func (r *ProductionRequest) Start() error {
	switch r.Status {
	case RequestStatusPending:
	case RequestStatusCompleted:
		return ErrRequestCompleted
	case RequestStatusCancelled:
		return ErrRequestCancelled
	case RequestStatusInProgress:
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Production request is already in progress")
	default:
		return shared.ErrInvalidState
	}

	now := time.Now()
	r.Status = RequestStatusInProgress
	r.StartedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewRequestStartedEvent(r))
	return nil
}

// EnsureCompletable fails when the request is in a terminal state
func (r *ProductionRequest) EnsureCompletable() error {
	switch r.Status {
	case RequestStatusPending, RequestStatusInProgress:
		return nil
	case RequestStatusCompleted:
		return ErrAlreadyCompleted
	case RequestStatusCancelled:
		return ErrRequestCancelled
	default:
		return shared.ErrInvalidState
	}
}

// Complete closes the request. The caller must have consumed the materials
// and credited the product in the same transaction.
func (r *ProductionRequest) Complete(completedBy uuid.UUID) error {
	if err := r.EnsureCompletable(); err != nil {
		return err
	}

	now := time.Now()
	r.Status = RequestStatusCompleted
	r.CompletedBy = &completedBy
	r.CompletedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewRequestCompletedEvent(r))
	return nil
}

// Cancel abandons the request. It has no inventory effect.
func (r *ProductionRequest) Cancel(reason string) error {
	switch r.Status {
	case RequestStatusPending, RequestStatusInProgress:
	case RequestStatusCompleted:
		return ErrRequestCompleted
	case RequestStatusCancelled:
		return ErrRequestCancelled
	default:
		return shared.ErrInvalidState
	}

	now := time.Now()
	r.Status = RequestStatusCancelled
	r.CancelledAt = &now
	r.CancelReason = reason
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewRequestCancelledEvent(r))
	return nil
}

// IsTerminal reports whether the request is completed or cancelled
func (r *ProductionRequest) IsTerminal() bool {
	return r.Status.IsTerminal()
}
