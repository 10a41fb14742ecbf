package production

import (
	"context"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// RequestFilter narrows request listings
type RequestFilter struct {
	shared.Filter
	Status    RequestStatus
	ProductID *uuid.UUID
}

// ProductionRequestRepository defines persistence for production requests.
// Snapshot rows are written together with their request on create and are never updated.
type ProductionRequestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductionRequest, error)

	// FindByIDForUpdate loads the request holding a row lock until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ProductionRequest, error)

	FindAll(ctx context.Context, filter RequestFilter) ([]ProductionRequest, error)
	Count(ctx context.Context, filter RequestFilter) (int64, error)

	// Create inserts the request and its material snapshot
	Create(ctx context.Context, req *ProductionRequest) error

	// SaveWithLock updates the request header if the stored version is req.Version-1
	SaveWithLock(ctx context.Context, req *ProductionRequest) error

	ExistsForMaterial(ctx context.Context, materialID uuid.UUID) (bool, error)
}
