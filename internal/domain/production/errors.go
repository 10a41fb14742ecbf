package production

import (
	"fmt"
	"strings"

	"github.com/erp/manufacturing/internal/domain/shared"
)

var (
	ErrNoBillOfMaterials     = shared.NewDomainError("NO_BILL_OF_MATERIALS", "Product has no bill of materials")
	ErrRequestNotFound       = shared.NewDomainError("REQUEST_NOT_FOUND", "Production request not found")
	ErrAlreadyCompleted      = shared.NewDomainError("ALREADY_COMPLETED", "Production request is already completed")
	ErrRequestCompleted      = shared.NewDomainError("REQUEST_COMPLETED", "Production request has been completed")
	ErrRequestCancelled      = shared.NewDomainError("REQUEST_CANCELLED", "Production request has been cancelled")
	ErrInsufficientMaterials = shared.NewDomainError("INSUFFICIENT_MATERIALS", "Insufficient materials to complete production")
	ErrInvalidQuantity       = shared.NewDomainError(shared.ErrInvalidInput.Code, "Requested quantity must be positive")
)

// InsufficientMaterialsError lists every material that is short, not just the first
type InsufficientMaterialsError struct {
	Shortages []MaterialAvailability
}

// NewInsufficientMaterialsError builds the error from the short lines of a report
func NewInsufficientMaterialsError(shortages []MaterialAvailability) *InsufficientMaterialsError {
	return &InsufficientMaterialsError{Shortages: shortages}
}

// Error implements the error interface
func (e *InsufficientMaterialsError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		name := s.MaterialName
		if name == "" {
			name = s.MaterialID.String()
		}
		parts = append(parts, fmt.Sprintf("%s (required %s, available %s)", name, s.Required.String(), s.Available.String()))
	}
	return ErrInsufficientMaterials.Message + ": " + strings.Join(parts, ", ")
}

// Unwrap exposes the sentinel so callers can use errors.Is and errors.As on *shared.DomainError
func (e *InsufficientMaterialsError) Unwrap() error {
	return ErrInsufficientMaterials
}
