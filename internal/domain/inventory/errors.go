package inventory

import "github.com/erp/manufacturing/internal/domain/shared"

var (
	ErrReservationNotFound = shared.NewDomainError("RESERVATION_NOT_FOUND", "Reservation not found")
	ErrAdjustmentNotFound  = shared.NewDomainError("ADJUSTMENT_NOT_FOUND", "Inventory adjustment not found")
	ErrReservationExpired  = shared.NewDomainError("RESERVATION_EXPIRED", "Reservation has expired and no longer holds stock")
)
