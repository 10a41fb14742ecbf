package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes. Domain errors keep the code carried by their
// *shared.DomainError.
const (
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeTokenExpired     = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid     = "TOKEN_INVALID"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
	ErrCodeServiceUnready   = "SERVICE_UNAVAILABLE"
)

// Domain error codes surfaced by the API.
const (
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeInvalidInput          = "INVALID_INPUT"
	ErrCodeInvalidState          = "INVALID_STATE"
	ErrCodeAlreadyExists         = "ALREADY_EXISTS"
	ErrCodeConcurrencyConflict   = "CONCURRENCY_CONFLICT"
	ErrCodeNoBillOfMaterials     = "NO_BILL_OF_MATERIALS"
	ErrCodeAlreadyCompleted      = "ALREADY_COMPLETED"
	ErrCodeRequestCompleted      = "REQUEST_COMPLETED"
	ErrCodeRequestCancelled      = "REQUEST_CANCELLED"
	ErrCodeInsufficientMaterials = "INSUFFICIENT_MATERIALS"
	ErrCodeInsufficientStock     = "INSUFFICIENT_STOCK"
	ErrCodeMaterialInUse         = "MATERIAL_IN_USE"
	ErrCodeReservationExpired    = "RESERVATION_EXPIRED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeTokenExpired:     http.StatusUnauthorized,
	ErrCodeTokenInvalid:     http.StatusUnauthorized,
	ErrCodeRateLimited:      http.StatusTooManyRequests,
	ErrCodePayloadTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeDuplicateRequest: http.StatusConflict,
	ErrCodeServiceUnready:   http.StatusServiceUnavailable,

	ErrCodeNotFound:              http.StatusNotFound,
	ErrCodeUnauthorized:          http.StatusUnauthorized,
	ErrCodeForbidden:             http.StatusForbidden,
	ErrCodeInvalidInput:          http.StatusBadRequest,
	ErrCodeInvalidState:          http.StatusUnprocessableEntity,
	ErrCodeAlreadyExists:         http.StatusConflict,
	ErrCodeConcurrencyConflict:   http.StatusConflict,
	ErrCodeNoBillOfMaterials:     http.StatusUnprocessableEntity,
	ErrCodeAlreadyCompleted:      http.StatusConflict,
	ErrCodeRequestCompleted:      http.StatusConflict,
	ErrCodeRequestCancelled:      http.StatusConflict,
	ErrCodeInsufficientMaterials: http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:     http.StatusUnprocessableEntity,
	ErrCodeMaterialInUse:         http.StatusConflict,
	ErrCodeReservationExpired:    http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status for an error code. Codes not in the
// table fall back by shape: *_NOT_FOUND is 404, INVALID_* is 400, and any
// other non-empty code is a business rule violation (422).
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case code == "":
		return http.StatusInternalServerError
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}
