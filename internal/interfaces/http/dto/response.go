package dto

import (
	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Response is the envelope for every API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo describes a failed request
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
	Shortages []ShortageDetail   `json:"shortages,omitempty"`
}

// ValidationDetail names one invalid request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ShortageDetail is one material line that cannot be covered by stock
type ShortageDetail struct {
	MaterialID   uuid.UUID       `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Required     decimal.Decimal `json:"required"`
	Available    decimal.Decimal `json:"available"`
	Shortfall    decimal.Decimal `json:"shortfall"`
}

// ToShortageDetails converts the short lines of an availability report
func ToShortageDetails(lines []production.MaterialAvailability) []ShortageDetail {
	out := make([]ShortageDetail, 0, len(lines))
	for _, l := range lines {
		out = append(out, ShortageDetail{
			MaterialID:   l.MaterialID,
			MaterialName: l.MaterialName,
			Required:     l.Required,
			Available:    l.Available,
			Shortfall:    l.Shortfall(),
		})
	}
	return out
}

// Meta carries pagination for list responses
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewSuccessResponse wraps data in a success envelope
func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewPaginatedResponse renders a page of results with its metadata
func NewPaginatedResponse[T any](page *shared.Paginated[T]) Response {
	return Response{
		Success: true,
		Data:    page.Items,
		Meta: &Meta{
			Total:      page.Total,
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalPages: page.TotalPages,
		},
	}
}

// NewErrorResponse builds an error envelope
func NewErrorResponse(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}

// NewValidationErrorResponse builds a VALIDATION_ERROR envelope with per-field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponse(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}
