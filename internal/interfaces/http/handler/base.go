package handler

import (
	"errors"
	"net/http"

	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/logger"
	"github.com/erp/manufacturing/internal/interfaces/http/dto"
	"github.com/erp/manufacturing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// writePage sends one page of a list with its pagination meta
func writePage[T any](c *gin.Context, page *shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response and tags the request with the error code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.Set(middleware.ErrorCodeKey, code)
	c.JSON(statusCode, dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
}

// HandleError converts service errors to HTTP responses. Domain errors keep
// their code and message; INSUFFICIENT_MATERIALS also lists every shortage.
// Anything else is logged and reported as a bare 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		_ = c.Error(err)
		logger.FromContext(c.Request.Context()).Error("Unhandled error",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
		return
	}

	resp := dto.NewErrorResponse(domainErr.Code, domainErr.Message, middleware.GetRequestID(c))
	var shortage *production.InsufficientMaterialsError
	if errors.As(err, &shortage) {
		resp.Error.Message = shortage.Error()
		resp.Error.Shortages = dto.ToShortageDetails(shortage.Shortages)
	}

	c.Set(middleware.ErrorCodeKey, domainErr.Code)
	c.JSON(dto.GetHTTPStatus(domainErr.Code), resp)
}

// actor returns the authenticated caller, writing a 401 when there is none
func (h *BaseHandler) actor(c *gin.Context) (shared.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.Unauthorized(c)
		return shared.Actor{}, false
	}
	return actor, true
}

// uuidParam parses a UUID path parameter, writing a 400 when it is malformed
func (h *BaseHandler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the request body, writing a 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.Set(middleware.ErrorCodeKey, dto.ErrCodeValidation)
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters, writing a 400 on failure
func (h *BaseHandler) bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.Set(middleware.ErrorCodeKey, dto.ErrCodeValidation)
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}
