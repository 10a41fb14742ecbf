package handler

import (
	invapp "github.com/erp/manufacturing/internal/application/inventory"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentHandler handles manual stock adjustments and the audit trail
type AdjustmentHandler struct {
	BaseHandler
	service *invapp.AdjustmentService
}

// NewAdjustmentHandler creates a new AdjustmentHandler
func NewAdjustmentHandler(service *invapp.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{service: service}
}

// CreateAdjustmentRequest is the body of POST /adjustments.
// Exactly one of new_quantity and delta must be given.
type CreateAdjustmentRequest struct {
	EntityType  string           `json:"entity_type" binding:"required,oneof=material product"`
	EntityID    uuid.UUID        `json:"entity_id" binding:"required"`
	NewQuantity *decimal.Decimal `json:"new_quantity" binding:"omitempty,decimal_gte0"`
	Delta       *decimal.Decimal `json:"delta"`
	Reason      string           `json:"reason" binding:"required,max=500"`
}

// ListAdjustmentsQuery holds the query parameters of GET /adjustments
type ListAdjustmentsQuery struct {
	EntityType     string `form:"entity_type" binding:"omitempty,oneof=material product"`
	EntityID       string `form:"entity_id" binding:"omitempty,uuid"`
	AdjustmentType string `form:"adjustment_type" binding:"omitempty,oneof=manual_adjustment production_consumption production_output order_fulfillment"`
	ReferenceID    string `form:"reference_id" binding:"omitempty,uuid"`
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PageSize       int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Create handles POST /adjustments
// @Summary      Adjust stock manually
// @Description  Set a new quantity or apply a delta to a material or product, recording the audit entry
// @Tags         adjustments
// @Accept       json
// @Produce      json
// @Param        request body CreateAdjustmentRequest true "Adjustment"
// @Success      201 {object} dto.Response{data=invapp.AdjustmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /adjustments [post]
func (h *AdjustmentHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreateAdjustmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	adj, err := h.service.Adjust(c.Request.Context(), actor, invapp.AdjustInput{
		EntityType:  inventory.EntityType(req.EntityType),
		EntityID:    req.EntityID,
		NewQuantity: req.NewQuantity,
		Delta:       req.Delta,
		Reason:      req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, adj)
}

// List handles GET /adjustments, newest first
// @Summary      List stock adjustments
// @Description  List the inventory audit trail, newest first
// @Tags         adjustments
// @Produce      json
// @Param        entity_type query string false "Entity type" Enums(material, product)
// @Param        entity_id query string false "Entity ID" format(uuid)
// @Param        adjustment_type query string false "Adjustment type" Enums(manual_adjustment, production_consumption, production_output, order_fulfillment)
// @Param        reference_id query string false "Reference ID" format(uuid)
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Items per page" minimum(1) maximum(100)
// @Success      200 {object} dto.Response{data=[]invapp.AdjustmentResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /adjustments [get]
func (h *AdjustmentHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var query ListAdjustmentsQuery
	if !h.bindQuery(c, &query) {
		return
	}

	filter := invapp.AdjustmentListFilter{
		EntityType:     inventory.EntityType(query.EntityType),
		AdjustmentType: inventory.AdjustmentType(query.AdjustmentType),
		EntityID:       optionalUUID(query.EntityID),
		ReferenceID:    optionalUUID(query.ReferenceID),
		Page:           query.Page,
		PageSize:       query.PageSize,
	}

	page, err := h.service.History(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writePage(c, page)
}

// optionalUUID parses an already validated query value; empty means unset
func optionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id := uuid.MustParse(s)
	return &id
}
