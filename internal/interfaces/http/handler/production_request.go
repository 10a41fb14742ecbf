package handler

import (
	prodapp "github.com/erp/manufacturing/internal/application/production"
	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductionRequestHandler handles production request endpoints
type ProductionRequestHandler struct {
	BaseHandler
	service *prodapp.Service
}

// NewProductionRequestHandler creates a new ProductionRequestHandler
func NewProductionRequestHandler(service *prodapp.Service) *ProductionRequestHandler {
	return &ProductionRequestHandler{service: service}
}

// CreateProductionRequestRequest is the body of POST /production-requests
type CreateProductionRequestRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
	Notes     string          `json:"notes" binding:"max=1000"`
}

// PreviewRequest is the body of POST /production-requests/preview
type PreviewRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
}

// CancelRequest is the optional body of POST /production-requests/:id/cancel
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ListProductionRequestsQuery holds the query parameters of GET /production-requests
type ListProductionRequestsQuery struct {
	Status    string `form:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
	OrderBy   string `form:"order_by" binding:"omitempty,max=50"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Create handles POST /production-requests. The response carries the
// availability evaluated at creation; a shortfall does not block creation.
// @Summary      Create a production request
// @Description  Create a pending request, snapshotting the recipe and the material availability at request time
// @Tags         production-requests
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param        request body CreateProductionRequestRequest true "Product and quantity"
// @Success      201 {object} dto.Response{data=prodapp.CreateRequestResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /production-requests [post]
func (h *ProductionRequestHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreateProductionRequestRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.service.Create(c.Request.Context(), actor, prodapp.CreateRequestInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Notes:     req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Preview handles POST /production-requests/preview
// @Summary      Preview material availability
// @Description  Evaluate the recipe against current stock without creating anything
// @Tags         production-requests
// @Accept       json
// @Produce      json
// @Param        request body PreviewRequest true "Product and quantity"
// @Success      200 {object} dto.Response{data=prodapp.PreviewResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /production-requests/preview [post]
func (h *ProductionRequestHandler) Preview(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req PreviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.service.Preview(c.Request.Context(), actor, req.ProductID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List handles GET /production-requests
// @Summary      List production requests
// @Description  List production requests with status and product filters
// @Tags         production-requests
// @Produce      json
// @Param        status query string false "Status" Enums(pending, in_progress, completed, cancelled)
// @Param        product_id query string false "Product ID" format(uuid)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Items per page" minimum(1) maximum(100)
// @Success      200 {object} dto.Response{data=[]prodapp.RequestResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /production-requests [get]
func (h *ProductionRequestHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var query ListProductionRequestsQuery
	if !h.bindQuery(c, &query) {
		return
	}

	filter := prodapp.RequestListFilter{
		Status:   production.RequestStatus(query.Status),
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.ProductID != "" {
		productID := uuid.MustParse(query.ProductID)
		filter.ProductID = &productID
	}

	page, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writePage(c, page)
}

// Get handles GET /production-requests/:id
// @Summary      Get a production request
// @Description  Fetch one production request with its material snapshot
// @Tags         production-requests
// @Produce      json
// @Param        id path string true "Production request ID" format(uuid)
// @Success      200 {object} dto.Response{data=prodapp.RequestResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /production-requests/{id} [get]
func (h *ProductionRequestHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	req, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, req)
}

// Start handles POST /production-requests/:id/start
// @Summary      Start a production request
// @Description  Move a pending request to in_progress
// @Tags         production-requests
// @Produce      json
// @Param        id path string true "Production request ID" format(uuid)
// @Success      200 {object} dto.Response{data=prodapp.RequestResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /production-requests/{id}/start [post]
func (h *ProductionRequestHandler) Start(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	req, err := h.service.Start(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, req)
}

// Complete handles POST /production-requests/:id/complete. Materials are
// consumed and the product credited in one transaction; on a shortfall the
// 422 body lists every short material.
// @Summary      Complete a production request
// @Description  Consume the recipe materials and add the finished quantity to product stock in one transaction
// @Tags         production-requests
// @Produce      json
// @Param        id path string true "Production request ID" format(uuid)
// @Success      200 {object} dto.Response{data=prodapp.RequestResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /production-requests/{id}/complete [post]
func (h *ProductionRequestHandler) Complete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	req, err := h.service.Complete(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, req)
}

// Cancel handles POST /production-requests/:id/cancel
// @Summary      Cancel a production request
// @Description  Cancel a request that has not completed
// @Tags         production-requests
// @Accept       json
// @Produce      json
// @Param        id path string true "Production request ID" format(uuid)
// @Param        request body CancelRequest false "Cancellation reason"
// @Success      200 {object} dto.Response{data=prodapp.RequestResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /production-requests/{id}/cancel [post]
func (h *ProductionRequestHandler) Cancel(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req CancelRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
