package handler

import (
	"time"

	invapp "github.com/erp/manufacturing/internal/application/inventory"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReservationHandler handles stock reservation and available-to-promise endpoints
type ReservationHandler struct {
	BaseHandler
	service *invapp.ReservationService
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(service *invapp.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// CreateReservationRequest is the body of POST /reservations. When type is
// omitted it is inferred from order_ref.
type CreateReservationRequest struct {
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
	Type         string          `json:"type" binding:"omitempty,oneof=order manual"`
	OrderRef     string          `json:"order_ref" binding:"max=100"`
	OrderLineRef string          `json:"order_line_ref" binding:"max=100"`
	ExpiresAt    *time.Time      `json:"expires_at"`
}

// ListReservationsQuery holds the query parameters of GET /reservations
type ListReservationsQuery struct {
	ProductID string `form:"product_id" binding:"required,uuid"`
}

// ReleaseByOrderResponse reports how many reservations an order release freed
type ReleaseByOrderResponse struct {
	OrderRef string `json:"order_ref"`
	Released int64  `json:"released"`
}

// Create handles POST /reservations
// @Summary      Reserve product stock
// @Description  Hold finished stock for an order or manually; fails when available-to-promise is short
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param        request body CreateReservationRequest true "Reservation"
// @Success      201 {object} dto.Response{data=invapp.ReserveResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreateReservationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.service.Reserve(c.Request.Context(), actor, invapp.ReserveInput{
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		Type:         inventory.ReservationType(req.Type),
		OrderRef:     req.OrderRef,
		OrderLineRef: req.OrderLineRef,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List handles GET /reservations?product_id=
// @Summary      List reservations
// @Description  List the active reservations of a product
// @Tags         reservations
// @Produce      json
// @Param        product_id query string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]invapp.ReservationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reservations [get]
func (h *ReservationHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var query ListReservationsQuery
	if !h.bindQuery(c, &query) {
		return
	}

	reservations, err := h.service.ListByProduct(c.Request.Context(), actor, uuid.MustParse(query.ProductID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reservations)
}

// Release handles DELETE /reservations/:id
// @Summary      Release a reservation
// @Description  Delete a reservation, returning its quantity to available-to-promise
// @Tags         reservations
// @Produce      json
// @Param        id path string true "Reservation ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reservations/{id} [delete]
func (h *ReservationHandler) Release(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Release(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Fulfill handles POST /reservations/:id/fulfill. The reserved quantity is
// shipped: product stock drops and the reservation is consumed.
// @Summary      Fulfill a reservation
// @Description  Ship the reserved quantity: product stock drops and the reservation is consumed
// @Tags         reservations
// @Produce      json
// @Param        id path string true "Reservation ID" format(uuid)
// @Success      200 {object} dto.Response{data=invapp.FulfillmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reservations/{id}/fulfill [post]
func (h *ReservationHandler) Fulfill(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.Fulfill(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ReleaseByOrder handles DELETE /orders/:order_ref/reservations
// @Summary      Release an order's reservations
// @Description  Delete every reservation held for an order reference
// @Tags         reservations
// @Produce      json
// @Param        order_ref path string true "Order reference"
// @Success      200 {object} dto.Response{data=ReleaseByOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{order_ref}/reservations [delete]
func (h *ReservationHandler) ReleaseByOrder(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	orderRef := c.Param("order_ref")

	released, err := h.service.ReleaseByOrder(c.Request.Context(), actor, orderRef)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ReleaseByOrderResponse{OrderRef: orderRef, Released: released})
}

// ATP handles GET /products/:id/atp
// @Summary      Get available-to-promise
// @Description  Report product stock, active reservations and what is left to promise
// @Tags         reservations
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventory.AvailableToPromise}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/atp [get]
func (h *ReservationHandler) ATP(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	atp, err := h.service.ATP(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, atp)
}
