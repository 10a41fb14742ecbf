package handler

import (
	catalogapp "github.com/erp/manufacturing/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// MaterialHandler handles raw material endpoints
type MaterialHandler struct {
	BaseHandler
	materialService *catalogapp.MaterialService
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(materialService *catalogapp.MaterialService) *MaterialHandler {
	return &MaterialHandler{materialService: materialService}
}

// Create handles POST /materials
// @Summary      Create a raw material
// @Description  Register a raw material with zero stock
// @Tags         materials
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateMaterialRequest true "Material details"
// @Success      201 {object} dto.Response{data=catalogapp.MaterialResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /materials [post]
func (h *MaterialHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req catalogapp.CreateMaterialRequest
	if !h.bindJSON(c, &req) {
		return
	}

	material, err := h.materialService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, material)
}

// GetByID handles GET /materials/:id
// @Summary      Get a raw material
// @Description  Fetch one raw material with its current stock
// @Tags         materials
// @Produce      json
// @Param        id path string true "Material ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.MaterialResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /materials/{id} [get]
func (h *MaterialHandler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	material, err := h.materialService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, material)
}

// List handles GET /materials
// @Summary      List raw materials
// @Description  List raw materials with search, category and low-stock filters
// @Tags         materials
// @Produce      json
// @Param        search query string false "Code or name contains"
// @Param        category query string false "Category"
// @Param        below_threshold query bool false "Only materials at or below their reorder threshold"
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Items per page" minimum(1) maximum(100)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]catalogapp.MaterialResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /materials [get]
func (h *MaterialHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter catalogapp.MaterialListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.materialService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writePage(c, page)
}

// Update handles PUT /materials/:id
// @Summary      Update a raw material
// @Description  Change descriptive fields of a raw material; stock is only changed through adjustments
// @Tags         materials
// @Accept       json
// @Produce      json
// @Param        id path string true "Material ID" format(uuid)
// @Param        request body catalogapp.UpdateMaterialRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=catalogapp.MaterialResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /materials/{id} [put]
func (h *MaterialHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateMaterialRequest
	if !h.bindJSON(c, &req) {
		return
	}

	material, err := h.materialService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, material)
}

// Delete handles DELETE /materials/:id. Materials still used by a recipe or
// a production request are refused with MATERIAL_IN_USE.
// @Summary      Delete a raw material
// @Description  Delete a raw material no recipe or production request refers to
// @Tags         materials
// @Produce      json
// @Param        id path string true "Material ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /materials/{id} [delete]
func (h *MaterialHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.materialService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
