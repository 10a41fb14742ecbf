package handler

import (
	catalogapp "github.com/erp/manufacturing/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// ProductHandler handles finished-product and bill-of-materials endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// Create handles POST /products
// @Summary      Create a product
// @Description  Register a finished product with zero stock
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product details"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetByID handles GET /products/:id
// @Summary      Get a product
// @Description  Fetch one finished product with its current stock
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List handles GET /products
// @Summary      List products
// @Description  List finished products
// @Tags         products
// @Produce      json
// @Param        search query string false "SKU or name contains"
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Items per page" minimum(1) maximum(100)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.productService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writePage(c, page)
}

// Update handles PUT /products/:id
// @Summary      Update a product
// @Description  Change descriptive fields of a product; stock is only changed through adjustments
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.UpdateProductRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ListBOM handles GET /products/:id/bom
// @Summary      List the bill of materials
// @Description  List the recipe lines of a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]catalogapp.BOMLineResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/bom [get]
func (h *ProductHandler) ListBOM(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	lines, err := h.productService.ListBOM(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lines)
}

// SetBOMLine handles PUT /products/:id/bom/:material_id, creating or
// replacing the recipe line for that material
// @Summary      Set a recipe line
// @Description  Create or replace the recipe line for one material
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        material_id path string true "Material ID" format(uuid)
// @Param        request body catalogapp.SetBOMLineRequest true "Recipe line"
// @Success      200 {object} dto.Response{data=catalogapp.BOMLineResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/bom/{material_id} [put]
func (h *ProductHandler) SetBOMLine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	materialID, ok := h.uuidParam(c, "material_id")
	if !ok {
		return
	}
	var req catalogapp.SetBOMLineRequest
	if !h.bindJSON(c, &req) {
		return
	}

	line, err := h.productService.SetBOMLine(c.Request.Context(), actor, productID, materialID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, line)
}

// RemoveBOMLine handles DELETE /products/:id/bom/:material_id
// @Summary      Remove a recipe line
// @Description  Remove the recipe line for one material
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        material_id path string true "Material ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/bom/{material_id} [delete]
func (h *ProductHandler) RemoveBOMLine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	materialID, ok := h.uuidParam(c, "material_id")
	if !ok {
		return
	}

	if err := h.productService.RemoveBOMLine(c.Request.Context(), actor, productID, materialID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
