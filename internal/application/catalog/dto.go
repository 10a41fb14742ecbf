package catalog

import (
	"time"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateMaterialRequest represents a request to create a new material.
// Materials start with zero stock; opening balances are booked as adjustments.
type CreateMaterialRequest struct {
	Code             string           `json:"code" binding:"required,min=1,max=50"`
	Name             string           `json:"name" binding:"required,min=1,max=200"`
	Category         string           `json:"category" binding:"max=100"`
	Unit             string           `json:"unit" binding:"required,min=1,max=20"`
	ReorderThreshold *decimal.Decimal `json:"reorder_threshold"`
}

// UpdateMaterialRequest represents a request to update a material
type UpdateMaterialRequest struct {
	Name             *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Category         *string          `json:"category" binding:"omitempty,max=100"`
	Unit             *string          `json:"unit" binding:"omitempty,min=1,max=20"`
	ReorderThreshold *decimal.Decimal `json:"reorder_threshold"`
}

// MaterialResponse represents a material in API responses
type MaterialResponse struct {
	ID               uuid.UUID       `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	Unit             string          `json:"unit"`
	Stock            decimal.Decimal `json:"stock"`
	ReorderThreshold decimal.Decimal `json:"reorder_threshold"`
	BelowThreshold   bool            `json:"below_threshold"`
	Version          int             `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// MaterialListFilter represents filter options for the material list
type MaterialListFilter struct {
	Search         string `form:"search"`
	Category       string `form:"category"`
	BelowThreshold bool   `form:"below_threshold"`
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PageSize       int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy        string `form:"order_by"`
	OrderDir       string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToMaterialResponse converts a domain Material to MaterialResponse
func ToMaterialResponse(m *catalog.Material) MaterialResponse {
	return MaterialResponse{
		ID:               m.ID,
		Code:             m.Code,
		Name:             m.Name,
		Category:         m.Category,
		Unit:             m.Unit,
		Stock:            m.Stock,
		ReorderThreshold: m.ReorderThreshold,
		BelowThreshold:   m.IsBelowThreshold(),
		Version:          m.GetVersion(),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// ToMaterialResponses converts a slice of domain Materials to responses
func ToMaterialResponses(materials []catalog.Material) []MaterialResponse {
	responses := make([]MaterialResponse, len(materials))
	for i := range materials {
		responses[i] = ToMaterialResponse(&materials[i])
	}
	return responses
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	SKU              string           `json:"sku" binding:"required,min=1,max=50"`
	Name             string           `json:"name" binding:"required,min=1,max=200"`
	ReorderThreshold *decimal.Decimal `json:"reorder_threshold"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name             *string          `json:"name" binding:"omitempty,min=1,max=200"`
	ReorderThreshold *decimal.Decimal `json:"reorder_threshold"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID               uuid.UUID       `json:"id"`
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	Stock            decimal.Decimal `json:"stock"`
	ReorderThreshold decimal.Decimal `json:"reorder_threshold"`
	BelowThreshold   bool            `json:"below_threshold"`
	Version          int             `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		SKU:              p.SKU,
		Name:             p.Name,
		Stock:            p.Stock,
		ReorderThreshold: p.ReorderThreshold,
		BelowThreshold:   p.IsBelowThreshold(),
		Version:          p.GetVersion(),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain Products to responses
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// SetBOMLineRequest sets how much of a material goes into a product.
// Basis is "per_unit" (scaled by the produced quantity) or "direct" (used as-is).
type SetBOMLineRequest struct {
	Basis        string          `json:"basis" binding:"required,oneof=per_unit direct"`
	Quantity     decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
	UnitOverride string          `json:"unit_override" binding:"max=20"`
}

// BOMLineResponse represents one recipe line in API responses
type BOMLineResponse struct {
	ProductID    uuid.UUID             `json:"product_id"`
	MaterialID   uuid.UUID             `json:"material_id"`
	MaterialCode string                `json:"material_code"`
	MaterialName string                `json:"material_name"`
	Basis        catalog.QuantityBasis `json:"basis"`
	Quantity     decimal.Decimal       `json:"quantity"`
	Unit         string                `json:"unit"`
}

// ToBOMLineResponse converts a recipe line, resolving the material's display fields.
// The override unit wins over the material's own unit.
func ToBOMLineResponse(line *catalog.BOMLine, material *catalog.Material) BOMLineResponse {
	resp := BOMLineResponse{
		ProductID:  line.ProductID,
		MaterialID: line.MaterialID,
		Basis:      line.Quantity.Basis(),
		Quantity:   line.Quantity.Value(),
		Unit:       line.UnitOverride,
	}
	if material != nil {
		resp.MaterialCode = material.Code
		resp.MaterialName = material.Name
		if resp.Unit == "" {
			resp.Unit = material.Unit
		}
	}
	return resp
}
