package models

import (
	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialModel is the persistence model for the Material aggregate root.
type MaterialModel struct {
	AggregateModel
	Code             string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_material_code"`
	Name             string          `gorm:"type:varchar(200);not null"`
	Category         string          `gorm:"type:varchar(100);index"`
	Unit             string          `gorm:"type:varchar(20);not null"`
	Stock            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderThreshold decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (MaterialModel) TableName() string {
	return "materials"
}

// ToDomain converts the persistence model to a domain Material.
func (m *MaterialModel) ToDomain() *catalog.Material {
	return &catalog.Material{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Category:          m.Category,
		Unit:              m.Unit,
		Stock:             m.Stock,
		ReorderThreshold:  m.ReorderThreshold,
	}
}

// FromDomain populates the persistence model from a domain Material.
func (m *MaterialModel) FromDomain(mat *catalog.Material) {
	m.FromDomainAggregateRoot(mat.BaseAggregateRoot)
	m.Code = mat.Code
	m.Name = mat.Name
	m.Category = mat.Category
	m.Unit = mat.Unit
	m.Stock = mat.Stock
	m.ReorderThreshold = mat.ReorderThreshold
}

// MaterialModelFromDomain creates a new persistence model from domain Material.
func MaterialModelFromDomain(mat *catalog.Material) *MaterialModel {
	m := &MaterialModel{}
	m.FromDomain(mat)
	return m
}

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	AggregateModel
	SKU              string          `gorm:"column:sku;type:varchar(50);not null;uniqueIndex:idx_product_sku"`
	Name             string          `gorm:"type:varchar(200);not null"`
	Stock            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderThreshold decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		SKU:               m.SKU,
		Name:              m.Name,
		Stock:             m.Stock,
		ReorderThreshold:  m.ReorderThreshold,
	}
}

// FromDomain populates the persistence model from a domain Product.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.SKU = p.SKU
	m.Name = p.Name
	m.Stock = p.Stock
	m.ReorderThreshold = p.ReorderThreshold
}

// ProductModelFromDomain creates a new persistence model from domain Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// BOMLineModel is one row of a product's recipe. A material appears at
// most once per product.
type BOMLineModel struct {
	BaseModel
	ProductID     uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_bom_product_material,priority:1"`
	MaterialID    uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_bom_product_material,priority:2;index"`
	QuantityBasis catalog.QuantityBasis `gorm:"type:varchar(20);not null"`
	Quantity      decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	UnitOverride  string                `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (BOMLineModel) TableName() string {
	return "bom_lines"
}

// ToDomain converts the persistence model to a domain BOMLine.
// Rows violating the quantity invariant are reported rather than silently coerced.
func (m *BOMLineModel) ToDomain() (*catalog.BOMLine, error) {
	qty, err := catalog.ParseBOMQuantity(string(m.QuantityBasis), m.Quantity)
	if err != nil {
		return nil, err
	}
	return &catalog.BOMLine{
		BaseEntity:   m.BaseModel.ToDomain(),
		ProductID:    m.ProductID,
		MaterialID:   m.MaterialID,
		Quantity:     qty,
		UnitOverride: m.UnitOverride,
	}, nil
}

// FromDomain populates the persistence model from a domain BOMLine.
func (m *BOMLineModel) FromDomain(l *catalog.BOMLine) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.ProductID = l.ProductID
	m.MaterialID = l.MaterialID
	m.QuantityBasis = l.Quantity.Basis()
	m.Quantity = l.Quantity.Value()
	m.UnitOverride = l.UnitOverride
}
