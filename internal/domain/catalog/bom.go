package catalog

import (
	"fmt"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuantityBasis tells how a BOM line's quantity relates to the requested output
type QuantityBasis string

const (
	// QuantityBasisPerUnit scales the line quantity by the requested output quantity
	QuantityBasisPerUnit QuantityBasis = "per_unit"
	// QuantityBasisDirect is an already totalised quantity used as-is
	QuantityBasisDirect QuantityBasis = "direct"
)

// IsValid checks if the basis is a known variant
func (b QuantityBasis) IsValid() bool {
	switch b {
	case QuantityBasisPerUnit, QuantityBasisDirect:
		return true
	}
	return false
}

// BOMQuantity is either PerUnit(value) or Direct(total). The zero value is invalid.
type BOMQuantity struct {
	basis QuantityBasis
	value decimal.Decimal
}

// PerUnit builds a quantity consumed for every unit produced
func PerUnit(value decimal.Decimal) (BOMQuantity, error) {
	return newBOMQuantity(QuantityBasisPerUnit, value)
}

// Direct builds a fixed total quantity consumed regardless of output size
func Direct(total decimal.Decimal) (BOMQuantity, error) {
	return newBOMQuantity(QuantityBasisDirect, total)
}

// ParseBOMQuantity rebuilds a quantity from its stored basis and value
func ParseBOMQuantity(basis string, value decimal.Decimal) (BOMQuantity, error) {
	b := QuantityBasis(basis)
	if !b.IsValid() {
		return BOMQuantity{}, shared.NewDomainError(shared.ErrInvalidInput.Code, fmt.Sprintf("Unknown quantity basis: %q", basis))
	}
	return newBOMQuantity(b, value)
}

func newBOMQuantity(basis QuantityBasis, value decimal.Decimal) (BOMQuantity, error) {
	if !value.IsPositive() {
		return BOMQuantity{}, shared.NewDomainError(shared.ErrInvalidInput.Code, "BOM quantity must be positive")
	}
	return BOMQuantity{basis: basis, value: value}, nil
}

// Basis returns the variant tag
func (q BOMQuantity) Basis() QuantityBasis {
	return q.basis
}

// Value returns the per-unit or total amount, depending on the basis
func (q BOMQuantity) Value() decimal.Decimal {
	return q.value
}

// IsPerUnit reports whether the quantity scales with output
func (q BOMQuantity) IsPerUnit() bool {
	return q.basis == QuantityBasisPerUnit
}

// RequiredFor returns the material quantity needed to produce outputQty units
func (q BOMQuantity) RequiredFor(outputQty decimal.Decimal) decimal.Decimal {
	switch q.basis {
	case QuantityBasisPerUnit:
		return q.value.Mul(outputQty)
	case QuantityBasisDirect:
		return q.value
	default:
		return decimal.Zero
	}
}

// String formats the quantity for logs
func (q BOMQuantity) String() string {
	return fmt.Sprintf("%s(%s)", q.basis, q.value.String())
}

// BOMLine links a product to one material it is made from.
// There is at most one line per (product, material) pair.
type BOMLine struct {
	shared.BaseEntity
	ProductID    uuid.UUID
	MaterialID   uuid.UUID
	Quantity     BOMQuantity
	UnitOverride string
}

// NewBOMLine creates a recipe line
func NewBOMLine(productID, materialID uuid.UUID, quantity BOMQuantity, unitOverride string) (*BOMLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Product ID cannot be empty")
	}
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Material ID cannot be empty")
	}
	if !quantity.basis.IsValid() {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "BOM quantity must be PerUnit or Direct")
	}
	if len(unitOverride) > 20 {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Unit cannot exceed 20 characters")
	}

	return &BOMLine{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		MaterialID:   materialID,
		Quantity:     quantity,
		UnitOverride: unitOverride,
	}, nil
}

// ChangeQuantity replaces the line quantity
func (l *BOMLine) ChangeQuantity(quantity BOMQuantity, unitOverride string) error {
	if !quantity.basis.IsValid() {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "BOM quantity must be PerUnit or Direct")
	}
	l.Quantity = quantity
	l.UnitOverride = unitOverride
	l.UpdatedAt = time.Now()
	return nil
}
