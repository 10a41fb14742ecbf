package production

import (
	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Requirement is the quantity of one material needed for a production run
type Requirement struct {
	MaterialID       uuid.UUID
	Basis            catalog.QuantityBasis
	QuantityRequired decimal.Decimal
}

// Expand maps a product's recipe and an output quantity to material requirements.
// It returns exactly one requirement per BOM line, in line order.
func Expand(productID uuid.UUID, lines []catalog.BOMLine, quantityRequested decimal.Decimal) ([]Requirement, error) {
	if !quantityRequested.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError(ErrNoBillOfMaterials.Code, "Product "+productID.String()+" has no bill of materials")
	}

	requirements := make([]Requirement, 0, len(lines))
	for _, line := range lines {
		requirements = append(requirements, Requirement{
			MaterialID:       line.MaterialID,
			Basis:            line.Quantity.Basis(),
			QuantityRequired: line.Quantity.RequiredFor(quantityRequested),
		})
	}
	return requirements, nil
}

// MaterialIDs returns the distinct material IDs referenced by requirements
func MaterialIDs(requirements []Requirement) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(requirements))
	ids := make([]uuid.UUID, 0, len(requirements))
	for _, r := range requirements {
		if _, ok := seen[r.MaterialID]; ok {
			continue
		}
		seen[r.MaterialID] = struct{}{}
		ids = append(ids, r.MaterialID)
	}
	return ids
}
