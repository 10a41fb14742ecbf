package catalog

import "github.com/erp/manufacturing/internal/domain/shared"

var (
	ErrProductNotFound  = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	ErrMaterialNotFound = shared.NewDomainError("MATERIAL_NOT_FOUND", "Material not found")
	ErrBOMLineNotFound  = shared.NewDomainError("BOM_LINE_NOT_FOUND", "Bill of materials line not found")
	ErrMaterialInUse    = shared.NewDomainError("MATERIAL_IN_USE", "Material is referenced by a bill of materials or a production request")
	ErrDuplicateCode    = shared.NewDomainError("ALREADY_EXISTS", "Code is already in use")
)
