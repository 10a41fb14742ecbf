package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService handles finished products and their bills of materials
type ProductService struct {
	productRepo  catalog.ProductRepository
	materialRepo catalog.MaterialRepository
	bomRepo      catalog.BOMRepository
	logger       *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	materialRepo catalog.MaterialRepository,
	bomRepo catalog.BOMRepository,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:  productRepo,
		materialRepo: materialRepo,
		bomRepo:      bomRepo,
		logger:       logger,
	}
}

// Create creates a new product with zero stock
func (s *ProductService) Create(ctx context.Context, actor shared.Actor, req CreateProductRequest) (*ProductResponse, error) {
	if err := shared.Authorize(actor, catalogWriters); err != nil {
		return nil, err
	}

	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	if _, err := s.productRepo.FindBySKU(ctx, sku); err == nil {
		return nil, shared.NewDomainError(catalog.ErrDuplicateCode.Code, "Product with this SKU already exists")
	} else if !errors.Is(err, catalog.ErrProductNotFound) {
		return nil, err
	}

	product, err := catalog.NewProduct(sku, req.Name)
	if err != nil {
		return nil, err
	}
	if req.ReorderThreshold != nil {
		if err := product.SetReorderThreshold(*req.ReorderThreshold); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
		zap.String("actor_id", actor.ID.String()),
	)

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*ProductResponse, error) {
	if err := shared.Authorize(actor, nil); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List retrieves a page of products
func (s *ProductService) List(ctx context.Context, actor shared.Actor, filter ProductListFilter) (*shared.Paginated[ProductResponse], error) {
	if err := shared.Authorize(actor, nil); err != nil {
		return nil, err
	}

	domainFilter := listFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToProductResponses(products), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update renames a product or changes its reorder threshold
func (s *ProductService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	if err := shared.Authorize(actor, catalogWriters); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := product.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.ReorderThreshold != nil {
		if err := product.SetReorderThreshold(*req.ReorderThreshold); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// ListBOM returns the recipe of a product
func (s *ProductService) ListBOM(ctx context.Context, actor shared.Actor, productID uuid.UUID) ([]BOMLineResponse, error) {
	if err := shared.Authorize(actor, nil); err != nil {
		return nil, err
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	lines, err := s.bomRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(lines))
	for i := range lines {
		ids[i] = lines[i].MaterialID
	}
	materials, err := s.materialRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Material, len(materials))
	for i := range materials {
		byID[materials[i].ID] = &materials[i]
	}

	responses := make([]BOMLineResponse, len(lines))
	for i := range lines {
		responses[i] = ToBOMLineResponse(&lines[i], byID[lines[i].MaterialID])
	}
	return responses, nil
}

// SetBOMLine adds a material to a product's recipe, or replaces the quantity
// of the existing line for that material
func (s *ProductService) SetBOMLine(ctx context.Context, actor shared.Actor, productID, materialID uuid.UUID, req SetBOMLineRequest) (*BOMLineResponse, error) {
	if err := shared.Authorize(actor, catalogWriters); err != nil {
		return nil, err
	}

	quantity, err := catalog.ParseBOMQuantity(req.Basis, req.Quantity)
	if err != nil {
		return nil, err
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	material, err := s.materialRepo.FindByID(ctx, materialID)
	if err != nil {
		return nil, err
	}

	line, err := s.bomRepo.FindLine(ctx, productID, materialID)
	switch {
	case err == nil:
		if err := line.ChangeQuantity(quantity, req.UnitOverride); err != nil {
			return nil, err
		}
	case errors.Is(err, catalog.ErrBOMLineNotFound):
		line, err = catalog.NewBOMLine(productID, materialID, quantity, req.UnitOverride)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.bomRepo.Save(ctx, line); err != nil {
		return nil, err
	}

	s.logger.Info("Bill of materials line set",
		zap.String("product_id", productID.String()),
		zap.String("material_id", materialID.String()),
		zap.String("quantity", quantity.String()),
		zap.String("actor_id", actor.ID.String()),
	)

	resp := ToBOMLineResponse(line, material)
	return &resp, nil
}

// RemoveBOMLine removes a material from a product's recipe. Requests already
// created keep their frozen snapshot.
func (s *ProductService) RemoveBOMLine(ctx context.Context, actor shared.Actor, productID, materialID uuid.UUID) error {
	if err := shared.Authorize(actor, catalogWriters); err != nil {
		return err
	}
	return s.bomRepo.Delete(ctx, productID, materialID)
}
