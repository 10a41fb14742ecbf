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

// catalogWriters may change master data
var catalogWriters = shared.RoleSet{shared.RoleAdmin}

// MaterialUsageChecker reports whether something still refers to a material.
// Both the BOM repository and the production request repository satisfy it.
type MaterialUsageChecker interface {
	ExistsForMaterial(ctx context.Context, materialID uuid.UUID) (bool, error)
}

// MaterialService handles material master data
type MaterialService struct {
	materialRepo catalog.MaterialRepository
	usage        []MaterialUsageChecker
	logger       *zap.Logger
}

// NewMaterialService creates a new MaterialService. A material referenced by
// any of the usage checkers cannot be deleted.
func NewMaterialService(materialRepo catalog.MaterialRepository, logger *zap.Logger, usage ...MaterialUsageChecker) *MaterialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterialService{
		materialRepo: materialRepo,
		usage:        usage,
		logger:       logger,
	}
}

// Create creates a new material with zero stock
func (s *MaterialService) Create(ctx context.Context, actor shared.Actor, req CreateMaterialRequest) (*MaterialResponse, error) {
	if err := shared.Authorize(actor, catalogWriters); err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if _, err := s.materialRepo.FindByCode(ctx, code); err == nil {
		return nil, shared.NewDomainError(catalog.ErrDuplicateCode.Code, "Material with this code already exists")
	} else if !errors.Is(err, catalog.ErrMaterialNotFound) {
		return nil, err
	}

	material, err := catalog.NewMaterial(code, req.Name, req.Category, req.Unit)
	if err != nil {
		return nil, err
	}
	if req.ReorderThreshold != nil {
		if err := material.SetReorderThreshold(*req.ReorderThreshold); err != nil {
			return nil, err
		}
	}

	if err := s.materialRepo.Save(ctx, material); err != nil {
		return nil, err
	}

	s.logger.Info("Material created",
		zap.String("material_id", material.ID.String()),
		zap.String("code", material.Code),
		zap.String("actor_id", actor.ID.String()),
	)

	resp := ToMaterialResponse(material)
	return &resp, nil
}

// GetByID retrieves a material by ID
func (s *MaterialService) GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*MaterialResponse, error) {
	if err := shared.Authorize(actor, nil); err != nil {
		return nil, err
	}
	material, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToMaterialResponse(material)
	return &resp, nil
}

// List retrieves a page of materials
func (s *MaterialService) List(ctx context.Context, actor shared.Actor, filter MaterialListFilter) (*shared.Paginated[MaterialResponse], error) {
	if err := shared.Authorize(actor, nil); err != nil {
		return nil, err
	}

	domainFilter := listFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.BelowThreshold {
		domainFilter.Filters["below_threshold"] = true
	}

	materials, err := s.materialRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.materialRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToMaterialResponses(materials), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update updates the descriptive fields and reorder threshold of a material.
// Stock cannot be changed here.
func (s *MaterialService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdateMaterialRequest) (*MaterialResponse, error) {
	if err := shared.Authorize(actor, catalogWriters); err != nil {
		return nil, err
	}

	material, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Category != nil || req.Unit != nil {
		name, category, unit := material.Name, material.Category, material.Unit
		if req.Name != nil {
			name = *req.Name
		}
		if req.Category != nil {
			category = *req.Category
		}
		if req.Unit != nil {
			unit = *req.Unit
		}
		if err := material.Update(name, category, unit); err != nil {
			return nil, err
		}
	}
	if req.ReorderThreshold != nil {
		if err := material.SetReorderThreshold(*req.ReorderThreshold); err != nil {
			return nil, err
		}
	}

	if err := s.materialRepo.Save(ctx, material); err != nil {
		return nil, err
	}

	resp := ToMaterialResponse(material)
	return &resp, nil
}

// Delete removes a material that no recipe or production request refers to
func (s *MaterialService) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	if err := shared.Authorize(actor, catalogWriters); err != nil {
		return err
	}

	if _, err := s.materialRepo.FindByID(ctx, id); err != nil {
		return err
	}

	for _, checker := range s.usage {
		used, err := checker.ExistsForMaterial(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return catalog.ErrMaterialInUse
		}
	}

	if err := s.materialRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Material deleted",
		zap.String("material_id", id.String()),
		zap.String("actor_id", actor.ID.String()),
	)
	return nil
}

// listFilter maps list query parameters onto a shared.Filter
func listFilter(page, pageSize int, orderBy, orderDir, search string) shared.Filter {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	if orderBy != "" {
		filter.OrderBy = orderBy
	}
	if orderDir != "" {
		filter.OrderDir = orderDir
	}
	filter.Search = strings.TrimSpace(search)
	return filter
}
