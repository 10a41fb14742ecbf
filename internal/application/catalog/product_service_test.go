package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type productFixture struct {
	products  *MockProductRepository
	materials *MockMaterialRepository
	boms      *MockBOMRepository
	svc       *ProductService
	product   *catalog.Product
	leaf      *catalog.Material
}

func newProductFixture(t *testing.T) *productFixture {
	t.Helper()
	f := &productFixture{
		products:  new(MockProductRepository),
		materials: new(MockMaterialRepository),
		boms:      new(MockBOMRepository),
	}
	f.svc = NewProductService(f.products, f.materials, f.boms, nil)

	var err error
	f.product, err = catalog.NewProduct("TEA-1", "Green Tea")
	require.NoError(t, err)
	f.leaf = newTestMaterial(t, "LEAF")
	return f
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newProductFixture(t)
		f.products.On("FindBySKU", ctx, "TEA-2").Return(nil, catalog.ErrProductNotFound)
		f.products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := f.svc.Create(ctx, adminActor, CreateProductRequest{SKU: "tea-2", Name: "Black Tea"})
		require.NoError(t, err)
		assert.Equal(t, "TEA-2", resp.SKU)
		assert.True(t, resp.Stock.IsZero())
		f.products.AssertExpectations(t)
	})

	t.Run("duplicate SKU", func(t *testing.T) {
		f := newProductFixture(t)
		f.products.On("FindBySKU", ctx, "TEA-1").Return(f.product, nil)

		_, err := f.svc.Create(ctx, adminActor, CreateProductRequest{SKU: "TEA-1", Name: "Green Tea"})
		assert.Equal(t, "ALREADY_EXISTS", shared.ErrorCode(err))
	})

	t.Run("lookup failure is returned", func(t *testing.T) {
		f := newProductFixture(t)
		boom := errors.New("db down")
		f.products.On("FindBySKU", ctx, "TEA-1").Return(nil, boom)

		_, err := f.svc.Create(ctx, adminActor, CreateProductRequest{SKU: "TEA-1", Name: "Green Tea"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	f.products.On("FindByID", ctx, f.product.ID).Return(f.product, nil)
	f.products.On("Save", ctx, f.product).Return(nil)

	name := "Sencha"
	threshold := decimal.NewFromInt(50)
	resp, err := f.svc.Update(ctx, adminActor, f.product.ID, UpdateProductRequest{Name: &name, ReorderThreshold: &threshold})
	require.NoError(t, err)
	assert.Equal(t, "Sencha", resp.Name)
	assert.True(t, threshold.Equal(resp.ReorderThreshold))
}

func TestProductService_SetBOMLine(t *testing.T) {
	ctx := context.Background()

	t.Run("adds a new line", func(t *testing.T) {
		f := newProductFixture(t)
		f.products.On("FindByID", ctx, f.product.ID).Return(f.product, nil)
		f.materials.On("FindByID", ctx, f.leaf.ID).Return(f.leaf, nil)
		f.boms.On("FindLine", ctx, f.product.ID, f.leaf.ID).Return(nil, catalog.ErrBOMLineNotFound)
		f.boms.On("Save", ctx, mock.MatchedBy(func(l *catalog.BOMLine) bool {
			return l.Quantity.IsPerUnit() && l.Quantity.Value().Equal(decimal.RequireFromString("0.1"))
		})).Return(nil)

		resp, err := f.svc.SetBOMLine(ctx, adminActor, f.product.ID, f.leaf.ID, SetBOMLineRequest{
			Basis:    "per_unit",
			Quantity: decimal.RequireFromString("0.1"),
		})
		require.NoError(t, err)
		assert.Equal(t, catalog.QuantityBasisPerUnit, resp.Basis)
		assert.Equal(t, "LEAF", resp.MaterialCode)
		assert.Equal(t, "kg", resp.Unit)
		f.boms.AssertExpectations(t)
	})

	t.Run("replaces an existing line", func(t *testing.T) {
		f := newProductFixture(t)
		perUnit, err := catalog.PerUnit(decimal.RequireFromString("0.1"))
		require.NoError(t, err)
		existing, err := catalog.NewBOMLine(f.product.ID, f.leaf.ID, perUnit, "")
		require.NoError(t, err)

		f.products.On("FindByID", ctx, f.product.ID).Return(f.product, nil)
		f.materials.On("FindByID", ctx, f.leaf.ID).Return(f.leaf, nil)
		f.boms.On("FindLine", ctx, f.product.ID, f.leaf.ID).Return(existing, nil)
		f.boms.On("Save", ctx, existing).Return(nil)

		resp, err := f.svc.SetBOMLine(ctx, adminActor, f.product.ID, f.leaf.ID, SetBOMLineRequest{
			Basis:        "direct",
			Quantity:     decimal.NewFromInt(2),
			UnitOverride: "g",
		})
		require.NoError(t, err)
		assert.Equal(t, catalog.QuantityBasisDirect, resp.Basis)
		assert.Equal(t, "g", resp.Unit)
		assert.False(t, existing.Quantity.IsPerUnit())
	})

	t.Run("rejects non-positive quantity before any lookup", func(t *testing.T) {
		f := newProductFixture(t)
		_, err := f.svc.SetBOMLine(ctx, adminActor, f.product.ID, f.leaf.ID, SetBOMLineRequest{
			Basis:    "per_unit",
			Quantity: decimal.Zero,
		})
		assert.Equal(t, shared.ErrInvalidInput.Code, shared.ErrorCode(err))
		f.products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown material", func(t *testing.T) {
		f := newProductFixture(t)
		id := uuid.New()
		f.products.On("FindByID", ctx, f.product.ID).Return(f.product, nil)
		f.materials.On("FindByID", ctx, id).Return(nil, catalog.ErrMaterialNotFound)

		_, err := f.svc.SetBOMLine(ctx, adminActor, f.product.ID, id, SetBOMLineRequest{Basis: "direct", Quantity: decimal.NewFromInt(1)})
		assert.True(t, errors.Is(err, catalog.ErrMaterialNotFound))
	})
}

func TestProductService_ListBOM(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)

	direct, err := catalog.Direct(decimal.NewFromInt(1))
	require.NoError(t, err)
	line, err := catalog.NewBOMLine(f.product.ID, f.leaf.ID, direct, "")
	require.NoError(t, err)

	f.products.On("FindByID", ctx, f.product.ID).Return(f.product, nil)
	f.boms.On("FindByProduct", ctx, f.product.ID).Return([]catalog.BOMLine{*line}, nil)
	f.materials.On("FindByIDs", ctx, []uuid.UUID{f.leaf.ID}).Return([]catalog.Material{*f.leaf}, nil)

	lines, err := f.svc.ListBOM(ctx, viewerActor, f.product.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Material LEAF", lines[0].MaterialName)
}

func TestProductService_RemoveBOMLine(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	f.boms.On("Delete", ctx, f.product.ID, f.leaf.ID).Return(catalog.ErrBOMLineNotFound)

	err := f.svc.RemoveBOMLine(ctx, adminActor, f.product.ID, f.leaf.ID)
	assert.True(t, errors.Is(err, catalog.ErrBOMLineNotFound))

	err = f.svc.RemoveBOMLine(ctx, viewerActor, f.product.ID, f.leaf.ID)
	assert.True(t, errors.Is(err, shared.ErrForbidden))
}
