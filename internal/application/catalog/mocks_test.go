package catalog

import (
	"context"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockMaterialRepository is a mock implementation of MaterialRepository
type MockMaterialRepository struct {
	mock.Mock
}

func (m *MockMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Material), args.Error(1)
}

func (m *MockMaterialRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Material), args.Error(1)
}

func (m *MockMaterialRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Material, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Material), args.Error(1)
}

func (m *MockMaterialRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]catalog.Material, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Material), args.Error(1)
}

func (m *MockMaterialRepository) FindByCode(ctx context.Context, code string) (*catalog.Material, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Material), args.Error(1)
}

func (m *MockMaterialRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Material, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Material), args.Error(1)
}

func (m *MockMaterialRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMaterialRepository) Save(ctx context.Context, material *catalog.Material) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

func (m *MockMaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMaterialRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

func (m *MockMaterialRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

func (m *MockProductRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

// MockBOMRepository is a mock implementation of BOMRepository
type MockBOMRepository struct {
	mock.Mock
}

func (m *MockBOMRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.BOMLine, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]catalog.BOMLine), args.Error(1)
}

func (m *MockBOMRepository) FindLine(ctx context.Context, productID, materialID uuid.UUID) (*catalog.BOMLine, error) {
	args := m.Called(ctx, productID, materialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.BOMLine), args.Error(1)
}

func (m *MockBOMRepository) Save(ctx context.Context, line *catalog.BOMLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockBOMRepository) Delete(ctx context.Context, productID, materialID uuid.UUID) error {
	args := m.Called(ctx, productID, materialID)
	return args.Error(0)
}

func (m *MockBOMRepository) ExistsForMaterial(ctx context.Context, materialID uuid.UUID) (bool, error) {
	args := m.Called(ctx, materialID)
	return args.Bool(0), args.Error(1)
}

// MockUsageChecker stands in for the production request repository
type MockUsageChecker struct {
	mock.Mock
}

func (m *MockUsageChecker) ExistsForMaterial(ctx context.Context, materialID uuid.UUID) (bool, error) {
	args := m.Called(ctx, materialID)
	return args.Bool(0), args.Error(1)
}
