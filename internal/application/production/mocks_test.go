package production

import (
	"context"
	"sync"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/production"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []shared.DomainEvent
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

type MockMaterialRepository struct {
	mock.Mock
}

func (m *MockMaterialRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	return m.Called(ctx, id, quantity).Error(0)
}

func (m *MockMaterialRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	return m.Called(ctx, id, quantity).Error(0)
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
	return m.Called(ctx, material).Error(0)
}

func (m *MockMaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	return m.Called(ctx, id, quantity).Error(0)
}

func (m *MockProductRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	return m.Called(ctx, id, quantity).Error(0)
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
	return m.Called(ctx, product).Error(0)
}

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
	return m.Called(ctx, line).Error(0)
}

func (m *MockBOMRepository) Delete(ctx context.Context, productID, materialID uuid.UUID) error {
	return m.Called(ctx, productID, materialID).Error(0)
}

func (m *MockBOMRepository) ExistsForMaterial(ctx context.Context, materialID uuid.UUID) (bool, error) {
	args := m.Called(ctx, materialID)
	return args.Bool(0), args.Error(1)
}

type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.ProductionRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*production.ProductionRequest), args.Error(1)
}

func (m *MockRequestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*production.ProductionRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*production.ProductionRequest), args.Error(1)
}

func (m *MockRequestRepository) FindAll(ctx context.Context, filter production.RequestFilter) ([]production.ProductionRequest, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]production.ProductionRequest), args.Error(1)
}

func (m *MockRequestRepository) Count(ctx context.Context, filter production.RequestFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRequestRepository) Create(ctx context.Context, req *production.ProductionRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockRequestRepository) SaveWithLock(ctx context.Context, req *production.ProductionRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockRequestRepository) ExistsForMaterial(ctx context.Context, materialID uuid.UUID) (bool, error) {
	args := m.Called(ctx, materialID)
	return args.Bool(0), args.Error(1)
}

type MockAdjustmentRepository struct {
	mock.Mock
}

func (m *MockAdjustmentRepository) Create(ctx context.Context, adj *inventory.InventoryAdjustment) error {
	return m.Called(ctx, adj).Error(0)
}

func (m *MockAdjustmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryAdjustment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryAdjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) FindAll(ctx context.Context, filter inventory.AdjustmentFilter) ([]inventory.InventoryAdjustment, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.InventoryAdjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) Count(ctx context.Context, filter inventory.AdjustmentFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}
