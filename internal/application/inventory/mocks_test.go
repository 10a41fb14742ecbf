package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		events: make([]shared.DomainEvent, 0),
	}
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
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockMaterialRepository is a mock implementation of catalog.MaterialRepository
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

// MockProductRepository is a mock implementation of catalog.ProductRepository
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

// MockReservationRepository is a mock implementation of inventory.StockReservationRepository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, r *inventory.StockReservation) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockReservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockReservation), args.Error(1)
}

func (m *MockReservationRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockReservation, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]inventory.StockReservation), args.Error(1)
}

func (m *MockReservationRepository) FindByOrder(ctx context.Context, orderRef string) ([]inventory.StockReservation, error) {
	args := m.Called(ctx, orderRef)
	return args.Get(0).([]inventory.StockReservation), args.Error(1)
}

func (m *MockReservationRepository) SumActive(ctx context.Context, productID uuid.UUID, at time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, productID, at)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReservationRepository) FindExpired(ctx context.Context, at time.Time, limit int) ([]inventory.StockReservation, error) {
	args := m.Called(ctx, at, limit)
	return args.Get(0).([]inventory.StockReservation), args.Error(1)
}

func (m *MockReservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReservationRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

// MockAdjustmentRepository is a mock implementation of inventory.InventoryAdjustmentRepository
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

// serviceFixture wires the services to mocks through a NoOp transaction scope
type serviceFixture struct {
	materials    *MockMaterialRepository
	products     *MockProductRepository
	reservations *MockReservationRepository
	adjustments  *MockAdjustmentRepository
	publisher    *MockEventPublisher
	scope        *NoOpTransactionScope
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		materials:    new(MockMaterialRepository),
		products:     new(MockProductRepository),
		reservations: new(MockReservationRepository),
		adjustments:  new(MockAdjustmentRepository),
		publisher:    NewMockEventPublisher(),
	}
	f.scope = NewNoOpTransactionScope(f.materials, f.products, f.reservations, f.adjustments)
	return f
}

func newTestProduct(stock int64) *catalog.Product {
	p, err := catalog.NewProduct("WIDGET-1", "Widget")
	if err != nil {
		panic(err)
	}
	p.Stock = decimal.NewFromInt(stock)
	return p
}

func newTestMaterial(stock int64) *catalog.Material {
	m, err := catalog.NewMaterial("LEAF", "Leaf", "raw", "kg")
	if err != nil {
		panic(err)
	}
	m.Stock = decimal.NewFromInt(stock)
	return m
}

var (
	fulfillmentActor = shared.NewActor(uuid.New(), shared.RoleFulfillment)
	productionActor  = shared.NewActor(uuid.New(), shared.RoleProduction)
	viewerActor      = shared.NewActor(uuid.New(), shared.RoleViewer)
)
