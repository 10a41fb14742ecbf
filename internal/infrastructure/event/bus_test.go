package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New())}
}

type recordingHandler struct {
	mu      sync.Mutex
	types   []string
	handled []shared.DomainEvent
	err     error
	panics  bool
}

func (h *recordingHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, evt)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func startedBus(t *testing.T) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	return bus
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := startedBus(t)
	completed := &recordingHandler{types: []string{"ProductionRequestCompleted"}}
	lowStock := &recordingHandler{types: []string{"StockBelowThreshold"}}
	all := &recordingHandler{}
	bus.Subscribe(completed)
	bus.Subscribe(lowStock)
	bus.Subscribe(all)

	err := bus.Publish(context.Background(),
		newTestEvent("ProductionRequestCompleted"),
		newTestEvent("StockBelowThreshold"),
		newTestEvent("StockBelowThreshold"),
	)

	require.NoError(t, err)
	assert.Equal(t, 1, completed.count())
	assert.Equal(t, 2, lowStock.count())
	assert.Equal(t, 3, all.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := startedBus(t)
	h := &recordingHandler{types: []string{"A"}}
	bus.Subscribe(h, "B")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B")))
	assert.Equal(t, 1, h.count())
	assert.Equal(t, "B", h.handled[0].EventType())
}

func TestInMemoryEventBus_FailuresDoNotReachPublisher(t *testing.T) {
	bus := startedBus(t)
	failing := &recordingHandler{types: []string{"E"}, err: errors.New("downstream unavailable")}
	panicking := &recordingHandler{types: []string{"E"}, panics: true}
	healthy := &recordingHandler{types: []string{"E"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("E"))

	assert.NoError(t, err)
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, int64(2), bus.FailedDeliveries())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := startedBus(t)
	typed := &recordingHandler{types: []string{"E", "F"}}
	wildcard := &recordingHandler{}
	bus.Subscribe(typed)
	bus.Subscribe(wildcard)

	bus.Unsubscribe(typed)
	bus.Unsubscribe(wildcard)
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("E"), newTestEvent("F")))

	assert.Zero(t, typed.count())
	assert.Zero(t, wildcard.count())
	assert.Empty(t, bus.byType)
}

func TestInMemoryEventBus_StoppedBusDrops(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"E"}}
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("E")))
	assert.Zero(t, h.count(), "not started")

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("E")))
	require.NoError(t, bus.Stop(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("E")))

	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_ConcurrentPublish(t *testing.T) {
	bus := startedBus(t)
	h := &recordingHandler{types: []string{"E"}}
	bus.Subscribe(h)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Publish(context.Background(), newTestEvent("E"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, h.count())
}
