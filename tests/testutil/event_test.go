package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Test", uuid.New())}
}

func TestRecordingHandler(t *testing.T) {
	h := NewRecordingHandler("A", "B")
	assert.Equal(t, []string{"A", "B"}, h.EventTypes())

	ctx := context.Background()
	assert.NoError(t, h.Handle(ctx, newTestEvent("A")))
	assert.NoError(t, h.Handle(ctx, newTestEvent("B")))
	assert.NoError(t, h.Handle(ctx, newTestEvent("A")))

	assert.Len(t, h.Handled(), 3)
	assert.Equal(t, 2, h.CountOf("A"))
	assert.Equal(t, 1, h.CountOf("B"))
	assert.Zero(t, h.CountOf("C"))
}

func TestRecordingHandler_ErrorAndReset(t *testing.T) {
	h := NewRecordingHandler()
	boom := errors.New("boom")
	h.SetError(boom)

	assert.ErrorIs(t, h.Handle(context.Background(), newTestEvent("A")), boom)
	assert.Len(t, h.Handled(), 1)

	h.Reset()
	assert.Empty(t, h.Handled())
	assert.NoError(t, h.Handle(context.Background(), newTestEvent("A")))
}
