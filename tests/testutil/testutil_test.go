package testutil

import (
	"testing"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("leaf"), NewTestUUID("leaf"))
	assert.NotEqual(t, NewTestUUID("leaf"), NewTestUUID("box"))
}

func TestActors(t *testing.T) {
	assert.Equal(t, shared.RoleAdmin, Admin.Role)
	assert.Equal(t, shared.RoleProduction, Production.Role)
	assert.Equal(t, shared.RoleFulfillment, Fulfillment.Role)
	assert.Equal(t, shared.RoleViewer, Viewer.Role)
	assert.NotEqual(t, Admin.ID, Viewer.ID)
	assert.Equal(t, Admin.ID, Actor(shared.RoleAdmin).ID)
}

func TestContextWithTimeout(t *testing.T) {
	ctx := ContextWithTimeout(t, time.Minute)
	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestRequireEventually(t *testing.T) {
	calls := 0
	RequireEventually(t, func() bool {
		calls++
		return calls >= 3
	}, time.Second, time.Millisecond)
	assert.Equal(t, 3, calls)
}
