// Package testutil provides helpers shared by the integration tests: fixed
// actors, deterministic IDs, polling assertions and a recording event handler.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// NewTestUUID generates a deterministic UUID for testing.
// The same seed always yields the same UUID.
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// Actor returns a stable actor for role
func Actor(role shared.Role) shared.Actor {
	return shared.NewActor(NewTestUUID("actor-"+role.String()), role)
}

// Admin, Production, Fulfillment and Viewer are the four fixed test actors
var (
	Admin       = Actor(shared.RoleAdmin)
	Production  = Actor(shared.RoleProduction)
	Fulfillment = Actor(shared.RoleFulfillment)
	Viewer      = Actor(shared.RoleViewer)
)

// ContextWithTimeout creates a context that is cancelled when the test ends
// or after timeout, whichever comes first.
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// RequireEventually polls condition until it holds or timeout elapses
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}

	require.Fail(t, "Condition not met within timeout", msgAndArgs...)
}
