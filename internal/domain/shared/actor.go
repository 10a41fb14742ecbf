package shared

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Role is the coarse-grained role an authenticated caller acts under
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleProduction  Role = "production"
	RoleFulfillment Role = "fulfillment"
	RoleViewer      Role = "viewer"
)

// IsValid checks if the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleProduction, RoleFulfillment, RoleViewer:
		return true
	}
	return false
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// ParseRole converts a claim value to a Role
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", NewDomainError(ErrInvalidInput.Code, "Unknown role: "+s)
	}
	return r, nil
}

// Actor identifies who performs an operation and under which role.
// It is passed explicitly into every service call.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// NewActor creates an actor
func NewActor(id uuid.UUID, role Role) Actor {
	return Actor{ID: id, Role: role}
}

// SystemActor is used by background jobs such as the reservation sweeper
var SystemActor = Actor{ID: uuid.Nil, Role: RoleAdmin}

// IsZero reports whether the actor carries no identity
func (a Actor) IsZero() bool {
	return a.ID == uuid.Nil && a.Role == ""
}

// RoleSet is an allow-list of roles for an operation
type RoleSet []Role

// Allows reports whether role is in the set
func (s RoleSet) Allows(role Role) bool {
	return slices.Contains(s, role)
}

// Authorize returns ErrForbidden unless the actor's role is in allowed.
// An empty allow-list admits any valid role.
func Authorize(actor Actor, allowed RoleSet) error {
	if actor.IsZero() {
		return ErrUnauthorized
	}
	if !actor.Role.IsValid() {
		return ErrForbidden
	}
	if len(allowed) == 0 || allowed.Allows(actor.Role) {
		return nil
	}
	return NewDomainError(ErrForbidden.Code, "Role "+actor.Role.String()+" is not allowed to perform this action")
}
