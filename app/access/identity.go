// Package access decides what an authenticated caller may see and do.
package access

import (
	"context"
	"slices"
)

// DefaultAdminRole is the role claim that unlocks the dashboard when no
// other role is configured.
const DefaultAdminRole = "admin"

type Capability string

// ManageCatalog covers every category and product operation.
const ManageCatalog Capability = "catalog:manage"

// View is the screen a client should render for a caller.
type View string

const (
	ViewSignIn       View = "sign-in"
	ViewAccessDenied View = "access-denied"
	ViewDashboard    View = "dashboard"
)

type Identity struct {
	Subject string   `json:"subject"`
	Email   string   `json:"email,omitempty"`
	Roles   []string `json:"roles"`

	adminRole string
}

func (id *Identity) HasRole(role string) bool {
	return id != nil && slices.Contains(id.Roles, role)
}

// Can reports whether the identity holds capability c. A nil identity can
// do nothing.
func (id *Identity) Can(c Capability) bool {
	if id == nil {
		return false
	}
	switch c {
	case ManageCatalog:
		role := id.adminRole
		if role == "" {
			role = DefaultAdminRole
		}
		return id.HasRole(role)
	}
	return false
}

// Decide maps a caller to the view it may see.
func Decide(id *Identity) View {
	switch {
	case id == nil:
		return ViewSignIn
	case !id.Can(ManageCatalog):
		return ViewAccessDenied
	default:
		return ViewDashboard
	}
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by RequireAdmin, or nil.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKey{}).(*Identity)
	return id
}
