package scope

import (
	"context"
	"strings"
)

// Role is the coarse privilege level of a principal.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole maps a stored role string to a Role. Anything that is not
// ADMIN is a regular user; roles are never elevated by default.
func ParseRole(raw string) Role {
	if strings.EqualFold(strings.TrimSpace(raw), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// Principal is the authenticated actor issuing a request.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	// TenantID is empty for principals not bound to a tenant.
	TenantID string `json:"tenant_id,omitempty"`
}

// IsAdmin reports whether the principal has the ADMIN role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// HasTenant reports whether the principal is bound to a tenant.
func (p Principal) HasTenant() bool {
	return p.TenantID != ""
}

// Identity is a principal together with the feature permissions granted
// to it.
type Identity struct {
	Principal   Principal
	Permissions map[string]any
}

// Can reports whether the identity may use a feature.
func (id Identity) Can(featureID string) bool {
	return CanAccessFeature(id.Principal.Role, id.Permissions, featureID)
}

type identityKey struct{}

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity from context, if present.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// WithPrincipal returns a context carrying a principal without permissions.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return WithIdentity(ctx, Identity{Principal: p})
}

// FromContext returns the principal from context, if present.
func FromContext(ctx context.Context) (Principal, bool) {
	id, ok := IdentityFromContext(ctx)
	return id.Principal, ok
}
