package auth

import (
	"context"

	"github.com/sitebook/sitebook-api/internal/domain"
)

// Authentication methods recorded on UserContext
const (
	MethodJWT    = "jwt"
	MethodAPIKey = "api_key"
	MethodCLI    = "cli"
)

// UserContext holds authenticated user information
type UserContext struct {
	Subject     string
	DisplayName string
	Email       string
	Roles       []domain.UserRoleType
	Method      string
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// Identity returns the best human-readable identifier for audit records
func (u *UserContext) Identity() string {
	switch {
	case u.Email != "":
		return u.Email
	case u.DisplayName != "":
		return u.DisplayName
	default:
		return u.Subject
	}
}

// IdentityFromContext returns the caller identity, or "system" when the
// context carries no user
func IdentityFromContext(ctx context.Context) string {
	if user, ok := FromContext(ctx); ok {
		if id := user.Identity(); id != "" {
			return id
		}
	}
	return "system"
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role domain.UserRoleType) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.UserRoleType) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsAdmin checks if user is an administrator
func (u *UserContext) IsAdmin() bool {
	return u.HasRole(domain.RoleAdmin)
}

// RolesAsStrings returns roles as plain strings for logging
func (u *UserContext) RolesAsStrings() []string {
	out := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		out[i] = string(r)
	}
	return out
}

// rolePermissions holds the default permissions per role
var rolePermissions = map[domain.UserRoleType][]domain.PermissionType{
	domain.RoleManager: {
		domain.PermissionDataExport, domain.PermissionDataRead,
	},
	domain.RoleEmployee: {
		domain.PermissionDataRead,
	},
	domain.RoleAPIService: {
		domain.PermissionDataImport, domain.PermissionDataExport, domain.PermissionDataRead,
	},
}

// HasPermission checks if user has a specific permission based on their roles
func (u *UserContext) HasPermission(permission domain.PermissionType) bool {
	// Admins have all permissions
	if u.IsAdmin() {
		return true
	}

	for _, role := range u.Roles {
		for _, p := range rolePermissions[role] {
			if p == permission {
				return true
			}
		}
	}
	return false
}

// Permissions returns every permission the user's roles grant
func (u *UserContext) Permissions() []domain.PermissionType {
	var out []domain.PermissionType
	for _, p := range domain.AllPermissions() {
		if u.HasPermission(p) {
			out = append(out, p)
		}
	}
	return out
}
