package domain

// UserRoleType is a role carried in an access token
type UserRoleType string

const (
	RoleAdmin      UserRoleType = "admin"
	RoleManager    UserRoleType = "manager"
	RoleEmployee   UserRoleType = "employee"
	RoleAPIService UserRoleType = "api_service"
)

// IsValidRole reports whether the role is known
func IsValidRole(role string) bool {
	switch UserRoleType(role) {
	case RoleAdmin, RoleManager, RoleEmployee, RoleAPIService:
		return true
	}
	return false
}

// PermissionType is a permission string granted through roles
type PermissionType string

const (
	PermissionDataImport PermissionType = "data:import"
	PermissionDataExport PermissionType = "data:export"
	PermissionDataRead   PermissionType = "data:read"
)

// AllPermissions lists every permission in a stable order
func AllPermissions() []PermissionType {
	return []PermissionType{PermissionDataImport, PermissionDataExport, PermissionDataRead}
}

// AuthUserDTO describes the authenticated caller
type AuthUserDTO struct {
	Subject     string   `json:"subject"`
	Name        string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	Method      string   `json:"method"`
}
