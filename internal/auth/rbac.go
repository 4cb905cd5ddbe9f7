package auth

import "colistrack/internal/model"

// Permission is the static capability set attached to a role.
type Permission struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Delete bool `json:"delete"`
	Admin  bool `json:"admin"`
}

// Dashboard routes surfaced to clients after login.
const (
	LoginRoute          = "/auth/login"
	UserDashboardRoute  = "/user/dashboard"
	AdminDashboardRoute = "/admin/dashboard"
)

var rolePermissions = map[string]Permission{
	model.RoleUser:  {Read: true, Write: true},
	model.RoleAdmin: {Read: true, Write: true, Delete: true, Admin: true},
}

// Permissions returns the capability set for a role. Unknown or empty roles
// get the zero set.
func Permissions(role string) Permission {
	return rolePermissions[role]
}

// HasPermission reports whether a role grants the named action. An empty or
// unknown role always denies.
func HasPermission(role, action string) bool {
	p, ok := rolePermissions[role]
	if !ok {
		return false
	}
	switch action {
	case "read":
		return p.Read
	case "write":
		return p.Write
	case "delete":
		return p.Delete
	case "admin":
		return p.Admin
	}
	return false
}

// CanAccess reports whether a role may enter an area that requires the given
// role. Admins pass everything; users only the user area; an absent role
// passes nothing.
func CanAccess(role, requiredRole string) bool {
	if _, ok := rolePermissions[role]; !ok {
		return false
	}
	if role == model.RoleAdmin {
		return true
	}
	return role == model.RoleUser && requiredRole == model.RoleUser
}

// DashboardRoute returns the landing route for a role, or the login route
// when no role is resolved.
func DashboardRoute(role string) string {
	switch role {
	case model.RoleUser:
		return UserDashboardRoute
	case model.RoleAdmin:
		return AdminDashboardRoute
	}
	return LoginRoute
}
