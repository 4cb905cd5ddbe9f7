package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"colistrack/internal/model"
)

func TestPermissions(t *testing.T) {
	user := Permissions(model.RoleUser)
	assert.True(t, user.Read)
	assert.True(t, user.Write)
	assert.False(t, user.Delete)
	assert.False(t, user.Admin)

	admin := Permissions(model.RoleAdmin)
	assert.True(t, admin.Read)
	assert.True(t, admin.Write)
	assert.True(t, admin.Delete)
	assert.True(t, admin.Admin)

	// Unknown and empty roles get the zero set.
	assert.Equal(t, Permission{}, Permissions("superuser"))
	assert.Equal(t, Permission{}, Permissions(""))
}

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name   string
		role   string
		action string
		want   bool
	}{
		{"user can read", model.RoleUser, "read", true},
		{"user can write", model.RoleUser, "write", true},
		{"user cannot delete", model.RoleUser, "delete", false},
		{"user is not admin", model.RoleUser, "admin", false},
		{"admin can delete", model.RoleAdmin, "delete", true},
		{"admin has admin", model.RoleAdmin, "admin", true},
		{"empty role denies everything", "", "read", false},
		{"unknown role denies everything", "root", "read", false},
		{"unknown action denies", model.RoleAdmin, "fly", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.role, tt.action))
		})
	}
}

func TestCanAccess(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		required string
		want     bool
	}{
		{"admin reaches admin area", model.RoleAdmin, model.RoleAdmin, true},
		{"admin reaches user area", model.RoleAdmin, model.RoleUser, true},
		{"user reaches user area", model.RoleUser, model.RoleUser, true},
		{"user blocked from admin area", model.RoleUser, model.RoleAdmin, false},
		{"unauthenticated blocked from user area", "", model.RoleUser, false},
		{"unauthenticated blocked from admin area", "", model.RoleAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.role, tt.required))
		})
	}
}

func TestDashboardRoute(t *testing.T) {
	assert.Equal(t, UserDashboardRoute, DashboardRoute(model.RoleUser))
	assert.Equal(t, AdminDashboardRoute, DashboardRoute(model.RoleAdmin))
	assert.Equal(t, LoginRoute, DashboardRoute(""))
	assert.Equal(t, LoginRoute, DashboardRoute("unknown"))
}
