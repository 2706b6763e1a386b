package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"operator role", RoleOperator, true},
		{"viewer role", RoleViewer, true},
		{"invalid role", "invalid", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestUser_HasPermission(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	operator := &User{Role: RoleOperator}
	viewer := &User{Role: RoleViewer}
	unknown := &User{Role: "guest"}

	tests := []struct {
		name     string
		user     *User
		action   string
		expected bool
	}{
		// Admin permissions - should have all permissions
		{"admin can create train", admin, "create_train", true},
		{"admin can generate plan", admin, "generate_plan", true},
		{"admin can do anything", admin, "manage_users", true},

		// Operator permissions - operational tasks
		{"operator can view trains", operator, "view_trains", true},
		{"operator can create train", operator, "create_train", true},
		{"operator can generate plan", operator, "generate_plan", true},
		{"operator can ingest sensors", operator, "ingest_sensors", true},
		{"operator cannot manage users", operator, "manage_users", false},

		// Viewer permissions - read-only access
		{"viewer can view trains", viewer, "view_trains", true},
		{"viewer cannot create train", viewer, "create_train", false},
		{"viewer cannot generate plan", viewer, "generate_plan", false},

		{"unknown role has nothing", unknown, "view_trains", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.user.HasPermission(tt.action)
			if result != tt.expected {
				t.Errorf("User with role %s HasPermission(%s) = %v, want %v",
					tt.user.Role, tt.action, result, tt.expected)
			}
		})
	}
}
