package auth

import (
	"time"
)

// Role names a set of permission codes. System roles are seeded at
// install time and cannot be renamed or deleted.
type Role struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name" json:"name"` // unique
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Permissions []string  `bson:"permissions" json:"permissions"` // permission codes
	IsSystem    bool      `bson:"is_system" json:"is_system"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// HasPermission reports whether the role grants the permission code.
func (r *Role) HasPermission(code string) bool {
	for _, p := range r.Permissions {
		if p == code {
			return true
		}
	}
	return false
}

// Permission is a single grantable capability.
type Permission struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Code        string    `bson:"code" json:"code"` // unique, e.g. "users.manage"
	Category    string    `bson:"category" json:"category"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// Built-in permission codes.
const (
	PermUsersView         = "users.view"
	PermUsersManage       = "users.manage"
	PermRolesView         = "roles.view"
	PermRolesManage       = "roles.manage"
	PermAuditView         = "audit.view"
	PermMediaUpload       = "media.upload"
	PermMediaManage       = "media.manage"
	PermNotificationsSend = "notifications.send"
)

// BuiltinPermissions is the permission catalogue seeded at install time.
func BuiltinPermissions() []Permission {
	return []Permission{
		{Code: PermUsersView, Category: "users", Description: "List and inspect user accounts"},
		{Code: PermUsersManage, Category: "users", Description: "Create, update, activate and delete user accounts"},
		{Code: PermRolesView, Category: "roles", Description: "List roles and permissions"},
		{Code: PermRolesManage, Category: "roles", Description: "Create and modify roles and role assignments"},
		{Code: PermAuditView, Category: "audit", Description: "Query the audit log"},
		{Code: PermMediaUpload, Category: "media", Description: "Upload media files"},
		{Code: PermMediaManage, Category: "media", Description: "Manage all media files"},
		{Code: PermNotificationsSend, Category: "notifications", Description: "Send exam lifecycle notifications"},
	}
}

// BuiltinRoles is the system role set seeded at install time.
func BuiltinRoles() []Role {
	return []Role{
		{
			Name:        RoleAdmin,
			Description: "Full platform administration",
			Permissions: []string{
				PermUsersView, PermUsersManage, PermRolesView, PermRolesManage,
				PermAuditView, PermMediaUpload, PermMediaManage, PermNotificationsSend,
			},
			IsSystem: true,
		},
		{
			Name:        RoleExamAuthor,
			Description: "Creates exams and uploads supporting media",
			Permissions: []string{PermMediaUpload},
			IsSystem:    true,
		},
		{
			Name:        RoleReviewer,
			Description: "Reviews exam content",
			Permissions: []string{PermMediaUpload},
			IsSystem:    true,
		},
		{
			Name:        RoleProctor,
			Description: "Supervises exam sessions and sends notifications",
			Permissions: []string{PermNotificationsSend},
			IsSystem:    true,
		},
		{
			Name:        RoleStudent,
			Description: "Takes exams",
			Permissions: []string{},
			IsSystem:    true,
		},
	}
}
