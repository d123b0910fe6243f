package auth

import (
	"time"
)

// User is the platform account entity. IDs are UUID strings.
type User struct {
	ID          string       `bson:"_id,omitempty" json:"id"`
	Username    string       `bson:"username" json:"username"` // unique
	Email       string       `bson:"email" json:"email"`       // unique
	Password    string       `bson:"password" json:"-"`        // bcrypt hash, never serialized
	Roles       []string     `bson:"roles" json:"roles"`       // role names
	Status      UserStatus   `bson:"status" json:"status"`
	Profile     *UserProfile `bson:"profile,omitempty" json:"profile,omitempty"`
	LastLoginAt *time.Time   `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `bson:"updated_at" json:"updated_at"`
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// UserProfile is optional account metadata.
type UserProfile struct {
	FullName string `bson:"full_name,omitempty" json:"full_name,omitempty"`
	Avatar   string `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Language string `bson:"language,omitempty" json:"language,omitempty"`
}

// Built-in role names seeded at install time.
const (
	RoleAdmin      = "admin"
	RoleExamAuthor = "exam_author"
	RoleReviewer   = "reviewer"
	RoleProctor    = "proctor"
	RoleStudent    = "student"
)

// UserStatus is the account lifecycle state.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive" // registered, pending approval
	UserStatusBanned   UserStatus = "banned"
)

// IsValid reports whether the status is a known value.
func (s UserStatus) IsValid() bool {
	return s == UserStatusActive || s == UserStatusInactive || s == UserStatusBanned
}

// String returns the status string.
func (s UserStatus) String() string {
	return string(s)
}
