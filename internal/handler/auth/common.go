package auth

import (
	"time"

	"ikhtibar/internal/model/auth"
)

// UserInfo is the user shape returned by all auth endpoints.
type UserInfo struct {
	ID          string       `json:"id"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	Roles       []string     `json:"roles"`
	Status      string       `json:"status"`
	Profile     *UserProfile `json:"profile,omitempty"`
	LastLoginAt string       `json:"last_login_at,omitempty"`
	CreatedAt   string       `json:"created_at,omitempty"`
}

// UserProfile is the profile shape shared across responses.
type UserProfile struct {
	FullName string `json:"full_name,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Language string `json:"language,omitempty"`
}

// toUserInfo converts the user entity into the response shape.
func toUserInfo(user *auth.User) UserInfo {
	info := UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.Roles,
		Status:   string(user.Status),
	}

	if user.Profile != nil {
		info.Profile = &UserProfile{
			FullName: user.Profile.FullName,
			Avatar:   user.Profile.Avatar,
			Phone:    user.Profile.Phone,
			Language: user.Profile.Language,
		}
	}

	if user.LastLoginAt != nil {
		info.LastLoginAt = user.LastLoginAt.Format(time.RFC3339)
	}
	if !user.CreatedAt.IsZero() {
		info.CreatedAt = user.CreatedAt.Format(time.RFC3339)
	}

	return info
}
