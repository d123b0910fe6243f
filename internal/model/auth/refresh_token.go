package auth

import (
	"time"
)

// RefreshToken is the persisted half of a refresh secret. Only the
// SHA-256 of the opaque secret is stored; the raw value exists solely on
// the client. Rotation-on-use revokes a row the moment it is exchanged,
// so under normal operation a user has exactly one live token.
type RefreshToken struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	TokenHash string    `bson:"token_hash" json:"-"`
	IssuedAt  time.Time `bson:"issued_at" json:"issued_at"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	Revoked   bool      `bson:"revoked" json:"revoked"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// IsExpired reports whether the token has passed its expiry.
func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// IsUsable reports whether the token may still be exchanged.
func (rt *RefreshToken) IsUsable() bool {
	return !rt.Revoked && !rt.IsExpired()
}
