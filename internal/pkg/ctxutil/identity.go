package ctxutil

import "context"

// identityKeyType is a private type so the key cannot collide with other
// context keys.
type identityKeyType struct{}

var identityKey = identityKeyType{}

// Identity is the authenticated caller carried through the request context.
type Identity struct {
	UserID   string
	Username string
	Roles    []string
}

// HasRole reports whether the identity carries the given role.
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// WithIdentity injects the authenticated identity into the context.
// Intended to be called from the authentication middleware after a JWT
// has been validated:
//
//	ctx := ctxutil.WithIdentity(c.Request.Context(), ident)
//	c.Request = c.Request.WithContext(ctx)
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityKey, ident)
}

// GetIdentity resolves the authenticated identity from the context.
func GetIdentity(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	ident, ok := ctx.Value(identityKey).(Identity)
	if !ok || ident.UserID == "" {
		return Identity{}, false
	}
	return ident, true
}

// GetUserID resolves just the user ID from the context.
func GetUserID(ctx context.Context) (string, bool) {
	ident, ok := GetIdentity(ctx)
	if !ok {
		return "", false
	}
	return ident.UserID, true
}
