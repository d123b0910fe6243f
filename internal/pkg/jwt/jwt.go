package jwt

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims is the access-token claim set.
type Claims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// Manager issues and validates access tokens and generates the opaque
// refresh secrets exchanged for them.
type Manager struct {
	secret     []byte
	issuer     string
	audience   string
	expiration time.Duration
}

// NewManager creates a token manager.
func NewManager(secret, issuer, audience string, expiration time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		issuer:     issuer,
		audience:   audience,
		expiration: expiration,
	}
}

// GenerateToken issues a signed access token for the user.
func (m *Manager) GenerateToken(userID, username, email string, roles []string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		Email:    email,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// GetExpiration returns the configured access-token lifetime.
func (m *Manager) GetExpiration() time.Duration {
	return m.expiration
}

// ValidateToken validates signature, issuer, audience and expiry and
// returns the claims. Malformed or tampered tokens map to ErrInvalidToken,
// expired ones to ErrExpiredToken; validation never panics.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithAudience(m.audience))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// IsValid reports whether the token passes full validation.
func (m *Manager) IsValid(tokenString string) bool {
	_, err := m.ValidateToken(tokenString)
	return err == nil
}

// IsExpired reports whether the token's exp claim has passed. The
// signature is NOT checked here; this exists only to detect the expiry
// condition that triggers the refresh flow.
func (m *Manager) IsExpired(tokenString string) bool {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Now().After(claims.ExpiresAt.Time)
}

// UserIDFromToken extracts the subject claim without verifying the
// signature. The second return is false for absent or malformed tokens.
func (m *Manager) UserIDFromToken(tokenString string) (string, bool) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return "", false
	}
	if claims.UserID != "" {
		return claims.UserID, true
	}
	if claims.Subject != "" {
		return claims.Subject, true
	}
	return "", false
}

// GenerateRefreshSecret returns a cryptographically random opaque string.
// 32 random bytes hex-encoded, so 64 characters on the wire. Only the
// hash of this value is ever persisted.
func GenerateRefreshSecret() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// HashRefreshSecret returns the hex SHA-256 of a refresh secret. This is
// the only form stored server-side.
func HashRefreshSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
