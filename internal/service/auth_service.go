package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"ikhtibar/internal/model/auth"
	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/id"
	"ikhtibar/internal/pkg/jwt"
	"ikhtibar/internal/pkg/password"
	authRepo "ikhtibar/internal/repository/auth"
)

var (
	ErrUserNotFound        = fmt.Errorf("%w: user", apperrors.ErrNotFound)
	ErrUserAlreadyExists   = fmt.Errorf("%w: username already taken", apperrors.ErrConflict)
	ErrEmailAlreadyExists  = fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid username or password", apperrors.ErrUnauthorized)
	ErrUserInactive        = fmt.Errorf("%w: account pending approval", apperrors.ErrForbidden)
	ErrUserBanned          = fmt.Errorf("%w: account disabled", apperrors.ErrForbidden)
	ErrInvalidAccessToken  = fmt.Errorf("%w: invalid access token", apperrors.ErrUnauthorized)
	ErrExpiredAccessToken  = fmt.Errorf("%w: access token expired", apperrors.ErrUnauthorized)
	ErrInvalidRefreshToken = fmt.Errorf("%w: invalid refresh token", apperrors.ErrUnauthorized)
	ErrExpiredRefreshToken = fmt.Errorf("%w: refresh token expired", apperrors.ErrUnauthorized)
	ErrRefreshTokenReused  = fmt.Errorf("%w: refresh token already used", apperrors.ErrUnauthorized)
)

// UserStore is the user persistence the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user *auth.User) error
	FindByID(ctx context.Context, id string) (*auth.User, error)
	FindByUsername(ctx context.Context, username string) (*auth.User, error)
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	UpdateLastLoginAt(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// RefreshTokenStore is the refresh-token persistence the auth service
// needs. Revoke must be atomic: it succeeds for at most one caller per
// token and returns authRepo.ErrAlreadyRevoked for everyone else.
type RefreshTokenStore interface {
	Create(ctx context.Context, token *auth.RefreshToken) error
	FindByHash(ctx context.Context, tokenHash string) (*auth.RefreshToken, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteByHash(ctx context.Context, tokenHash string) error
}

// AuthService implements registration, login and the refresh-token
// rotation flow.
type AuthService struct {
	userStore     UserStore
	refreshStore  RefreshTokenStore
	tokens        *jwt.Manager
	refreshExpiry time.Duration
}

// NewAuthService creates the auth service.
func NewAuthService(
	userStore UserStore,
	refreshStore RefreshTokenStore,
	tokens *jwt.Manager,
	refreshExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userStore:     userStore,
		refreshStore:  refreshStore,
		tokens:        tokens,
		refreshExpiry: refreshExpiry,
	}
}

// RegisterResult is the registration outcome.
type RegisterResult struct {
	UserID   string
	Username string
	Status   string
}

// Register creates a new account. New accounts start inactive with the
// student role until an administrator approves them.
func (s *AuthService) Register(ctx context.Context, username, email, pwd, fullName string) (*RegisterResult, error) {
	existing, _ := s.userStore.FindByUsername(ctx, username)
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	existing, _ = s.userStore.FindByEmail(ctx, email)
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := password.Hash(pwd)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &auth.User{
		ID:       id.New(),
		Username: username,
		Email:    email,
		Password: hashedPassword,
		Roles:    []string{auth.RoleStudent},
		Status:   auth.UserStatusInactive,
	}

	if fullName != "" {
		user.Profile = &auth.UserProfile{
			FullName: fullName,
		}
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		log.Error().Err(err).Msg("failed to create user")
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &RegisterResult{
		UserID:   user.ID,
		Username: user.Username,
		Status:   string(user.Status),
	}, nil
}

// TokenPair is an issued access token plus the opaque refresh secret
// that can later be exchanged for the next pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	ExpiresIn    int
	TokenType    string
}

// LoginResult is the login outcome.
type LoginResult struct {
	TokenPair
	User *auth.User
}

// Login verifies credentials and issues a token pair. A failed lookup
// and a failed password check return the same error so the response
// does not reveal whether the username exists.
func (s *AuthService) Login(ctx context.Context, username, pwd string) (*LoginResult, error) {
	user, err := s.userStore.FindByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !password.Verify(pwd, user.Password) {
		return nil, ErrInvalidCredentials
	}

	if user.Status == auth.UserStatusInactive {
		return nil, ErrUserInactive
	}
	if user.Status == auth.UserStatusBanned {
		return nil, ErrUserBanned
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.userStore.UpdateLastLoginAt(ctx, user.ID); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login time")
	}

	return &LoginResult{
		TokenPair: *pair,
		User:      user,
	}, nil
}

// Refresh exchanges a refresh secret for a new token pair, revoking the
// presented token in the same step. The revocation is conditional on the
// token still being live, so two concurrent exchanges of the same secret
// cannot both succeed; the loser sees a reuse error. Reuse of an already
// revoked token is treated as theft and revokes the user's whole chain.
func (s *AuthService) Refresh(ctx context.Context, refreshSecret string) (*TokenPair, error) {
	tokenHash := jwt.HashRefreshSecret(refreshSecret)

	token, err := s.refreshStore.FindByHash(ctx, tokenHash)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	if token.IsExpired() {
		_ = s.refreshStore.DeleteByHash(ctx, tokenHash)
		return nil, ErrExpiredRefreshToken
	}

	if err := s.refreshStore.Revoke(ctx, tokenHash); err != nil {
		if errors.Is(err, authRepo.ErrAlreadyRevoked) {
			log.Warn().
				Str("user_id", token.UserID).
				Msg("revoked refresh token presented, revoking all sessions")
			if rerr := s.refreshStore.RevokeAllForUser(ctx, token.UserID); rerr != nil {
				log.Error().Err(rerr).Str("user_id", token.UserID).Msg("failed to revoke user sessions")
			}
			return nil, ErrRefreshTokenReused
		}
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	user, err := s.userStore.FindByID(ctx, token.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if user.Status == auth.UserStatusBanned {
		return nil, ErrUserBanned
	}

	return s.issueTokenPair(ctx, user)
}

// issueTokenPair generates an access token and persists a fresh refresh
// token row for the user.
func (s *AuthService) issueTokenPair(ctx context.Context, user *auth.User) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateToken(user.ID, user.Username, user.Email, user.Roles)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate access token")
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshSecret := jwt.GenerateRefreshSecret()
	now := time.Now()
	refreshToken := &auth.RefreshToken{
		ID:        id.New(),
		UserID:    user.ID,
		TokenHash: jwt.HashRefreshSecret(refreshSecret),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.refreshExpiry),
	}

	if err := s.refreshStore.Create(ctx, refreshToken); err != nil {
		log.Error().Err(err).Msg("failed to create refresh token")
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	expiry := s.tokens.GetExpiration()
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshSecret,
		ExpiresAt:    now.Add(expiry),
		ExpiresIn:    int(expiry.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// Logout revokes the presented refresh token. Revoking a token that is
// already gone is not an error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshSecret string) error {
	tokenHash := jwt.HashRefreshSecret(refreshSecret)
	if err := s.refreshStore.Revoke(ctx, tokenHash); err != nil && !errors.Is(err, authRepo.ErrAlreadyRevoked) {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// LogoutAll revokes every live refresh token of the user.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	return s.refreshStore.RevokeAllForUser(ctx, userID)
}

// GetUserByID loads a user by ID.
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*auth.User, error) {
	user, err := s.userStore.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ValidateToken validates an access token and loads the user behind it.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*auth.User, *jwt.Claims, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, nil, ErrExpiredAccessToken
		}
		return nil, nil, ErrInvalidAccessToken
	}

	user, err := s.userStore.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, ErrUserNotFound
	}

	if user.Status == auth.UserStatusBanned {
		return nil, nil, ErrUserBanned
	}

	return user, claims, nil
}

// ChangePassword verifies the current password, replaces it and revokes
// every live session so stolen refresh tokens die with the old password.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPwd, newPwd string) error {
	user, err := s.userStore.FindByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	if !password.Verify(currentPwd, user.Password) {
		return ErrInvalidCredentials
	}

	hashed, err := password.Hash(newPwd)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userStore.UpdatePassword(ctx, userID, hashed); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.refreshStore.RevokeAllForUser(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to revoke sessions after password change")
	}

	return nil
}
