package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"ikhtibar/internal/model/auth"
	"ikhtibar/internal/pkg/apperrors"
	authRepo "ikhtibar/internal/repository/auth"
)

// UserService implements account administration.
type UserService struct {
	userRepo    *authRepo.UserRepo
	roleService *RoleService
	authService *AuthService
}

// NewUserService creates the user service.
func NewUserService(userRepo *authRepo.UserRepo, roleService *RoleService, authService *AuthService) *UserService {
	return &UserService{
		userRepo:    userRepo,
		roleService: roleService,
		authService: authService,
	}
}

// GetUser loads a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*auth.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsersResult is a page of users.
type ListUsersResult struct {
	Users    []*auth.User `json:"users"`
	Total    int64        `json:"total"`
	Page     int64        `json:"page"`
	PageSize int64        `json:"page_size"`
}

// ListUsers returns users page by page, optionally filtered by role and
// status.
func (s *UserService) ListUsers(ctx context.Context, role string, status string, page, pageSize int64) (*ListUsersResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	filter := bson.M{}
	if role != "" {
		filter["roles"] = role
	}
	if status != "" {
		if !auth.UserStatus(status).IsValid() {
			return nil, fmt.Errorf("%w: unknown user status %q", apperrors.ErrInvalidArgument, status)
		}
		filter["status"] = status
	}

	users, total, err := s.userRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("list users: %w", err)
	}

	return &ListUsersResult{
		Users:    users,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// UpdateProfile replaces the user's profile metadata.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, profile *auth.UserProfile) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return ErrUserNotFound
	}

	return s.userRepo.Update(ctx, userID, bson.M{"$set": bson.M{"profile": profile}})
}

// SetStatus changes an account lifecycle state. Banning a user also
// kills every live session.
func (s *UserService) SetStatus(ctx context.Context, userID string, status auth.UserStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: unknown user status %q", apperrors.ErrInvalidArgument, status)
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return ErrUserNotFound
	}

	if err := s.userRepo.SetStatus(ctx, userID, status); err != nil {
		return fmt.Errorf("set status: %w", err)
	}

	if status == auth.UserStatusBanned {
		if err := s.authService.LogoutAll(ctx, userID); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("failed to revoke sessions of banned user")
		}
	}

	return nil
}

// SetRoles replaces the user's role set. Every role must exist. The
// cached effective permissions are invalidated.
func (s *UserService) SetRoles(ctx context.Context, userID string, roles []string) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return ErrUserNotFound
	}

	for _, name := range roles {
		if _, err := s.roleService.GetRoleByName(ctx, name); err != nil {
			return fmt.Errorf("%w: role %q", apperrors.ErrInvalidArgument, name)
		}
	}

	if err := s.userRepo.SetRoles(ctx, userID, roles); err != nil {
		return fmt.Errorf("set roles: %w", err)
	}

	s.roleService.InvalidateUserPermissions(ctx, userID)
	return nil
}

// DeleteUser removes an account and every live session behind it.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return ErrUserNotFound
	}

	if err := s.authService.LogoutAll(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to revoke sessions of deleted user")
	}
	s.roleService.InvalidateUserPermissions(ctx, userID)

	return s.userRepo.Delete(ctx, userID)
}
