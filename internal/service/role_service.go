package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"ikhtibar/internal/model/auth"
	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/cache"
	"ikhtibar/internal/pkg/id"
	authRepo "ikhtibar/internal/repository/auth"
)

var (
	ErrRoleNotFound      = fmt.Errorf("%w: role", apperrors.ErrNotFound)
	ErrRoleAlreadyExists = fmt.Errorf("%w: role name already taken", apperrors.ErrConflict)
	ErrSystemRole        = fmt.Errorf("%w: system roles cannot be modified", apperrors.ErrForbidden)
	ErrRoleInUse         = fmt.Errorf("%w: role is still assigned to users", apperrors.ErrConflict)
)

// RoleService implements role and permission administration plus the
// cached effective-permission lookups used on every authorized request.
type RoleService struct {
	roleRepo *authRepo.RoleRepo
	permRepo *authRepo.PermissionRepo
	userRepo *authRepo.UserRepo
	cache    *cache.RedisCache
}

// NewRoleService creates the role service.
func NewRoleService(
	roleRepo *authRepo.RoleRepo,
	permRepo *authRepo.PermissionRepo,
	userRepo *authRepo.UserRepo,
	redisCache *cache.RedisCache,
) *RoleService {
	return &RoleService{
		roleRepo: roleRepo,
		permRepo: permRepo,
		userRepo: userRepo,
		cache:    redisCache,
	}
}

// CreateRole creates a custom role. Every permission code must exist in
// the catalogue.
func (s *RoleService) CreateRole(ctx context.Context, name, description string, permissions []string) (*auth.Role, error) {
	if existing, _ := s.roleRepo.FindByName(ctx, name); existing != nil {
		return nil, ErrRoleAlreadyExists
	}

	if err := s.validatePermissions(ctx, permissions); err != nil {
		return nil, err
	}

	role := &auth.Role{
		ID:          id.New(),
		Name:        name,
		Description: description,
		Permissions: permissions,
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		log.Error().Err(err).Str("role", name).Msg("failed to create role")
		return nil, fmt.Errorf("create role: %w", err)
	}

	return role, nil
}

// UpdateRole changes a role's description and permission set. System
// roles are immutable.
func (s *RoleService) UpdateRole(ctx context.Context, roleID, description string, permissions []string) error {
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return ErrRoleNotFound
	}
	if role.IsSystem {
		return ErrSystemRole
	}

	if err := s.validatePermissions(ctx, permissions); err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"description": description,
		"permissions": permissions,
	}}
	if err := s.roleRepo.Update(ctx, roleID, update); err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	s.invalidateRoleMembers(ctx, role.Name)
	return nil
}

// DeleteRole removes a role. System roles and roles still assigned to
// users are protected.
func (s *RoleService) DeleteRole(ctx context.Context, roleID string) error {
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return ErrRoleNotFound
	}
	if role.IsSystem {
		return ErrSystemRole
	}

	n, err := s.userRepo.CountByRole(ctx, role.Name)
	if err != nil {
		return fmt.Errorf("count role members: %w", err)
	}
	if n > 0 {
		return ErrRoleInUse
	}

	return s.roleRepo.Delete(ctx, roleID)
}

// GetRole loads a role by ID.
func (s *RoleService) GetRole(ctx context.Context, roleID string) (*auth.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, ErrRoleNotFound
	}
	return role, nil
}

// GetRoleByName loads a role by name.
func (s *RoleService) GetRoleByName(ctx context.Context, name string) (*auth.Role, error) {
	role, err := s.roleRepo.FindByName(ctx, name)
	if err != nil {
		return nil, ErrRoleNotFound
	}
	return role, nil
}

// ListRoles returns all roles.
func (s *RoleService) ListRoles(ctx context.Context) ([]*auth.Role, error) {
	return s.roleRepo.List(ctx)
}

// ListPermissions returns the permission catalogue.
func (s *RoleService) ListPermissions(ctx context.Context) ([]*auth.Permission, error) {
	return s.permRepo.List(ctx)
}

// EffectivePermissions returns the union of the permission sets of the
// user's roles. Results are cached in redis for a few minutes; a cache
// miss or a broken cache falls back to the database.
func (s *RoleService) EffectivePermissions(ctx context.Context, userID string) ([]string, error) {
	cacheKey := cache.PermissionCacheKey(userID)

	var cached []string
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	roles, err := s.roleRepo.FindByNames(ctx, user.Roles)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	seen := make(map[string]bool)
	perms := make([]string, 0)
	for _, role := range roles {
		for _, code := range role.Permissions {
			if !seen[code] {
				seen[code] = true
				perms = append(perms, code)
			}
		}
	}

	if err := s.cache.Set(ctx, cacheKey, perms, cache.PermissionCacheTTL); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to cache permissions")
	}

	return perms, nil
}

// HasPermission reports whether the user's effective permission set
// contains the code.
func (s *RoleService) HasPermission(ctx context.Context, userID, code string) (bool, error) {
	perms, err := s.EffectivePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p == code {
			return true, nil
		}
	}
	return false, nil
}

// InvalidateUserPermissions drops the cached permission set of one user.
func (s *RoleService) InvalidateUserPermissions(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, cache.PermissionCacheKey(userID)); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to invalidate permission cache")
	}
}

// invalidateRoleMembers drops the cached permissions of every user
// carrying the role. The member list is paged through the user repo.
func (s *RoleService) invalidateRoleMembers(ctx context.Context, roleName string) {
	const pageSize = 200
	for page := int64(1); ; page++ {
		users, _, err := s.userRepo.List(ctx, bson.M{"roles": roleName}, page, pageSize)
		if err != nil {
			log.Warn().Err(err).Str("role", roleName).Msg("failed to list role members for cache invalidation")
			return
		}
		if len(users) == 0 {
			return
		}

		keys := make([]string, len(users))
		for i, u := range users {
			keys[i] = cache.PermissionCacheKey(u.ID)
		}
		if err := s.cache.Delete(ctx, keys...); err != nil {
			log.Warn().Err(err).Str("role", roleName).Msg("failed to invalidate permission cache")
		}

		if int64(len(users)) < pageSize {
			return
		}
	}
}

// validatePermissions checks every code against the catalogue.
func (s *RoleService) validatePermissions(ctx context.Context, codes []string) error {
	for _, code := range codes {
		ok, err := s.permRepo.Exists(ctx, code)
		if err != nil {
			return fmt.Errorf("check permission %q: %w", code, err)
		}
		if !ok {
			return fmt.Errorf("%w: unknown permission %q", apperrors.ErrInvalidArgument, code)
		}
	}
	return nil
}

// SeedBuiltins inserts the built-in permission catalogue and system
// roles if they are missing. Called once at startup.
func (s *RoleService) SeedBuiltins(ctx context.Context) error {
	for _, perm := range auth.BuiltinPermissions() {
		if _, err := s.permRepo.FindByCode(ctx, perm.Code); err == nil {
			continue
		}
		p := perm
		p.ID = id.New()
		p.CreatedAt = time.Now()
		if err := s.permRepo.Create(ctx, &p); err != nil {
			return fmt.Errorf("seed permission %q: %w", p.Code, err)
		}
	}

	for _, role := range auth.BuiltinRoles() {
		if _, err := s.roleRepo.FindByName(ctx, role.Name); err == nil {
			continue
		}
		r := role
		r.ID = id.New()
		if err := s.roleRepo.Create(ctx, &r); err != nil {
			return fmt.Errorf("seed role %q: %w", r.Name, err)
		}
		log.Info().Str("role", r.Name).Msg("seeded system role")
	}

	return nil
}
