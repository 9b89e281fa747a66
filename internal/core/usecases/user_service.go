package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/samirrijal/backoffice/internal/core/domain"
	"github.com/samirrijal/backoffice/internal/core/ports"
	"github.com/samirrijal/backoffice/internal/pkg/metrics"
)

// PermissionKey is the cache key of a user's resolved permissions.
func PermissionKey(userID string) string {
	return "perm:" + userID
}

// UserService manages platform users.
type UserService struct {
	users     ports.UserRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewUserService creates a new UserService.
func NewUserService(users ports.UserRepository, cache ports.CacheService, publisher ports.EventPublisher) *UserService {
	return &UserService{users: users, cache: cache, publisher: publisher}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// Save validates and stores a user. Emails are unique, case-insensitively.
func (s *UserService) Save(ctx context.Context, u *domain.User) error {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("%w: email is invalid", domain.ErrValidation)
	}
	if u.Role == "" {
		u.Role = domain.RoleEditor
	}
	if u.Role != domain.RoleAdmin && u.Role != domain.RoleEditor {
		return fmt.Errorf("%w: role must be admin or editor", domain.ErrValidation)
	}
	for r := range u.Permissions {
		if !knownResource(r) {
			return fmt.Errorf("%w: unknown resource %q", domain.ErrValidation, r)
		}
	}
	if u.Permissions == nil {
		u.Permissions = domain.Permissions{}
	}

	existing, err := s.users.GetByEmail(ctx, u.Email)
	switch {
	case err == nil && existing.ID != u.ID:
		return fmt.Errorf("%w: email %s is already in use", domain.ErrConflict, u.Email)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("get user by email: %w", err)
	}

	action := stampNew(&u.ID, &u.CreatedAt)
	if err := s.users.Upsert(ctx, u); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	s.forget(ctx, u.ID)
	publishChange(ctx, s.publisher, domain.CollectionUsers, u.ID, action)
	return nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.forget(ctx, id)
	publishChange(ctx, s.publisher, domain.CollectionUsers, id, domain.ActionDeleted)
	return nil
}

func (s *UserService) forget(ctx context.Context, id string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, PermissionKey(id))
	}
}

func knownResource(r string) bool {
	for _, known := range domain.AllResources() {
		if r == known {
			return true
		}
	}
	return false
}

// PermissionService implements ports.PermissionProvider.
type PermissionService struct {
	users ports.UserRepository
	cache ports.CacheService
	ttl   int
}

// NewPermissionService creates a new PermissionService. ttlSeconds applies to
// cached permission maps.
func NewPermissionService(users ports.UserRepository, cache ports.CacheService, ttlSeconds int) *PermissionService {
	if ttlSeconds <= 0 {
		ttlSeconds = 120
	}
	return &PermissionService{users: users, cache: cache, ttl: ttlSeconds}
}

// Permissions resolves the effective permissions of userID. Unknown users
// get an empty map.
func (s *PermissionService) Permissions(ctx context.Context, userID string) (domain.Permissions, error) {
	if userID == "" {
		return domain.Permissions{}, nil
	}

	key := PermissionKey(userID)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var perms domain.Permissions
			if err := json.Unmarshal(data, &perms); err == nil {
				metrics.CacheHits.WithLabelValues("permissions").Inc()
				return perms, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("permissions").Inc()
	}

	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Permissions{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	perms := u.EffectivePermissions()
	if s.cache != nil {
		if data, err := json.Marshal(perms); err == nil {
			_ = s.cache.Set(ctx, key, data, s.ttl)
		}
	}
	return perms, nil
}
