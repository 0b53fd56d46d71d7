package users

import (
	"context"
	"fmt"

	"github.com/erashu/erashu-admin/internal/platform/httpx"
	"github.com/erashu/erashu-admin/internal/rbac"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	AssignRole(ctx context.Context, userID int64, roleID *int64) error
	GrantOverride(ctx context.Context, userID int64, permissionKey string) error
	RevokeOverride(ctx context.Context, userID int64, permissionKey string) error
}

// Service handles user management logic.
type Service struct {
	repo    RepositoryPort
	catalog *rbac.Catalog
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, catalog *rbac.Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// Get fetches a user by ID.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// AssignRole points the user at a role; nil clears the assignment.
func (s *Service) AssignRole(ctx context.Context, userID int64, roleID *int64) error {
	return s.repo.AssignRole(ctx, userID, roleID)
}

// GrantOverride adds a direct permission grant. The key must exist in the
// catalog.
func (s *Service) GrantOverride(ctx context.Context, userID int64, key string) error {
	if !s.catalog.Contains(key) {
		return fmt.Errorf("%w: unknown permission key %q", httpx.ErrValidation, key)
	}
	return s.repo.GrantOverride(ctx, userID, key)
}

// RevokeOverride removes a direct permission grant.
func (s *Service) RevokeOverride(ctx context.Context, userID int64, key string) error {
	if !s.catalog.Contains(key) {
		return fmt.Errorf("%w: unknown permission key %q", httpx.ErrValidation, key)
	}
	return s.repo.RevokeOverride(ctx, userID, key)
}
