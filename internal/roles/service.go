package roles

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/erashu/erashu-admin/internal/platform/httpx"
	"github.com/erashu/erashu-admin/internal/rbac"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	CreateRole(ctx context.Context, name, description string, permissionIDs []int64) (Role, error)
	UpdateRole(ctx context.Context, id int64, name, description string, permissionIDs []int64) (Role, error)
	DeleteRole(ctx context.Context, id int64) error
	PermissionIDsByKey(ctx context.Context, keys []string) (map[string]int64, error)
}

// RoleInput carries the fields of a create or update request.
type RoleInput struct {
	Name           string
	Description    string
	PermissionKeys []string
}

// Service handles role business logic.
type Service struct {
	repo     RepositoryPort
	catalog  *rbac.Catalog
	collator *collate.Collator
}

// NewService builds Service instance. Role listings sort with Turkish
// collation so names like "Ürün Editörü" land where panel users expect.
func NewService(repo RepositoryPort, catalog *rbac.Catalog) *Service {
	return &Service{repo: repo, catalog: catalog, collator: collate.New(language.Turkish)}
}

// List returns all roles ordered by name under Turkish collation.
func (s *Service) List(ctx context.Context) ([]Role, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(roles, func(i, j int) bool {
		return s.collator.CompareString(roles[i].Name, roles[j].Name) < 0
	})
	return roles, nil
}

// Get fetches a role by ID.
func (s *Service) Get(ctx context.Context, id int64) (Role, error) {
	return s.repo.GetRole(ctx, id)
}

// Create validates the input and inserts the role with its permission set.
// Nothing is written when validation fails.
func (s *Service) Create(ctx context.Context, input RoleInput) (Role, error) {
	name, ids, err := s.validate(ctx, input)
	if err != nil {
		return Role{}, err
	}
	return s.repo.CreateRole(ctx, name, strings.TrimSpace(input.Description), ids)
}

// Update validates the input and replaces the role's fields and permission
// set atomically.
func (s *Service) Update(ctx context.Context, id int64, input RoleInput) (Role, error) {
	name, ids, err := s.validate(ctx, input)
	if err != nil {
		return Role{}, err
	}
	return s.repo.UpdateRole(ctx, id, name, strings.TrimSpace(input.Description), ids)
}

// Delete removes a role. Users referencing it fall back to "no role" and
// keep resolving through their direct overrides.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteRole(ctx, id)
}

func (s *Service) validate(ctx context.Context, input RoleInput) (string, []int64, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", nil, fmt.Errorf("%w: role name required", httpx.ErrValidation)
	}

	keys := dedupe(input.PermissionKeys)
	for _, key := range keys {
		if !s.catalog.Contains(key) {
			return "", nil, fmt.Errorf("%w: unknown permission key %q", httpx.ErrValidation, key)
		}
	}

	byKey, err := s.repo.PermissionIDsByKey(ctx, keys)
	if err != nil {
		return "", nil, err
	}
	ids := make([]int64, 0, len(keys))
	for _, key := range keys {
		id, ok := byKey[key]
		if !ok {
			// In the catalog table but not yet seeded: reject rather than
			// silently dropping the key.
			return "", nil, fmt.Errorf("%w: permission %q not seeded", httpx.ErrValidation, key)
		}
		ids = append(ids, id)
	}
	return name, ids, nil
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
