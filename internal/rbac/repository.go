package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed access data for the resolver and
// the catalog seeder.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UserAccessProfile loads the coarse role tag and Role reference for a user.
func (r *Repository) UserAccessProfile(ctx context.Context, userID int64) (AccessProfile, bool, error) {
	var tag string
	var roleID *int64
	err := r.pool.QueryRow(ctx,
		`SELECT role_tag, role_id FROM users WHERE id = $1`, userID,
	).Scan(&tag, &roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccessProfile{}, false, nil
		}
		return AccessProfile{}, false, err
	}
	return AccessProfile{CoarseRole: ParseCoarseRole(tag), RoleID: roleID}, true, nil
}

// RolePermissionKeys returns the permission keys attached to a role. A
// dangling role reference simply yields no rows.
func (r *Repository) RolePermissionKeys(ctx context.Context, roleID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.key FROM role_permissions rp
		 JOIN permissions p ON p.id = rp.permission_id
		 WHERE rp.role_id = $1`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKeys(rows)
}

// OverrideKeys returns the user's direct permission grants.
func (r *Repository) OverrideKeys(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.key FROM user_permissions up
		 JOIN permissions p ON p.id = up.permission_id
		 WHERE up.user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKeys(rows)
}

// CreatePermissionIfAbsent inserts a catalog row unless its key exists.
// Existing rows keep their module and description untouched.
func (r *Repository) CreatePermissionIfAbsent(ctx context.Context, p Permission) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO permissions (key, module, description)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO NOTHING`,
		p.Key, string(p.Module), p.Description)
	return err
}

func scanKeys(rows pgx.Rows) ([]string, error) {
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

var _ AccessReader = (*Repository)(nil)
var _ CatalogStore = (*Repository)(nil)
