package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/erashu/erashu-admin/internal/platform/httpx"
)

const foreignKeyViolation = "23503"

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `
	u.id, u.email, u.name, u.role_tag, u.role_id, COALESCE(ro.name, ''),
	COALESCE(array_agg(p.key ORDER BY p.key) FILTER (WHERE p.key IS NOT NULL), '{}'),
	u.is_active, u.created_at, u.updated_at`

// ListUsers returns all users with role names and override keys.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users u
		LEFT JOIN roles ro ON ro.id = u.role_id
		LEFT JOIN user_permissions up ON up.user_id = u.id
		LEFT JOIN permissions p ON p.id = up.permission_id
		GROUP BY u.id, ro.name
		ORDER BY u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser fetches a single user.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users u
		LEFT JOIN roles ro ON ro.id = u.role_id
		LEFT JOIN user_permissions up ON up.user_id = u.id
		LEFT JOIN permissions p ON p.id = up.permission_id
		WHERE u.id = $1
		GROUP BY u.id, ro.name`, id)
	if err != nil {
		return User{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return User{}, err
		}
		return User{}, fmt.Errorf("%w: user %d", httpx.ErrNotFound, id)
	}
	return scanUser(rows)
}

// AssignRole points the user at a role, or clears the reference when roleID
// is nil.
func (r *Repository) AssignRole(ctx context.Context, userID int64, roleID *int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role_id = $2, updated_at = NOW() WHERE id = $1`, userID, roleID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return fmt.Errorf("%w: role does not exist", httpx.ErrValidation)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %d", httpx.ErrNotFound, userID)
	}
	return nil
}

// GrantOverride adds a direct permission to the user. Granting an already
// held override is a no-op.
func (r *Repository) GrantOverride(ctx context.Context, userID int64, permissionKey string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_permissions (user_id, permission_id)
		SELECT $1, p.id FROM permissions p WHERE p.key = $2
		ON CONFLICT DO NOTHING`, userID, permissionKey)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return fmt.Errorf("%w: user %d", httpx.ErrNotFound, userID)
		}
		return err
	}
	return nil
}

// RevokeOverride removes a direct permission from the user.
func (r *Repository) RevokeOverride(ctx context.Context, userID int64, permissionKey string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM user_permissions up
		USING permissions p
		WHERE up.user_id = $1 AND p.id = up.permission_id AND p.key = $2`, userID, permissionKey)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.RoleTag, &user.RoleID, &user.RoleName,
		&user.OverrideKeys, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("%w: user", httpx.ErrNotFound)
		}
		return User{}, err
	}
	return user, nil
}
