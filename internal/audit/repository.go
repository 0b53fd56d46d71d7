package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository reads audit_logs from PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const timelineSelect = `
	SELECT id, action, actor_id, target_user_id, details, occurred_at
	FROM audit_logs
	WHERE ($1::timestamptz IS NULL OR occurred_at >= $1)
	  AND ($2::timestamptz IS NULL OR occurred_at <= $2)
	  AND ($3::bigint IS NULL OR actor_id = $3)
	  AND ($4::text IS NULL OR action = $4)
	ORDER BY occurred_at DESC, id DESC`

// TimelineWindow returns one window of entries.
func (r *PGRepository) TimelineWindow(ctx context.Context, q Query) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, timelineSelect+` OFFSET $5 LIMIT $6`,
		q.FromAt, q.ToAt, q.ActorID, q.Action, q.OffsetRows, q.LimitRows)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// TimelineAll returns every matching entry.
func (r *PGRepository) TimelineAll(ctx context.Context, q Query) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, timelineSelect, q.FromAt, q.ToAt, q.ActorID, q.Action)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var e Entry
		var details []byte
		if err := rows.Scan(&e.ID, &e.Action, &e.ActorID, &e.TargetUserID, &details, &e.At); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &e.Details)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ Repository = (*PGRepository)(nil)
