package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the single-statement surface the recorder needs; satisfied by
// *pgxpool.Pool.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Recorder appends audit rows. Writes are best-effort: a failed insert is
// logged and swallowed so it can never fail the operation being audited.
type Recorder struct {
	db     Execer
	logger *slog.Logger
}

// NewRecorder returns a new Recorder.
func NewRecorder(db Execer, logger *slog.Logger) *Recorder {
	return &Recorder{db: db, logger: logger}
}

// Record appends one entry. targetUserID may be nil.
func (r *Recorder) Record(ctx context.Context, action string, actorID int64, targetUserID *int64, details map[string]any) {
	if r == nil || r.db == nil || action == "" {
		return
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		r.warn("marshal audit details", action, err)
		return
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO audit_logs (action, actor_id, target_user_id, details, occurred_at)
		VALUES ($1, $2, $3, $4, NOW())`,
		action, actorID, targetUserID, detailsJSON)
	if err != nil {
		r.warn("write audit log", action, err)
	}
}

func (r *Recorder) warn(msg, action string, err error) {
	if r.logger != nil {
		r.logger.Warn(msg, slog.String("action", action), slog.Any("error", err))
	}
}
