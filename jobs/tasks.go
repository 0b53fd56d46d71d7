package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionSweep removes expired session rows from postgres.
	TaskSessionSweep = "session:sweep"
)

// NewSessionSweepTask constructs the periodic sweep task.
func NewSessionSweepTask() *asynq.Task {
	return asynq.NewTask(TaskSessionSweep, nil)
}

// NewSessionSweepHandler returns the handler deleting expired session rows.
// The Redis-side session payloads expire on their own TTL; this keeps the
// postgres audit table from growing without bound.
func NewSessionSweepHandler(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tag, err := pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
		if err != nil {
			return err
		}
		if logger != nil {
			logger.Info("session sweep", slog.Int64("deleted", tag.RowsAffected()))
		}
		return nil
	}
}
