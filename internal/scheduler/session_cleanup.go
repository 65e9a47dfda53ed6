package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

const purgeExpiredSessionsSQL = `DELETE FROM sessions WHERE expiry < julianday('now')`

// PurgeExpiredSessions deletes session rows past their expiry and returns how many went.
func PurgeExpiredSessions(ctx context.Context, db *sql.DB) (int64, error) {
	res, err := db.ExecContext(ctx, purgeExpiredSessionsSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	return res.RowsAffected()
}

// SessionCleanupScheduler periodically removes expired sessions from the
// session store's table.
type SessionCleanupScheduler struct {
	*job
	db *sql.DB
}

func NewSessionCleanupScheduler(db *sql.DB, schedule string, logger *slog.Logger) *SessionCleanupScheduler {
	s := &SessionCleanupScheduler{db: db}
	s.job = newJob("session_cleanup", schedule, logger, s.purge)
	return s
}

// RunNow purges immediately, outside the schedule.
func (s *SessionCleanupScheduler) RunNow(ctx context.Context) (int64, error) {
	return PurgeExpiredSessions(ctx, s.db)
}

func (s *SessionCleanupScheduler) purge(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	start := time.Now()
	n, err := PurgeExpiredSessions(ctx, s.db)
	if err != nil {
		s.logger.Error("session cleanup failed", "error", err)
		return
	}
	s.logger.Info("session cleanup finished", "deleted", n, "duration", time.Since(start).Round(time.Millisecond))
}
