package scheduler

import (
	"context"
	"log/slog"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/jobportal/internal/tasks"
)

// TaskAdder is the part of the task client used to enqueue work.
type TaskAdder interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// AuditRetentionScheduler enqueues a cleanup task for old audit events.
// The task queue does the deletion so it is retried if the database is busy.
type AuditRetentionScheduler struct {
	*job
	queue         TaskAdder
	retentionDays int
}

func NewAuditRetentionScheduler(queue TaskAdder, schedule string, retentionDays int, logger *slog.Logger) *AuditRetentionScheduler {
	if retentionDays <= 0 {
		retentionDays = tasks.DefaultAuditRetentionDays
	}
	s := &AuditRetentionScheduler{queue: queue, retentionDays: retentionDays}
	s.job = newJob("audit_retention", schedule, logger, func(ctx context.Context) {
		_ = s.RunNow(ctx)
	})
	return s
}

// RunNow enqueues a cleanup task immediately.
func (s *AuditRetentionScheduler) RunNow(ctx context.Context) error {
	task := tasks.PurgeAuditEventsTask{RetentionDays: s.retentionDays}
	ids, err := s.queue.Add(task).Ctx(ctx).Save()
	if err != nil {
		s.logger.Error("failed to enqueue audit cleanup", "error", err)
		return err
	}
	s.logger.Info("audit cleanup enqueued", "task_ids", ids, "retention_days", s.retentionDays)
	return nil
}
