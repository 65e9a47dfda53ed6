package tasks

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mikestefanello/backlite"
)

// DefaultAuditRetentionDays applies when a task carries no retention.
const DefaultAuditRetentionDays = 90

// AuditPurger deletes expired audit events and records that it did so.
// The purge itself lands in the trail so deleted history is never silent.
type AuditPurger interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
	LogRetention(requestedBy uint, retentionDays int, deleted int64, err error)
}

// PurgeAuditEventsTask removes audit events older than RetentionDays.
// RequestedBy is the admin who triggered it, zero for the nightly schedule.
type PurgeAuditEventsTask struct {
	RetentionDays int  `json:"retention_days"`
	RequestedBy   uint `json:"requested_by,omitempty"`
}

func (t PurgeAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "purge_audit_events",
		MaxAttempts: 5,
		Backoff:     10 * time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 7 * 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func (t PurgeAuditEventsTask) retention() (int, time.Duration) {
	days := t.RetentionDays
	if days <= 0 {
		days = DefaultAuditRetentionDays
	}
	return days, time.Duration(days) * 24 * time.Hour
}

type auditPurge struct {
	purger AuditPurger
	logger *slog.Logger
}

// Process returns the delete error so backlite retries a locked database.
// Every attempt, failed or not, is written to the trail.
func (p auditPurge) Process(_ context.Context, task PurgeAuditEventsTask) error {
	if p.purger == nil {
		return errors.New("audit purger not configured")
	}

	days, retention := task.retention()
	deleted, err := p.purger.DeleteOldEvents(retention)
	p.purger.LogRetention(task.RequestedBy, days, deleted, err)
	if err != nil {
		p.logger.Warn("audit purge failed", "retention_days", days, "requested_by", task.RequestedBy, "error", err)
		return err
	}

	p.logger.Info("audit events purged", "deleted", deleted, "retention_days", days, "requested_by", task.RequestedBy)
	return nil
}

func NewPurgeAuditEventsQueue(purger AuditPurger, logger *slog.Logger) backlite.Queue {
	p := auditPurge{purger: purger, logger: logger}
	return backlite.NewQueue(p.Process)
}
