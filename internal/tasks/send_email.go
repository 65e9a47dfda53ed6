package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mikestefanello/backlite"
)

// ErrDeliveryFailed is returned when the mailer reports a failed send, so backlite retries.
var ErrDeliveryFailed = errors.New("email delivery failed")

// Mailer delivers one HTML message synchronously.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) bool
}

// SendEmailTask carries one outgoing message through the queue.
type SendEmailTask struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Config returns the queue configuration for email delivery.
func (t SendEmailTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "send_email",
		MaxAttempts: 5,
		Backoff:     time.Minute,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SendEmailProcessor creates a processor function for SendEmailTask.
func SendEmailProcessor(mailer Mailer, logger *slog.Logger) backlite.QueueProcessor[SendEmailTask] {
	return func(ctx context.Context, task SendEmailTask) error {
		if mailer == nil {
			return fmt.Errorf("mailer not configured")
		}
		if task.To == "" {
			// Nothing to retry; drop it.
			logger.Warn("dropping email task without recipient", "subject", task.Subject)
			return nil
		}

		if !mailer.Send(ctx, task.To, task.Subject, task.Body) {
			return fmt.Errorf("send to %s: %w", task.To, ErrDeliveryFailed)
		}

		logger.Debug("email delivered", "to", task.To, "subject", task.Subject)
		return nil
	}
}

// NewSendEmailQueue creates a backlite queue for email delivery.
func NewSendEmailQueue(mailer Mailer, logger *slog.Logger) backlite.Queue {
	return backlite.NewQueue(SendEmailProcessor(mailer, logger))
}
