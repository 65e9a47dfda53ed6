// Package notify delivers outgoing HTML email for the portal.
//
// Send never returns an error: delivery is best effort and callers only learn
// whether it succeeded. Failures are logged by the implementation.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/jobportal/internal/config"
	"github.com/mrlokans/jobportal/internal/tasks"
)

// WelcomeSubject is the subject of the registration confirmation email.
const WelcomeSubject = "Welcome to Sri Lankan Job Portal"

const welcomeTemplate = "<html><body>" +
	"<h2>Welcome to Sri Lankan Job Portal!</h2>" +
	"<p>Dear %s,</p>" +
	"<p>Thank you for registering as a <strong>%s</strong> on our platform.</p>" +
	"<p>You can now access all the features available to %ss.</p>" +
	"<p>If you have any questions, please don't hesitate to contact us.</p>" +
	"<p>Best regards,<br>Sri Lankan Job Portal Team</p>" +
	"</body></html>"

// WelcomeBody renders the registration email. name must already be HTML-safe.
func WelcomeBody(name, role string) string {
	return fmt.Sprintf(welcomeTemplate, name, role, role)
}

// Notifier sends one HTML email and reports whether it was accepted.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) bool
}

// LogNotifier stands in when email is disabled: it logs and reports success.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, to, subject, _ string) bool {
	n.logger.Info("email disabled, would have sent", "to", to, "subject", subject)
	return true
}

// SMTPNotifier delivers through an SMTP relay, upgrading with STARTTLS when offered.
type SMTPNotifier struct {
	addr   string
	host   string
	from   string
	auth   smtp.Auth
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	logger *slog.Logger
}

func NewSMTPNotifier(cfg config.Email, logger *slog.Logger) *SMTPNotifier {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}
	return &SMTPNotifier{
		addr:   cfg.SMTPHost + ":" + strconv.Itoa(cfg.SMTPPort),
		host:   cfg.SMTPHost,
		from:   cfg.From,
		auth:   auth,
		send:   smtp.SendMail,
		logger: logger,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, htmlBody string) bool {
	if err := ctx.Err(); err != nil {
		return false
	}
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		n.logger.Warn("refusing email with header line breaks", "to", to)
		return false
	}

	if err := n.send(n.addr, n.auth, n.from, []string{to}, buildMessage(n.from, to, subject, htmlBody)); err != nil {
		n.logger.Error("failed to send email", "to", to, "host", n.host, "error", err)
		return false
	}
	n.logger.Info("email sent", "to", to, "subject", subject)
	return true
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// TaskAdder is the part of the task client QueuedNotifier needs.
type TaskAdder interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// QueuedNotifier hands messages to the durable task queue. Send reports
// whether the message was enqueued; the queue's mailer does the delivery.
type QueuedNotifier struct {
	queue  TaskAdder
	logger *slog.Logger
}

func NewQueuedNotifier(queue TaskAdder, logger *slog.Logger) *QueuedNotifier {
	return &QueuedNotifier{queue: queue, logger: logger}
}

func (n *QueuedNotifier) Send(ctx context.Context, to, subject, htmlBody string) bool {
	task := tasks.SendEmailTask{To: to, Subject: subject, Body: htmlBody}
	if _, err := n.queue.Add(task).Ctx(ctx).Save(); err != nil {
		n.logger.Error("failed to enqueue email", "to", to, "error", err)
		return false
	}
	return true
}

// New picks the notifier for cfg. With email disabled every message is only
// logged. With Async set and a queue available, delivery goes through the queue.
func New(cfg config.Email, queue TaskAdder, logger *slog.Logger) Notifier {
	if !cfg.Enabled {
		return NewLogNotifier(logger)
	}
	if cfg.Async && queue != nil {
		return NewQueuedNotifier(queue, logger)
	}
	return NewSMTPNotifier(cfg, logger)
}
