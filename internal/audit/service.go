// Package audit records security-relevant events: logins, registrations,
// CSRF rejections, and blocked access. Writes from request paths are
// asynchronous so a slow database never delays a response.
package audit

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/jobportal/internal/database/audit"
	"github.com/mrlokans/jobportal/internal/entities"
)

// Request metadata captured with every event.
type RequestInfo struct {
	IPAddress string
	UserAgent string
	Path      string
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	logger  *slog.Logger
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Log records an audit event synchronously.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			s.logger.Error("failed to log audit event", "action", event.Action, "error", err)
		}
	}()
}

// Wait blocks until all background writes have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogAuth records a login or logout attempt.
func (s *Service) LogAuth(principalID uint, action string, info RequestInfo, success bool) {
	event := &entities.AuditEvent{
		PrincipalID: principalID,
		EventType:   entities.AuditEventAuth,
		Action:      action,
		Status:      entities.AuditStatusSuccess,
	}
	applyRequestInfo(event, info)

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogRegistration records an enrollment attempt.
func (s *Service) LogRegistration(principalID uint, username string, info RequestInfo, err error) {
	event := &entities.AuditEvent{
		PrincipalID: principalID,
		EventType:   entities.AuditEventRegistration,
		Action:      "register",
		Description: "Registration for " + truncate(username, 100),
		Status:      entities.AuditStatusSuccess,
	}
	applyRequestInfo(event, info)

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogSecurity records a rejected request, such as a failed CSRF check.
func (s *Service) LogSecurity(action, description string, info RequestInfo) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventSecurity,
		Action:      action,
		Description: truncate(description, 500),
		Status:      entities.AuditStatusFailed,
	}
	applyRequestInfo(event, info)

	s.LogAsync(event)
}

// LogUpload records a resume upload.
func (s *Service) LogUpload(principalID uint, description string, err error) {
	event := &entities.AuditEvent{
		PrincipalID: principalID,
		EventType:   entities.AuditEventUpload,
		Action:      "resume_upload",
		Description: truncate(description, 500),
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogRetention records a purge of old events. requestedBy is zero for
// scheduled runs.
func (s *Service) LogRetention(requestedBy uint, retentionDays int, deleted int64, err error) {
	event := &entities.AuditEvent{
		PrincipalID: requestedBy,
		EventType:   entities.AuditEventSecurity,
		Action:      "audit_retention",
		Description: fmt.Sprintf("Purged %d events older than %d days", deleted, retentionDays),
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	// Synchronous: the purge runs on a worker, not a request path.
	if err := s.repo.LogEvent(event); err != nil {
		s.logger.Error("failed to log audit retention", "error", err)
	}
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(principalID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(principalID, limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, principalID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, principalID, limit, offset)
}

// RecentFailures counts failed events of action within the given window.
func (s *Service) RecentFailures(action string, window time.Duration) (int64, error) {
	return s.repo.CountFailures(action, time.Now().Add(-window))
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func applyRequestInfo(event *entities.AuditEvent, info RequestInfo) {
	event.IPAddress = truncate(info.IPAddress, 45)
	event.UserAgent = truncate(info.UserAgent, 500)
	event.Path = truncate(info.Path, 1024)
}

// truncate shortens s to at most maxLen bytes without splitting a UTF-8 sequence.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
