package http

import (
	"context"
	"time"

	"github.com/mrlokans/jobportal/internal/entities"
)

// Each controller defines the narrow interface it needs; *principals.Repository
// and *audit.Service satisfy the composites below.

// PrincipalGetter provides read access to a single principal.
type PrincipalGetter interface {
	GetPrincipalByID(ctx context.Context, id uint) (*entities.Principal, error)
}

// PrincipalLister pages through all principals.
type PrincipalLister interface {
	ListPrincipals(ctx context.Context, offset, limit int) ([]entities.Principal, error)
	CountPrincipals(ctx context.Context) (int64, error)
}

// ResumeSetter records where a principal's resume is stored.
type ResumeSetter interface {
	SetResumePath(ctx context.Context, id uint, path string) error
}

// PrincipalStore combines the principal operations used by the controllers.
type PrincipalStore interface {
	PrincipalGetter
	PrincipalLister
	ResumeSetter
}

// UploadRecorder records resume uploads in the audit trail.
type UploadRecorder interface {
	LogUpload(principalID uint, description string, err error)
}

// FailureCounter reports recent failed security events.
type FailureCounter interface {
	RecentFailures(action string, window time.Duration) (int64, error)
}

// EventReader pages through the audit trail. A zero principalID means everyone.
type EventReader interface {
	GetEvents(principalID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(eventType entities.AuditEventType, principalID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// AuditRecorder combines the audit operations used by the controllers.
type AuditRecorder interface {
	UploadRecorder
	FailureCounter
	EventReader
}
