package entities

import "time"

type AuditEventType string

const (
	AuditEventAuth         AuditEventType = "auth"
	AuditEventRegistration AuditEventType = "registration"
	AuditEventSecurity     AuditEventType = "security"
	AuditEventUpload       AuditEventType = "upload"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PrincipalID uint           `gorm:"index" json:"principal_id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g., "login", "csrf_rejected"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	IPAddress   string         `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent   string         `gorm:"size:500" json:"user_agent,omitempty"`
	Path        string         `gorm:"size:1024" json:"path,omitempty"`
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
