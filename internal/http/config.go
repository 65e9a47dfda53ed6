package http

import (
	"log/slog"

	"github.com/mrlokans/jobportal/internal/auth"
	"github.com/mrlokans/jobportal/internal/database"
	"github.com/mrlokans/jobportal/internal/uploads"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database   *database.Database
	Principals PrincipalStore
	Audit      AuditRecorder
	Logger     *slog.Logger

	// Security pipeline, applied in this order to every route except /health
	SessionManager *auth.SessionManager
	Gate           *auth.Gate
	CSRF           *auth.CSRFGuard

	// Login, registration and logout routes
	AuthController *auth.AuthController

	// Resume uploads (optional)
	Uploads *uploads.Store

	// Task queue for admin maintenance endpoints (optional)
	Tasks              TaskQueue
	AuditRetentionDays int

	// Send HSTS on HTTPS requests
	SecureCookies bool

	// Application info
	Version string
}
