package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/jobportal/internal/auth"
	"github.com/mrlokans/jobportal/internal/database"
	"github.com/mrlokans/jobportal/internal/uploads"
)

const (
	healthHealthy   = "healthy"
	healthDegraded  = "degraded"
	healthUnhealthy = "unhealthy"

	defaultCheckTimeout = 2 * time.Second
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthCheck verifies one dependency. A failing critical check makes the
// portal unhealthy; any other failure only degrades it.
type HealthCheck struct {
	Name     string
	Critical bool
	Run      func(ctx context.Context) error
}

// DatabaseCheck pings the principal and audit database.
func DatabaseCheck(db *database.Database) HealthCheck {
	return HealthCheck{
		Name:     "database",
		Critical: true,
		Run: func(ctx context.Context) error {
			sqlDB, err := db.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

// SessionStoreCheck looks up a token in the session store. Without the store
// nobody can log in, so it is critical.
func SessionStoreCheck(sm *auth.SessionManager) HealthCheck {
	return HealthCheck{Name: "sessions", Critical: true, Run: sm.Ping}
}

// UploadStorageCheck reaches the resume backend. Logins keep working while
// it is down.
func UploadStorageCheck(store *uploads.Store) HealthCheck {
	return HealthCheck{Name: "uploads", Run: store.Ping}
}

type HealthController struct {
	checks  []HealthCheck
	version string
	timeout time.Duration
}

func NewHealthController(version string, checks ...HealthCheck) *HealthController {
	return &HealthController{
		checks:  checks,
		version: version,
		timeout: defaultCheckTimeout,
	}
}

// Status runs every check in order. It sits outside the security pipeline
// so load balancers can poll it without a session.
func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string, len(h.checks))
	status := healthHealthy

	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		err := check.Run(ctx)
		cancel()

		if err == nil {
			checks[check.Name] = "ok"
			continue
		}
		checks[check.Name] = "error: " + err.Error()
		if check.Critical {
			status = healthUnhealthy
		} else if status == healthHealthy {
			status = healthDegraded
		}
	}

	statusCode := http.StatusOK
	if status == healthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	})
}
