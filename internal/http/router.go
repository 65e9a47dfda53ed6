package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/jobportal/internal/auth"
	"github.com/mrlokans/jobportal/internal/entities"
)

// formOverhead is the body allowance on top of the largest upload for
// multipart framing and the other form fields.
const formOverhead = 1 << 20

// SecurityPipeline returns the request-security stages in the order they
// must run: session load/save, authentication gate, CSRF check. Each stage
// can abort the request.
func SecurityPipeline(sm *auth.SessionManager, gate *auth.Gate, csrf *auth.CSRFGuard) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		sm.SessionLoadSave(),
		gate.Handler(),
		csrf.Middleware(),
	}
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(recoveryHandler(logger)))
	router.Use(ErrorHandler(logger))

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	bodyLimit := int64(formOverhead)
	if cfg.Uploads != nil {
		bodyLimit += cfg.Uploads.MaxSize()
	}
	router.Use(MaxBodySize(bodyLimit))

	// Health endpoints stay outside the pipeline
	var checks []HealthCheck
	if cfg.Database != nil {
		checks = append(checks, DatabaseCheck(cfg.Database))
	}
	if cfg.SessionManager != nil {
		checks = append(checks, SessionStoreCheck(cfg.SessionManager))
	}
	if cfg.Uploads != nil {
		checks = append(checks, UploadStorageCheck(cfg.Uploads))
	}
	health := NewHealthController(cfg.Version, checks...)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	protected := router.Group("/", SecurityPipeline(cfg.SessionManager, cfg.Gate, cfg.CSRF)...)

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(protected)
	}

	protected.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, auth.DestinationFor(auth.GetRole(c)))
	})

	dashboards := NewDashboardController(cfg.Principals, cfg.Uploads, cfg.Audit, logger)
	protected.GET(auth.DefaultDestination, dashboards.Dashboard)
	protected.GET(auth.EmployerDestination,
		cfg.Gate.RequireRole(entities.RoleEmployer, entities.RoleAdmin),
		dashboards.EmployerDashboard)

	admin := protected.Group("/admin", cfg.Gate.RequireRole(entities.RoleAdmin))
	admin.GET("/dashboard", dashboards.AdminDashboard)
	admin.GET("/principals", NewAdminController(cfg.Principals, logger).ListPrincipals)
	if cfg.Audit != nil {
		admin.GET("/audit", NewAuditController(cfg.Audit).GetAuditEvents)
	}
	if cfg.Tasks != nil {
		tasksController := NewTasksController(cfg.Tasks, cfg.AuditRetentionDays)
		admin.GET("/tasks/:id", tasksController.GetTaskStatus)
		admin.POST("/tasks/audit-cleanup", tasksController.RunAuditCleanup)
	}

	if cfg.Uploads != nil {
		resumes := NewResumeController(cfg.Uploads, cfg.Principals, cfg.Audit, logger)
		protected.POST("/resume", cfg.Gate.RequireRole(entities.RoleStudent), resumes.Upload)
	}

	return router
}
