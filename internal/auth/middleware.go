package auth

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/jobportal/internal/audit"
	"github.com/mrlokans/jobportal/internal/entities"
)

// Context keys for principal data
const (
	ContextKeyPrincipalID = "auth_principal_id"
	ContextKeyUsername    = "auth_username"
	ContextKeyRole        = "auth_role"
)

// MsgLoginRequired is shown on the login page after a gated redirect.
const MsgLoginRequired = "Please log in to access this page"

// Recorder receives security-relevant events. *audit.Service implements it.
type Recorder interface {
	LogAuth(principalID uint, action string, info audit.RequestInfo, success bool)
	LogRegistration(principalID uint, username string, info audit.RequestInfo, err error)
	LogSecurity(action, description string, info audit.RequestInfo)
}

type nopRecorder struct{}

func (nopRecorder) LogAuth(uint, string, audit.RequestInfo, bool)          {}
func (nopRecorder) LogRegistration(uint, string, audit.RequestInfo, error) {}
func (nopRecorder) LogSecurity(string, string, audit.RequestInfo)          {}

// Gate admits authenticated requests and sends everyone else to the login page.
// It only reads the session, never writes it.
type Gate struct {
	sessions    *SessionManager
	publicPaths map[string]bool
	recorder    Recorder
	logger      *slog.Logger
}

// NewGate creates a gate. Only the login and registration pages are public.
func NewGate(sessions *SessionManager, recorder Recorder, logger *slog.Logger) *Gate {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		sessions: sessions,
		publicPaths: map[string]bool{
			"/login":    true,
			"/register": true,
		},
		recorder: recorder,
		logger:   logger,
	}
}

// Handler returns the gin middleware.
func (g *Gate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if data := g.sessions.GetSessionData(c.Request); data != nil {
			c.Set(ContextKeyPrincipalID, data.PrincipalID)
			c.Set(ContextKeyUsername, data.Username)
			c.Set(ContextKeyRole, data.Role)
			c.Next()
			return
		}

		if g.publicPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		g.logger.Warn("unauthenticated access blocked",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
		)
		g.recorder.LogSecurity("unauthenticated_access", c.Request.Method+" "+c.Request.URL.Path, requestInfo(c))

		if wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		c.Redirect(http.StatusFound, LoginRedirect(MsgLoginRequired))
		c.Abort()
	}
}

// RequireRole returns a middleware that admits only the given roles.
// It must run after Handler.
func (g *Gate) RequireRole(roles ...entities.Role) gin.HandlerFunc {
	allowed := make(map[entities.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		if allowed[GetRole(c)] {
			c.Next()
			return
		}

		g.logger.Warn("role check failed",
			"principal_id", GetPrincipalID(c),
			"role", GetRole(c),
			"path", c.Request.URL.Path,
		)
		g.recorder.LogSecurity("forbidden", c.Request.Method+" "+c.Request.URL.Path, requestInfo(c))

		if wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient permissions",
			})
			return
		}
		c.AbortWithStatus(http.StatusForbidden)
	}
}

// LoginRedirect builds the login URL carrying an error message.
func LoginRedirect(errMsg string) string {
	return "/login?" + url.Values{"error": {errMsg}}.Encode()
}

// wantsJSON determines if this is an API/AJAX caller rather than a browser form.
func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}

// Helper functions to extract auth data from Gin context

// GetPrincipalID retrieves the authenticated principal's ID, or 0.
func GetPrincipalID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyPrincipalID); exists {
		if principalID, ok := id.(uint); ok {
			return principalID
		}
	}
	return 0
}

// GetUsername retrieves the authenticated principal's username.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// GetRole retrieves the authenticated principal's role.
func GetRole(c *gin.Context) entities.Role {
	if r, exists := c.Get(ContextKeyRole); exists {
		if role, ok := r.(entities.Role); ok {
			return role
		}
	}
	return ""
}

// IsAuthenticated returns true if the gate admitted the request as a principal.
func IsAuthenticated(c *gin.Context) bool {
	return GetPrincipalID(c) != 0
}
