package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"html"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/jobportal/internal/audit"
)

const (
	// CSRFFormField is the form parameter a submitted token is read from.
	CSRFFormField = "csrfToken"
	// CSRFTokenHeader is the header name for CSRF token in AJAX requests.
	CSRFTokenHeader = "X-CSRF-Token"

	csrfTokenBytes = 32
	// ContextKeyCSRFToken exposes the current token to handlers rendering forms.
	ContextKeyCSRFToken = "csrf_token"
)

// MsgInvalidCSRFToken is returned to clients whose token failed validation.
const MsgInvalidCSRFToken = "Invalid CSRF token. Please refresh the page and try again."

var ErrNoSession = errors.New("no session loaded")

// SessionStore is the part of the session manager the CSRF guard relies on.
type SessionStore interface {
	Loaded(ctx context.Context) bool
	Token(ctx context.Context) string
	GetString(ctx context.Context, key string) string
	Put(ctx context.Context, key string, val any)
	Remove(ctx context.Context, key string)
}

// CSRFGuard issues one token per session and checks it on state-changing requests.
type CSRFGuard struct {
	sessions SessionStore
	enabled  bool
	exempt   map[string]bool
	recorder Recorder
	logger   *slog.Logger
}

// NewCSRFGuard creates a guard. When enabled is false every request validates.
// Login and registration are exempt because a visitor has no session yet.
func NewCSRFGuard(sessions SessionStore, enabled bool, recorder Recorder, logger *slog.Logger) *CSRFGuard {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CSRFGuard{
		sessions: sessions,
		enabled:  enabled,
		exempt: map[string]bool{
			"/login":    true,
			"/register": true,
		},
		recorder: recorder,
		logger:   logger,
	}
}

// Enabled reports whether tokens are being enforced.
func (g *CSRFGuard) Enabled() bool {
	return g.enabled
}

// Issue generates a fresh token and binds it to the session, replacing any previous one.
func (g *CSRFGuard) Issue(ctx context.Context) (string, error) {
	if !g.sessions.Loaded(ctx) {
		return "", ErrNoSession
	}

	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(b)

	g.sessions.Put(ctx, SessionKeyCSRFToken, token)
	return token, nil
}

// GetOrIssue returns the token bound to the session, issuing one if there is none.
func (g *CSRFGuard) GetOrIssue(ctx context.Context) (string, error) {
	if !g.sessions.Loaded(ctx) {
		return "", ErrNoSession
	}
	if token := g.sessions.GetString(ctx, SessionKeyCSRFToken); token != "" {
		return token, nil
	}
	return g.Issue(ctx)
}

// Invalidate unbinds the session's token. The next GetOrIssue creates a new one.
func (g *CSRFGuard) Invalidate(ctx context.Context) {
	if !g.sessions.Loaded(ctx) {
		return
	}
	g.sessions.Remove(ctx, SessionKeyCSRFToken)
}

// Validate reports whether r carries the token bound to its session.
// The candidate is read from the csrfToken form field, then the X-CSRF-Token header.
// A request without a persisted session never validates.
func (g *CSRFGuard) Validate(r *http.Request) bool {
	if !g.enabled {
		return true
	}

	ctx := r.Context()
	if !g.sessions.Loaded(ctx) || g.sessions.Token(ctx) == "" {
		return false
	}

	bound := g.sessions.GetString(ctx, SessionKeyCSRFToken)
	if bound == "" {
		return false
	}

	candidate := r.PostFormValue(CSRFFormField)
	if candidate == "" {
		candidate = r.Header.Get(CSRFTokenHeader)
	}
	if candidate == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(candidate), []byte(bound)) == 1
}

// Middleware rejects state-changing requests that fail validation with 403.
// Safe methods pass through with the session's token exposed via GetCSRFToken.
func (g *CSRFGuard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) {
			if g.enabled {
				if token, err := g.GetOrIssue(c.Request.Context()); err == nil {
					c.Set(ContextKeyCSRFToken, token)
				}
			}
			c.Next()
			return
		}

		if g.exempt[c.Request.URL.Path] {
			c.Next()
			return
		}

		if !g.Validate(c.Request) {
			g.reject(c)
			return
		}

		if g.enabled {
			c.Set(ContextKeyCSRFToken, g.sessions.GetString(c.Request.Context(), SessionKeyCSRFToken))
		}
		c.Next()
	}
}

func (g *CSRFGuard) reject(c *gin.Context) {
	g.logger.Warn("CSRF token validation failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"ip", c.ClientIP(),
	)
	g.recorder.LogSecurity("csrf_rejected", c.Request.Method+" "+c.Request.URL.Path, requestInfo(c))

	if wantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": MsgInvalidCSRFToken})
		return
	}
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusForbidden, MsgInvalidCSRFToken)
	c.Abort()
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// GetCSRFToken retrieves the CSRF token from the Gin context.
func GetCSRFToken(c *gin.Context) string {
	if token, exists := c.Get(ContextKeyCSRFToken); exists {
		if t, ok := token.(string); ok {
			return t
		}
	}
	return ""
}

// CSRFTokenField returns an HTML hidden input field with the CSRF token.
func CSRFTokenField(c *gin.Context) string {
	token := GetCSRFToken(c)
	if token == "" {
		return ""
	}
	return `<input type="hidden" name="` + CSRFFormField + `" value="` + html.EscapeString(token) + `">`
}

func requestInfo(c *gin.Context) audit.RequestInfo {
	return audit.RequestInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Path:      c.Request.URL.Path,
	}
}
