package auth

import (
	"context"
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/jobportal/internal/config"
	"github.com/mrlokans/jobportal/internal/entities"
)

// Session data keys
const (
	SessionKeyPrincipalID = "principal_id"
	SessionKeyUsername    = "username"
	SessionKeyEmail       = "email"
	SessionKeyRole        = "role"
	SessionKeyLoginAt     = "login_at"
	SessionKeyCSRFToken   = "csrf_token"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

func init() {
	// Register types that will be stored in sessions
	gob.Register(entities.Role(""))
	gob.Register(time.Time{})
}

type sessionLoadedKey struct{}

// SessionManager wraps scs.SessionManager with portal-specific methods.
type SessionManager struct {
	*scs.SessionManager
}

// NewSQLiteStore prepares the sessions table in sqlDB and returns an scs store on it.
// Expired rows are purged by the scheduler, so the store runs no cleanup goroutine.
func NewSQLiteStore(sqlDB *sql.DB) (scs.Store, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}
	return sqlite3store.NewWithCleanupInterval(sqlDB, 0), nil
}

// NewSessionManager creates a session manager on store.
// SessionTimeout is the inactivity limit and SessionLifetime the absolute one.
func NewSessionManager(store scs.Store, cfg config.Auth) *SessionManager {
	sm := scs.New()
	sm.Store = store

	sm.Lifetime = cfg.SessionLifetime
	if sm.Lifetime <= 0 {
		sm.Lifetime = 24 * time.Hour
	}
	sm.IdleTimeout = cfg.SessionTimeout
	if sm.IdleTimeout <= 0 {
		sm.IdleTimeout = 30 * time.Minute
	}

	sm.Cookie.Name = SessionCookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}
}

// Loaded reports whether session data has been loaded into ctx by SessionLoadSave.
func (sm *SessionManager) Loaded(ctx context.Context) bool {
	return ctx.Value(sessionLoadedKey{}) != nil
}

// Active reports whether ctx carries a persisted session, i.e. one the client
// presented a valid cookie for or that was renewed during this request.
func (sm *SessionManager) Active(ctx context.Context) bool {
	return sm.Loaded(ctx) && sm.Token(ctx) != ""
}

// CreateSession binds an authenticated principal to the session.
// The token is renewed first so a pre-login token can never be reused.
func (sm *SessionManager) CreateSession(r *http.Request, p *entities.Principal) error {
	ctx := r.Context()
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}

	// Store principal ID as int to match GetInt() retrieval
	sm.Put(ctx, SessionKeyPrincipalID, int(p.ID))
	sm.Put(ctx, SessionKeyUsername, p.Username)
	sm.Put(ctx, SessionKeyEmail, p.Email)
	sm.Put(ctx, SessionKeyRole, p.Role)
	sm.Put(ctx, SessionKeyLoginAt, time.Now())

	return nil
}

// DestroySession removes all session data and invalidates the session.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// GetPrincipalID returns the authenticated principal's ID, or 0.
func (sm *SessionManager) GetPrincipalID(r *http.Request) uint {
	if !sm.Loaded(r.Context()) {
		return 0
	}
	return uint(sm.GetInt(r.Context(), SessionKeyPrincipalID))
}

// GetRole returns the authenticated principal's role, or "".
func (sm *SessionManager) GetRole(r *http.Request) entities.Role {
	if !sm.Loaded(r.Context()) {
		return ""
	}
	role, ok := sm.Get(r.Context(), SessionKeyRole).(entities.Role)
	if !ok {
		return ""
	}
	return role
}

// IsAuthenticated returns true if the request has a session bound to a principal.
func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.GetPrincipalID(r) != 0
}

// SessionData holds the session information for a request.
type SessionData struct {
	PrincipalID uint
	Username    string
	Email       string
	Role        entities.Role
	LoginAt     time.Time
}

// GetSessionData retrieves all session data at once, or nil when unauthenticated.
func (sm *SessionManager) GetSessionData(r *http.Request) *SessionData {
	id := sm.GetPrincipalID(r)
	if id == 0 {
		return nil
	}

	ctx := r.Context()
	loginAt, _ := sm.Get(ctx, SessionKeyLoginAt).(time.Time)

	return &SessionData{
		PrincipalID: id,
		Username:    sm.GetString(ctx, SessionKeyUsername),
		Email:       sm.GetString(ctx, SessionKeyEmail),
		Role:        sm.GetRole(r),
		LoginAt:     loginAt,
	}
}

// healthCheckToken is never issued, so looking it up touches the store
// without reading a real session.
const healthCheckToken = "health-check"

// Ping reports whether the session store can be queried.
func (sm *SessionManager) Ping(ctx context.Context) error {
	if cs, ok := sm.Store.(scs.CtxStore); ok {
		_, _, err := cs.FindCtx(ctx, healthCheckToken)
		return err
	}
	_, _, err := sm.Store.Find(healthCheckToken)
	return err
}
