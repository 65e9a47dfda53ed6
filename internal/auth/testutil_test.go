package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/jobportal/internal/audit"
	"github.com/mrlokans/jobportal/internal/config"
	"github.com/mrlokans/jobportal/internal/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestSessionManager() *SessionManager {
	return NewSessionManager(memstore.NewWithCleanupInterval(0), config.Auth{})
}

// fakeRecorder captures audit calls.
type fakeRecorder struct {
	mu      sync.Mutex
	actions []string
}

func (f *fakeRecorder) record(action string) {
	f.mu.Lock()
	f.actions = append(f.actions, action)
	f.mu.Unlock()
}

func (f *fakeRecorder) LogAuth(_ uint, action string, _ audit.RequestInfo, success bool) {
	if success {
		f.record(action + ":success")
	} else {
		f.record(action + ":failed")
	}
}

func (f *fakeRecorder) LogRegistration(_ uint, _ string, _ audit.RequestInfo, err error) {
	if err == nil {
		f.record("register:success")
	} else {
		f.record("register:failed")
	}
}

func (f *fakeRecorder) LogSecurity(action, _ string, _ audit.RequestInfo) {
	f.record(action)
}

func (f *fakeRecorder) has(action string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.actions {
		if a == action {
			return true
		}
	}
	return false
}

// pipeline is a router with the three security stages installed in order.
type pipeline struct {
	sm       *SessionManager
	gate     *Gate
	csrf     *CSRFGuard
	recorder *fakeRecorder
	router   *gin.Engine
}

func newPipeline(csrfEnabled bool) *pipeline {
	sm := newTestSessionManager()
	rec := &fakeRecorder{}
	p := &pipeline{
		sm:       sm,
		gate:     NewGate(sm, rec, logging.Discard()),
		csrf:     NewCSRFGuard(sm, csrfEnabled, rec, logging.Discard()),
		recorder: rec,
		router:   gin.New(),
	}
	p.router.Use(sm.SessionLoadSave(), p.gate.Handler(), p.csrf.Middleware())
	return p
}

// browser replays cookies between requests like a user agent would.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, handler http.Handler) *browser {
	return &browser{t: t, handler: handler, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, ck := range b.cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}

	rr := httptest.NewRecorder()
	b.handler.ServeHTTP(rr, req)

	for _, ck := range rr.Result().Cookies() {
		if ck.Value == "" || ck.MaxAge < 0 {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck
	}
	return rr
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) sessionCookie() string {
	if ck, ok := b.cookies[SessionCookieName]; ok {
		return ck.Value
	}
	return ""
}
