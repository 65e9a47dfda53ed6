package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/jobportal/internal/logging"
)

// csrfRouter builds a pipeline with a signed-in principal and a protected form endpoint.
func csrfRouter(p *pipeline) {
	p.router.POST("/login", func(c *gin.Context) {
		_ = p.sm.CreateSession(c.Request, testPrincipal)
		c.Status(http.StatusNoContent)
	})
	p.router.GET("/form", func(c *gin.Context) {
		c.String(http.StatusOK, GetCSRFToken(c))
	})
	p.router.POST("/submit", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
}

func signedIn(t *testing.T, p *pipeline) (*browser, string) {
	t.Helper()
	csrfRouter(p)
	b := newBrowser(t, p.router)
	b.post("/login", nil)
	token := b.get("/form").Body.String()
	return b, token
}

func TestCSRFGuard_IssueFormat(t *testing.T) {
	p := newPipeline(true)
	var tokens []string
	p.router.GET("/issue", func(c *gin.Context) {
		for i := 0; i < 2; i++ {
			token, err := p.csrf.Issue(c.Request.Context())
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}
			tokens = append(tokens, token)
		}
		c.Status(http.StatusOK)
	})
	csrfRouter(p)

	b := newBrowser(t, p.router)
	b.post("/login", nil)
	b.get("/issue")

	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	for _, tok := range tokens {
		if len(tok) != 43 {
			t.Errorf("token %q has length %d, want 43", tok, len(tok))
		}
		raw, err := base64.RawURLEncoding.DecodeString(tok)
		if err != nil || len(raw) != 32 {
			t.Errorf("token %q is not 32 URL-safe base64 bytes", tok)
		}
	}
	if tokens[0] == tokens[1] {
		t.Error("Issue should produce a fresh token each call")
	}
}

func TestCSRFGuard_NoSession(t *testing.T) {
	guard := NewCSRFGuard(newTestSessionManager(), true, nil, logging.Discard())

	if _, err := guard.Issue(context.Background()); err != ErrNoSession {
		t.Errorf("Issue() error = %v, want ErrNoSession", err)
	}
	if _, err := guard.GetOrIssue(context.Background()); err != ErrNoSession {
		t.Errorf("GetOrIssue() error = %v, want ErrNoSession", err)
	}
	guard.Invalidate(context.Background())

	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader("csrfToken=abc"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if guard.Validate(req) {
		t.Error("Validate should fail without a session")
	}
}

func TestCSRFMiddleware_AllowsGET(t *testing.T) {
	p := newPipeline(true)
	b, token := signedIn(t, p)

	rr := b.get("/form")
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if token == "" {
		t.Error("GET should expose the session's CSRF token")
	}
	if rr.Body.String() != token {
		t.Error("GetOrIssue should keep the same token across requests")
	}
}

func TestCSRFMiddleware_BlocksPOSTWithoutToken(t *testing.T) {
	p := newPipeline(true)
	b, _ := signedIn(t, p)

	rr := b.post("/submit", url.Values{"name": {"x"}})
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rr.Code)
	}
	if rr.Body.String() != MsgInvalidCSRFToken {
		t.Errorf("Expected %q, got %q", MsgInvalidCSRFToken, rr.Body.String())
	}
	if !p.recorder.has("csrf_rejected") {
		t.Error("rejection should be recorded")
	}
}

func TestCSRFMiddleware_AcceptsFormToken(t *testing.T) {
	p := newPipeline(true)
	b, token := signedIn(t, p)

	rr := b.post("/submit", url.Values{CSRFFormField: {token}})
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestCSRFMiddleware_AcceptsHeaderToken(t *testing.T) {
	p := newPipeline(true)
	b, token := signedIn(t, p)

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set(CSRFTokenHeader, token)
	rr := b.do(req)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

func TestCSRFMiddleware_RejectsWrongToken(t *testing.T) {
	p := newPipeline(true)
	b, token := signedIn(t, p)

	tests := map[string]string{
		"altered":   token[:len(token)-1] + "x",
		"truncated": token[:10],
		"other":     "not-the-token",
	}
	for name, candidate := range tests {
		t.Run(name, func(t *testing.T) {
			if candidate == token {
				t.Skip("mutation produced the same token")
			}
			rr := b.post("/submit", url.Values{CSRFFormField: {candidate}})
			if rr.Code != http.StatusForbidden {
				t.Errorf("Expected status 403, got %d", rr.Code)
			}
		})
	}
}

// A token is bound to the session that produced it.
func TestCSRFMiddleware_TokenBoundToSession(t *testing.T) {
	p := newPipeline(true)
	_, aliceToken := signedIn(t, p)

	bob := newBrowser(t, p.router)
	bob.post("/login", nil)
	bobToken := bob.get("/form").Body.String()
	if bobToken == aliceToken {
		t.Fatal("two sessions should not share a token")
	}

	rr := bob.post("/submit", url.Values{CSRFFormField: {aliceToken}})
	if rr.Code != http.StatusForbidden {
		t.Errorf("another session's token must be rejected, got %d", rr.Code)
	}
}

func TestCSRFMiddleware_InvalidatedTokenRejected(t *testing.T) {
	p := newPipeline(true)
	p.router.POST("/rotate", func(c *gin.Context) {
		p.csrf.Invalidate(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	b, token := signedIn(t, p)

	if rr := b.post("/rotate", url.Values{CSRFFormField: {token}}); rr.Code != http.StatusNoContent {
		t.Fatalf("rotate failed: %d", rr.Code)
	}
	if rr := b.post("/submit", url.Values{CSRFFormField: {token}}); rr.Code != http.StatusForbidden {
		t.Errorf("invalidated token accepted, got %d", rr.Code)
	}

	fresh := b.get("/form").Body.String()
	if fresh == "" || fresh == token {
		t.Errorf("expected a new token after invalidation, got %q", fresh)
	}
}

func TestCSRFMiddleware_ExemptPaths(t *testing.T) {
	p := newPipeline(true)
	p.router.POST("/register", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	csrfRouter(p)
	b := newBrowser(t, p.router)

	if rr := b.post("/login", nil); rr.Code != http.StatusNoContent {
		t.Errorf("POST /login should be exempt, got %d", rr.Code)
	}
	if rr := b.post("/register", nil); rr.Code != http.StatusNoContent {
		t.Errorf("POST /register should be exempt, got %d", rr.Code)
	}
}

func TestCSRFMiddleware_Disabled(t *testing.T) {
	p := newPipeline(false)
	b, token := signedIn(t, p)

	if token != "" {
		t.Errorf("disabled guard should not expose a token, got %q", token)
	}
	if rr := b.post("/submit", nil); rr.Code != http.StatusOK {
		t.Errorf("disabled guard should accept any request, got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	if !p.csrf.Validate(req) {
		t.Error("Validate should be true when disabled")
	}
}

func TestCSRFMiddleware_JSONRejection(t *testing.T) {
	p := newPipeline(true)
	b, _ := signedIn(t, p)

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set("Accept", "application/json")
	rr := b.do(req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "application/json") {
		t.Errorf("Expected JSON response, got %q", rr.Header().Get("Content-Type"))
	}
	if !strings.Contains(rr.Body.String(), MsgInvalidCSRFToken) {
		t.Errorf("Expected message in body, got %s", rr.Body.String())
	}
}

func TestGetCSRFToken_NoToken(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if token := GetCSRFToken(c); token != "" {
		t.Errorf("Expected empty token, got %q", token)
	}
}

func TestCSRFTokenField(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if field := CSRFTokenField(c); field != "" {
		t.Errorf("Expected empty field, got %q", field)
	}

	c.Set(ContextKeyCSRFToken, "abc-123")
	want := `<input type="hidden" name="csrfToken" value="abc-123">`
	if field := CSRFTokenField(c); field != want {
		t.Errorf("Expected %q, got %q", want, field)
	}
}
