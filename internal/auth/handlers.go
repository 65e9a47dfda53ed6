package auth

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/jobportal/internal/apperrors"
	"github.com/mrlokans/jobportal/internal/config"
)

const (
	// MsgTooManyAttempts is shown while a client is locked out of login.
	MsgTooManyAttempts = "Too many login attempts. Please try again later."
	// MsgRegistered is shown on the login page after a successful registration.
	MsgRegistered = "Registration successful. Please log in."
)

// AuthController handles authentication-related HTTP endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	csrf           *CSRFGuard
	rateLimiter    *RateLimiter
	recorder       Recorder
	logger         *slog.Logger
}

// NewAuthController creates a new authentication controller. It owns a login
// rate limiter whose background sweep is released by Stop.
func NewAuthController(service *Service, sessionManager *SessionManager, csrf *CSRFGuard, recorder Recorder, cfg config.Auth, logger *slog.Logger) *AuthController {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		Window:          cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		csrf:           csrf,
		rateLimiter:    rateLimiter,
		recorder:       recorder,
		logger:         logger,
	}
}

// RegisterRoutes registers authentication routes on the router.
// The security pipeline must already be installed on router.
func (ac *AuthController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.GET("/register", ac.RegisterPage)
	router.POST("/register", ac.Register)
	router.POST("/logout", ac.Logout)
	router.GET("/csrf-token", ac.CSRFToken)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

// LoginPage describes the login form. Signed-in principals go to their dashboard.
func (ac *AuthController) LoginPage(c *gin.Context) {
	if IsAuthenticated(c) {
		c.Redirect(http.StatusFound, DestinationFor(GetRole(c)))
		return
	}

	renderForm(c, gin.H{
		"title":     "Login",
		"action":    "/login",
		"fields":    []string{"email", "password"},
		"csrfToken": GetCSRFToken(c),
		"error":     c.Query("error"),
		"message":   c.Query("message"),
	})
}

// Login handles the login form submission.
func (ac *AuthController) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	clientIP := c.ClientIP()
	info := requestInfo(c)

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, email); !allowed {
		ac.logger.Warn("login rate limited", "ip", clientIP, "retry_after", retryAfter)
		ac.recorder.LogSecurity("login_rate_limited", "too many failed logins for "+email, info)
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		redirectWith(c, "/login", "error", MsgTooManyAttempts)
		return
	}

	result, err := ac.service.Login(c.Request.Context(), email, password)
	if err != nil {
		if apperrors.Is(err, apperrors.KindAuthentication) {
			if locked, _ := ac.rateLimiter.RecordFailure(clientIP, email); locked {
				ac.logger.Warn("login locked out", "ip", clientIP)
			}
			ac.recorder.LogAuth(0, "login", info, false)
		}
		redirectWith(c, "/login", "error", apperrors.PublicMessage(err))
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, email)

	if err := ac.sessionManager.CreateSession(c.Request, result.Principal); err != nil {
		ac.logger.Error("failed to create session", "principal_id", result.Principal.ID, "error", err)
		redirectWith(c, "/login", "error", apperrors.MsgTechnical)
		return
	}
	if ac.csrf.Enabled() {
		if _, err := ac.csrf.Issue(c.Request.Context()); err != nil {
			ac.logger.Error("failed to issue CSRF token", "principal_id", result.Principal.ID, "error", err)
		}
	}

	ac.recorder.LogAuth(result.Principal.ID, "login", info, true)
	c.Redirect(http.StatusFound, result.Destination)
}

// RegisterPage describes the registration form.
func (ac *AuthController) RegisterPage(c *gin.Context) {
	if IsAuthenticated(c) {
		c.Redirect(http.StatusFound, DestinationFor(GetRole(c)))
		return
	}

	renderForm(c, gin.H{
		"title":        "Register",
		"action":       "/register",
		"fields":       []string{"username", "password", "confirmPassword", "email", "fullName", "phoneNumber", "address"},
		"requirements": ac.service.Policy().Describe(),
		"csrfToken":    GetCSRFToken(c),
		"error":        c.Query("error"),
	})
}

// Register handles the registration form submission.
func (ac *AuthController) Register(c *gin.Context) {
	req := RegistrationRequest{
		Username:        c.PostForm("username"),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirmPassword"),
		Email:           c.PostForm("email"),
		FullName:        c.PostForm("fullName"),
		Phone:           c.PostForm("phoneNumber"),
		Address:         c.PostForm("address"),
	}

	principal, err := ac.service.Register(c.Request.Context(), req)
	if err != nil {
		if apperrors.Is(err, apperrors.KindRegistration) {
			ac.recorder.LogRegistration(0, req.Username, requestInfo(c), err)
		}
		redirectWith(c, "/register", "error", apperrors.PublicMessage(err))
		return
	}

	ac.recorder.LogRegistration(principal.ID, principal.Username, requestInfo(c), nil)
	redirectWith(c, "/login", "message", MsgRegistered)
}

// Logout unbinds the CSRF token, destroys the session and redirects to login.
func (ac *AuthController) Logout(c *gin.Context) {
	principalID := GetPrincipalID(c)

	ac.csrf.Invalidate(c.Request.Context())
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		ac.logger.Error("failed to destroy session", "principal_id", principalID, "error", err)
	}

	if principalID != 0 {
		ac.recorder.LogAuth(principalID, "logout", requestInfo(c), true)
	}
	c.Redirect(http.StatusFound, "/login")
}

// CSRFToken returns the session's token for AJAX callers.
func (ac *AuthController) CSRFToken(c *gin.Context) {
	token, err := ac.csrf.GetOrIssue(c.Request.Context())
	if err != nil {
		ac.logger.Error("failed to issue CSRF token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": apperrors.MsgTechnical})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"header": CSRFTokenHeader,
		"field":  CSRFFormField,
	})
}

// renderForm answers a form page with its JSON description.
func renderForm(c *gin.Context, data gin.H) {
	c.JSON(http.StatusOK, data)
}

func redirectWith(c *gin.Context, path, key, msg string) {
	c.Redirect(http.StatusFound, path+"?"+url.Values{key: {msg}}.Encode())
}
