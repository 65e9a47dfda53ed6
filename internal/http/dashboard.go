package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/jobportal/internal/apperrors"
	"github.com/mrlokans/jobportal/internal/auth"
	"github.com/mrlokans/jobportal/internal/entities"
	"github.com/mrlokans/jobportal/internal/uploads"
)

// statsWindow is how far back the admin dashboard counts failures.
const statsWindow = 24 * time.Hour

// DashboardController answers the landing page of each role with its JSON description.
type DashboardController struct {
	principals PrincipalGetter
	uploads    *uploads.Store
	audit      FailureCounter
	logger     *slog.Logger
}

func NewDashboardController(principals PrincipalGetter, store *uploads.Store, audit FailureCounter, logger *slog.Logger) *DashboardController {
	return &DashboardController{
		principals: principals,
		uploads:    store,
		audit:      audit,
		logger:     logger,
	}
}

// Dashboard is the default landing page. Students also get their resume status.
// GET /dashboard
func (d *DashboardController) Dashboard(c *gin.Context) {
	principal, ok := d.loadPrincipal(c)
	if !ok {
		return
	}

	data := d.base(c, "Dashboard", principal)
	if principal.Role == entities.RoleStudent && d.uploads != nil {
		data["resume"] = d.resumeStatus(c, principal)
	}
	c.JSON(http.StatusOK, data)
}

// EmployerDashboard
// GET /employer/dashboard
func (d *DashboardController) EmployerDashboard(c *gin.Context) {
	principal, ok := d.loadPrincipal(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d.base(c, "Employer Dashboard", principal))
}

// AdminDashboard adds security counters for the last 24 hours.
// GET /admin/dashboard
func (d *DashboardController) AdminDashboard(c *gin.Context) {
	principal, ok := d.loadPrincipal(c)
	if !ok {
		return
	}

	data := d.base(c, "Admin Dashboard", principal)
	if d.audit != nil {
		stats := gin.H{}
		for _, action := range []string{"login", "csrf_rejected", "unauthenticated_access", "login_rate_limited"} {
			n, err := d.audit.RecentFailures(action, statsWindow)
			if err != nil {
				d.logger.Error("failed to count audit failures", "action", action, "error", err)
				continue
			}
			stats[action] = n
		}
		data["securityLast24h"] = stats
	}
	c.JSON(http.StatusOK, data)
}

func (d *DashboardController) base(c *gin.Context, title string, p *entities.Principal) gin.H {
	return gin.H{
		"title":     title,
		"principal": p,
		"csrfToken": auth.GetCSRFToken(c),
		"logout":    "/logout",
	}
}

func (d *DashboardController) resumeStatus(c *gin.Context, p *entities.Principal) gin.H {
	status := gin.H{
		"action":            "/resume",
		"field":             "resume",
		"maxSize":           uploads.FormatFileSize(d.uploads.MaxSize()),
		"allowedExtensions": d.uploads.AllowedExtensions(),
		"uploaded":          false,
	}
	if p.ResumePath == "" {
		return status
	}

	exists, err := d.uploads.Exists(c.Request.Context(), p.ResumePath)
	if err != nil {
		d.logger.Warn("failed to check resume", "principal_id", p.ID, "error", err)
	}
	status["uploaded"] = exists
	status["path"] = p.ResumePath
	return status
}

// loadPrincipal fetches the signed-in principal. A principal that no longer
// exists is treated as signed out.
func (d *DashboardController) loadPrincipal(c *gin.Context) (*entities.Principal, bool) {
	p, err := d.principals.GetPrincipalByID(c.Request.Context(), auth.GetPrincipalID(c))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.Redirect(http.StatusFound, auth.LoginRedirect(auth.MsgLoginRequired))
		return nil, false
	}
	if err != nil {
		_ = c.Error(apperrors.Technical(err, "load principal"))
		return nil, false
	}
	return p, true
}
