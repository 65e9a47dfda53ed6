package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/jobportal/internal/apperrors"
	"github.com/mrlokans/jobportal/internal/pagination"
)

// pageLinks is how many page numbers the listing offers around the current page.
const pageLinks = 5

type AdminController struct {
	principals PrincipalLister
	logger     *slog.Logger
}

func NewAdminController(principals PrincipalLister, logger *slog.Logger) *AdminController {
	return &AdminController{
		principals: principals,
		logger:     logger,
	}
}

// ListPrincipals returns one page of principals.
// GET /admin/principals?page=N&per_page=M
func (ac *AdminController) ListPrincipals(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := ac.principals.CountPrincipals(ctx)
	if err != nil {
		_ = c.Error(apperrors.Technical(err, "count principals"))
		return
	}

	page := pagination.New(
		pagination.ParsePage(c.Query("page")),
		int(total),
		pagination.ParsePerPage(c.Query("per_page")),
	)

	list, err := ac.principals.ListPrincipals(ctx, page.Offset(), page.Limit())
	if err != nil {
		_ = c.Error(apperrors.Technical(err, "list principals"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"principals": PaginatedResponse{
			Data:       list,
			Total:      total,
			Page:       page.Current,
			PerPage:    page.PerPage,
			HasMore:    page.HasNext(),
			TotalPages: page.Pages,
		},
		"pages": page.Numbers(pageLinks),
	})
}
