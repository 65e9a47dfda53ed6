package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"` // machine-readable error kind
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages"`
}

// --- Error Response Helpers ---

// respondError sends an error response with the given status code.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// redirectWith redirects to path with a single query parameter.
func redirectWith(c *gin.Context, path, key, msg string) {
	c.Redirect(http.StatusFound, path+"?"+url.Values{key: {msg}}.Encode())
}

// wantsJSON returns true for API and AJAX callers.
func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}
