package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/jobportal/internal/apperrors"
)

// statusFor maps an error kind to the HTTP status sent to JSON callers.
func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindAuthentication:
		return http.StatusUnauthorized
	case apperrors.KindSecurity:
		return http.StatusForbidden
	case apperrors.KindRegistration:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// logAppError logs err at the level its kind calls for. Validation
// failures are user mistakes and only reach debug.
func logAppError(logger *slog.Logger, c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	attrs := []any{
		"kind", kind,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err,
	}
	switch kind {
	case apperrors.KindValidation:
		logger.Debug("request rejected", attrs...)
	case apperrors.KindAuthentication, apperrors.KindSecurity, apperrors.KindRegistration:
		logger.Warn("request rejected", attrs...)
	default:
		logger.Error("request failed", attrs...)
	}
}

// ErrorHandler turns errors attached with c.Error into a JSON response,
// unless a handler already wrote one. It must be installed before any
// middleware that can attach errors.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		logAppError(logger, c, err)

		if c.Writer.Written() {
			return
		}
		kind := apperrors.KindOf(err)
		c.AbortWithStatusJSON(statusFor(kind), ErrorResponse{
			Error: apperrors.PublicMessage(err),
			Code:  string(kind),
		})
	}
}

// recoveryHandler answers a panicking request with the generic technical error.
func recoveryHandler(logger *slog.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error: apperrors.MsgTechnical,
			Code:  string(apperrors.KindTechnical),
		})
	}
}

// MaxBodySize caps request bodies at limit bytes. Requests that declare a
// larger body are refused before any middleware parses the form.
func MaxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: "Request body is too large",
				Code:  string(apperrors.KindValidation),
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
