package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"whiskr/internal/repository"
	"whiskr/internal/service"
)

// respondError translates a service or repository error into its HTTP status.
// Unclassified errors are logged and answered with a generic 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "internal server error"

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrDuplicateEmail):
		status, msg = http.StatusBadRequest, service.ErrDuplicateEmail.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrForbidden):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, repository.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrDuplicateRating):
		status, msg = http.StatusConflict, service.ErrDuplicateRating.Error()
	case errors.Is(err, service.ErrDuplicateBookmark):
		status, msg = http.StatusConflict, service.ErrDuplicateBookmark.Error()
	case errors.Is(err, repository.ErrConflict):
		status, msg = http.StatusConflict, "already exists"
	case errors.Is(err, service.ErrStorageDisabled):
		status, msg = http.StatusServiceUnavailable, service.ErrStorageDisabled.Error()
	case errors.Is(err, context.DeadlineExceeded):
		status, msg = http.StatusServiceUnavailable, "service unavailable"
	}

	if status >= http.StatusInternalServerError {
		h.logger.WithField("method", c.Request.Method).
			WithField("path", c.Request.URL.Path).
			WithError(err).
			Error("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
