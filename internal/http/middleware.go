package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"whiskr/internal/auth"
)

const identityKey = "identity"

// requireAuth rejects requests without a valid bearer token: 401 when the
// header is absent or not a bearer token, 403 when the token fails verification.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.ParseBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			h.authFailure(c, "missing_token", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		identity, err := h.tokens.Verify(raw)
		if err != nil {
			h.authFailure(c, failureReason(err), err)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid token"})
			return
		}

		attachIdentity(c, identity)
		c.Next()
	}
}

// optionalAuth attaches the identity of a valid token and lets every request through.
func (h *Handler) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		raw, err := auth.ParseBearerToken(header)
		if err != nil {
			h.authFailure(c, "missing_token", err)
			c.Next()
			return
		}
		identity, err := h.tokens.Verify(raw)
		if err != nil {
			h.authFailure(c, failureReason(err), err)
			c.Next()
			return
		}
		attachIdentity(c, identity)
		c.Next()
	}
}

func attachIdentity(c *gin.Context, identity auth.Identity) {
	c.Set(identityKey, identity)
	c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
}

// currentIdentity returns the identity attached by the auth middleware.
func currentIdentity(c *gin.Context) (auth.Identity, bool) {
	return auth.IdentityFromContext(c.Request.Context())
}

func (h *Handler) authFailure(c *gin.Context, reason string, err error) {
	h.logger.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
		"reason": reason,
	}).WithError(err).Info("auth rejected")
	if h.metrics != nil {
		h.metrics.AuthFailure(reason)
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed"
	}
}

// queryTimeout bounds the persistence work of each request.
func (h *Handler) queryTimeout() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.QueryTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  status,
			"latency": elapsed.String(),
		}
		if identity, ok := currentIdentity(c); ok {
			fields["user_id"] = identity.ID
		}
		h.logger.WithFields(fields).Debug("request")

		if h.metrics != nil {
			h.metrics.ObserveRequest(c.Request.Method, route, status, elapsed)
		}
	}
}
