package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := h.svc.Users.Register(c.Request.Context(), req.Email, req.Password)
	if h.metrics != nil {
		h.metrics.AuthEvent("register", err)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.WithField("user_id", res.User.ID).Info("user registered")
	c.JSON(http.StatusCreated, authToResponse(res))
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := h.svc.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if h.metrics != nil {
		h.metrics.AuthEvent("login", err)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, authToResponse(res))
}

func (h *Handler) me(c *gin.Context) {
	identity, _ := currentIdentity(c)
	user, err := h.svc.Users.GetByID(c.Request.Context(), identity.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}
