package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createRatingRequest struct {
	RecipeID string `json:"recipe_id"`
	Value    int    `json:"value"`
}

type updateRatingRequest struct {
	Value int `json:"value"`
}

func (h *Handler) listRatings(c *gin.Context) {
	recipeID := c.Query("recipe_id")
	if recipeID != "" {
		if _, err := uuid.Parse(recipeID); err != nil {
			badRequest(c, "invalid recipe id")
			return
		}
	}

	ratings, err := h.svc.Ratings.List(c.Request.Context(), recipeID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]RatingResponse, len(ratings))
	for i := range ratings {
		resp[i] = ratingToResponse(ratings[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createRating(c *gin.Context) {
	var req createRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	identity, _ := currentIdentity(c)
	rating, err := h.svc.Ratings.Create(c.Request.Context(), identity, req.RecipeID, req.Value)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ratingToResponse(*rating))
}

func (h *Handler) updateRating(c *gin.Context) {
	id, ok := pathID(c, "id", "rating")
	if !ok {
		return
	}
	var req updateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	identity, _ := currentIdentity(c)
	rating, err := h.svc.Ratings.Update(c.Request.Context(), identity, id, req.Value)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratingToResponse(*rating))
}

func (h *Handler) deleteRating(c *gin.Context) {
	id, ok := pathID(c, "id", "rating")
	if !ok {
		return
	}

	identity, _ := currentIdentity(c)
	if err := h.svc.Ratings.Delete(c.Request.Context(), identity, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rating deleted"})
}
