package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"whiskr/internal/domain"
)

type bookmarkRequest struct {
	RecipeID string `json:"recipe_id"`
}

func (h *Handler) listBookmarks(c *gin.Context) {
	identity, _ := currentIdentity(c)
	bookmarks, err := h.svc.Bookmarks.List(c.Request.Context(), identity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookmarksToResponse(bookmarks))
}

func (h *Handler) listUserBookmarks(c *gin.Context) {
	identity, _ := currentIdentity(c)
	bookmarks, err := h.svc.Bookmarks.ListForUser(c.Request.Context(), identity, c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookmarksToResponse(bookmarks))
}

func (h *Handler) addBookmark(c *gin.Context) {
	var req bookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	identity, _ := currentIdentity(c)
	bookmark, err := h.svc.Bookmarks.Add(c.Request.Context(), identity, req.RecipeID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bookmarkToResponse(*bookmark))
}

func (h *Handler) removeBookmark(c *gin.Context) {
	var req bookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	identity, _ := currentIdentity(c)
	if err := h.svc.Bookmarks.Remove(c.Request.Context(), identity, req.RecipeID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bookmark removed"})
}

func bookmarksToResponse(bookmarks []domain.Bookmark) []BookmarkResponse {
	resp := make([]BookmarkResponse, len(bookmarks))
	for i := range bookmarks {
		resp[i] = bookmarkToResponse(bookmarks[i])
	}
	return resp
}
