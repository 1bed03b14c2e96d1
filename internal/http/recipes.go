package http

import (
	"bufio"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"whiskr/internal/service"
)

// multipart framing allowance on top of the photo itself
const multipartOverhead = 1 << 20

type recipeRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func pathID(c *gin.Context, name, kind string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		badRequest(c, "invalid "+kind+" id")
		return "", false
	}
	return id, true
}

func (h *Handler) listRecipes(c *gin.Context) {
	recipes, err := h.svc.Recipes.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]RecipeResponse, len(recipes))
	for i := range recipes {
		resp[i] = recipeToResponse(recipes[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getRecipe(c *gin.Context) {
	id, ok := pathID(c, "id", "recipe")
	if !ok {
		return
	}

	recipe, err := h.svc.Recipes.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipeToResponse(*recipe))
}

func (h *Handler) createRecipe(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	identity, _ := currentIdentity(c)
	recipe, err := h.svc.Recipes.Create(c.Request.Context(), identity, req.Title, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipeToResponse(*recipe))
}

func (h *Handler) updateRecipe(c *gin.Context) {
	id, ok := pathID(c, "id", "recipe")
	if !ok {
		return
	}
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	identity, _ := currentIdentity(c)
	recipe, err := h.svc.Recipes.Update(c.Request.Context(), identity, id, req.Title, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipeToResponse(*recipe))
}

func (h *Handler) deleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id", "recipe")
	if !ok {
		return
	}

	identity, _ := currentIdentity(c)
	if err := h.svc.Recipes.Delete(c.Request.Context(), identity, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recipe deleted"})
}

func (h *Handler) uploadPhoto(c *gin.Context) {
	id, ok := pathID(c, "id", "recipe")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxPhotoSize+multipartOverhead)
	header, err := c.FormFile("photo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo is too large"})
			return
		}
		badRequest(c, "photo is required")
		return
	}
	if header.Size > h.cfg.MaxPhotoSize {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo is too large"})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer file.Close()

	body := bufio.NewReader(file)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		sniff, _ := body.Peek(512)
		contentType = http.DetectContentType(sniff)
	}
	contentType, _, _ = strings.Cut(contentType, ";")

	identity, _ := currentIdentity(c)
	recipe, err := h.svc.Recipes.SetPhoto(c.Request.Context(), identity, id, service.Photo{
		Filename:    header.Filename,
		ContentType: strings.TrimSpace(contentType),
		Body:        body,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipeToResponse(*recipe))
}

func (h *Handler) getPhoto(c *gin.Context) {
	id, ok := pathID(c, "id", "recipe")
	if !ok {
		return
	}

	url, err := h.svc.Recipes.PhotoURL(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}
