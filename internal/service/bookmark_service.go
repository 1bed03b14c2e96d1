package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"whiskr/internal/auth"
	"whiskr/internal/domain"
	"whiskr/internal/repository"
)

// BookmarkService manages a user's saved recipes.
type BookmarkService interface {
	List(ctx context.Context, requester auth.Identity) ([]domain.Bookmark, error)
	// ListForUser lists userID's bookmarks; only userID may read them.
	ListForUser(ctx context.Context, requester auth.Identity, userID string) ([]domain.Bookmark, error)
	Add(ctx context.Context, requester auth.Identity, recipeID string) (*domain.Bookmark, error)
	Remove(ctx context.Context, requester auth.Identity, recipeID string) error
}

type bookmarkService struct {
	bookmarks repository.BookmarkRepository
	recipes   repository.RecipeRepository
}

func NewBookmarkService(bookmarks repository.BookmarkRepository, recipes repository.RecipeRepository) BookmarkService {
	return &bookmarkService{bookmarks: bookmarks, recipes: recipes}
}

func (s *bookmarkService) List(ctx context.Context, requester auth.Identity) ([]domain.Bookmark, error) {
	return s.ListForUser(ctx, requester, requester.ID)
}

func (s *bookmarkService) ListForUser(ctx context.Context, requester auth.Identity, userID string) ([]domain.Bookmark, error) {
	if err := authorizeOwner(requester, userID); err != nil {
		return nil, err
	}
	return s.bookmarks.ListByUser(ctx, userID)
}

func (s *bookmarkService) Add(ctx context.Context, requester auth.Identity, recipeID string) (*domain.Bookmark, error) {
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return nil, invalid("recipe_id is required")
	}
	recipe, err := s.recipes.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	bookmark := &domain.Bookmark{
		UserID:   requester.ID,
		RecipeID: recipe.ID,
		Title:    recipe.Title,
		Content:  recipe.Content,
	}
	if err := s.bookmarks.Create(ctx, bookmark); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDuplicateBookmark
		}
		return nil, err
	}
	return bookmark, nil
}

// Remove deletes the requester's own bookmark of recipeID; the key carries the
// owner, so another user's bookmark is never reachable.
func (s *bookmarkService) Remove(ctx context.Context, requester auth.Identity, recipeID string) error {
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return invalid("recipe_id is required")
	}
	if requester.ID == "" {
		return fmt.Errorf("%w: no requester", ErrForbidden)
	}
	return s.bookmarks.Delete(ctx, requester.ID, recipeID)
}
