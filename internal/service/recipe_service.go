package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"whiskr/internal/auth"
	"whiskr/internal/domain"
	"whiskr/internal/purge"
	"whiskr/internal/repository"
	"whiskr/internal/storage"
)

const maxTitleLength = 200

// Photo is an uploaded recipe image.
type Photo struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// RecipeService coordinates recipe reads, owner-checked writes and photos.
type RecipeService interface {
	List(ctx context.Context, search string) ([]domain.Recipe, error)
	Get(ctx context.Context, id string) (*domain.Recipe, error)
	Create(ctx context.Context, requester auth.Identity, title, content string) (*domain.Recipe, error)
	Update(ctx context.Context, requester auth.Identity, id, title, content string) (*domain.Recipe, error)
	Delete(ctx context.Context, requester auth.Identity, id string) error
	SetPhoto(ctx context.Context, requester auth.Identity, id string, photo Photo) (*domain.Recipe, error)
	PhotoURL(ctx context.Context, id string) (string, error)
}

type RecipeOptions struct {
	// Photos and Purger are nil when photo storage is disabled.
	Photos     storage.PhotoStore
	Purger     purge.Manager
	PresignTTL time.Duration
}

type recipeService struct {
	recipes repository.RecipeRepository
	opts    RecipeOptions
}

func NewRecipeService(recipes repository.RecipeRepository, opts RecipeOptions) RecipeService {
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = 15 * time.Minute
	}
	return &recipeService{recipes: recipes, opts: opts}
}

func (s *recipeService) List(ctx context.Context, search string) ([]domain.Recipe, error) {
	return s.recipes.List(ctx, search)
}

func (s *recipeService) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	return s.recipes.Get(ctx, id)
}

func (s *recipeService) Create(ctx context.Context, requester auth.Identity, title, content string) (*domain.Recipe, error) {
	if requester.ID == "" {
		return nil, fmt.Errorf("%w: no identity", ErrForbidden)
	}
	title, err := validateRecipe(title)
	if err != nil {
		return nil, err
	}

	recipe := &domain.Recipe{
		UserID:  requester.ID,
		Title:   title,
		Content: content,
	}
	if err := s.recipes.Create(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *recipeService) Update(ctx context.Context, requester auth.Identity, id, title, content string) (*domain.Recipe, error) {
	title, err := validateRecipe(title)
	if err != nil {
		return nil, err
	}

	recipe, err := s.owned(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	recipe.Title = title
	recipe.Content = content
	if err := s.recipes.Update(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *recipeService) Delete(ctx context.Context, requester auth.Identity, id string) error {
	recipe, err := s.owned(ctx, requester, id)
	if err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, id); err != nil {
		return err
	}
	if recipe.PhotoKey != "" {
		s.purge(purge.Job{Prefix: recipe.ID})
	}
	return nil
}

func (s *recipeService) SetPhoto(ctx context.Context, requester auth.Identity, id string, photo Photo) (*domain.Recipe, error) {
	if s.opts.Photos == nil {
		return nil, ErrStorageDisabled
	}
	if photo.Body == nil {
		return nil, invalid("photo is required")
	}
	if !strings.HasPrefix(photo.ContentType, "image/") {
		return nil, invalid("photo must be an image")
	}

	recipe, err := s.owned(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	key := path.Join(recipe.ID, uuid.NewString()+photoExt(photo.Filename))
	if err := s.opts.Photos.Upload(ctx, key, photo.ContentType, photo.Body); err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}

	previous := recipe.PhotoKey
	recipe.PhotoKey = key
	if err := s.recipes.Update(ctx, recipe); err != nil {
		s.purge(purge.Job{Key: key})
		return nil, err
	}
	if previous != "" {
		s.purge(purge.Job{Key: previous})
	}
	return recipe, nil
}

func (s *recipeService) PhotoURL(ctx context.Context, id string) (string, error) {
	if s.opts.Photos == nil {
		return "", ErrStorageDisabled
	}
	recipe, err := s.recipes.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if recipe.PhotoKey == "" {
		return "", fmt.Errorf("recipe %s has no photo: %w", id, repository.ErrNotFound)
	}
	return s.opts.Photos.PresignGet(ctx, recipe.PhotoKey, s.opts.PresignTTL)
}

// owned loads the recipe and checks the requester owns it. Absence is reported
// before ownership.
func (s *recipeService) owned(ctx context.Context, requester auth.Identity, id string) (*domain.Recipe, error) {
	recipe, err := s.recipes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(requester, recipe.UserID); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *recipeService) purge(job purge.Job) {
	if s.opts.Purger == nil {
		return
	}
	// a failed enqueue leaves an orphaned object, never a broken recipe
	_ = s.opts.Purger.Enqueue(job)
}

func validateRecipe(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("title is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return "", invalid("title must be at most %d characters", maxTitleLength)
	}
	return title, nil
}

func photoExt(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	default:
		return ""
	}
}
