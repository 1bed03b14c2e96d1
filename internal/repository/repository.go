package repository

import (
	"context"
	"errors"

	"whiskr/internal/domain"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write would violate a uniqueness constraint.
	ErrConflict = errors.New("already exists")
)

// UserRepository is the credential store.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// RecipeRepository persists recipes.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *domain.Recipe) error
	Get(ctx context.Context, id string) (*domain.Recipe, error)
	// List returns all recipes, or those whose title or content contains search
	// (case-insensitive) when search is non-empty.
	List(ctx context.Context, search string) ([]domain.Recipe, error)
	Update(ctx context.Context, recipe *domain.Recipe) error
	Delete(ctx context.Context, id string) error
}

// RatingRepository persists ratings.
type RatingRepository interface {
	Create(ctx context.Context, rating *domain.Rating) error
	// CreateUnique inserts rating unless the same user already rated the recipe,
	// in which case it returns ErrConflict.
	CreateUnique(ctx context.Context, rating *domain.Rating) error
	Get(ctx context.Context, id string) (*domain.Rating, error)
	// ListByRecipe returns ratings for recipeID, or every rating when it is empty.
	ListByRecipe(ctx context.Context, recipeID string) ([]domain.Rating, error)
	Update(ctx context.Context, rating *domain.Rating) error
	Delete(ctx context.Context, id string) error
}

// BookmarkRepository persists bookmarks keyed by (user, recipe).
type BookmarkRepository interface {
	Create(ctx context.Context, bookmark *domain.Bookmark) error
	Delete(ctx context.Context, userID, recipeID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Bookmark, error)
}
