package service

import (
	"context"
	"errors"
	"strings"

	"whiskr/internal/auth"
	"whiskr/internal/domain"
	"whiskr/internal/repository"
)

// RatingService manages recipe ratings.
type RatingService interface {
	// List returns the ratings of recipeID, or all ratings when it is empty.
	List(ctx context.Context, recipeID string) ([]domain.Rating, error)
	Create(ctx context.Context, requester auth.Identity, recipeID string, value int) (*domain.Rating, error)
	Update(ctx context.Context, requester auth.Identity, id string, value int) (*domain.Rating, error)
	Delete(ctx context.Context, requester auth.Identity, id string) error
}

type ratingService struct {
	ratings       repository.RatingRepository
	recipes       repository.RecipeRepository
	uniquePerUser bool
}

// NewRatingService builds the service; uniquePerUser limits each user to one
// rating per recipe.
func NewRatingService(ratings repository.RatingRepository, recipes repository.RecipeRepository, uniquePerUser bool) RatingService {
	return &ratingService{
		ratings:       ratings,
		recipes:       recipes,
		uniquePerUser: uniquePerUser,
	}
}

func (s *ratingService) List(ctx context.Context, recipeID string) ([]domain.Rating, error) {
	return s.ratings.ListByRecipe(ctx, strings.TrimSpace(recipeID))
}

func (s *ratingService) Create(ctx context.Context, requester auth.Identity, recipeID string, value int) (*domain.Rating, error) {
	if err := validateRating(value); err != nil {
		return nil, err
	}
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return nil, invalid("recipe_id is required")
	}
	if _, err := s.recipes.Get(ctx, recipeID); err != nil {
		return nil, err
	}

	rating := &domain.Rating{
		UserID:   requester.ID,
		RecipeID: recipeID,
		Value:    value,
	}

	create := s.ratings.Create
	if s.uniquePerUser {
		create = s.ratings.CreateUnique
	}
	if err := create(ctx, rating); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDuplicateRating
		}
		return nil, err
	}
	return rating, nil
}

func (s *ratingService) Update(ctx context.Context, requester auth.Identity, id string, value int) (*domain.Rating, error) {
	if err := validateRating(value); err != nil {
		return nil, err
	}
	rating, err := s.owned(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	rating.Value = value
	if err := s.ratings.Update(ctx, rating); err != nil {
		return nil, err
	}
	return rating, nil
}

func (s *ratingService) Delete(ctx context.Context, requester auth.Identity, id string) error {
	if _, err := s.owned(ctx, requester, id); err != nil {
		return err
	}
	return s.ratings.Delete(ctx, id)
}

func (s *ratingService) owned(ctx context.Context, requester auth.Identity, id string) (*domain.Rating, error) {
	rating, err := s.ratings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(requester, rating.UserID); err != nil {
		return nil, err
	}
	return rating, nil
}

func validateRating(value int) error {
	if value < domain.MinRatingValue || value > domain.MaxRatingValue {
		return invalid("value must be between %d and %d", domain.MinRatingValue, domain.MaxRatingValue)
	}
	return nil
}
