package http

import (
	"time"

	"whiskr/internal/domain"
	"whiskr/internal/service"
)

type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type RecipeResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	HasPhoto  bool      `json:"has_photo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RatingResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RecipeID  string    `json:"recipe_id"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

type BookmarkResponse struct {
	UserID    string    `json:"user_id"`
	RecipeID  string    `json:"recipe_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func authToResponse(res *service.AuthResult) authResponse {
	return authResponse{
		Token:  res.Token,
		UserID: res.User.ID,
		Email:  res.User.Email,
	}
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func recipeToResponse(recipe domain.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:        recipe.ID,
		UserID:    recipe.UserID,
		Title:     recipe.Title,
		Content:   recipe.Content,
		HasPhoto:  recipe.PhotoKey != "",
		CreatedAt: recipe.CreatedAt,
		UpdatedAt: recipe.UpdatedAt,
	}
}

func ratingToResponse(rating domain.Rating) RatingResponse {
	return RatingResponse{
		ID:        rating.ID,
		UserID:    rating.UserID,
		RecipeID:  rating.RecipeID,
		Value:     rating.Value,
		CreatedAt: rating.CreatedAt,
	}
}

func bookmarkToResponse(bookmark domain.Bookmark) BookmarkResponse {
	return BookmarkResponse{
		UserID:    bookmark.UserID,
		RecipeID:  bookmark.RecipeID,
		Title:     bookmark.Title,
		Content:   bookmark.Content,
		CreatedAt: bookmark.CreatedAt,
	}
}
