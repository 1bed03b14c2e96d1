package domain

import "time"

// Recipe is owned by the user that created it.
type Recipe struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	PhotoKey  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Rating is a 1..5 score a user gave a recipe.
type Rating struct {
	ID        string
	UserID    string
	RecipeID  string
	Value     int
	CreatedAt time.Time
}

const (
	MinRatingValue = 1
	MaxRatingValue = 5
)

// Bookmark marks a recipe as saved by a user. At most one per (user, recipe).
type Bookmark struct {
	UserID    string
	RecipeID  string
	CreatedAt time.Time

	// Populated on listing from the joined recipe.
	Title   string
	Content string
}
