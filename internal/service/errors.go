package service

import "errors"

var (
	// ErrInvalidInput wraps every request validation failure.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrDuplicateEmail is returned when attempting to register with an existing email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrForbidden is returned when the requester does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicateRating is returned when the requester already rated the recipe.
	ErrDuplicateRating = errors.New("recipe already rated")
	// ErrDuplicateBookmark is returned when the requester already bookmarked the recipe.
	ErrDuplicateBookmark = errors.New("recipe already bookmarked")
	// ErrStorageDisabled is returned by photo operations when no object store is configured.
	ErrStorageDisabled = errors.New("photo storage is not configured")
)
