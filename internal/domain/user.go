package domain

import "time"

// User is a registered identity. Email is unique and compared exactly as stored.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
