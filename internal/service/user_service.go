package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"whiskr/internal/auth"
	"whiskr/internal/domain"
	"whiskr/internal/repository"
)

// AuthResult is what a successful registration or login hands back to the caller.
type AuthResult struct {
	User  *domain.User
	Token string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type userService struct {
	users             repository.UserRepository
	hasher            *auth.PasswordHasher
	tokens            *auth.TokenIssuer
	minPasswordLength int

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(users repository.UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer, minPasswordLength int) UserService {
	if minPasswordLength < 1 {
		minPasswordLength = 8
	}
	return &userService{
		users:             users,
		hasher:            hasher,
		tokens:            tokens,
		minPasswordLength: minPasswordLength,
	}
}

func (s *userService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)

	if email == "" {
		return nil, invalid("email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, invalid("email is not valid")
	}
	if password == "" {
		return nil, invalid("password is required")
	}
	if len(password) < s.minPasswordLength {
		return nil, invalid("password must be at least %d characters", s.minPasswordLength)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidInput) {
			return nil, invalid("password is too long")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return s.issue(user)
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, invalid("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// burn a comparison so unknown emails cost the same as wrong passwords
			_, _ = s.hasher.Verify(password, s.placeholderHash())
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password for user %s: %w", user.ID, err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) issue(user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: sanitizeUser(user), Token: token}, nil
}

func (s *userService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("whiskr-placeholder-password")
	})
	return s.dummyHash
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
