package sqlstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"whiskr/internal/domain"
	"whiskr/internal/repository"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) repository.UserRepository {
	return &UserRepository{store: store}
}

// Create inserts user, assigning ID and timestamps. A taken email yields
// repository.ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.store.q(nil).ExecContext(ctx, `
INSERT INTO users (id, email, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return wrapErr("insert user", err)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.store.q(nil).QueryRowContext(ctx, `
SELECT id, email, password_hash, created_at, updated_at
FROM users
WHERE email = ?`,
		email,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.store.q(nil).QueryRowContext(ctx, `
SELECT id, email, password_hash, created_at, updated_at
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func scanUser(row scanner) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, wrapErr("scan user", err)
	}
	return &user, nil
}

type scanner interface {
	Scan(dest ...any) error
}
