package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"whiskr/internal/domain"
	"whiskr/internal/repository"
)

type RatingRepository struct {
	store *Store
}

func NewRatingRepository(store *Store) repository.RatingRepository {
	return &RatingRepository{store: store}
}

func (r *RatingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	return insertRating(ctx, r.store.q(nil), rating)
}

// CreateUnique inserts rating unless the user already rated the recipe. On
// postgres the check and insert run under a transaction-scoped advisory lock
// keyed by (user, recipe); sqlite serialises writers on its single connection.
func (r *RatingRepository) CreateUnique(ctx context.Context, rating *domain.Rating) error {
	return r.store.withTx(ctx, func(q querier) error {
		if r.store.dialect == DialectPostgres {
			if _, err := q.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext(?))`, ratingLockKey(rating)); err != nil {
				return wrapErr("lock rating", err)
			}
		}

		var existing string
		err := q.QueryRowContext(ctx, `
SELECT id FROM ratings
WHERE user_id = ? AND recipe_id = ?
LIMIT 1`, rating.UserID, rating.RecipeID).Scan(&existing)
		switch {
		case err == nil:
			return fmt.Errorf("insert rating: %w", repository.ErrConflict)
		case !errors.Is(err, sql.ErrNoRows):
			return wrapErr("find rating", err)
		}
		return insertRating(ctx, q, rating)
	})
}

func ratingLockKey(rating *domain.Rating) string {
	return "rating:" + rating.UserID + ":" + rating.RecipeID
}

func insertRating(ctx context.Context, q querier, rating *domain.Rating) error {
	if rating.ID == "" {
		rating.ID = uuid.NewString()
	}
	rating.CreatedAt = time.Now().UTC()

	_, err := q.ExecContext(ctx, `
INSERT INTO ratings (id, user_id, recipe_id, value, created_at)
VALUES (?, ?, ?, ?, ?)`,
		rating.ID,
		rating.UserID,
		rating.RecipeID,
		rating.Value,
		rating.CreatedAt,
	)
	return wrapErr("insert rating", err)
}

func (r *RatingRepository) Get(ctx context.Context, id string) (*domain.Rating, error) {
	row := r.store.q(nil).QueryRowContext(ctx, `
SELECT id, user_id, recipe_id, value, created_at
FROM ratings
WHERE id = ?`, id)

	rating, err := scanRating(row)
	if err != nil {
		return nil, wrapErr("get rating", err)
	}
	return rating, nil
}

func (r *RatingRepository) ListByRecipe(ctx context.Context, recipeID string) ([]domain.Rating, error) {
	query := `
SELECT id, user_id, recipe_id, value, created_at
FROM ratings`
	var args []any
	if recipeID != "" {
		query += `
WHERE recipe_id = ?`
		args = append(args, recipeID)
	}
	query += `
ORDER BY created_at ASC, id ASC`

	rows, err := r.store.q(nil).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("query ratings", err)
	}
	defer rows.Close()

	ratings := []domain.Rating{}
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, wrapErr("scan rating", err)
		}
		ratings = append(ratings, *rating)
	}
	return ratings, wrapErr("iterate ratings", rows.Err())
}

// Update stores a new value and re-stamps CreatedAt, so a changed rating sorts
// as a fresh one.
func (r *RatingRepository) Update(ctx context.Context, rating *domain.Rating) error {
	rating.CreatedAt = time.Now().UTC()

	res, err := r.store.q(nil).ExecContext(ctx, `
UPDATE ratings
SET value = ?, created_at = ?
WHERE id = ?`,
		rating.Value,
		rating.CreatedAt,
		rating.ID,
	)
	if err != nil {
		return wrapErr("update rating", err)
	}
	return requireAffected("update rating", res)
}

func (r *RatingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.store.q(nil).ExecContext(ctx, `DELETE FROM ratings WHERE id = ?`, id)
	if err != nil {
		return wrapErr("delete rating", err)
	}
	return requireAffected("delete rating", res)
}

func scanRating(row scanner) (*domain.Rating, error) {
	var rating domain.Rating
	if err := row.Scan(
		&rating.ID,
		&rating.UserID,
		&rating.RecipeID,
		&rating.Value,
		&rating.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rating, nil
}
