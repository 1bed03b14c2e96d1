package sqlstore

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"whiskr/internal/domain"
	"whiskr/internal/repository"
)

const recipeColumns = `id, user_id, title, content, photo_key, created_at, updated_at`

type RecipeRepository struct {
	store *Store
}

func NewRecipeRepository(store *Store) repository.RecipeRepository {
	return &RecipeRepository{store: store}
}

func (r *RecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) error {
	now := time.Now().UTC()
	if recipe.ID == "" {
		recipe.ID = uuid.NewString()
	}
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	_, err := r.store.q(nil).ExecContext(ctx, `
INSERT INTO recipes (id, user_id, title, content, photo_key, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		recipe.ID,
		recipe.UserID,
		recipe.Title,
		recipe.Content,
		recipe.PhotoKey,
		recipe.CreatedAt,
		recipe.UpdatedAt,
	)
	return wrapErr("insert recipe", err)
}

func (r *RecipeRepository) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	row := r.store.q(nil).QueryRowContext(ctx, `
SELECT `+recipeColumns+`
FROM recipes
WHERE id = ?`, id)

	recipe, err := scanRecipe(row)
	if err != nil {
		return nil, wrapErr("get recipe", err)
	}
	return recipe, nil
}

func (r *RecipeRepository) List(ctx context.Context, search string) ([]domain.Recipe, error) {
	query := `
SELECT ` + recipeColumns + `
FROM recipes`
	var args []any

	if s := strings.TrimSpace(search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		query += `
WHERE LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern)
	}
	query += `
ORDER BY created_at DESC, id ASC`

	rows, err := r.store.q(nil).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("query recipes", err)
	}
	defer rows.Close()

	recipes := []domain.Recipe{}
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, wrapErr("scan recipe", err)
		}
		recipes = append(recipes, *recipe)
	}
	return recipes, wrapErr("iterate recipes", rows.Err())
}

// Update writes title, content and photo key, refreshing UpdatedAt.
func (r *RecipeRepository) Update(ctx context.Context, recipe *domain.Recipe) error {
	recipe.UpdatedAt = time.Now().UTC()

	res, err := r.store.q(nil).ExecContext(ctx, `
UPDATE recipes
SET title = ?, content = ?, photo_key = ?, updated_at = ?
WHERE id = ?`,
		recipe.Title,
		recipe.Content,
		recipe.PhotoKey,
		recipe.UpdatedAt,
		recipe.ID,
	)
	if err != nil {
		return wrapErr("update recipe", err)
	}
	return requireAffected("update recipe", res)
}

// Delete removes the recipe; its ratings and bookmarks cascade.
func (r *RecipeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.store.q(nil).ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return wrapErr("delete recipe", err)
	}
	return requireAffected("delete recipe", res)
}

func scanRecipe(row scanner) (*domain.Recipe, error) {
	var recipe domain.Recipe
	if err := row.Scan(
		&recipe.ID,
		&recipe.UserID,
		&recipe.Title,
		&recipe.Content,
		&recipe.PhotoKey,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &recipe, nil
}
