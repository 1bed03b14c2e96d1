package sqlstore

import (
	"context"
	"time"

	"whiskr/internal/domain"
	"whiskr/internal/repository"
)

type BookmarkRepository struct {
	store *Store
}

func NewBookmarkRepository(store *Store) repository.BookmarkRepository {
	return &BookmarkRepository{store: store}
}

// Create inserts the bookmark; a second bookmark of the same recipe by the same
// user yields repository.ErrConflict.
func (r *BookmarkRepository) Create(ctx context.Context, bookmark *domain.Bookmark) error {
	bookmark.CreatedAt = time.Now().UTC()

	_, err := r.store.q(nil).ExecContext(ctx, `
INSERT INTO bookmarks (user_id, recipe_id, created_at)
VALUES (?, ?, ?)`,
		bookmark.UserID,
		bookmark.RecipeID,
		bookmark.CreatedAt,
	)
	return wrapErr("insert bookmark", err)
}

func (r *BookmarkRepository) Delete(ctx context.Context, userID, recipeID string) error {
	res, err := r.store.q(nil).ExecContext(ctx, `
DELETE FROM bookmarks
WHERE user_id = ? AND recipe_id = ?`, userID, recipeID)
	if err != nil {
		return wrapErr("delete bookmark", err)
	}
	return requireAffected("delete bookmark", res)
}

// ListByUser returns the user's bookmarks joined with recipe title and content,
// newest first.
func (r *BookmarkRepository) ListByUser(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	rows, err := r.store.q(nil).QueryContext(ctx, `
SELECT b.user_id, b.recipe_id, b.created_at, r.title, r.content
FROM bookmarks b
JOIN recipes r ON r.id = b.recipe_id
WHERE b.user_id = ?
ORDER BY b.created_at DESC, b.recipe_id ASC`, userID)
	if err != nil {
		return nil, wrapErr("query bookmarks", err)
	}
	defer rows.Close()

	bookmarks := []domain.Bookmark{}
	for rows.Next() {
		var b domain.Bookmark
		if err := rows.Scan(&b.UserID, &b.RecipeID, &b.CreatedAt, &b.Title, &b.Content); err != nil {
			return nil, wrapErr("scan bookmark", err)
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, wrapErr("iterate bookmarks", rows.Err())
}
