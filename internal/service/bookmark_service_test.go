package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiskr/internal/auth"
	"whiskr/internal/repository"
)

func TestBookmarkLifecycle(t *testing.T) {
	f := newFixture(t, RecipeOptions{}, true)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")
	recipe, err := f.recipes.Create(ctx, alice, "Curry", "Spices")
	require.NoError(t, err)

	bookmark, err := f.bookmarks.Add(ctx, bob, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, bookmark.UserID)

	_, err = f.bookmarks.Add(ctx, bob, recipe.ID)
	assert.ErrorIs(t, err, ErrDuplicateBookmark)

	_, err = f.bookmarks.Add(ctx, bob, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	own, err := f.bookmarks.List(ctx, bob)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "Curry", own[0].Title)

	same, err := f.bookmarks.ListForUser(ctx, bob, bob.ID)
	require.NoError(t, err)
	assert.Len(t, same, 1)

	_, err = f.bookmarks.ListForUser(ctx, alice, bob.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, f.bookmarks.Remove(ctx, alice, recipe.ID), repository.ErrNotFound,
		"alice cannot reach bob's bookmark")

	require.NoError(t, f.bookmarks.Remove(ctx, bob, recipe.ID))
	own, err = f.bookmarks.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, own)
}

func TestBookmarkRemoveWithoutRequester(t *testing.T) {
	f := newFixture(t, RecipeOptions{}, true)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	recipe, err := f.recipes.Create(ctx, alice, "Curry", "Spices")
	require.NoError(t, err)
	_, err = f.bookmarks.Add(ctx, alice, recipe.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.bookmarks.Remove(ctx, auth.Identity{}, recipe.ID), ErrForbidden)

	own, err := f.bookmarks.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, own, 1)
}
