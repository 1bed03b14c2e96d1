package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiskr/internal/auth"
	"whiskr/internal/purge"
	"whiskr/internal/repository"
)

func TestRecipeOwnerComesFromIdentity(t *testing.T) {
	f := newFixture(t, RecipeOptions{}, true)
	alice := f.register(t, "alice@example.com")

	recipe, err := f.recipes.Create(context.Background(), alice, "  Pancakes ", "Flour")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, recipe.UserID)
	assert.Equal(t, "Pancakes", recipe.Title)

	_, err = f.recipes.Create(context.Background(), alice, " ", "no title")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.recipes.Create(context.Background(), auth.Identity{}, "Anon", "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRecipeCrossIdentityMutationsAreForbidden(t *testing.T) {
	f := newFixture(t, RecipeOptions{}, true)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")

	recipe, err := f.recipes.Create(ctx, alice, "Stew", "Beef")
	require.NoError(t, err)

	_, err = f.recipes.Update(ctx, bob, recipe.ID, "Hijacked", "")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.recipes.Delete(ctx, bob, recipe.ID), ErrForbidden)

	unchanged, err := f.recipes.Get(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stew", unchanged.Title)
	assert.Equal(t, alice.ID, unchanged.UserID)

	updated, err := f.recipes.Update(ctx, alice, recipe.ID, "Beef stew", "Beef and carrots")
	require.NoError(t, err)
	assert.Equal(t, "Beef stew", updated.Title)

	require.NoError(t, f.recipes.Delete(ctx, alice, recipe.ID))
	_, err = f.recipes.Get(ctx, recipe.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecipeNotFoundBeforeOwnership(t *testing.T) {
	f := newFixture(t, RecipeOptions{}, true)
	bob := f.register(t, "bob@example.com")

	err := f.recipes.Delete(context.Background(), bob, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecipeSearch(t *testing.T) {
	f := newFixture(t, RecipeOptions{}, true)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")

	_, err := f.recipes.Create(ctx, alice, "Chocolate cake", "Cocoa")
	require.NoError(t, err)
	_, err = f.recipes.Create(ctx, alice, "Lemon tart", "Lemons and sugar")
	require.NoError(t, err)

	found, err := f.recipes.List(ctx, "chocolate")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Chocolate cake", found[0].Title)

	all, err := f.recipes.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRecipePhotosDisabled(t *testing.T) {
	f := newFixture(t, RecipeOptions{}, true)
	alice := f.register(t, "alice@example.com")
	recipe, err := f.recipes.Create(context.Background(), alice, "Bread", "")
	require.NoError(t, err)

	_, err = f.recipes.SetPhoto(context.Background(), alice, recipe.ID, Photo{
		ContentType: "image/png",
		Body:        strings.NewReader("png"),
	})
	assert.ErrorIs(t, err, ErrStorageDisabled)

	_, err = f.recipes.PhotoURL(context.Background(), recipe.ID)
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestRecipePhotoLifecycle(t *testing.T) {
	photos := newFakePhotos()
	purger := &fakePurger{}
	f := newFixture(t, RecipeOptions{Photos: photos, Purger: purger}, true)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")

	recipe, err := f.recipes.Create(ctx, alice, "Pizza", "Dough")
	require.NoError(t, err)

	_, err = f.recipes.PhotoURL(ctx, recipe.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound, "no photo yet")

	_, err = f.recipes.SetPhoto(ctx, bob, recipe.ID, Photo{ContentType: "image/jpeg", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.recipes.SetPhoto(ctx, alice, recipe.ID, Photo{ContentType: "text/plain", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	first, err := f.recipes.SetPhoto(ctx, alice, recipe.ID, Photo{
		Filename:    "pizza.JPG",
		ContentType: "image/jpeg",
		Body:        strings.NewReader("first"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.PhotoKey, recipe.ID+"/"))
	assert.True(t, strings.HasSuffix(first.PhotoKey, ".jpg"))
	assert.Equal(t, "image/jpeg:first", photos.uploaded[first.PhotoKey])
	firstKey := first.PhotoKey

	second, err := f.recipes.SetPhoto(ctx, alice, recipe.ID, Photo{
		Filename:    "pizza.png",
		ContentType: "image/png",
		Body:        strings.NewReader("second"),
	})
	require.NoError(t, err)
	assert.NotEqual(t, firstKey, second.PhotoKey)
	assert.Equal(t, []purge.Job{{Key: firstKey}}, purger.jobs)

	url, err := f.recipes.PhotoURL(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Contains(t, url, second.PhotoKey)

	require.NoError(t, f.recipes.Delete(ctx, alice, recipe.ID))
	assert.Equal(t, purge.Job{Prefix: recipe.ID}, purger.jobs[len(purger.jobs)-1])
}
