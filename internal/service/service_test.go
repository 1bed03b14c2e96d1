package service

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"whiskr/internal/auth"
	"whiskr/internal/purge"
	"whiskr/internal/repository/sqlstore"
)

var testSecret = []byte("service-test-secret-32-bytes-ok!")

type fixture struct {
	store     *sqlstore.Store
	tokens    *auth.TokenIssuer
	users     UserService
	recipes   RecipeService
	ratings   RatingService
	bookmarks BookmarkService
}

func newFixture(t *testing.T, opts RecipeOptions, uniqueRatings bool) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlstore.Open(ctx, sqlstore.DialectSQLite, filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	_, err = sqlstore.Migrate(ctx, store)
	require.NoError(t, err)

	tokens, err := auth.NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	userRepo := sqlstore.NewUserRepository(store)
	recipeRepo := sqlstore.NewRecipeRepository(store)

	return &fixture{
		store:     store,
		tokens:    tokens,
		users:     NewUserService(userRepo, auth.NewPasswordHasher(bcrypt.MinCost), tokens, 8),
		recipes:   NewRecipeService(recipeRepo, opts),
		ratings:   NewRatingService(sqlstore.NewRatingRepository(store), recipeRepo, uniqueRatings),
		bookmarks: NewBookmarkService(sqlstore.NewBookmarkRepository(store), recipeRepo),
	}
}

// register creates a user and returns the identity its token verifies to.
func (f *fixture) register(t *testing.T, email string) auth.Identity {
	t.Helper()
	res, err := f.users.Register(context.Background(), email, "password123")
	require.NoError(t, err)
	identity, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	return identity
}

type fakePhotos struct {
	mu       sync.Mutex
	uploaded map[string]string
}

func newFakePhotos() *fakePhotos {
	return &fakePhotos{uploaded: map[string]string{}}
}

func (f *fakePhotos) Upload(_ context.Context, key, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.uploaded[key] = contentType + ":" + string(data)
	f.mu.Unlock()
	return nil
}

func (f *fakePhotos) Delete(context.Context, string) error       { return nil }
func (f *fakePhotos) DeletePrefix(context.Context, string) error { return nil }

func (f *fakePhotos) PresignGet(_ context.Context, key string, expires time.Duration) (string, error) {
	return "https://photos.example.com/" + key + "?expires=" + expires.String(), nil
}

type fakePurger struct {
	mu   sync.Mutex
	jobs []purge.Job
}

func (f *fakePurger) Start(context.Context) error    { return nil }
func (f *fakePurger) Shutdown(context.Context) error { return nil }

func (f *fakePurger) Enqueue(job purge.Job) error {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()
	return nil
}
