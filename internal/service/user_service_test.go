package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginVerifyRoundTrip(t *testing.T) {
	f := newFixture(t, RecipeOptions{}, true)
	ctx := context.Background()

	registered, err := f.users.Register(ctx, "  cook@example.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "cook@example.com", registered.User.Email)
	assert.Empty(t, registered.User.PasswordHash, "hash never leaves the service")

	loggedIn, err := f.users.Authenticate(ctx, "cook@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	identity, err := f.tokens.Verify(loggedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, identity.ID)
	assert.Equal(t, "cook@example.com", identity.Email)

	me, err := f.users.GetByID(ctx, identity.ID)
	require.NoError(t, err)
	assert.Equal(t, "cook@example.com", me.Email)
}

func TestRegisterStoresHashNotPassword(t *testing.T) {
	f := newFixture(t, RecipeOptions{}, true)
	res, err := f.users.Register(context.Background(), "hash@example.com", "password123")
	require.NoError(t, err)

	var stored string
	err = f.store.DB().QueryRow(`SELECT password_hash FROM users WHERE id = ?`, res.User.ID).Scan(&stored)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored)
	assert.Contains(t, stored, "$2a$")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t, RecipeOptions{}, true)
	ctx := context.Background()

	_, err := f.users.Register(ctx, "dup@example.com", "password123")
	require.NoError(t, err)
	_, err = f.users.Register(ctx, "dup@example.com", "another-password")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	var count int
	require.NoError(t, f.store.DB().QueryRow(`SELECT COUNT(*) FROM users WHERE email = ?`, "dup@example.com").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRegisterDuplicateEmailConcurrent(t *testing.T) {
	f := newFixture(t, RecipeOptions{}, true)
	ctx := context.Background()

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		dups int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.users.Register(ctx, "race@example.com", "password123")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrDuplicateEmail):
				dups++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dups)

	var count int
	require.NoError(t, f.store.DB().QueryRow(`SELECT COUNT(*) FROM users WHERE email = ?`, "race@example.com").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t, RecipeOptions{}, true)
	ctx := context.Background()

	cases := map[string]struct{ email, password string }{
		"empty email":    {"", "password123"},
		"no at sign":     {"not-an-email", "password123"},
		"empty password": {"a@example.com", ""},
		"short password": {"a@example.com", "short"},
		"over 72 bytes":  {"a@example.com", string(make([]byte, 73))},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.users.Register(ctx, tc.email, tc.password)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t, RecipeOptions{}, true)
	ctx := context.Background()
	f.register(t, "known@example.com")

	_, wrongPassword := f.users.Authenticate(ctx, "known@example.com", "wrong-password")
	_, unknownEmail := f.users.Authenticate(ctx, "unknown@example.com", "password123")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

	_, missing := f.users.Authenticate(ctx, "known@example.com", "")
	assert.ErrorIs(t, missing, ErrInvalidInput)
}

func TestEmailIsCaseSensitive(t *testing.T) {
	f := newFixture(t, RecipeOptions{}, true)
	f.register(t, "Case@example.com")

	_, err := f.users.Authenticate(context.Background(), "case@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
