package http

import (
	"net/http"
	"testing"
	"time"

	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/require"

	"whiskr/internal/auth"
)

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	user := s.register(t, "cook@example.com")
	require.Equal(t, "cook@example.com", user.Email)
	require.NotEmpty(t, user.UserID)

	var login registered
	s.api().
		Post("/api/users/login").
		JSON(`{"email":"cook@example.com","password":"password123"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.userId", user.UserID)).
		End().
		JSON(&login)

	identity, err := s.tokens.Verify(login.Token)
	require.NoError(t, err)
	require.Equal(t, user.UserID, identity.ID)

	s.api().
		Get("/api/users/me").
		Header("Authorization", "Bearer "+login.Token).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.id", user.UserID)).
		Assert(jsonpath.Equal("$.email", "cook@example.com")).
		Assert(jsonpath.NotPresent("$.password_hash")).
		End()

	s.api().
		Get("/api/users/me").
		Header("Authorization", "bearer "+login.Token).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.id", user.UserID)).
		End()
}

func TestRegisterRejections(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	s.register(t, "dup@example.com")

	s.api().
		Post("/api/users/register").
		JSON(`{"email":"dup@example.com","password":"password123"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "email already registered")).
		End()

	s.api().
		Post("/api/users/register").
		JSON(`{"email":"short@example.com","password":"short"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()

	s.api().
		Post("/api/users/register").
		Body(`{not json`).
		Header("Content-Type", "application/json").
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "invalid request body")).
		End()
}

func TestLoginRejections(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	s.register(t, "cook@example.com")

	for _, body := range []string{
		`{"email":"cook@example.com","password":"wrong-password"}`,
		`{"email":"nobody@example.com","password":"password123"}`,
	} {
		s.api().
			Post("/api/users/login").
			JSON(body).
			Expect(t).
			Status(http.StatusUnauthorized).
			Assert(jsonpath.Equal("$.error", "invalid email or password")).
			End()
	}

	s.api().
		Post("/api/users/login").
		JSON(`{"email":"cook@example.com"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestAuthGate(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	user := s.register(t, "gate@example.com")

	s.api().
		Post("/api/recipes").
		JSON(`{"title":"No token"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.error", "missing token")).
		End()

	s.api().
		Post("/api/recipes").
		Header("Authorization", "Token "+user.Token).
		JSON(`{"title":"Wrong scheme"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	s.api().
		Post("/api/recipes").
		Header("Authorization", "Bearer "+tamper(user.Token)).
		JSON(`{"title":"Tampered"}`).
		Expect(t).
		Status(http.StatusForbidden).
		Assert(jsonpath.Equal("$.error", "invalid token")).
		End()

	past := func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := auth.NewTokenIssuer(testSecret, time.Hour, auth.WithClock(past))
	require.NoError(t, err)
	expired, err := stale.Issue(user.UserID, user.Email)
	require.NoError(t, err)

	s.api().
		Get("/api/bookmarks").
		Header("Authorization", "Bearer "+expired).
		Expect(t).
		Status(http.StatusForbidden).
		End()

	s.api().
		Get("/api/recipes").
		Expect(t).
		Status(http.StatusOK).
		End()
}

// tamper swaps a character in the middle of the signature segment.
func tamper(token string) string {
	b := []byte(token)
	i := len(b) - 10
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}
