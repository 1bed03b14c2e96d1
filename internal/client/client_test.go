package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	validToken string

	mu       sync.Mutex
	lastAuth string
}

func (f *fakeAPI) auth() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	authHeader := r.Header.Get("Authorization")
	f.mu.Lock()
	f.lastAuth = authHeader
	f.mu.Unlock()

	switch {
	case r.URL.Path == "/api/users/login":
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "password123" {
			writeJSON(http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
			return
		}
		writeJSON(http.StatusOK, map[string]string{"token": f.validToken, "userId": "u1", "email": req["email"]})
	case r.URL.Path == "/api/recipes" && r.Method == http.MethodGet:
		writeJSON(http.StatusOK, []Recipe{{ID: "r1", Title: "Soup " + r.URL.Query().Get("search")}})
	case strings.HasPrefix(r.URL.Path, "/api/recipes/") && r.Method == http.MethodDelete:
		writeJSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	case r.URL.Path == "/api/bookmarks":
		if authHeader != "Bearer "+f.validToken {
			writeJSON(http.StatusForbidden, map[string]string{"error": "invalid token"})
			return
		}
		writeJSON(http.StatusOK, []Bookmark{{UserID: "u1", RecipeID: "r1", Title: "Soup"}})
	default:
		writeJSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func newTestClient(t *testing.T) (*Client, *fakeAPI, *FileStore) {
	t.Helper()
	api := &fakeAPI{validToken: "valid-token"}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	return New(srv.URL+"/", store, WithHTTPClient(srv.Client())), api, store
}

func TestLoginPersistsSession(t *testing.T) {
	c, _, store := newTestClient(t)
	ctx := context.Background()

	s, err := c.Login(ctx, "cook@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, Session{Token: "valid-token", UserID: "u1", Email: "cook@example.com"}, s)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.True(t, stored.IsAuthenticated())

	require.NoError(t, c.Logout())
	assert.False(t, c.Session().IsAuthenticated())
}

func TestLoginFailure(t *testing.T) {
	c, _, store := newTestClient(t)

	_, err := c.Login(context.Background(), "cook@example.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid email or password", apiErr.Message)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestAuthenticatedCallsAttachBearer(t *testing.T) {
	c, api, _ := newTestClient(t)
	ctx := context.Background()

	_, err := c.Bookmarks(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = c.Login(ctx, "cook@example.com", "password123")
	require.NoError(t, err)

	bookmarks, err := c.Bookmarks(ctx)
	require.NoError(t, err)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, "Bearer valid-token", api.auth())

	recipes, err := c.ListRecipes(ctx, "tomato")
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Soup tomato", recipes[0].Title)
	assert.Empty(t, api.auth(), "public reads carry no token")
}

func TestInvalidTokenClearsSession(t *testing.T) {
	c, _, store := newTestClient(t)
	require.NoError(t, store.Save(Session{Token: "stale-token", UserID: "u1"}))

	_, err := c.Bookmarks(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestOwnershipRefusalKeepsSession(t *testing.T) {
	c, _, store := newTestClient(t)
	_, err := c.Login(context.Background(), "cook@example.com", "password123")
	require.NoError(t, err)

	err = c.DeleteRecipe(context.Background(), "r1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	s, err := store.Load()
	require.NoError(t, err)
	assert.True(t, s.IsAuthenticated())
}
