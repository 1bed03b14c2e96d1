package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrSessionExpired is returned when the server rejects the stored token. The
	// stored session has been cleared by then.
	ErrSessionExpired = errors.New("session expired, please log in again")
	// ErrNotLoggedIn is returned by authenticated calls without a session.
	ErrNotLoggedIn = errors.New("not logged in")
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type Recipe struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	HasPhoto  bool      `json:"has_photo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Rating struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RecipeID  string    `json:"recipe_id"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

type Bookmark struct {
	UserID    string    `json:"user_id"`
	RecipeID  string    `json:"recipe_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Client talks to the Whiskr API and keeps the session in a SessionStore.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions SessionStore
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func New(baseURL string, sessions SessionStore, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second},
		sessions: sessions,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the stored session, or the zero Session when none exists.
func (c *Client) Session() Session {
	s, err := c.sessions.Load()
	if err != nil {
		return Session{}
	}
	return s
}

func (c *Client) Register(ctx context.Context, email, password string) (Session, error) {
	return c.authenticate(ctx, "/api/users/register", email, password)
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	return c.authenticate(ctx, "/api/users/login", email, password)
}

func (c *Client) Logout() error {
	return c.sessions.Clear()
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (Session, error) {
	body := map[string]string{"email": email, "password": password}
	var s Session
	if err := c.do(ctx, http.MethodPost, path, body, &s, false); err != nil {
		return Session{}, err
	}
	if s.Email == "" {
		s.Email = email
	}
	if err := c.sessions.Save(s); err != nil {
		return Session{}, err
	}
	return c.sessions.Load()
}

func (c *Client) ListRecipes(ctx context.Context, search string) ([]Recipe, error) {
	path := "/api/recipes"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	var out []Recipe
	return out, c.do(ctx, http.MethodGet, path, nil, &out, false)
}

func (c *Client) GetRecipe(ctx context.Context, id string) (*Recipe, error) {
	var out Recipe
	if err := c.do(ctx, http.MethodGet, "/api/recipes/"+url.PathEscape(id), nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRecipe(ctx context.Context, title, content string) (*Recipe, error) {
	var out Recipe
	body := map[string]string{"title": title, "content": content}
	if err := c.do(ctx, http.MethodPost, "/api/recipes", body, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRecipe(ctx context.Context, id, title, content string) (*Recipe, error) {
	var out Recipe
	body := map[string]string{"title": title, "content": content}
	if err := c.do(ctx, http.MethodPut, "/api/recipes/"+url.PathEscape(id), body, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/recipes/"+url.PathEscape(id), nil, nil, true)
}

func (c *Client) Rate(ctx context.Context, recipeID string, value int) (*Rating, error) {
	var out Rating
	body := map[string]any{"recipe_id": recipeID, "value": value}
	if err := c.do(ctx, http.MethodPost, "/api/ratings", body, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Ratings(ctx context.Context, recipeID string) ([]Rating, error) {
	path := "/api/ratings"
	if recipeID != "" {
		path += "?recipe_id=" + url.QueryEscape(recipeID)
	}
	var out []Rating
	return out, c.do(ctx, http.MethodGet, path, nil, &out, false)
}

func (c *Client) Bookmarks(ctx context.Context) ([]Bookmark, error) {
	var out []Bookmark
	return out, c.do(ctx, http.MethodGet, "/api/bookmarks", nil, &out, true)
}

func (c *Client) Bookmark(ctx context.Context, recipeID string) error {
	return c.do(ctx, http.MethodPost, "/api/bookmarks", map[string]string{"recipe_id": recipeID}, nil, true)
}

func (c *Client) Unbookmark(ctx context.Context, recipeID string) error {
	return c.do(ctx, http.MethodDelete, "/api/bookmarks", map[string]string{"recipe_id": recipeID}, nil, true)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, authenticated bool) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authenticated {
		s := c.Session()
		if !s.IsAuthenticated() {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		// an ownership refusal is also a 403 but leaves the token valid
		if authenticated && resp.StatusCode == http.StatusForbidden && apiErr.Message == "invalid token" {
			if err := c.sessions.Clear(); err != nil {
				return err
			}
			return ErrSessionExpired
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &payload); err != nil || payload.Error == "" {
		payload.Error = strings.TrimSpace(string(data))
	}
	return &APIError{Status: resp.StatusCode, Message: payload.Error}
}
