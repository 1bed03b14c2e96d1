package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSession is returned by Load when nothing is stored.
	ErrNoSession = errors.New("no stored session")
	// ErrIncompleteSession is returned by Save when neither the session nor its
	// token names a user.
	ErrIncompleteSession = errors.New("session has no user id")
)

// Session is the client-side record of a login. It is advisory: the server
// re-verifies the token on every request.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
}

// IsAuthenticated reports whether both a token and a user id are present.
func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.UserID != ""
}

// SessionStore persists a single session.
type SessionStore interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// FileStore keeps the session as JSON in a file readable only by its owner.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultSessionPath is where the terminal client keeps its session.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "whiskr", "session.json"), nil
}

func (f *FileStore) Load() (Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

// Save stores s. A missing UserID is taken from the token's subject.
func (f *FileStore) Save(s Session) error {
	s, err := complete(s)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func complete(s Session) (Session, error) {
	if strings.TrimSpace(s.Token) == "" {
		return Session{}, fmt.Errorf("%w: token is empty", ErrIncompleteSession)
	}
	if s.UserID == "" {
		s.UserID = subjectOf(s.Token)
	}
	if s.UserID == "" {
		return Session{}, ErrIncompleteSession
	}
	return s, nil
}

// subjectOf reads the token's subject without verifying it. The client holds no
// secret, and the value is only used for display and routing.
func subjectOf(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, _ := claims.GetSubject()
	if sub != "" {
		return sub
	}
	// tokens from older servers carried the id in an "id" claim
	id, _ := claims["id"].(string)
	return id
}
