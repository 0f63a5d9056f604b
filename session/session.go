// Package session persists the authenticated identity and bearer token.
// User and token live in one document so they can only ever be set or
// cleared together. There is no client-side expiry or refresh: a stale
// token is the backend's to reject, surfaced as an ordinary request
// failure.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileName is the session file within the state directory.
const FileName = "session.json"

// User is the authenticated identity as the backend reports it.
type User struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
}

// UserPatch carries partial profile updates. Nil fields are left alone.
type UserPatch struct {
	Name  *string
	Email *string
	Phone *string
}

// Session is the persisted login state. A zero Session is logged out.
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// LoggedIn reports whether the session holds an authenticated identity.
func (s Session) LoggedIn() bool {
	return s.User != nil && s.Token != ""
}

// Store reads and writes the persisted session.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a session store rooted at the given state directory.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Path returns the full path of the session file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Current restores the persisted session. An absent or corrupt file is
// a logged-out session, never an error: a damaged session must not keep
// the client from starting.
func (s *Store) Current() Session {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read session file", "path", s.Path(), "error", err)
		}
		return Session{}
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.Warn("Discarding malformed session file", "path", s.Path(), "error", err)
		return Session{}
	}
	// A half-formed document (user without token or vice versa) is
	// treated as logged out rather than propagated.
	if !sess.LoggedIn() {
		return Session{}
	}
	return sess
}

// Token returns the current bearer token, empty when logged out.
// Satisfies the API client's token source.
func (s *Store) Token() string {
	return s.Current().Token
}

// Login persists the identity and token together.
func (s *Store) Login(user User, token string) error {
	if token == "" {
		return fmt.Errorf("token is required")
	}
	return s.write(Session{User: &user, Token: token})
}

// Logout clears the session unconditionally. Logging out while already
// logged out is a no-op.
func (s *Store) Logout() error {
	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// UpdateUser merges the patch into the persisted user without touching
// the token. Updating while logged out is an error.
func (s *Store) UpdateUser(patch UserPatch) error {
	sess := s.Current()
	if !sess.LoggedIn() {
		return fmt.Errorf("not logged in")
	}

	if patch.Name != nil {
		sess.User.Name = *patch.Name
	}
	if patch.Email != nil {
		sess.User.Email = *patch.Email
	}
	if patch.Phone != nil {
		sess.User.Phone = *patch.Phone
	}
	return s.write(sess)
}

func (s *Store) write(sess Session) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, FileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp session file: %w", err)
	}

	// The session holds a credential; keep it owner-only.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("restrict session file mode: %w", err)
	}

	if err := os.Rename(tmpName, s.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
