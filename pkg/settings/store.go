// Package settings persists the dashboard's user state: pinned authors, the
// configured project selectors, and the stored personal access token. It is
// the server-side stand-in for what the browser used to keep in its key-value
// storage.
package settings

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/azdash-dev/azdash/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

const (
	keyPinnedAuthors = "pinned_authors"
	keySelectors     = "selectors"
	keyCredential    = "credential"
)

// Store is a sqlite-backed settings store.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens (creating if needed) the settings database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating settings directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening settings database: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing settings schema: %w", err)
	}
	return &Store{conn: conn, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) get(key string) (string, bool, error) {
	var value string
	err := s.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading setting %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.conn.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}

func (s *Store) getJSON(key string, out any) error {
	value, ok, err := s.get(key)
	if err != nil || !ok {
		return err
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return fmt.Errorf("decoding setting %s: %w", key, err)
	}
	return nil
}

func (s *Store) setJSON(key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding setting %s: %w", key, err)
	}
	return s.set(key, string(encoded))
}

// PinnedAuthors returns the stored pinned author display names.
func (s *Store) PinnedAuthors() ([]string, error) {
	var authors []string
	if err := s.getJSON(keyPinnedAuthors, &authors); err != nil {
		return nil, err
	}
	return authors, nil
}

// SetPinnedAuthors replaces the stored pinned author list.
func (s *Store) SetPinnedAuthors(authors []string) error {
	return s.setJSON(keyPinnedAuthors, authors)
}

// Selectors returns the stored project selectors.
func (s *Store) Selectors() ([]types.ProjectSelector, error) {
	var selectors []types.ProjectSelector
	if err := s.getJSON(keySelectors, &selectors); err != nil {
		return nil, err
	}
	return selectors, nil
}

// SetSelectors replaces the stored project selectors.
func (s *Store) SetSelectors(selectors []types.ProjectSelector) error {
	return s.setJSON(keySelectors, selectors)
}

// Credential returns the stored personal access token, empty when unset.
func (s *Store) Credential() (string, error) {
	value, _, err := s.get(keyCredential)
	return value, err
}

// SetCredential stores the personal access token.
func (s *Store) SetCredential(token string) error {
	return s.set(keyCredential, token)
}
