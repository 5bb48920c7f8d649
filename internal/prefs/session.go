// Package prefs stores UI state that is not part of the file tree: which
// folders are expanded and which files are open in tabs.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const sessionFile = "session.json"

// Session is the restorable view state.
type Session struct {
	Expanded []string `json:"expanded"`
	Tabs     []string `json:"tabs"`
	Active   string   `json:"active,omitempty"`
}

// Store reads and writes one session file.
type Store struct {
	fs   afero.Fs
	path string
}

func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// DefaultPath is session.json in the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "codepad", sessionFile), nil
}

func (s *Store) Save(sess Session) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return err
	}
	return s.fs.Rename(tmp, s.path)
}

// Load returns the saved session, or the zero Session when none exists.
func (s *Store) Load() (Session, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, nil
		}
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}
