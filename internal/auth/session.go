// ABOUTME: Persists the session token between CLI invocations.
// ABOUTME: Stored as a small YAML file readable only by the owner.

package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Session is what survives between runs.
type Session struct {
	Token   string    `yaml:"token"`
	Email   string    `yaml:"email"`
	SavedAt time.Time `yaml:"saved_at"`
}

type SessionFile struct {
	Path string
}

func NewSessionFile(path string) *SessionFile {
	return &SessionFile{Path: path}
}

// Load returns the saved session, or nil if there is none.
func (f *SessionFile) Load() (*Session, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if s.Token == "" {
		return nil, nil
	}
	return &s, nil
}

func (f *SessionFile) Save(s *Session) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0600)
}

// Clear removes the saved session. Clearing a missing file succeeds.
func (f *SessionFile) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
