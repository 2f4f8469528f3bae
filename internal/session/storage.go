package session

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// TokenStorage persists the bearer token between process runs. A single
// durable key holds the token string.
type TokenStorage interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileStorage keeps the token in a file with owner-only permissions
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage creates a file-backed token storage at the given path
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load returns the stored token, or an empty string when none is stored
func (s *FileStorage) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the token to the backing file
func (s *FileStorage) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return os.WriteFile(s.path, []byte(token), 0o600)
}

// Clear removes the backing file. Clearing absent storage is not an error.
func (s *FileStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
