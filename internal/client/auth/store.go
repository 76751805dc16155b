package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrNotFound is returned when no token is stored
	ErrNotFound = errors.New("token not found")

	// ErrHomeNotSet is returned when the HOME environment variable is missing
	ErrHomeNotSet = errors.New("unable to find home directory in ENV: HOME is not set")
)

const (
	// HomeEnvVar names the variable that locates the token file
	HomeEnvVar = "HOME"

	// TokenFileName is the token file created in the home directory
	TokenFileName = ".mindflow"
)

// TokenStore persists the authorization token in a dotfile
type TokenStore struct {
	path string
}

// NewTokenStore creates a store for $HOME/.mindflow.
// Returns ErrHomeNotSet without touching the filesystem when HOME is unset.
func NewTokenStore() (*TokenStore, error) {
	home := os.Getenv(HomeEnvVar)
	if home == "" {
		return nil, ErrHomeNotSet
	}
	return NewTokenStoreAt(home), nil
}

// NewTokenStoreAt creates a store for the token file inside dir
func NewTokenStoreAt(dir string) *TokenStore {
	return &TokenStore{path: filepath.Join(dir, TokenFileName)}
}

// Path returns the token file location
func (s *TokenStore) Path() string {
	return s.path
}

// Save writes the token verbatim, replacing any previous token
func (s *TokenStore) Save(token string) error {
	// Write with 0600 permissions (read/write for owner only)
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Load returns the stored token exactly as written
func (s *TokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	if len(data) == 0 {
		return "", ErrNotFound
	}
	return string(data), nil
}

// Delete removes the token file. Missing files are not an error.
func (s *TokenStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}
