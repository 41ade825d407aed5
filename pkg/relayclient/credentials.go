package relayclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Credentials are the storage account details sent with every relay call.
type Credentials struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	SavedAt  time.Time `json:"savedAt"`
}

// Complete reports whether both email and password are set.
func (c Credentials) Complete() bool {
	return c.Email != "" && c.Password != ""
}

// CredentialStore keeps a single set of credentials on the client side.
// Load returns zero Credentials when nothing has been saved.
type CredentialStore interface {
	Load() (Credentials, error)
	Save(email, password string) (Credentials, error)
	Clear() error
}

var errEmptyCredentials = errors.New("email and password are required")

func newCredentials(email, password string) (Credentials, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Credentials{}, errEmptyCredentials
	}
	return Credentials{Email: email, Password: password, SavedAt: time.Now().UTC()}, nil
}

// MemoryStore holds credentials for the lifetime of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	creds Credentials
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds, nil
}

func (s *MemoryStore) Save(email, password string) (Credentials, error) {
	creds, err := newCredentials(email, password)
	if err != nil {
		return Credentials{}, err
	}
	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	return creds, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.creds = Credentials{}
	s.mu.Unlock()
	return nil
}

// FileStore keeps credentials as one JSON document in a file readable only
// by the current user.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by path. The file is created on the
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Credentials{}, nil
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return creds, nil
}

func (s *FileStore) Save(email, password string) (Credentials, error) {
	creds, err := newCredentials(email, password)
	if err != nil {
		return Credentials{}, err
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return Credentials{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return Credentials{}, fmt.Errorf("failed to create credentials directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return Credentials{}, fmt.Errorf("failed to write credentials: %w", err)
	}
	return creds, nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
