package token

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// Store persists a single credential value.
type Store interface {
	// Load returns the stored credential, or "" when none is stored.
	Load() (string, error)

	// Save persists a credential value.
	Save(value string) error

	// Clear removes the stored credential. No-op when nothing is stored.
	Clear() error
}

// MemoryStore keeps the credential in process memory. Useful for tests
// and for session-scoped credentials.
type MemoryStore struct {
	mu    sync.RWMutex
	value string
}

// Load implements Store.
func (m *MemoryStore) Load() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value, nil
}

// Save implements Store.
func (m *MemoryStore) Save(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = ""
	return nil
}

// FileStore persists the credential to a file with owner-only
// permissions.
type FileStore struct {
	// Path is the credential file location.
	Path string

	mu sync.Mutex
}

// NewFileStore creates a file-backed credential store.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load implements Store. A missing file is not an error; it simply means
// no credential has been persisted yet.
func (f *FileStore) Load() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Save implements Store.
func (f *FileStore) Save(value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return os.WriteFile(f.Path, []byte(value+"\n"), 0o600)
}

// Clear implements Store.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
