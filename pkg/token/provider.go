package token

import (
	"context"
	"sync"
)

// Provider retrieves the current auth credential.
//
// Implementations must be safe for concurrent use. An empty token with a
// nil error means no credential is configured; the gateway then dispatches
// without an Authorization header.
type Provider interface {
	// Token returns the current credential value.
	Token(ctx context.Context) (string, error)
}

// Setter updates the current credential. Persistent credentials survive
// process restarts; session credentials do not.
type Setter interface {
	// SetToken stores a new credential value.
	SetToken(value string, persistent bool) error
}

// Static is a fixed credential that never changes.
type Static string

// Token implements Provider.
func (s Static) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// Source is a Provider/Setter backed by a session store and an optional
// persistent store. Reads prefer the session store and fall back to the
// persistent one; persistent writes land in both.
type Source struct {
	mu         sync.RWMutex
	session    string
	persistent Store
}

// NewSource creates a credential source. The persistent store may be nil,
// in which case persistent writes degrade to session-only storage.
func NewSource(persistent Store) *Source {
	return &Source{persistent: persistent}
}

// Token implements Provider.
func (s *Source) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	value := s.session
	s.mu.RUnlock()

	if value != "" {
		return value, nil
	}

	if s.persistent == nil {
		return "", nil
	}
	return s.persistent.Load()
}

// SetToken implements Setter.
func (s *Source) SetToken(value string, persistent bool) error {
	s.mu.Lock()
	s.session = value
	s.mu.Unlock()

	if !persistent || s.persistent == nil {
		return nil
	}
	return s.persistent.Save(value)
}

// Clear removes the credential from both stores.
func (s *Source) Clear() error {
	s.mu.Lock()
	s.session = ""
	s.mu.Unlock()

	if s.persistent == nil {
		return nil
	}
	return s.persistent.Clear()
}
