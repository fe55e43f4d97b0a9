package auth

import (
	"errors"
	"sync"
)

var ErrNoToken = errors.New("no credential stored")

// CredentialStore holds the bearer token for the active session. Touch
// refreshes whatever liveness the backing store tracks.
type CredentialStore interface {
	LoadToken() (string, error)
	SaveToken(token string) error
	DeleteToken() error
	Touch() error
}

// MemoryStore is the in-process store used when no Redis address is
// configured, and the default test double.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", ErrNoToken
	}
	return s.token, nil
}

func (s *MemoryStore) SaveToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) DeleteToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *MemoryStore) Touch() error {
	return nil
}
