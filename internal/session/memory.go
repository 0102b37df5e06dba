package session

import (
	"context"
	"sync"
)

// MemoryStore keeps the credential for the life of the process.
type MemoryStore struct {
	mu         sync.RWMutex
	credential string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, credential string) error {
	if err := validCredential(credential); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = credential
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.credential == "" {
		return "", ErrNoSession
	}
	return s.credential, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = ""
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}
