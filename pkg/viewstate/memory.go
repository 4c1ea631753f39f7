package viewstate

import (
	"context"
	"sync"
)

// MemoryStore is an in-process view-state store for tests and ephemeral use.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*State
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*State)}
}

func (s *MemoryStore) Get(ctx context.Context, fingerprint string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[fingerprint]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (s *MemoryStore) Set(ctx context.Context, fingerprint string, st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *st
	s.states[fingerprint] = &cp
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, fingerprint)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
