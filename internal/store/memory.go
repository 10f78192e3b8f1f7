package store

import (
	"context"
	"sort"
	"sync"

	"github.com/calvinwijaya/blackjack/internal/game"
)

// MemoryStore is an in-memory implementation of table storage
type MemoryStore struct {
	tables map[string]game.State
	mu     sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string]game.State),
	}
}

// SaveTable saves a table to the store
func (s *MemoryStore) SaveTable(_ context.Context, st game.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables[st.ID] = st
	return nil
}

// GetTable retrieves a table by ID
func (s *MemoryStore) GetTable(_ context.Context, id string) (game.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, exists := s.tables[id]
	if !exists {
		return game.State{}, ErrNotFound
	}
	return st, nil
}

// DeleteTable removes a table from the store
func (s *MemoryStore) DeleteTable(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tables[id]; !exists {
		return ErrNotFound
	}
	delete(s.tables, id)
	return nil
}

// ListTables returns all tables, most recently updated first
func (s *MemoryStore) ListTables(_ context.Context) ([]game.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]game.State, 0, len(s.tables))
	for _, st := range s.tables {
		states = append(states, st)
	}
	sort.Slice(states, func(i, j int) bool {
		if !states[i].UpdatedAt.Equal(states[j].UpdatedAt) {
			return states[i].UpdatedAt.After(states[j].UpdatedAt)
		}
		return states[i].ID < states[j].ID
	})

	return states, nil
}
