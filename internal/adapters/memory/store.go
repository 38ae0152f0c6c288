// Package memory provides the in-process ThreadStore used for tests and
// single-instance deployments.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
)

// Store implements ports.ThreadStore over a mutex-guarded map. States are
// deep-copied on the way in and out so callers can never alias the stored
// snapshot.
type Store struct {
	mu      sync.RWMutex
	threads map[string]*domain.State
}

// New creates an empty store.
func New() *Store {
	return &Store{threads: make(map[string]*domain.State)}
}

// Save persists a deep copy of the state.
func (s *Store) Save(_ context.Context, threadID string, state *domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[threadID] = state.Clone()
	return nil
}

// Load returns a deep copy of the latest snapshot.
func (s *Store) Load(_ context.Context, threadID string) (*domain.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.threads[threadID]
	if !ok {
		return nil, domain.ErrThreadNotFound
	}
	return state.Clone(), nil
}

// Delete removes the thread.
func (s *Store) Delete(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, threadID)
	return nil
}

// List returns all thread ids in stable order.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.threads))
	for id := range s.threads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
