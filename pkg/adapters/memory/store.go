package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Store implements ports.Archive in memory.
// Safe for concurrent use.
type Store struct {
	data  map[string]domain.Snapshot
	order []string
	mu    sync.RWMutex
}

// NewStore creates a new in-memory archive.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Snapshot),
	}
}

// Save keeps a deep copy of the snapshot.
func (s *Store) Save(ctx context.Context, snap *domain.Snapshot) error {
	copied := snap.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[snap.RunID]; !ok {
		s.order = append(s.order, snap.RunID)
	}
	s.data[snap.RunID] = copied
	return nil
}

// Load returns a copy so callers can't mutate the archived run.
func (s *Store) Load(ctx context.Context, runID string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	ret := snap.Clone()
	return &ret, nil
}

// Delete removes the run.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[runID]; !ok {
		return nil
	}
	delete(s.data, runID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == runID })
	return nil
}

// List returns archived runs in the order they were first saved.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order), nil
}
