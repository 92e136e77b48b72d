package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/drawsync/internal/core/domain"
	"github.com/custodia-labs/drawsync/internal/core/ports/driven"
)

// Ensure DrawStore implements the interface.
var _ driven.DrawStore = (*DrawStore)(nil)

// DrawStore is an in-memory implementation of driven.DrawStore.
type DrawStore struct {
	mu    sync.RWMutex
	draws map[int64]domain.DrawRecord
}

// NewDrawStore creates a new in-memory draw store.
func NewDrawStore() *DrawStore {
	return &DrawStore{
		draws: make(map[int64]domain.DrawRecord),
	}
}

// Initialize is a no-op for the memory store.
func (s *DrawStore) Initialize(_ context.Context) error {
	return nil
}

// LatestSequenceID returns the highest stored sequence ID, or 0 when empty.
func (s *DrawStore) LatestSequenceID(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest int64
	for id := range s.draws {
		if id > latest {
			latest = id
		}
	}
	return latest, nil
}

// Upsert inserts or replaces a draw.
func (s *DrawStore) Upsert(_ context.Context, record domain.DrawRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draws[record.SequenceID] = record
	return nil
}

// Get retrieves a draw by sequence ID.
func (s *DrawStore) Get(_ context.Context, sequenceID int64) (*domain.DrawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.draws[sequenceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

// Latest returns the draw with the highest sequence ID.
func (s *DrawStore) Latest(ctx context.Context) (*domain.DrawRecord, error) {
	latest, err := s.LatestSequenceID(ctx)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, latest)
}

// Range returns draws with from <= id <= to, ascending.
func (s *DrawStore) Range(_ context.Context, from, to int64) ([]domain.DrawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.DrawRecord{}
	for id, d := range s.draws {
		if id >= from && id <= to {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceID < out[j].SequenceID })
	return out, nil
}

// Count returns the number of stored draws.
func (s *DrawStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.draws), nil
}

// IDs returns all stored sequence IDs in descending order.
func (s *DrawStore) IDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.draws))
	for id := range s.draws {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	return ids
}
