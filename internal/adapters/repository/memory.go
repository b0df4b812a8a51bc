package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/okian/nitecap/internal/domain/venue"
	"github.com/okian/nitecap/pkg/metrics"
)

// MemoryStore is an in-memory Store for tests and single-process runs
// without a database.
type MemoryStore struct {
	mu     sync.RWMutex
	venues map[string]venue.Venue
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		venues: make(map[string]venue.Venue),
	}
}

// Upsert implements Store.
func (s *MemoryStore) Upsert(_ context.Context, v venue.Venue) error {
	s.mu.Lock()
	s.venues[v.ID] = v
	count := len(s.venues)
	s.mu.Unlock()

	metrics.UpdateVenuesTracked(count)
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (venue.Venue, error) {
	s.mu.RLock()
	v, ok := s.venues[id]
	s.mu.RUnlock()

	if !ok {
		return venue.Venue{}, ErrNotFound
	}
	return v, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.venues, id)
	count := len(s.venues)
	s.mu.Unlock()

	metrics.UpdateVenuesTracked(count)
	return nil
}

// ListByCity implements Store.
func (s *MemoryStore) ListByCity(_ context.Context, city string) ([]venue.Venue, error) {
	want := strings.ToLower(strings.TrimSpace(city))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]venue.Venue, 0, len(s.venues))
	for _, v := range s.venues {
		if want != "" && strings.ToLower(strings.TrimSpace(v.City)) != want {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.venues)
}
