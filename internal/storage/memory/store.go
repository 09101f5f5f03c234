// Package memory is an in-process HotspotStore used for local runs and tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"culture_hotspots/internal/domain"
)

type Store struct {
	mu    sync.RWMutex
	byID  map[string]int // id -> index into rows
	rows  []domain.Hotspot
	clock func() time.Time
}

func New() *Store {
	return &Store{byID: map[string]int{}, clock: time.Now}
}

// Put inserts h or replaces the hotspot with the same id in place,
// keeping its first CreatedAt.
func (s *Store) Put(ctx context.Context, h domain.Hotspot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock().UTC()
	h.UpdatedAt = now
	if i, ok := s.byID[h.ID]; ok {
		h.CreatedAt = s.rows[i].CreatedAt
		s.rows[i] = h
		return nil
	}
	h.CreatedAt = now
	s.byID[h.ID] = len(s.rows)
	s.rows = append(s.rows, h)
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = map[string]int{}
	s.rows = nil
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows), nil
}

func (s *Store) FindByID(ctx context.Context, id string) (domain.Hotspot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return domain.Hotspot{}, false, nil
	}
	return s.rows[i], true, nil
}

func (s *Store) FindAll(ctx context.Context) ([]domain.Hotspot, error) {
	return s.filter(func(domain.Hotspot) bool { return true }), nil
}

func (s *Store) FindByField(ctx context.Context, f domain.Field, value string) ([]domain.Hotspot, error) {
	if !f.Valid() {
		return nil, domain.ErrUnknownField
	}
	return s.filter(func(h domain.Hotspot) bool {
		v := f.Value(h)
		return v != nil && *v == value
	}), nil
}

func (s *Store) FindByFieldContaining(ctx context.Context, f domain.Field, substr string, caseInsensitive bool) ([]domain.Hotspot, error) {
	if !f.Valid() {
		return nil, domain.ErrUnknownField
	}
	if caseInsensitive {
		substr = strings.ToLower(substr)
	}
	return s.filter(func(h domain.Hotspot) bool {
		v := f.Value(h)
		if v == nil {
			return false
		}
		if caseInsensitive {
			return strings.Contains(strings.ToLower(*v), substr)
		}
		return strings.Contains(*v, substr)
	}), nil
}

// filter copies matching rows so callers never share the backing array.
func (s *Store) filter(keep func(domain.Hotspot) bool) []domain.Hotspot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Hotspot, 0, len(s.rows))
	for _, h := range s.rows {
		if keep(h) {
			out = append(out, h)
		}
	}
	return out
}
