package memory

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Store is an in-memory measurement store. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	requests map[string]*entry
	now      func() time.Time
}

type entry struct {
	values    map[string]any
	updatedAt time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used to stamp writes.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		requests: make(map[string]*entry),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores value under key for the given request. A later Save with the
// same key replaces the previous value.
func (s *Store) Save(_ context.Context, requestID, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.requests[requestID]
	if !ok {
		e = &entry{values: make(map[string]any)}
		s.requests[requestID] = e
	}
	e.values[key] = value
	e.updatedAt = s.now()
	return nil
}

// Get returns a copy of the measurements of a request. Unknown requests yield
// an empty map.
func (s *Store) Get(_ context.Context, requestID string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.requests[requestID]
	if !ok {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out, nil
}

// Requests lists the stored request identifiers, oldest write first.
func (s *Store) Requests(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.requests))
	for id := range s.requests {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.requests[ids[i]].updatedAt, s.requests[ids[j]].updatedAt
		if a.Equal(b) {
			return ids[i] < ids[j]
		}
		return a.Before(b)
	})
	return ids, nil
}

// Purge drops every request whose last write is older than olderThan and
// returns how many were removed.
func (s *Store) Purge(_ context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.requests {
		if e.updatedAt.Before(cutoff) {
			delete(s.requests, id)
			removed++
		}
	}
	return removed, nil
}

// Reset drops all stored measurements.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = make(map[string]*entry)
	return nil
}

// Len returns the number of stored requests.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.requests)
}
