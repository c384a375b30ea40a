package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. Limits are per process: each
// instance of a horizontally scaled deployment counts on its own.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
	window  time.Duration
	now     Clock
}

func NewMemoryStore(window time.Duration, clock Clock) *MemoryStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryStore{
		records: make(map[string]*Record),
		window:  window,
		now:     clock,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return Record{}, false, nil
	}
	return *rec, true, nil
}

func (s *MemoryStore) Increment(_ context.Context, key string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.records[key]
	if !ok || s.expired(rec, now) {
		rec = &Record{Count: 1, WindowStart: now}
		s.records[key] = rec
		return *rec, nil
	}

	rec.Count++
	return *rec, nil
}

func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, rec := range s.records {
		if s.expired(rec, now) {
			delete(s.records, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of tracked identifiers.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *MemoryStore) expired(rec *Record, now time.Time) bool {
	return rec.WindowStart.Before(now.Add(-s.window))
}
