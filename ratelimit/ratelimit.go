package ratelimit

import (
	"sync"
	"time"
)

// Limiter answers whether a request against the keyed resource may
// proceed right now. Implementations must be safe for concurrent use.
type Limiter interface {
	Allow(key string) bool
}

// SlidingWindow keeps a timestamp log per key and admits at most limit
// requests within any trailing window.
type SlidingWindow struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	requests map[string][]time.Time
	now      func() time.Time
}

func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		limit:    limit,
		window:   window,
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow records the request and returns true when the key has seen fewer
// than the limit within the window. A rejected request is not recorded.
func (s *SlidingWindow) Allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-s.window)

	kept := s.requests[key][:0]
	for _, ts := range s.requests[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= s.limit {
		s.requests[key] = kept
		return false
	}

	s.requests[key] = append(kept, now)
	return true
}

// Reset drops the recorded history for the key.
func (s *SlidingWindow) Reset(key string) {
	s.mu.Lock()
	delete(s.requests, key)
	s.mu.Unlock()
}
