package cache

import (
	"sync"
	"time"
)

// Default TTLs for the orchestrator's read models.
const (
	TournamentTTL  = 300 * time.Second
	MatchTTL       = 120 * time.Second
	LeaderboardTTL = 60 * time.Second
)

// Cache is a TTL-based read-through cache keyed by entity id. Entries are
// an optimization only: callers must stay correct with the no-op
// implementation substituted.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Invalidate(key string)
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// InMemory is a process-local Cache guarded by a RWMutex, with a
// background janitor sweeping expired entries.
type InMemory struct {
	mu      sync.RWMutex
	entries map[string]entry
	done    chan struct{}
	once    sync.Once
}

func NewInMemory() *InMemory {
	c := &InMemory{
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}
	go c.janitor(time.Minute)
	return c
}

// Get returns the cached value, or false if the key is absent or expired.
// An expired entry is never returned, even before the janitor sweeps it.
func (c *InMemory) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores the value, overwriting any previous entry for the key.
func (c *InMemory) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Invalidate removes the entry outright.
func (c *InMemory) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Close stops the janitor goroutine.
func (c *InMemory) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *InMemory) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Nop caches nothing. Useful in tests and when caching is disabled.
type Nop struct{}

func NewNop() Nop { return Nop{} }

func (Nop) Get(string) (interface{}, bool)         { return nil, false }
func (Nop) Set(string, interface{}, time.Duration) {}
func (Nop) Invalidate(string)                      {}
