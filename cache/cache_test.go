package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestInMemory_SetGet(t *testing.T) {
	c := NewInMemory()
	defer c.Close()

	c.Set("tournament:1", "snapshot-a", time.Minute)

	v, ok := c.Get("tournament:1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if v.(string) != "snapshot-a" {
		t.Errorf("got %v, want snapshot-a", v)
	}

	if _, ok := c.Get("tournament:2"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestInMemory_ExpiredEntryNeverReturned(t *testing.T) {
	c := NewInMemory()
	defer c.Close()

	c.Set("match:9", 42, 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	// The janitor has not run yet; expiry must still be honored on read.
	if _, ok := c.Get("match:9"); ok {
		t.Error("expired entry was returned")
	}
}

func TestInMemory_SetOverwritesStale(t *testing.T) {
	c := NewInMemory()
	defer c.Close()

	c.Set("leaderboard", "old", time.Nanosecond)
	c.Set("leaderboard", "new", time.Minute)

	v, ok := c.Get("leaderboard")
	if !ok || v.(string) != "new" {
		t.Errorf("got %v (hit=%v), want new", v, ok)
	}
}

func TestInMemory_Invalidate(t *testing.T) {
	c := NewInMemory()
	defer c.Close()

	c.Set("tournament:3", "x", time.Minute)
	c.Invalidate("tournament:3")

	if _, ok := c.Get("tournament:3"); ok {
		t.Error("entry survived invalidation")
	}
}

func TestInMemory_ConcurrentAccess(t *testing.T) {
	c := NewInMemory()
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%4)
			for j := 0; j < 100; j++ {
				c.Set(key, j, time.Minute)
				c.Get(key)
				c.Invalidate(key)
			}
		}(i)
	}
	wg.Wait()
}

func TestNop(t *testing.T) {
	c := NewNop()
	c.Set("k", "v", time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("nop cache returned a hit")
	}
	c.Invalidate("k")
}
