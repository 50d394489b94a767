package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func newTestWindow(limit int, window time.Duration) (*SlidingWindow, *time.Time) {
	now := time.Unix(1_700_000_000, 0)
	s := NewSlidingWindow(limit, window)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestSlidingWindow_AdmitsUpToLimit(t *testing.T) {
	s, _ := newTestWindow(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !s.Allow("tournament:1") {
			t.Fatalf("request %d rejected, want admitted", i+1)
		}
	}
	if s.Allow("tournament:1") {
		t.Error("request over limit was admitted")
	}
}

func TestSlidingWindow_KeysAreIndependent(t *testing.T) {
	s, _ := newTestWindow(1, time.Minute)

	if !s.Allow("tournament:1") {
		t.Fatal("first key rejected")
	}
	if !s.Allow("tournament:2") {
		t.Error("second key rejected; windows must be per key")
	}
}

func TestSlidingWindow_WindowSlides(t *testing.T) {
	s, now := newTestWindow(2, time.Minute)

	if !s.Allow("t") || !s.Allow("t") {
		t.Fatal("initial requests rejected")
	}
	if s.Allow("t") {
		t.Fatal("third request admitted inside window")
	}

	*now = now.Add(61 * time.Second)
	if !s.Allow("t") {
		t.Error("request rejected after window slid past earlier entries")
	}
}

func TestSlidingWindow_RejectedRequestNotRecorded(t *testing.T) {
	s, now := newTestWindow(1, time.Minute)

	s.Allow("t")
	for i := 0; i < 5; i++ {
		s.Allow("t") // rejected, must not extend the window
	}

	*now = now.Add(61 * time.Second)
	if !s.Allow("t") {
		t.Error("rejected requests extended the window")
	}
}

func TestSlidingWindow_Reset(t *testing.T) {
	s, _ := newTestWindow(1, time.Minute)

	s.Allow("t")
	s.Reset("t")
	if !s.Allow("t") {
		t.Error("request rejected after reset")
	}
}

func TestSlidingWindow_Concurrent(t *testing.T) {
	s := NewSlidingWindow(50, time.Minute)

	var wg sync.WaitGroup
	admitted := make(chan bool, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			admitted <- s.Allow("t")
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for ok := range admitted {
		if ok {
			count++
		}
	}
	if count != 50 {
		t.Errorf("admitted %d concurrent requests, want exactly 50", count)
	}
}
