package services

import "sync"

// keyedMutex hands out one mutex per integer key. Used for the
// per-tournament advancement lock and the per-player rating locks.
// Mutexes are never evicted; the key space (active tournaments, players
// with in-flight matches) stays small.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[int]*sync.Mutex)}
}

// Lock acquires the mutex for the key and returns its unlock function.
func (k *keyedMutex) Lock(key int) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// LockPair acquires both keys in ascending order, so two concurrent
// updates touching the same players can never deadlock.
func (k *keyedMutex) LockPair(a, b int) func() {
	if a == b {
		return k.Lock(a)
	}
	if a > b {
		a, b = b, a
	}
	unlockA := k.Lock(a)
	unlockB := k.Lock(b)
	return func() {
		unlockB()
		unlockA()
	}
}
