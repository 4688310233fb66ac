package trading

import "sync"

// KeyedMutex serializes work per key. Holding mutations are locked by
// symbol and cash mutations by account id, so read-modify-write sequences
// like the weighted-average update never lose an update under concurrency.
//
// Locks are created on first use and never removed; the key space here
// (symbols plus account ids) is small and bounded.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex creates an empty lock arena.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns the matching unlock func.
func (k *KeyedMutex) Lock(key string) func() {
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
