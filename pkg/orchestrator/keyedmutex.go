package orchestrator

import "sync"

// KeyedMutex serializes work per key while leaving unrelated keys free to
// run concurrently — spec.md §5's "across webhook events on the same
// (model, record_id), the orchestrator must serialise handler invocations
// ... across different records, no ordering is guaranteed." One mutex per
// (model, record_id) pair, reference-counted so idle keys don't leak.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refCountedMutex
}

type refCountedMutex struct {
	mu       sync.Mutex
	refCount int
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*refCountedMutex)}
}

// Key builds the serialization key for one (model, record_id) pair.
func Key(model, recordID string) string {
	return model + ":" + recordID
}

// Lock blocks until key's mutex is held. Every Lock must be paired with
// exactly one Unlock for the same key.
func (k *KeyedMutex) Lock(key string) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &refCountedMutex{}
		k.locks[key] = entry
	}
	entry.refCount++
	k.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases key's mutex, removing its bookkeeping entry once no
// other caller is waiting on it.
func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		k.mu.Unlock()
		return
	}
	entry.refCount--
	if entry.refCount <= 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	entry.mu.Unlock()
}

// With runs fn while holding key's mutex, unlocking even if fn panics.
func (k *KeyedMutex) With(key string, fn func()) {
	k.Lock(key)
	defer k.Unlock(key)
	fn()
}
