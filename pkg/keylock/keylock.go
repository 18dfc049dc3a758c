// Package keylock provides per-key mutual exclusion so that
// read-validate-write sequences against the same order id never
// interleave.
package keylock

import "sync"

type KeyLock struct {
	locks sync.Map
}

func New() *KeyLock {
	return &KeyLock{}
}

// Lock acquires the mutex for the given key, creating it on first use.
// Mutexes are retained for the process lifetime; the key space is order
// ids, which is bounded by working-set size.
func (k *KeyLock) Lock(key string) {
	mu, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
}

func (k *KeyLock) Unlock(key string) {
	mu, ok := k.locks.Load(key)
	if !ok {
		return
	}
	mu.(*sync.Mutex).Unlock()
}
