// Package writelock serializes writers that share a resource key within one
// process. Writers on different keys never wait for each other.
package writelock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Keyed is a set of mutexes created on demand per key. Entries are dropped
// once no goroutine holds or waits for them. The zero value is ready to use.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Keyed {
	return &Keyed{entries: map[string]*entry{}}
}

// Lock blocks until the caller is the only holder of key and returns the
// release function. Release must be called exactly once.
func (k *Keyed) Lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = map[string]*entry{}
	}
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.entries, key)
			}
			k.mu.Unlock()
		})
	}
}

// Do runs fn while holding key. The lock is released however fn returns,
// including by panic.
func (k *Keyed) Do(key string, fn func() error) error {
	unlock := k.Lock(key)
	defer unlock()

	return fn()
}

// Len reports how many keys are currently held or awaited.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
