// Package keymutex serializes check-then-act sequences per logical key.
//
// The uniqueness invariants in the domain services (one cart item per
// listing, one institution per user, one open application per user) are
// check-then-act: two concurrent requests can both pass the existence check
// and both write. Locking on the same identity the services use for cache
// invalidation closes that window within one process. Across processes the
// storage-level unique indexes remain the source of truth.
package keymutex

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// Mutex provides a mutex per key. Keys are never released; the expected
// cardinality (one lock per active user) is small enough not to matter.
type Mutex struct {
	locks *xsync.MapOf[string, *sync.Mutex]
}

// New returns an empty per-key mutex set.
func New() *Mutex {
	return &Mutex{locks: xsync.NewMapOf[string, *sync.Mutex]()}
}

// Lock acquires the mutex for key and returns its unlock function.
//
//	defer locks.Lock(cache.CartKey(userID))()
func (m *Mutex) Lock(key string) func() {
	mu, _ := m.locks.LoadOrCompute(key, func() *sync.Mutex {
		return &sync.Mutex{}
	})
	mu.Lock()
	return mu.Unlock
}
