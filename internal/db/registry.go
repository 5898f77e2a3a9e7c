package db

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Registry is the process-wide mapping from opaque handles to live
// pools. The mutex guards only the map: pools are constructed before
// Insert and closed after Remove, so no I/O ever runs inside the
// critical section and a plain mutex suffices.
type Registry struct {
	mu    sync.Mutex
	pools map[string]*Pool
	seq   atomic.Uint64
}

func NewRegistry() *Registry {
	return &Registry{pools: make(map[string]*Pool)}
}

// NewHandle mints a fresh handle. The millisecond prefix keeps handles
// roughly ordered in time; the counter keeps two handles minted on the
// same tick distinct. Handles are never reused.
func (r *Registry) NewHandle() string {
	return fmt.Sprintf("conn_%d_%d", time.Now().UnixMilli(), r.seq.Add(1))
}

// Insert adds a pool under handle. Handles come from NewHandle, so a
// collision can only be a programming error; it must never strand a
// live pool by overwriting it.
func (r *Registry) Insert(handle string, pool *Pool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pools[handle]; ok {
		panic("db: duplicate handle " + handle)
	}
	r.pools[handle] = pool
}

// Lookup returns the pool for handle. The reference stays usable even
// if another caller removes the handle, because close drains existing
// borrows.
func (r *Registry) Lookup(handle string) (*Pool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pools[handle]
	return p, ok
}

// Remove deletes the handle and returns the pool it mapped to, if
// any, so the caller can close it outside the lock.
func (r *Registry) Remove(handle string) (*Pool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pools[handle]
	if ok {
		delete(r.pools, handle)
	}
	return p, ok
}

// Drain empties the registry and returns every pool that was still
// registered, in unspecified order, for process teardown.
func (r *Registry) Drain() []*Pool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Pool, 0, len(r.pools))
	for h, p := range r.pools {
		out = append(out, p)
		delete(r.pools, h)
	}
	return out
}
