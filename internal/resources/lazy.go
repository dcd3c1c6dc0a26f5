// Package resources constructs and memoizes the long-lived external handles
// (database pool, queue publisher). Each handle is built at most once across
// concurrent first users; a failed construction is not cached, so the next
// acquisition retries and the service recovers once the dependency is
// reachable again.
package resources

import (
	"sync"
	"sync/atomic"
)

// handle is a double-checked lazy container. The fast path is a lock-free
// atomic load; on miss the mutex is taken and existence re-checked, because
// another caller may have finished building while this one waited.
type handle[T any] struct {
	mu sync.Mutex
	v  atomic.Pointer[T]
}

func (h *handle[T]) get(build func() (*T, error)) (*T, error) {
	if v := h.v.Load(); v != nil {
		return v, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if v := h.v.Load(); v != nil {
		return v, nil
	}

	v, err := build()
	if err != nil {
		// Leave the handle unset so the next caller retries.
		return nil, err
	}
	h.v.Store(v)
	return v, nil
}

// peek returns the handle if it was already built, without constructing.
func (h *handle[T]) peek() *T {
	return h.v.Load()
}
