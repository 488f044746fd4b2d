package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Memo is a process-wide memoization table: a mapping from input-identity key
// to computed value, populated lazily on first access. The dataset is static,
// so there is no eviction and no invalidation short of a restart. Concurrent
// first accesses for the same key collapse into a single computation.
type Memo[V any] struct {
	group  singleflight.Group
	mu     sync.RWMutex
	values map[string]V
}

func NewMemo[V any]() *Memo[V] {
	return &Memo[V]{values: make(map[string]V)}
}

// Do returns the cached value for key, computing it with fn on first access.
// A failed computation is not cached, so a later call may retry.
func (m *Memo[V]) Do(key string, fn func() (V, error)) (V, error) {
	m.mu.RLock()
	v, ok := m.values[key]
	m.mu.RUnlock()
	if ok {
		return v, nil
	}

	result, err, _ := m.group.Do(key, func() (any, error) {
		m.mu.RLock()
		v, ok := m.values[key]
		m.mu.RUnlock()
		if ok {
			return v, nil
		}

		computed, err := fn()
		if err != nil {
			return computed, err
		}

		m.mu.Lock()
		m.values[key] = computed
		m.mu.Unlock()
		return computed, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return result.(V), nil
}

// Len reports how many keys have been computed, for stats endpoints.
func (m *Memo[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
