// Package concmap implements a sharded map safe for concurrent use, with
// the conditional updates (put-if-absent, replace, remove-if-equal) that
// lock-free cache front ends are built on.
package concmap

import (
	"sync"

	"github.com/IvanBrykalov/cachecore/internal/util"
)

// Map is a hash map split into power-of-two shards, each guarded by its
// own RWMutex. V must be comparable for the compare-and-* operations.
type Map[K comparable, V comparable] struct {
	shards []shard[K, V]
}

type shard[K comparable, V comparable] struct {
	mu sync.RWMutex
	m  map[K]V
	_  util.CacheLinePad
}

// New returns a map with n shards (n <= 0 picks a default from GOMAXPROCS)
// sized for roughly hint entries in total.
func New[K comparable, V comparable](n, hint int) *Map[K, V] {
	n = util.ShardCount(n)
	per := hint / n
	m := &Map[K, V]{shards: make([]shard[K, V], n)}
	for i := range m.shards {
		m.shards[i].m = make(map[K]V, per)
	}
	return m
}

func (m *Map[K, V]) shard(k K) *shard[K, V] {
	return &m.shards[util.ShardIndex(util.Hash(k), len(m.shards))]
}

// Load returns the value stored for k.
func (m *Map[K, V]) Load(k K) (V, bool) {
	s := m.shard(k)
	s.mu.RLock()
	v, ok := s.m[k]
	s.mu.RUnlock()
	return v, ok
}

// Store sets the value for k.
func (m *Map[K, V]) Store(k K, v V) {
	s := m.shard(k)
	s.mu.Lock()
	s.m[k] = v
	s.mu.Unlock()
}

// Swap stores v for k and returns the previous value, if any.
func (m *Map[K, V]) Swap(k K, v V) (prev V, loaded bool) {
	s := m.shard(k)
	s.mu.Lock()
	prev, loaded = s.m[k]
	s.m[k] = v
	s.mu.Unlock()
	return prev, loaded
}

// LoadOrStore returns the existing value for k if present. Otherwise it
// stores v and returns it. loaded reports whether the value was present.
func (m *Map[K, V]) LoadOrStore(k K, v V) (actual V, loaded bool) {
	s := m.shard(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.m[k]; ok {
		return cur, true
	}
	s.m[k] = v
	return v, false
}

// CompareAndSwap stores next for k only if the current value equals old.
func (m *Map[K, V]) CompareAndSwap(k K, old, next V) bool {
	s := m.shard(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.m[k]; !ok || cur != old {
		return false
	}
	s.m[k] = next
	return true
}

// CompareAndDelete deletes k only if its value equals old.
func (m *Map[K, V]) CompareAndDelete(k K, old V) bool {
	s := m.shard(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.m[k]; !ok || cur != old {
		return false
	}
	delete(s.m, k)
	return true
}

// Delete removes k and returns the previous value.
func (m *Map[K, V]) Delete(k K) (V, bool) {
	s := m.shard(k)
	s.mu.Lock()
	v, ok := s.m[k]
	delete(s.m, k)
	s.mu.Unlock()
	return v, ok
}

// Len sums the shard sizes. Concurrent writers make the result approximate.
func (m *Map[K, V]) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		n += len(s.m)
		s.mu.RUnlock()
	}
	return n
}

// Range calls fn for each entry until fn returns false. Each shard is
// copied under its read lock first, so fn may call back into the map.
func (m *Map[K, V]) Range(fn func(K, V) bool) {
	type kv struct {
		k K
		v V
	}
	var buf []kv
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		buf = buf[:0]
		for k, v := range s.m {
			buf = append(buf, kv{k, v})
		}
		s.mu.RUnlock()
		for _, e := range buf {
			if !fn(e.k, e.v) {
				return
			}
		}
	}
}

// Clear removes every entry.
func (m *Map[K, V]) Clear() {
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		clear(s.m)
		s.mu.Unlock()
	}
}
