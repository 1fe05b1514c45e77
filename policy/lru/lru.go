// Package lru implements the LRU eviction policy.
package lru

import "github.com/IvanBrykalov/cachecore/policy"

// lru picks the least recently used entry. The store already keeps its
// recency list current on every add and hit, so the policy only reads it.
type lru[K comparable, V any] struct {
	h policy.Hooks[K, V]
}

type lruPolicy[K comparable, V any] struct{}

// New returns a Policy factory that constructs LRU evictors.
func New[K comparable, V any]() policy.Policy[K, V] { return lruPolicy[K, V]{} }

// New implements policy.Policy by binding the store hooks.
func (lruPolicy[K, V]) New(h policy.Hooks[K, V]) policy.Evictor[K, V] {
	return &lru[K, V]{h: h}
}

func (p *lru[K, V]) OnAdd(policy.Node[K, V])    {}
func (p *lru[K, V]) OnAccess(policy.Node[K, V]) {}
func (p *lru[K, V]) OnUpdate(policy.Node[K, V]) {}
func (p *lru[K, V]) OnRemove(policy.Node[K, V]) {}

// Victim returns the oldest entry of the store's recency list.
func (p *lru[K, V]) Victim() policy.Node[K, V] { return p.h.Oldest() }
