// Package ttl implements an eviction policy that removes the entry closest
// to expiry first. Entries without a TTL sort last and are evicted among
// themselves in no particular order.
package ttl

import (
	"fmt"

	"github.com/IvanBrykalov/cachecore/pheap"
	"github.com/IvanBrykalov/cachecore/policy"
)

type ttl[K comparable, V any] struct {
	h *pheap.Heap[policy.Node[K, V], int64]
}

type ttlPolicy[K comparable, V any] struct{ hint int }

// New returns a Policy factory for expiry-ordered evictors.
func New[K comparable, V any](hint int) policy.Policy[K, V] { return ttlPolicy[K, V]{hint: hint} }

func (p ttlPolicy[K, V]) New(policy.Hooks[K, V]) policy.Evictor[K, V] {
	return &ttl[K, V]{h: pheap.New[policy.Node[K, V], int64](p.hint)}
}

func (p *ttl[K, V]) OnAdd(n policy.Node[K, V]) {
	n.Tag().Heap = p.h.Insert(n, n.ExpiresAt())
}

// OnAccess is a no-op: reads do not move deadlines.
func (p *ttl[K, V]) OnAccess(policy.Node[K, V]) {}

// OnUpdate moves the entry to its new deadline.
func (p *ttl[K, V]) OnUpdate(n policy.Node[K, V]) {
	id := n.Tag().Heap
	if id == pheap.NoHandle {
		return
	}
	if _, err := p.h.ChangePriority(id, n.ExpiresAt()); err != nil {
		panic(fmt.Sprintf("ttl: %v", err))
	}
}

func (p *ttl[K, V]) OnRemove(n policy.Node[K, V]) {
	t := n.Tag()
	if t.Heap == pheap.NoHandle {
		return
	}
	if _, err := p.h.Remove(t.Heap); err != nil {
		panic(fmt.Sprintf("ttl: %v", err))
	}
	t.Heap = pheap.NoHandle
}

// Victim returns the entry with the earliest deadline.
func (p *ttl[K, V]) Victim() policy.Node[K, V] {
	n, _ := p.h.Peek()
	return n
}
