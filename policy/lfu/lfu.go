// Package lfu implements a least-frequently-used eviction policy on top of
// an indexed min-heap keyed by hit count.
package lfu

import (
	"fmt"

	"github.com/IvanBrykalov/cachecore/pheap"
	"github.com/IvanBrykalov/cachecore/policy"
)

type lfu[K comparable, V any] struct {
	h *pheap.Heap[policy.Node[K, V], int64]
}

type lfuPolicy[K comparable, V any] struct{ hint int }

// New returns a Policy factory for LFU evictors. hint pre-sizes the heap.
func New[K comparable, V any](hint int) policy.Policy[K, V] { return lfuPolicy[K, V]{hint: hint} }

func (p lfuPolicy[K, V]) New(policy.Hooks[K, V]) policy.Evictor[K, V] {
	return &lfu[K, V]{h: pheap.New[policy.Node[K, V], int64](p.hint)}
}

// OnAdd starts the entry at its current hit count (zero for fresh entries).
func (p *lfu[K, V]) OnAdd(n policy.Node[K, V]) {
	n.Tag().Heap = p.h.Insert(n, int64(n.Hits()))
}

// OnAccess bumps the frequency by one.
func (p *lfu[K, V]) OnAccess(n policy.Node[K, V]) {
	if id := n.Tag().Heap; id != pheap.NoHandle {
		must(p.h.ChangePriorityByDelta(id, 1))
	}
}

// OnUpdate keeps the frequency: an overwrite is not a read.
func (p *lfu[K, V]) OnUpdate(policy.Node[K, V]) {}

func (p *lfu[K, V]) OnRemove(n policy.Node[K, V]) {
	t := n.Tag()
	if t.Heap == pheap.NoHandle {
		return
	}
	if _, err := p.h.Remove(t.Heap); err != nil {
		panic(fmt.Sprintf("lfu: %v", err))
	}
	t.Heap = pheap.NoHandle
}

// Victim returns the least frequently read entry.
func (p *lfu[K, V]) Victim() policy.Node[K, V] {
	n, _ := p.h.Peek()
	return n
}

// must panics on a heap error; a tagged handle that the heap rejects means
// the store and the policy disagree about residency.
func must(_ int64, err error) {
	if err != nil {
		panic(fmt.Sprintf("lfu: %v", err))
	}
}
