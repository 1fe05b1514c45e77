// Package gds implements the GreedyDual-Size eviction policy: entries that
// are cheap to reload relative to their size go first, and an inflation
// value L ages entries that are not read again.
//
// Each entry carries H = L + cost/size. The victim is the entry with the
// smallest H; evicting it raises L to that H. A hit resets H to
// L + cost/size, so recently read entries outrank idle ones of equal cost.
package gds

import (
	"fmt"

	"github.com/IvanBrykalov/cachecore/pheap"
	"github.com/IvanBrykalov/cachecore/policy"
)

type gds[K comparable, V any] struct {
	h *pheap.Heap[policy.Node[K, V], float64]
	l float64 // inflation
}

type gdsPolicy[K comparable, V any] struct{ hint int }

// New returns a Policy factory for GreedyDual-Size evictors.
func New[K comparable, V any](hint int) policy.Policy[K, V] { return gdsPolicy[K, V]{hint: hint} }

func (p gdsPolicy[K, V]) New(policy.Hooks[K, V]) policy.Evictor[K, V] {
	return &gds[K, V]{h: pheap.New[policy.Node[K, V], float64](p.hint)}
}

func (p *gds[K, V]) credit(n policy.Node[K, V]) float64 {
	size := n.Size()
	if size <= 0 {
		size = 1
	}
	return p.l + n.Cost()/float64(size)
}

func (p *gds[K, V]) OnAdd(n policy.Node[K, V]) {
	n.Tag().Heap = p.h.Insert(n, p.credit(n))
}

func (p *gds[K, V]) OnAccess(n policy.Node[K, V]) { p.reset(n) }

// OnUpdate re-credits the entry since cost or size may have changed.
func (p *gds[K, V]) OnUpdate(n policy.Node[K, V]) { p.reset(n) }

func (p *gds[K, V]) reset(n policy.Node[K, V]) {
	id := n.Tag().Heap
	if id == pheap.NoHandle {
		return
	}
	if _, err := p.h.ChangePriority(id, p.credit(n)); err != nil {
		panic(fmt.Sprintf("gds: %v", err))
	}
}

// OnRemove drops the entry; if it was the heap minimum (the usual case for
// an eviction) L inflates to its credit.
func (p *gds[K, V]) OnRemove(n policy.Node[K, V]) {
	t := n.Tag()
	if t.Heap == pheap.NoHandle {
		return
	}
	h, err := p.h.Priority(t.Heap)
	if err != nil {
		panic(fmt.Sprintf("gds: %v", err))
	}
	if lo, ok := p.h.PeekPriority(); ok && h <= lo {
		p.l = h
	}
	if _, err := p.h.Remove(t.Heap); err != nil {
		panic(fmt.Sprintf("gds: %v", err))
	}
	t.Heap = pheap.NoHandle
}

func (p *gds[K, V]) Victim() policy.Node[K, V] {
	n, _ := p.h.Peek()
	return n
}

// Inflation returns the current L (exposed for tests and diagnostics).
func (p *gds[K, V]) Inflation() float64 { return p.l }
