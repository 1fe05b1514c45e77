// Package policytest provides test doubles for exercising policies
// without a store.
package policytest

import (
	"github.com/IvanBrykalov/cachecore/policy"
	"github.com/IvanBrykalov/cachecore/recency"
)

// Node is a plain policy.Node with settable metadata.
type Node[K comparable, V any] struct {
	K    K
	V    V
	C    float64
	S    int64
	Exp  int64
	Hit  uint64
	tag  policy.Tag
	init bool
}

// NewNode returns a node with default cost 1, size 1 and no expiry.
func NewNode[K comparable, V any](k K, v V) *Node[K, V] {
	n := &Node[K, V]{K: k, V: v, C: 1, S: 1, Exp: policy.NoExpiry}
	n.tag.Reset()
	n.init = true
	return n
}

func (n *Node[K, V]) Key() K           { return n.K }
func (n *Node[K, V]) Value() *V        { return &n.V }
func (n *Node[K, V]) Cost() float64    { return n.C }
func (n *Node[K, V]) Size() int64      { return n.S }
func (n *Node[K, V]) ExpiresAt() int64 { return n.Exp }
func (n *Node[K, V]) Hits() uint64     { return n.Hit }

// Tag returns the policy scratch space, resetting it on first use.
func (n *Node[K, V]) Tag() *policy.Tag {
	if !n.init {
		n.tag.Reset()
		n.init = true
	}
	return &n.tag
}

// Hooks models the store's recency list with a real recency.List.
type Hooks[K comparable, V any] struct {
	l       recency.List[policy.Node[K, V]]
	handles map[policy.Node[K, V]]recency.Handle
}

// NewHooks returns empty hooks.
func NewHooks[K comparable, V any]() *Hooks[K, V] {
	return &Hooks[K, V]{handles: map[policy.Node[K, V]]recency.Handle{}}
}

// Add appends n as most recently used.
func (h *Hooks[K, V]) Add(n policy.Node[K, V]) { h.handles[n] = h.l.PushBack(n) }

// Touch marks n most recently used.
func (h *Hooks[K, V]) Touch(n policy.Node[K, V]) { h.l.Touch(h.handles[n]) }

// Drop removes n.
func (h *Hooks[K, V]) Drop(n policy.Node[K, V]) {
	h.l.Remove(h.handles[n])
	delete(h.handles, n)
}

func (h *Hooks[K, V]) Oldest() policy.Node[K, V] {
	n, _ := h.l.PeekFront()
	return n
}

func (h *Hooks[K, V]) Len() int { return h.l.Len() }
