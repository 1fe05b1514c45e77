// Package twoq implements the 2Q eviction policy.
package twoq

import (
	"github.com/IvanBrykalov/cachecore/policy"
	"github.com/IvanBrykalov/cachecore/recency"
)

// Queue classes stored in policy.Tag.Class.
const (
	classNone uint8 = iota
	classIn         // A1in: first-time entries, FIFO
	classAm         // Am: re-referenced entries, LRU
)

// twoQ implements the 2Q eviction policy.
//
// Resident queues:
//   - A1in (younger queue) admits first-time entries in FIFO order
//   - Am   (mature queue) holds entries referenced again while resident,
//     or re-admitted while their key was still remembered as a ghost
//
// Ghost A1out: keys only (no values), tracks keys that recently left A1in
// to give them a second chance (bypass A1in on re-admission). The policy
// cannot tell an eviction from an explicit delete, so a key removed by the
// caller is remembered too and comes back straight into Am.
//
// Concurrency: all methods are called under the store lock.
type twoQ[K comparable, V any] struct {
	capIn    int // A1in share of the store
	capGhost int // A1out capacity

	in recency.List[policy.Node[K, V]]
	am recency.List[policy.Node[K, V]]

	ghost    recency.List[K]
	ghostIdx map[K]recency.Handle
}

// New constructs a 2Q policy factory.
// Common choices: capIn ≈ 25% of capacity; capGhost ≈ 50–100% of capacity.
func New[K comparable, V any](capIn, capGhost int) policy.Policy[K, V] {
	if capIn < 1 {
		capIn = 1
	}
	if capGhost < 1 {
		capGhost = 1
	}
	return twoQPolicy[K, V]{capIn: capIn, capGhost: capGhost}
}

type twoQPolicy[K comparable, V any] struct {
	capIn    int
	capGhost int
}

func (p twoQPolicy[K, V]) New(policy.Hooks[K, V]) policy.Evictor[K, V] {
	return &twoQ[K, V]{
		capIn:    p.capIn,
		capGhost: p.capGhost,
		ghostIdx: make(map[K]recency.Handle),
	}
}

// OnAdd admission rules:
//   - If the key is a ghost (A1out), admit directly to Am and forget the ghost.
//   - Otherwise admit into A1in.
func (q *twoQ[K, V]) OnAdd(n policy.Node[K, V]) {
	t := n.Tag()
	if gh, ok := q.ghostIdx[n.Key()]; ok {
		q.ghost.Remove(gh)
		delete(q.ghostIdx, n.Key())
		t.List, t.Class = q.am.PushBack(n), classAm
		return
	}
	t.List, t.Class = q.in.PushBack(n), classIn
}

// OnAccess promotes an A1in entry to Am, or refreshes it inside Am.
func (q *twoQ[K, V]) OnAccess(n policy.Node[K, V]) {
	t := n.Tag()
	switch t.Class {
	case classIn:
		q.in.Remove(t.List)
		t.List, t.Class = q.am.PushBack(n), classAm
	case classAm:
		q.am.Touch(t.List)
	}
}

// OnUpdate follows OnAccess semantics (updates count as recent use).
func (q *twoQ[K, V]) OnUpdate(n policy.Node[K, V]) { q.OnAccess(n) }

// OnRemove drops n from its queue. Nodes leaving A1in are remembered as
// ghosts whether they were evicted or deleted; removals from Am are not.
func (q *twoQ[K, V]) OnRemove(n policy.Node[K, V]) {
	t := n.Tag()
	switch t.Class {
	case classIn:
		q.in.Remove(t.List)
		q.remember(n.Key())
	case classAm:
		q.am.Remove(t.List)
	}
	t.List, t.Class = 0, classNone
}

// Victim takes from A1in while it holds more than its share (or Am is
// empty), otherwise the LRU of Am.
func (q *twoQ[K, V]) Victim() policy.Node[K, V] {
	if q.in.Len() > q.capIn || q.am.Len() == 0 {
		n, _ := q.in.PeekFront()
		return n
	}
	n, _ := q.am.PeekFront()
	return n
}

// remember inserts/moves k to the MRU end of the ghost list and enforces
// capGhost by dropping the oldest ghosts.
func (q *twoQ[K, V]) remember(k K) {
	if old, ok := q.ghostIdx[k]; ok {
		q.ghost.Remove(old)
	}
	q.ghostIdx[k] = q.ghost.PushBack(k)
	for q.ghost.Len() > q.capGhost {
		kk, ok := q.ghost.RemoveFront()
		if !ok {
			break
		}
		delete(q.ghostIdx, kk)
	}
}
