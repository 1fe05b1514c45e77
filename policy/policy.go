// Package policy defines the contract between a store and its eviction
// policy. The store owns the key index and the recency list; a policy only
// decides which resident entry should go next.
package policy

import (
	"math"
	"time"

	"github.com/IvanBrykalov/cachecore/pheap"
	"github.com/IvanBrykalov/cachecore/recency"
)

// NoExpiry is the ExpiresAt value of entries without a TTL.
const NoExpiry = int64(math.MaxInt64)

// Deadline returns the ExpiresAt value for an entry written at now with
// the given TTL. A non-positive TTL, or one reaching past the int64 range,
// yields NoExpiry.
func Deadline(now int64, ttl time.Duration) int64 {
	if ttl <= 0 || (now > 0 && int64(ttl) > NoExpiry-now) {
		return NoExpiry
	}
	return now + int64(ttl)
}

// Tag is per-entry scratch space reserved for the policy, so a policy can
// find its own bookkeeping for an entry without a map lookup.
type Tag struct {
	Heap  pheap.Handle   // position in a policy heap, pheap.NoHandle if none
	List  recency.Handle // position in a policy-owned list, 0 if none
	Class uint8          // policy-defined segment (e.g. 2Q queue)
}

// Reset clears the tag to its "untracked" state.
func (t *Tag) Reset() { *t = Tag{Heap: pheap.NoHandle} }

// Node is the view of a resident entry a policy works with.
type Node[K comparable, V any] interface {
	Key() K
	// Value returns a pointer to the stored value. Only valid while the
	// store's lock is held.
	Value() *V
	// Cost of re-obtaining the value (default 1.0).
	Cost() float64
	// Size is the entry weight (default 1).
	Size() int64
	// ExpiresAt is an absolute UnixNano deadline, NoExpiry if none.
	ExpiresAt() int64
	// Hits is the number of reads served by this entry.
	Hits() uint64
	Tag() *Tag
}

// Hooks expose the store's recency list to a policy.
//
// Concurrency: hooks are only called under the store lock.
type Hooks[K comparable, V any] interface {
	// Oldest returns the least recently used resident node (nil if empty).
	Oldest() Node[K, V]
	// Len returns the number of resident nodes.
	Len() int
}

// Evictor is a store-local policy instance bound to the store's hooks.
// All methods are invoked under the store lock.
//
// Semantics:
//   - OnAdd is called after a new node entered the store.
//   - OnAccess is called on a read hit, OnUpdate after an overwrite
//     (value or metadata may have changed).
//   - OnRemove is called before a node leaves the store for any reason,
//     including when it was returned by Victim.
//   - Victim returns the node to evict next without removing it.
type Evictor[K comparable, V any] interface {
	OnAdd(Node[K, V])
	OnAccess(Node[K, V])
	OnUpdate(Node[K, V])
	OnRemove(Node[K, V])
	Victim() Node[K, V]
}

// Policy is a factory that creates store-local evictors.
type Policy[K comparable, V any] interface {
	New(Hooks[K, V]) Evictor[K, V]
}
