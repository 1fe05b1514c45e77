package cache

import (
	"time"

	"github.com/IvanBrykalov/cachecore/policy"
	"github.com/IvanBrykalov/cachecore/recency"
)

// node is a resident entry. It is linked into the store's recency list
// (rh) and carries the scratch Tag its policy uses (e.g. a heap handle).
// Everything but key is guarded by the store lock.
type node[K comparable, V any] struct {
	key K
	val V

	cost float64
	size int64
	// Absolute expiration deadline in UnixNano; policy.NoExpiry if none.
	exp int64

	created int64
	access  int64
	hits    uint64

	rh  recency.Handle
	tag policy.Tag
}

func (n *node[K, V]) Key() K           { return n.key }
func (n *node[K, V]) Value() *V        { return &n.val }
func (n *node[K, V]) Cost() float64    { return n.cost }
func (n *node[K, V]) Size() int64      { return n.size }
func (n *node[K, V]) ExpiresAt() int64 { return n.exp }
func (n *node[K, V]) Hits() uint64     { return n.hits }
func (n *node[K, V]) Tag() *policy.Tag { return &n.tag }

// entry copies n into its exported form.
func (n *node[K, V]) entry() Entry[K, V] {
	e := Entry[K, V]{
		Key:        n.key,
		Value:      n.val,
		Cost:       n.cost,
		Size:       n.size,
		Created:    time.Unix(0, n.created),
		LastAccess: time.Unix(0, n.access),
		Hits:       n.hits,
	}
	if n.exp != policy.NoExpiry {
		e.Expires = time.Unix(0, n.exp)
	}
	return e
}

// Entry is a snapshot of a stored entry, handed to eviction listeners and
// returned by EvictNext.
type Entry[K comparable, V any] struct {
	Key        K
	Value      V
	Cost       float64
	Size       int64
	Created    time.Time
	LastAccess time.Time
	Expires    time.Time // zero if the entry never expires
	Hits       uint64
}
