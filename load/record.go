package load

import (
	"github.com/IvanBrykalov/cachecore/internal/singleflight"
	"github.com/IvanBrykalov/cachecore/policy"
	"github.com/IvanBrykalov/cachecore/recency"
)

// record is a map value. A pending record (call != nil) stands in for a
// value being loaded and is never tracked; a resolved record is immutable
// apart from the tracker fields.
type record[K comparable, V any] struct {
	key  K
	val  V
	call *singleflight.Call[V]

	cost float64
	size int64
	exp  int64

	// ---- guarded by tracker.mu ----
	rh   recency.Handle // 0 until admitted
	tag  policy.Tag
	hits uint64
	dead bool // left the cache; must not be admitted again
}

func pending[K comparable, V any](k K) *record[K, V] {
	return &record[K, V]{key: k, call: singleflight.NewCall[V]()}
}

func (r *record[K, V]) pending() bool { return r.call != nil }

func (r *record[K, V]) Key() K           { return r.key }
func (r *record[K, V]) Value() *V        { return &r.val }
func (r *record[K, V]) Cost() float64    { return r.cost }
func (r *record[K, V]) Size() int64      { return r.size }
func (r *record[K, V]) ExpiresAt() int64 { return r.exp }
func (r *record[K, V]) Hits() uint64     { return r.hits }
func (r *record[K, V]) Tag() *policy.Tag { return &r.tag }
