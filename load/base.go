package load

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/IvanBrykalov/cachecore/cache"
	"github.com/IvanBrykalov/cachecore/concmap"
	"github.com/IvanBrykalov/cachecore/internal/stats"
	"github.com/IvanBrykalov/cachecore/policy"
	"github.com/IvanBrykalov/cachecore/policy/lru"
)

// base holds what both strategies share: storage, bookkeeping, counters
// and the non-loading half of the Cache API.
type base[K comparable, V any] struct {
	m      *concmap.Map[K, *record[K, V]]
	t      *tracker[K, V]
	opt    Options[K, V]
	ctr    *stats.Counters
	logger log.Logger
}

func newBase[K comparable, V any](opt Options[K, V], component string) (*base[K, V], error) {
	if opt.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d must be > 0", cache.ErrInvalidArgument, opt.Capacity)
	}
	if opt.Loader == nil {
		return nil, cache.ErrNoLoader
	}
	if opt.Policy == nil {
		opt.Policy = lru.New[K, V]()
	}
	if opt.Metrics == nil {
		opt.Metrics = cache.NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = log.NewNopLogger()
	}

	b := &base[K, V]{
		m:      concmap.New[K, *record[K, V]](opt.Shards, opt.Capacity),
		opt:    opt,
		ctr:    stats.New(),
		logger: log.With(opt.Logger, "component", component),
	}
	b.t = newTracker(opt.Capacity, opt.Policy, b.m)
	b.t.ctr = b.ctr
	b.t.metrics = opt.Metrics
	b.t.onEvict = opt.OnEvict
	b.t.logger = b.logger
	return b, nil
}

// Peek returns a resident value without touching recency or counters.
// Values still being loaded are not visible.
func (b *base[K, V]) Peek(k K) (V, bool) {
	r, ok := b.m.Load(k)
	if !ok || r.pending() || b.expired(r) {
		var zero V
		return zero, false
	}
	return r.val, true
}

// Put stores k→v. An in-flight load of k is superseded: its waiters still
// get the loaded value, but it is not cached.
func (b *base[K, V]) Put(k K, v V) error {
	if !cache.ValidKey(k) {
		return fmt.Errorf("%w: put: nil key", cache.ErrInvalidArgument)
	}
	r := b.resolved(k, v)
	if prev, ok := b.m.Swap(k, r); ok {
		b.t.drop(prev)
	}
	b.t.admit(r)
	return nil
}

// Remove deletes k and returns its resident value. Removing a key that is
// being loaded discards the load's result.
func (b *base[K, V]) Remove(k K) (V, bool) {
	var zero V
	if !cache.ValidKey(k) {
		return zero, false
	}
	r, ok := b.m.Delete(k)
	if !ok {
		return zero, false
	}
	b.t.drop(r)
	if r.pending() {
		return zero, false
	}
	return r.val, true
}

// Len returns the number of resident values.
func (b *base[K, V]) Len() int { return b.t.len() }

// Capacity returns the entry count limit.
func (b *base[K, V]) Capacity() int { return b.opt.Capacity }

// Stats returns a snapshot of the counters.
func (b *base[K, V]) Stats() cache.Stats {
	st := b.ctr.Snapshot()
	st.Size, st.Capacity = b.t.len(), b.opt.Capacity
	return st
}

func (b *base[K, V]) hit(r *record[K, V]) {
	b.t.touch(r)
	b.ctr.Hit()
	b.opt.Metrics.Hit()
}

func (b *base[K, V]) miss() {
	b.ctr.Miss()
	b.opt.Metrics.Miss()
}

// load runs the loader and maps its error to what Get returns.
func (b *base[K, V]) load(ctx context.Context, k K) (V, error) {
	start := time.Now()
	v, err := b.opt.Loader(ctx, k)
	d := time.Since(start)

	failure := err
	if errors.Is(err, cache.ErrNoValue) {
		failure = nil
	}
	b.ctr.Load(d, failure)
	b.opt.Metrics.ObserveLoad(d, failure)

	switch {
	case err == nil:
		return v, nil
	case failure == nil:
		var zero V
		return zero, fmt.Errorf("%w: %v", cache.ErrNotFound, k)
	default:
		level.Debug(b.logger).Log("msg", "load failed", "key", k, "err", err)
		var zero V
		return zero, &cache.LoadError{Key: k, Err: err}
	}
}

// resolved builds the record for a value about to be stored.
func (b *base[K, V]) resolved(k K, v V) *record[K, V] {
	m := cache.Meta{}
	if b.opt.Metadata != nil {
		m = b.opt.Metadata(k, v)
	}
	if m.Cost == 0 {
		m.Cost = cache.DefaultCost
	}
	if m.Size <= 0 {
		m.Size = cache.DefaultSize
	}
	if m.TTL == 0 {
		m.TTL = b.opt.DefaultTTL
	}
	return &record[K, V]{key: k, val: v, cost: m.Cost, size: m.Size, exp: policy.Deadline(b.now(), m.TTL)}
}

func (b *base[K, V]) expired(r *record[K, V]) bool {
	return r.exp != policy.NoExpiry && b.now() > r.exp
}

func (b *base[K, V]) now() int64 {
	if b.opt.Clock != nil {
		return b.opt.Clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

func invalidKey[V any]() (V, error) {
	var zero V
	return zero, fmt.Errorf("%w: get: nil key", cache.ErrInvalidArgument)
}
