package load

import (
	"context"

	"github.com/go-kit/log/level"

	"github.com/IvanBrykalov/cachecore/cache"
)

// Optimistic is a loading cache that never blocks on another goroutine's
// load. Every miss loads; the first value inserted wins and the others are
// passed to Options.Undo and counted in Stats().Discarded.
type Optimistic[K comparable, V any] struct {
	*base[K, V]
}

// NewOptimistic returns an Optimistic cache. Capacity and Loader are
// required.
func NewOptimistic[K comparable, V any](opt Options[K, V]) (*Optimistic[K, V], error) {
	b, err := newBase(opt, "optimistic")
	if err != nil {
		return nil, err
	}
	return &Optimistic[K, V]{base: b}, nil
}

// Get returns the value for k, loading it with ctx on a miss.
func (c *Optimistic[K, V]) Get(ctx context.Context, k K) (V, error) {
	if !cache.ValidKey(k) {
		return invalidKey[V]()
	}
	for {
		if r, ok := c.m.Load(k); ok {
			if c.expired(r) {
				c.t.expire(r)
				continue
			}
			c.hit(r)
			return r.val, nil
		}

		c.miss()
		v, err := c.load(ctx, k)
		if err != nil {
			return v, err
		}
		r := c.resolved(k, v)
		cur, loaded := c.m.LoadOrStore(k, r)
		if !loaded {
			c.t.admit(r)
			return v, nil
		}
		c.discard(k, v)
		return cur.val, nil
	}
}

// discard hands a losing value to Undo.
func (c *Optimistic[K, V]) discard(k K, v V) {
	c.ctr.Discard()
	c.opt.Metrics.Discard()
	if c.opt.Undo == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			level.Warn(c.logger).Log("msg", "undo panicked", "key", k, "panic", p)
		}
	}()
	c.opt.Undo(k, v)
}
