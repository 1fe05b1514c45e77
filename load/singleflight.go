package load

import (
	"context"
	"fmt"

	"github.com/IvanBrykalov/cachecore/cache"
)

// SingleFlight is a loading cache that runs at most one loader per key at
// a time. Concurrent misses wait for the leader's result, and all of them
// observe the same value or the same error.
type SingleFlight[K comparable, V any] struct {
	*base[K, V]
}

// NewSingleFlight returns a SingleFlight cache. Capacity and Loader are
// required.
func NewSingleFlight[K comparable, V any](opt Options[K, V]) (*SingleFlight[K, V], error) {
	b, err := newBase(opt, "singleflight")
	if err != nil {
		return nil, err
	}
	return &SingleFlight[K, V]{base: b}, nil
}

// Get returns the value for k. On a miss the first caller loads with a
// context detached from its own cancellation, so a departing caller never
// fails the others; waiters stop waiting when their ctx is done or after
// Options.WaitTimeout (ErrTimeout). A failed load is not cached.
func (c *SingleFlight[K, V]) Get(ctx context.Context, k K) (V, error) {
	if !cache.ValidKey(k) {
		return invalidKey[V]()
	}
	for {
		r, ok := c.m.Load(k)
		if !ok {
			tok := pending[K, V](k)
			cur, loaded := c.m.LoadOrStore(k, tok)
			if !loaded {
				c.miss()
				return c.lead(ctx, k, tok)
			}
			r = cur
		}
		if r.pending() {
			c.miss()
			return r.call.Wait(ctx, c.opt.WaitTimeout)
		}
		if c.expired(r) {
			c.t.expire(r)
			continue
		}
		c.hit(r)
		return r.val, nil
	}
}

// lead runs the loader for tok and publishes the outcome. Unless the
// resolved record replaced tok, tok leaves the map on the way out, so a
// panic in the loader or in Options.Metadata never strands it. Waiters
// see a LoadError for such a panic and it re-panics here.
func (c *SingleFlight[K, V]) lead(ctx context.Context, k K, tok *record[K, V]) (V, error) {
	published, stored := false, false
	defer func() {
		if stored {
			return
		}
		p := recover()
		if !published {
			var zero V
			tok.call.Resolve(zero, &cache.LoadError{Key: k, Err: fmt.Errorf("panic: %v", p)})
		}
		c.m.CompareAndDelete(k, tok)
		if p != nil {
			panic(p)
		}
	}()

	v, err := c.load(context.WithoutCancel(ctx), k)
	if err != nil {
		tok.call.Resolve(v, err)
		published = true
		return v, err
	}

	r := c.resolved(k, v)
	tok.call.Resolve(v, nil)
	published = true
	if c.m.CompareAndSwap(k, tok, r) {
		c.t.admit(r)
	}
	stored = true
	return v, nil
}
