// Package singleflight provides the pending-call primitive behind
// deduplicated loading: one leader computes a value, any number of
// followers wait for the published result.
package singleflight

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned by Wait when the timeout elapses first.
var ErrTimeout = errors.New("singleflight: wait timed out")

// Call is an in-flight computation.
//
// Concurrency notes:
//   - Exactly one goroutine calls Resolve.
//   - Publishing (val, err) happens-before close(done), so reads after
//     <-done observe the final values.
//   - A follower giving up (ctx or timeout) unblocks only that follower;
//     it never cancels the leader.
type Call[V any] struct {
	done chan struct{} // closed when val/err are published
	val  V
	err  error
}

// NewCall returns an unresolved call.
func NewCall[V any]() *Call[V] {
	return &Call[V]{done: make(chan struct{})}
}

// Resolve publishes the result and wakes every waiter.
func (c *Call[V]) Resolve(v V, err error) {
	c.val, c.err = v, err
	close(c.done)
}

// Done is closed once the call is resolved.
func (c *Call[V]) Done() <-chan struct{} { return c.done }

// Wait blocks until the call is resolved, ctx is done or timeout elapses
// (timeout <= 0 waits without a limit).
func (c *Call[V]) Wait(ctx context.Context, timeout time.Duration) (V, error) {
	// Fast path: already resolved.
	select {
	case <-c.done:
		return c.val, c.err
	default:
	}

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	var zero V
	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-expired:
		return zero, ErrTimeout
	}
}
