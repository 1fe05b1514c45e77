// Package load provides loading caches that stay correct when many
// goroutines miss on the same key at once.
//
// Two strategies share one storage layout, a sharded concmap.Map of
// records plus a bounded tracker (recency list, eviction policy and
// capacity) behind its own mutex. Neither lock is held while a loader
// runs.
//
//   - SingleFlight: the first goroutine to miss installs a pending record
//     and loads; every other goroutine waits for its result, so a key is
//     loaded at most once at a time.
//   - Optimistic: every goroutine that misses loads on its own and races
//     to insert. Losers hand their value to Options.Undo and adopt the
//     winner's. This suits cheap loaders where waiting costs more than
//     duplicated work.
package load

import (
	"context"
	"time"

	"github.com/go-kit/log"

	"github.com/IvanBrykalov/cachecore/cache"
	"github.com/IvanBrykalov/cachecore/internal/singleflight"
	"github.com/IvanBrykalov/cachecore/policy"
)

// ErrTimeout is returned when a SingleFlight waiter gives up after
// Options.WaitTimeout.
var ErrTimeout = singleflight.ErrTimeout

// Cache is the API shared by the loading strategies.
type Cache[K comparable, V any] interface {
	// Get returns the value for k, loading it on a miss. A loader
	// returning cache.ErrNoValue yields cache.ErrNotFound; other loader
	// failures are returned as *cache.LoadError.
	Get(ctx context.Context, k K) (V, error)
	// Peek returns a resident value without side effects.
	Peek(k K) (V, bool)
	// Put stores k→v, replacing any resident or in-flight value.
	Put(k K, v V) error
	// Remove deletes k. It is not an eviction.
	Remove(k K) (V, bool)
	Len() int
	Capacity() int
	Stats() cache.Stats
}

// Options configures a loading cache. Defaults are applied in the
// constructors:
//   - nil Policy  => LRU
//   - nil Metrics => cache.NoopMetrics
//   - nil Logger  => no logging
type Options[K comparable, V any] struct {
	// Capacity is the entry count limit. Must be > 0.
	Capacity int

	// Shards is the number of map shards (0 = auto).
	Shards int

	Policy policy.Policy[K, V]

	// Loader is required.
	Loader cache.LoaderFunc[K, V]

	// Metadata derives cost, size and TTL for a loaded or stored value.
	// MaxSize is not enforced here; Size only feeds the policy.
	Metadata func(k K, v V) cache.Meta

	// DefaultTTL applies when Meta.TTL is unset (0 = no TTL).
	DefaultTTL time.Duration

	// Undo releases a value an Optimistic loser loaded but did not keep.
	// Panics are recovered and logged.
	Undo func(k K, v V)

	// WaitTimeout bounds how long a SingleFlight waiter blocks for the
	// leader (0 = until ctx is done).
	WaitTimeout time.Duration

	// OnEvict is called for capacity and TTL evictions after the
	// bookkeeping is committed. Panics are recovered and logged.
	OnEvict func(k K, v V, reason cache.EvictReason)

	Metrics cache.Metrics
	Logger  log.Logger
	Clock   cache.Clock
}

var (
	_ Cache[string, int] = (*SingleFlight[string, int])(nil)
	_ Cache[string, int] = (*Optimistic[string, int])(nil)
)
