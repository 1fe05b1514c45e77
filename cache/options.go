package cache

import (
	"context"
	"time"

	"github.com/go-kit/log"

	"github.com/IvanBrykalov/cachecore/policy"
)

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictCapacity: removed to make room for a new key at Capacity.
	EvictCapacity EvictReason = iota
	// EvictSize: removed to bring the total entry size under MaxSize.
	EvictSize
	// EvictTTL: expired (lazy eviction on access).
	EvictTTL
	// EvictTrim: removed by TrimToSize or a shrinking SetCapacity.
	EvictTrim
	// EvictPolicy: removed on request through EvictNext.
	EvictPolicy
)

func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictSize:
		return "size"
	case EvictTTL:
		return "ttl"
	case EvictTrim:
		return "trim"
	case EvictPolicy:
		return "policy"
	default:
		return "unknown"
	}
}

// Defaults applied to unset Meta fields.
const (
	DefaultCost = 1.0
	DefaultSize = int64(1)
)

// Meta is the per-entry metadata eviction and statistics read.
// Zero fields mean "unset": Cost → DefaultCost, Size → DefaultSize,
// TTL → Options.DefaultTTL. A negative TTL disables expiry.
type Meta struct {
	Cost float64
	Size int64
	TTL  time.Duration
}

// Metrics exposes store-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int, size int64)
	// ObserveLoad reports one loader call; err is nil on success.
	ObserveLoad(d time.Duration, err error)
	// Discard reports a loaded value dropped after losing an insertion race.
	Discard()
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// LoaderFunc fetches the value for k on a miss. Returning ErrNoValue
// signals that k has no value, which is not a failure.
type LoaderFunc[K comparable, V any] func(ctx context.Context, k K) (V, error)

// Options configures a Store. Zero values are safe; defaults are applied
// in New():
//   - nil Policy  => LRU
//   - nil Metrics => NoopMetrics
//   - nil Logger  => no logging
type Options[K comparable, V any] struct {
	// Capacity is the entry count limit. Must be > 0.
	Capacity int

	// MaxSize bounds the sum of entry sizes (Meta.Size); 0 disables it.
	MaxSize int64

	// Policy chooses eviction victims; nil => LRU.
	Policy policy.Policy[K, V]

	// DefaultTTL applies when an entry's Meta.TTL is unset (0 = no TTL).
	DefaultTTL time.Duration

	// Metadata derives an entry's Meta from its key and value at insertion.
	// nil => every entry gets the defaults.
	Metadata func(k K, v V) Meta

	// Loader fetches a value on Get miss. nil => misses return absent.
	Loader LoaderFunc[K, V]

	// Fallback is consulted when Loader returns ErrNoValue. Its result is
	// handed to the caller but not cached.
	Fallback func(ctx context.Context, k K) (V, bool)

	// OnEvict is called for every eviction (never for Remove or Clear),
	// after the store lock is released, oldest victim first.
	// A panicking listener is recovered and logged.
	OnEvict func(e Entry[K, V], reason EvictReason)

	Metrics Metrics
	Logger  log.Logger

	// Clock allows overriding time source (tests). Nil => time.Now().
	Clock Clock
}
