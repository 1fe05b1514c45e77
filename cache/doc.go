// Package cache provides the core bounded store of cachecore: a generic
// key/value table that loads missing values on demand, bounds its own size
// and evicts entries under a pluggable policy.
//
// Design
//
//   - Concurrency: one mutex guards a Store. Loaders and eviction
//     listeners always run with the mutex released, so a slow load does not
//     stall other keys. For deduplicated concurrent loading see package
//     load.
//
//   - Storage: a map[K]*node for lookups plus an array-backed recency list
//     (package recency) ordering entries from least to most recently used.
//     Touching and evicting are O(1) and allocate nothing.
//
//   - Policies: victims are chosen by a policy.Evictor. LRU is the default
//     and reads the recency list directly; heap-backed policies (lfu, gds,
//     ttl) keep an indexed heap (package pheap) whose handle lives in the
//     entry's policy.Tag. 2Q is provided for scan resistance.
//
//   - Metadata: Options.Metadata assigns each entry a cost, size and TTL
//     (defaults 1.0, 1 and Options.DefaultTTL). Capacity bounds the entry
//     count, MaxSize optionally bounds the summed sizes. Expired entries
//     are dropped lazily on Get.
//
//   - Callbacks: Options.OnEvict(entry, reason) runs after the store state
//     is committed, oldest victim first. Remove and Clear are not
//     evictions.
//
// Basic usage
//
//	s, err := cache.New[string, []byte](cache.Options[string, []byte]{Capacity: 10_000})
//	if err != nil {
//	    return err
//	}
//	s.Put("a", []byte("1"))
//	v, ok, err := s.Get(ctx, "a")
//
// With a Loader
//
//	s, _ := cache.New[string, string](cache.Options[string, string]{
//	    Capacity: 1024,
//	    Loader: func(ctx context.Context, k string) (string, error) {
//	        return db.Lookup(ctx, k)
//	    },
//	})
//	v, ok, err := s.Get(ctx, "key") // loads on miss
//
// Cost-aware eviction
//
//	s, _ := cache.New[string, []byte](cache.Options[string, []byte]{
//	    Capacity: 50_000,
//	    Policy:   gds.New[string, []byte](50_000),
//	    Metadata: func(_ string, v []byte) cache.Meta {
//	        return cache.Meta{Cost: 5, Size: int64(len(v))}
//	    },
//	})
package cache
