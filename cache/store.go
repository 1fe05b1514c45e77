package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/IvanBrykalov/cachecore/internal/stats"
	"github.com/IvanBrykalov/cachecore/policy"
	"github.com/IvanBrykalov/cachecore/policy/lru"
	"github.com/IvanBrykalov/cachecore/recency"
)

// Stats is a read-only snapshot of store counters.
type Stats = stats.Snapshot

// Store is a bounded key/value store with a pluggable eviction policy.
// Every entry is indexed by key and linked into a recency list (head=LRU,
// tail=MRU); the policy may additionally track entries in its own
// structures. All methods are safe for concurrent use: one mutex guards
// the whole store, and loaders and listeners run outside of it.
type Store[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu   sync.Mutex
	m    map[K]*node[K, V]
	lru  recency.List[*node[K, V]]
	pol  policy.Evictor[K, V]
	cap  int
	size int64 // sum of entry sizes
	evq  []evicted[K, V]

	opt    Options[K, V]
	ctr    *stats.Counters
	logger log.Logger
}

type evicted[K comparable, V any] struct {
	e      Entry[K, V]
	reason EvictReason
}

// New constructs a Store with the provided Options.
// Defaults:
//   - nil Metrics  -> NoopMetrics
//   - nil Policy   -> LRU
//   - nil Logger   -> log.NewNopLogger()
func New[K comparable, V any](opt Options[K, V]) (*Store[K, V], error) {
	if opt.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d must be > 0", ErrInvalidArgument, opt.Capacity)
	}
	if opt.MaxSize < 0 {
		return nil, fmt.Errorf("%w: max size %d must be >= 0", ErrInvalidArgument, opt.MaxSize)
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Policy == nil {
		opt.Policy = lru.New[K, V]()
	}
	if opt.Logger == nil {
		opt.Logger = log.NewNopLogger()
	}

	s := &Store[K, V]{
		m:      make(map[K]*node[K, V], opt.Capacity),
		cap:    opt.Capacity,
		opt:    opt,
		ctr:    stats.New(),
		logger: log.With(opt.Logger, "component", "cache"),
	}
	s.lru = *recency.New[*node[K, V]](opt.Capacity)
	s.pol = opt.Policy.New(storeHooks[K, V]{s: s})
	return s, nil
}

// Get returns the value for k. A hit promotes the entry; a miss calls the
// Loader (without holding the store lock) and caches its result. ok is
// false when k has no value. Loader failures are returned as *LoadError.
func (s *Store[K, V]) Get(ctx context.Context, k K) (v V, ok bool, err error) {
	if !ValidKey(k) {
		return v, false, invalidKey("get")
	}

	s.mu.Lock()
	if n, found := s.m[k]; found {
		if !s.expiredLocked(n) {
			n.hits++
			n.access = s.now()
			s.lru.Touch(n.rh)
			s.pol.OnAccess(n)
			s.ctr.Hit()
			s.opt.Metrics.Hit()
			v = n.val
			s.mu.Unlock()
			return v, true, nil
		}
		s.evictLocked(n, EvictTTL)
	}
	s.ctr.Miss()
	s.opt.Metrics.Miss()
	s.unlock()

	if s.opt.Loader == nil {
		return v, false, nil
	}
	v, err = s.load(ctx, k)
	switch {
	case errors.Is(err, ErrNoValue):
		if s.opt.Fallback != nil {
			v, ok = s.opt.Fallback(ctx, k)
			return v, ok, nil
		}
		var zero V
		return zero, false, nil
	case err != nil:
		var zero V
		return zero, false, &LoadError{Key: k, Err: err}
	}

	s.mu.Lock()
	defer s.unlock()
	// Another writer may have stored k while we were loading; keep theirs.
	if n, found := s.m[k]; found && !s.expiredLocked(n) {
		return n.val, true, nil
	}
	s.insertLocked(k, v, s.metaOf(k, v))
	return v, true, nil
}

// Peek returns the value for k without touching recency, counters or
// expiry state.
func (s *Store[K, V]) Peek(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.m[k]
	if !ok || s.expiredLocked(n) {
		var zero V
		return zero, false
	}
	return n.val, true
}

// Put inserts or overwrites k→v, deriving metadata through
// Options.Metadata. It returns the previous value if k was resident.
func (s *Store[K, V]) Put(k K, v V) (prev V, replaced bool, err error) {
	if !ValidKey(k) {
		return prev, false, invalidKey("put")
	}
	return s.put(k, v, s.metaOf(k, v))
}

// PutWithMeta is Put with explicit metadata; unset fields take defaults.
func (s *Store[K, V]) PutWithMeta(k K, v V, m Meta) (prev V, replaced bool, err error) {
	if !ValidKey(k) {
		return prev, false, invalidKey("put")
	}
	return s.put(k, v, s.withDefaults(m))
}

func (s *Store[K, V]) put(k K, v V, m Meta) (V, bool, error) {
	s.mu.Lock()
	defer s.unlock()
	prev, replaced := s.insertLocked(k, v, m)
	return prev, replaced, nil
}

// Remove deletes k and returns its value. Removal is not an eviction: the
// listener is not called.
func (s *Store[K, V]) Remove(k K) (prev V, removed bool, err error) {
	if !ValidKey(k) {
		return prev, false, invalidKey("remove")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.m[k]
	if !ok {
		return prev, false, nil
	}
	s.unlinkLocked(n)
	s.opt.Metrics.Size(len(s.m), s.size)
	return n.val, true, nil
}

// TrimToSize evicts least recently used entries until at most n remain.
func (s *Store[K, V]) TrimToSize(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: trim size %d must be >= 0", ErrInvalidArgument, n)
	}
	s.mu.Lock()
	defer s.unlock()
	s.trimLocked(n)
	return nil
}

// EvictNext evicts the entry the policy would choose next and returns it.
func (s *Store[K, V]) EvictNext() (Entry[K, V], bool) {
	s.mu.Lock()
	defer s.unlock()
	v := s.pol.Victim()
	if v == nil {
		return Entry[K, V]{}, false
	}
	n := v.(*node[K, V])
	e := n.entry()
	s.evictLocked(n, EvictPolicy)
	s.opt.Metrics.Size(len(s.m), s.size)
	return e, true
}

// Clear drops every entry without notifying the listener. Counters are
// kept.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[K]*node[K, V], s.cap)
	s.lru.Clear()
	s.size = 0
	s.pol = s.opt.Policy.New(storeHooks[K, V]{s: s})
	s.opt.Metrics.Size(0, 0)
}

// Len returns the number of resident entries.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Capacity returns the entry count limit.
func (s *Store[K, V]) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cap
}

// SetCapacity changes the entry count limit, trimming if it shrinks.
func (s *Store[K, V]) SetCapacity(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: capacity %d must be > 0", ErrInvalidArgument, n)
	}
	s.mu.Lock()
	defer s.unlock()
	s.cap = n
	s.trimLocked(n)
	return nil
}

// Hits returns the number of Get calls served from memory.
func (s *Store[K, V]) Hits() uint64 { return s.ctr.Hits() }

// Misses returns the number of Get calls that were not.
func (s *Store[K, V]) Misses() uint64 { return s.ctr.Misses() }

// HitRatio returns hits/(hits+misses); ok is false before the first Get.
func (s *Store[K, V]) HitRatio() (float64, bool) { return s.Stats().HitRatio() }

// Stats returns a snapshot of the store counters.
func (s *Store[K, V]) Stats() Stats {
	st := s.ctr.Snapshot()
	s.mu.Lock()
	st.Size, st.Capacity = len(s.m), s.cap
	s.mu.Unlock()
	return st
}

// Keys returns the resident keys from least to most recently used.
func (s *Store[K, V]) Keys() []K {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]K, 0, len(s.m))
	s.lru.Each(func(n *node[K, V]) bool {
		keys = append(keys, n.key)
		return true
	})
	return keys
}

// -------------------- internals (mu held) --------------------

// insertLocked stores k→v. A new key at capacity first evicts policy
// victims; size limits are enforced after the insertion.
func (s *Store[K, V]) insertLocked(k K, v V, m Meta) (prev V, replaced bool) {
	now := s.now()
	if n, ok := s.m[k]; ok {
		prev = n.val
		s.size += m.Size - n.size
		n.val, n.cost, n.size = v, m.Cost, m.Size
		n.exp = policy.Deadline(now, m.TTL)
		n.access = now
		s.lru.Touch(n.rh)
		s.pol.OnUpdate(n)
		s.enforceSizeLocked()
		s.opt.Metrics.Size(len(s.m), s.size)
		return prev, true
	}

	for len(s.m) >= s.cap {
		victim := s.pol.Victim()
		if victim == nil {
			break
		}
		s.evictLocked(victim.(*node[K, V]), EvictCapacity)
	}

	n := &node[K, V]{
		key:     k,
		val:     v,
		cost:    m.Cost,
		size:    m.Size,
		exp:     policy.Deadline(now, m.TTL),
		created: now,
		access:  now,
	}
	n.tag.Reset()
	s.m[k] = n
	n.rh = s.lru.PushBack(n)
	s.size += n.size
	s.pol.OnAdd(n)
	s.enforceSizeLocked()
	s.opt.Metrics.Size(len(s.m), s.size)
	return prev, false
}

func (s *Store[K, V]) enforceSizeLocked() {
	if s.opt.MaxSize <= 0 {
		return
	}
	for s.size > s.opt.MaxSize {
		v := s.pol.Victim()
		if v == nil {
			return
		}
		s.evictLocked(v.(*node[K, V]), EvictSize)
	}
}

// trimLocked evicts len-n entries oldest first. When victims outnumber
// survivors it is cheaper to rebuild the key index from the survivors than
// to delete every victim from it.
func (s *Store[K, V]) trimLocked(n int) {
	victims := len(s.m) - n
	if victims <= 0 {
		return
	}
	if victims <= n {
		level.Debug(s.logger).Log("msg", "trim", "victims", victims, "path", "delete")
		for i := 0; i < victims; i++ {
			nd, _ := s.lru.PeekFront()
			s.evictLocked(nd, EvictTrim)
		}
		s.opt.Metrics.Size(len(s.m), s.size)
		return
	}

	level.Debug(s.logger).Log("msg", "trim", "victims", victims, "path", "rebuild")
	keep := make(map[K]*node[K, V], max(n, s.cap))
	for h, i := s.lru.Back(), 0; i < n; h, i = s.lru.Prev(h), i+1 {
		nd, _ := s.lru.Get(h)
		keep[nd.key] = nd
	}
	for i := 0; i < victims; i++ {
		nd, _ := s.lru.RemoveFront()
		s.pol.OnRemove(nd)
		s.size -= nd.size
		s.recordLocked(nd, EvictTrim)
	}
	s.m = keep
	s.opt.Metrics.Size(len(s.m), s.size)
}

// evictLocked removes n and queues the listener notification.
func (s *Store[K, V]) evictLocked(n *node[K, V], reason EvictReason) {
	s.unlinkLocked(n)
	s.recordLocked(n, reason)
}

func (s *Store[K, V]) recordLocked(n *node[K, V], reason EvictReason) {
	s.ctr.Evict(1)
	s.opt.Metrics.Evict(reason)
	if s.opt.OnEvict != nil {
		s.evq = append(s.evq, evicted[K, V]{e: n.entry(), reason: reason})
	}
}

func (s *Store[K, V]) unlinkLocked(n *node[K, V]) {
	s.pol.OnRemove(n)
	s.lru.Remove(n.rh)
	delete(s.m, n.key)
	s.size -= n.size
}

func (s *Store[K, V]) expiredLocked(n *node[K, V]) bool {
	return n.exp != policy.NoExpiry && s.now() > n.exp
}

// unlock releases mu, then delivers queued evictions.
func (s *Store[K, V]) unlock() {
	q := s.evq
	s.evq = nil
	s.mu.Unlock()
	for _, ev := range q {
		s.notify(ev)
	}
}

func (s *Store[K, V]) notify(ev evicted[K, V]) {
	defer func() {
		if r := recover(); r != nil {
			level.Warn(s.logger).Log("msg", "eviction listener panicked", "key", ev.e.Key, "reason", ev.reason, "panic", r)
		}
	}()
	s.opt.OnEvict(ev.e, ev.reason)
}

// -------------------- helpers --------------------

func (s *Store[K, V]) load(ctx context.Context, k K) (V, error) {
	start := time.Now()
	v, err := s.opt.Loader(ctx, k)
	d := time.Since(start)
	failure := err
	if errors.Is(err, ErrNoValue) {
		failure = nil
	}
	s.ctr.Load(d, failure)
	s.opt.Metrics.ObserveLoad(d, failure)
	if failure != nil {
		level.Debug(s.logger).Log("msg", "load failed", "key", k, "err", err)
	}
	return v, err
}

func (s *Store[K, V]) metaOf(k K, v V) Meta {
	if s.opt.Metadata == nil {
		return s.withDefaults(Meta{})
	}
	return s.withDefaults(s.opt.Metadata(k, v))
}

func (s *Store[K, V]) withDefaults(m Meta) Meta {
	if m.Cost == 0 {
		m.Cost = DefaultCost
	}
	if m.Size <= 0 {
		m.Size = DefaultSize
	}
	if m.TTL == 0 {
		m.TTL = s.opt.DefaultTTL
	}
	return m
}

// deadline converts a relative TTL into an absolute UnixNano deadline.
// A non-positive ttl means no expiration.
func (s *Store[K, V]) now() int64 {
	if s.opt.Clock != nil {
		return s.opt.Clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

// -------------------- policy hooks --------------------

// storeHooks adapts the store's recency list to policy.Hooks.
type storeHooks[K comparable, V any] struct{ s *Store[K, V] }

func (h storeHooks[K, V]) Oldest() policy.Node[K, V] {
	n, ok := h.s.lru.PeekFront()
	if !ok {
		return nil
	}
	return n
}

func (h storeHooks[K, V]) Len() int { return len(h.s.m) }
