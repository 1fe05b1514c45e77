package load

import (
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/IvanBrykalov/cachecore/cache"
	"github.com/IvanBrykalov/cachecore/concmap"
	"github.com/IvanBrykalov/cachecore/internal/stats"
	"github.com/IvanBrykalov/cachecore/policy"
	"github.com/IvanBrykalov/cachecore/recency"
)

// tracker bounds the number of resident records. It owns the recency list
// and the policy; the map is only touched to drop victims.
//
// Lock order: tracker.mu, then a map shard. Map operations never call
// back into the tracker.
type tracker[K comparable, V any] struct {
	mu   sync.Mutex
	lru  recency.List[*record[K, V]]
	pol  policy.Evictor[K, V]
	cap  int
	size int64
	evq  []*evictedRecord[K, V]

	m       *concmap.Map[K, *record[K, V]]
	ctr     *stats.Counters
	metrics cache.Metrics
	onEvict func(K, V, cache.EvictReason)
	logger  log.Logger
}

type evictedRecord[K comparable, V any] struct {
	r      *record[K, V]
	reason cache.EvictReason
}

func newTracker[K comparable, V any](capacity int, p policy.Policy[K, V], m *concmap.Map[K, *record[K, V]]) *tracker[K, V] {
	t := &tracker[K, V]{cap: capacity, m: m}
	t.lru = *recency.New[*record[K, V]](capacity)
	t.pol = p.New(trackerHooks[K, V]{t: t})
	return t
}

// admit starts tracking r, evicting policy victims first when full.
// A record that was already dropped is ignored.
func (t *tracker[K, V]) admit(r *record[K, V]) {
	t.mu.Lock()
	if r.dead || r.rh != 0 {
		t.mu.Unlock()
		return
	}
	for t.lru.Len() >= t.cap {
		v := t.pol.Victim()
		if v == nil {
			break
		}
		t.evictLocked(v.(*record[K, V]), cache.EvictCapacity)
	}
	r.tag.Reset()
	r.rh = t.lru.PushBack(r)
	t.size += r.size
	t.pol.OnAdd(r)
	t.metrics.Size(t.lru.Len(), t.size)
	t.unlock()
}

// touch records a read hit.
func (t *tracker[K, V]) touch(r *record[K, V]) {
	t.mu.Lock()
	if !r.dead && r.rh != 0 {
		r.hits++
		t.lru.Touch(r.rh)
		t.pol.OnAccess(r)
	}
	t.mu.Unlock()
}

// drop stops tracking r without notifying the listener.
func (t *tracker[K, V]) drop(r *record[K, V]) {
	t.mu.Lock()
	t.forgetLocked(r)
	t.metrics.Size(t.lru.Len(), t.size)
	t.mu.Unlock()
}

// expire evicts r for a TTL miss. The map entry is dropped even when r is
// not tracked, so a lookup never sees r again; the listener only hears
// about records that were resident.
func (t *tracker[K, V]) expire(r *record[K, V]) {
	t.mu.Lock()
	if r.dead || r.rh == 0 {
		r.dead = true
		t.m.CompareAndDelete(r.key, r)
		t.mu.Unlock()
		return
	}
	t.evictLocked(r, cache.EvictTTL)
	t.unlock()
}

func (t *tracker[K, V]) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lru.Len()
}

func (t *tracker[K, V]) evictLocked(r *record[K, V], reason cache.EvictReason) {
	t.forgetLocked(r)
	t.m.CompareAndDelete(r.key, r)
	t.ctr.Evict(1)
	t.metrics.Evict(reason)
	if t.onEvict != nil {
		t.evq = append(t.evq, &evictedRecord[K, V]{r: r, reason: reason})
	}
}

func (t *tracker[K, V]) forgetLocked(r *record[K, V]) {
	if r.dead {
		return
	}
	r.dead = true
	if r.rh == 0 {
		return
	}
	t.pol.OnRemove(r)
	t.lru.Remove(r.rh)
	t.size -= r.size
}

// unlock releases mu, then delivers queued evictions.
func (t *tracker[K, V]) unlock() {
	q := t.evq
	t.evq = nil
	if len(q) > 0 {
		t.metrics.Size(t.lru.Len(), t.size)
	}
	t.mu.Unlock()
	for _, ev := range q {
		t.notify(ev)
	}
}

func (t *tracker[K, V]) notify(ev *evictedRecord[K, V]) {
	defer func() {
		if p := recover(); p != nil {
			level.Warn(t.logger).Log("msg", "eviction listener panicked", "key", ev.r.key, "reason", ev.reason, "panic", p)
		}
	}()
	t.onEvict(ev.r.key, ev.r.val, ev.reason)
}

type trackerHooks[K comparable, V any] struct{ t *tracker[K, V] }

func (h trackerHooks[K, V]) Oldest() policy.Node[K, V] {
	r, ok := h.t.lru.PeekFront()
	if !ok {
		return nil
	}
	return r
}

func (h trackerHooks[K, V]) Len() int { return h.t.lru.Len() }
