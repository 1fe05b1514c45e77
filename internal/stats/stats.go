// Package stats holds the counters shared by the store and the loading
// strategies.
package stats

import (
	"sync"
	"time"

	"github.com/VividCortex/ewma"

	"github.com/IvanBrykalov/cachecore/internal/util"
)

// Counters are safe for concurrent use. Counter bumps are lock-free; the
// latency average has its own small mutex because ewma.MovingAverage is
// not goroutine-safe.
type Counters struct {
	hits      util.PaddedUint64
	misses    util.PaddedUint64
	loads     util.PaddedUint64
	failures  util.PaddedUint64
	discards  util.PaddedUint64
	evictions util.PaddedUint64

	mu      sync.Mutex
	latency ewma.MovingAverage
}

// New returns zeroed counters.
func New() *Counters {
	return &Counters{latency: ewma.NewMovingAverage()}
}

func (c *Counters) Hit()     { c.hits.Add(1) }
func (c *Counters) Miss()    { c.misses.Add(1) }
func (c *Counters) Discard() { c.discards.Add(1) }
func (c *Counters) Evict(n int) {
	if n > 0 {
		c.evictions.Add(uint64(n))
	}
}

// Load records one loader call and its duration.
func (c *Counters) Load(d time.Duration, err error) {
	c.loads.Add(1)
	if err != nil {
		c.failures.Add(1)
	}
	c.mu.Lock()
	c.latency.Add(float64(d))
	c.mu.Unlock()
}

// Hits returns the number of lookups served from memory.
func (c *Counters) Hits() uint64 { return c.hits.Load() }

// Misses returns the number of lookups that were not.
func (c *Counters) Misses() uint64 { return c.misses.Load() }

// Snapshot reads all counters. Individual fields are consistent, the set as
// a whole is not taken atomically.
func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	lat := time.Duration(c.latency.Value())
	c.mu.Unlock()
	return Snapshot{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		Loads:        c.loads.Load(),
		LoadFailures: c.failures.Load(),
		Discarded:    c.discards.Load(),
		Evictions:    c.evictions.Load(),
		LoadLatency:  lat,
	}
}

// Snapshot is a read-only copy of the counters.
type Snapshot struct {
	Hits         uint64
	Misses       uint64
	Loads        uint64 // loader invocations
	LoadFailures uint64
	// Discarded counts loaded values thrown away because another caller
	// won the insertion race.
	Discarded uint64
	Evictions uint64
	// LoadLatency is an exponentially weighted moving average of loader
	// call duration; zero until the first load.
	LoadLatency time.Duration

	Size     int
	Capacity int
}

// HitRatio returns hits/(hits+misses). ok is false when no lookup has
// happened, the ratio is undefined then.
func (s Snapshot) HitRatio() (ratio float64, ok bool) {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0, false
	}
	return float64(s.Hits) / float64(total), true
}
