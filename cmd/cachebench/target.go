package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/log"

	"github.com/IvanBrykalov/cachecore/cache"
	"github.com/IvanBrykalov/cachecore/load"
	"github.com/IvanBrykalov/cachecore/policy"
	"github.com/IvanBrykalov/cachecore/policy/gds"
	"github.com/IvanBrykalov/cachecore/policy/lfu"
	"github.com/IvanBrykalov/cachecore/policy/lru"
	"github.com/IvanBrykalov/cachecore/policy/ttl"
	"github.com/IvanBrykalov/cachecore/policy/twoq"
)

// target is the cache under test, whichever strategy backs it.
type target interface {
	Get(ctx context.Context, k string) error
	Put(k, v string)
	Len() int
	Stats() cache.Stats
}

func newPolicy(name string, capacity int) (policy.Policy[string, string], error) {
	switch name {
	case "lru":
		return lru.New[string, string](), nil
	case "2q":
		// split 2Q queues as a simple default
		return twoq.New[string, string](capacity/4, capacity/2), nil
	case "lfu":
		return lfu.New[string, string](capacity), nil
	case "gds":
		return gds.New[string, string](capacity), nil
	case "ttl":
		return ttl.New[string, string](capacity), nil
	default:
		return nil, fmt.Errorf("unknown policy %q (use lru, 2q, lfu, gds or ttl)", name)
	}
}

// backend simulates the slow source behind the cache.
func backend(latency time.Duration) cache.LoaderFunc[string, string] {
	return func(ctx context.Context, k string) (string, error) {
		if latency > 0 {
			t := time.NewTimer(latency)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		return "v:" + k, nil
	}
}

func newTarget(cfg Config, m cache.Metrics, logger log.Logger) (target, error) {
	pol, err := newPolicy(cfg.Policy, cfg.Capacity)
	if err != nil {
		return nil, err
	}
	meta := func(_ string, v string) cache.Meta {
		// Longer values are costlier to rebuild and weigh more.
		return cache.Meta{Cost: float64(len(v)), Size: int64(len(v))}
	}

	switch cfg.Strategy {
	case "store":
		s, err := cache.New(cache.Options[string, string]{
			Capacity:   cfg.Capacity,
			MaxSize:    cfg.MaxSize,
			Policy:     pol,
			DefaultTTL: cfg.TTL.Duration,
			Metadata:   meta,
			Loader:     backend(cfg.LoadLatency.Duration),
			Metrics:    m,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return storeTarget{s}, nil
	default:
		opt := load.Options[string, string]{
			Capacity:    cfg.Capacity,
			Shards:      cfg.Shards,
			Policy:      pol,
			Loader:      backend(cfg.LoadLatency.Duration),
			Metadata:    meta,
			DefaultTTL:  cfg.TTL.Duration,
			WaitTimeout: time.Second,
			Metrics:     m,
			Logger:      logger,
		}
		var c load.Cache[string, string]
		if cfg.Strategy == "singleflight" {
			c, err = load.NewSingleFlight(opt)
		} else {
			c, err = load.NewOptimistic(opt)
		}
		if err != nil {
			return nil, err
		}
		return loadTarget{c}, nil
	}
}

type storeTarget struct{ s *cache.Store[string, string] }

func (t storeTarget) Get(ctx context.Context, k string) error {
	_, _, err := t.s.Get(ctx, k)
	return err
}
func (t storeTarget) Put(k, v string)    { t.s.Put(k, v) }
func (t storeTarget) Len() int           { return t.s.Len() }
func (t storeTarget) Stats() cache.Stats { return t.s.Stats() }

type loadTarget struct{ c load.Cache[string, string] }

func (t loadTarget) Get(ctx context.Context, k string) error {
	_, err := t.c.Get(ctx, k)
	return err
}
func (t loadTarget) Put(k, v string)    { t.c.Put(k, v) }
func (t loadTarget) Len() int           { return t.c.Len() }
func (t loadTarget) Stats() cache.Stats { return t.c.Stats() }
