// Command cachebench runs a synthetic Zipf workload against a cachecore
// cache and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	pmet "github.com/IvanBrykalov/cachecore/metrics/prom"
)

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg, logger); err != nil {
		level.Error(logger).Log("msg", "benchmark failed", "err", err)
		os.Exit(1)
	}
}

func newLogger(lvl string) (log.Logger, error) {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	logger = log.With(logger, "caller", log.DefaultCaller)

	var opt level.Option
	switch lvl {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		return nil, fmt.Errorf("unknown log level %q", lvl)
	}
	return level.NewFilter(logger, opt), nil
}

func run(cfg Config, logger log.Logger) error {
	// ---- pprof server (on DefaultServeMux) ----
	if cfg.PprofAddr != "" {
		go func() {
			level.Info(logger).Log("msg", "serving pprof", "addr", cfg.PprofAddr)
			if err := http.ListenAndServe(cfg.PprofAddr, nil); err != nil {
				level.Error(logger).Log("msg", "pprof server failed", "err", err)
			}
		}()
	}

	// ---- Prometheus metrics ----
	reg := prometheus.NewRegistry()
	metrics := pmet.New(reg, "cachecore", "bench", prometheus.Labels{
		"policy":   cfg.Policy,
		"strategy": cfg.Strategy,
	})
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			level.Info(logger).Log("msg", "serving metrics", "addr", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				level.Error(logger).Log("msg", "metrics server failed", "err", err)
			}
		}()
	}

	c, err := newTarget(cfg, metrics, logger)
	if err != nil {
		return err
	}

	// ---- Preload half capacity to get a realistic hit-rate ----
	pl := cfg.Preload
	if pl == 0 {
		pl = cfg.Capacity / 2
	}
	for i := 0; i < pl; i++ {
		c.Put("k:"+strconv.Itoa(i), "v"+strconv.Itoa(i))
	}
	level.Debug(logger).Log("msg", "preloaded", "entries", c.Len())

	res, err := drive(context.Background(), c, cfg)
	if err != nil {
		return err
	}

	// ---- Report ----
	st := c.Stats()
	ratio, _ := st.HitRatio()
	fmt.Printf("policy=%s strategy=%s cap=%d workers=%d keys=%d dur=%v seed=%d\n",
		cfg.Policy, cfg.Strategy, cfg.Capacity, cfg.Workers, cfg.Keys, res.elapsed, cfg.Seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		res.ops, float64(res.ops)/res.elapsed.Seconds(), res.reads, res.writes)
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", st.Hits, st.Misses, ratio*100)
	fmt.Printf("loads=%d  failures=%d  discarded=%d  evictions=%d  load-latency=%v\n",
		st.Loads, st.LoadFailures, st.Discarded, st.Evictions, st.LoadLatency)
	fmt.Printf("Len()=%d\n", c.Len())
	return nil
}

type result struct {
	ops, reads, writes uint64
	elapsed            time.Duration
}

// drive runs cfg.Workers goroutines against c for cfg.Duration.
func drive(parent context.Context, c target, cfg Config) (result, error) {
	ctx, cancel := context.WithTimeout(parent, cfg.Duration.Duration)
	defer cancel()

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	keysMax := uint64(cfg.Keys - 1)

	var reads, writes atomic.Uint64
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			r := rand.New(rand.NewSource(cfg.Seed + int64(w)*9973))
			zipf := rand.NewZipf(r, cfg.ZipfS, cfg.ZipfV, keysMax)
			key := func() string { return "k:" + strconv.FormatUint(zipf.Uint64(), 10) }

			for ctx.Err() == nil {
				if int(r.Int31n(100)) < cfg.Reads {
					reads.Add(1)
					if err := c.Get(ctx, key()); err != nil && ctx.Err() == nil {
						return err
					}
					continue
				}
				writes.Add(1)
				c.Put(key(), "v"+strconv.Itoa(r.Int()))
			}
			return nil
		})
	}
	err := g.Wait()
	res := result{
		reads:   reads.Load(),
		writes:  writes.Load(),
		elapsed: time.Since(start),
	}
	res.ops = res.reads + res.writes
	return res, err
}
