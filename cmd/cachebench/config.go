package main

import (
	"flag"
	"fmt"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
)

// Config describes one benchmark run. Values come from defaults, then an
// optional TOML file, then explicitly set flags.
type Config struct {
	Capacity int    `toml:"capacity"`
	MaxSize  int64  `toml:"max_size"`
	Shards   int    `toml:"shards"`
	Policy   string `toml:"policy"`
	Strategy string `toml:"strategy"`

	Workers  int      `toml:"workers"`
	Duration Duration `toml:"duration"`
	Reads    int      `toml:"reads"`

	Keys    int     `toml:"keys"`
	ZipfS   float64 `toml:"zipf_s"`
	ZipfV   float64 `toml:"zipf_v"`
	Seed    int64   `toml:"seed"`
	Preload int     `toml:"preload"`

	LoadLatency Duration `toml:"load_latency"`
	TTL         Duration `toml:"ttl"`

	LogLevel    string `toml:"log_level"`
	MetricsAddr string `toml:"metrics_addr"`
	PprofAddr   string `toml:"pprof_addr"`
}

// Duration is a time.Duration that decodes from TOML strings like "10s".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func newConfig() Config {
	return Config{
		Capacity:    100_000,
		Policy:      "lru",
		Strategy:    "store",
		Workers:     2 * runtime.GOMAXPROCS(0),
		Duration:    Duration{10 * time.Second},
		Reads:       80,
		Keys:        1_000_000,
		ZipfS:       1.1,
		ZipfV:       1.0,
		Seed:        time.Now().UnixNano(),
		LoadLatency: Duration{100 * time.Microsecond},
		LogLevel:    "info",
		MetricsAddr: ":8080",
	}
}

// parseConfig builds the run configuration from args.
func parseConfig(args []string) (Config, error) {
	cfg := newConfig()
	fs := flag.NewFlagSet("cachebench", flag.ContinueOnError)

	configFile := fs.String("config", "", "TOML workload file; explicit flags override its values")
	fs.IntVar(&cfg.Capacity, "cap", cfg.Capacity, "cache capacity (entries)")
	fs.Int64Var(&cfg.MaxSize, "max-size", cfg.MaxSize, "bound on summed entry sizes, store strategy only (0 = off)")
	fs.IntVar(&cfg.Shards, "shards", cfg.Shards, "map shards for loading strategies (0 = auto)")
	fs.StringVar(&cfg.Policy, "policy", cfg.Policy, "eviction policy: lru | 2q | lfu | gds | ttl")
	fs.StringVar(&cfg.Strategy, "strategy", cfg.Strategy, "cache front end: store | singleflight | optimistic")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of worker goroutines")
	fs.DurationVar(&cfg.Duration.Duration, "duration", cfg.Duration.Duration, "benchmark duration")
	fs.IntVar(&cfg.Reads, "reads", cfg.Reads, "read percentage [0..100]")
	fs.IntVar(&cfg.Keys, "keys", cfg.Keys, "keyspace size")
	fs.Float64Var(&cfg.ZipfS, "zipf_s", cfg.ZipfS, "Zipf s > 1 (skew)")
	fs.Float64Var(&cfg.ZipfV, "zipf_v", cfg.ZipfV, "Zipf v >= 1")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	fs.IntVar(&cfg.Preload, "preload", cfg.Preload, "preload entries (0 = cap/2)")
	fs.DurationVar(&cfg.LoadLatency.Duration, "load-latency", cfg.LoadLatency.Duration, "simulated loader latency")
	fs.DurationVar(&cfg.TTL.Duration, "ttl", cfg.TTL.Duration, "default entry TTL (0 = none)")
	fs.StringVar(&cfg.LogLevel, "log.level", cfg.LogLevel, "log level: debug | info | warn | error")
	fs.StringVar(&cfg.MetricsAddr, "http", cfg.MetricsAddr, "serve Prometheus metrics at addr; empty = disabled")
	fs.StringVar(&cfg.PprofAddr, "pprof", cfg.PprofAddr, "serve pprof at addr (e.g. :6060); empty = disabled")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if *configFile != "" {
		md, err := toml.DecodeFile(*configFile, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", *configFile, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("unsupported key in config %s: [%s]", *configFile, undecoded[0])
		}
		// Parse again so explicit flags win over the file.
		if err := fs.Parse(args); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("cap must be > 0, got %d", c.Capacity)
	case c.Keys <= 0:
		return fmt.Errorf("keys must be > 0, got %d", c.Keys)
	case c.Reads < 0 || c.Reads > 100:
		return fmt.Errorf("reads must be in [0, 100], got %d", c.Reads)
	case c.ZipfS <= 1 || c.ZipfV < 1:
		return fmt.Errorf("zipf needs s > 1 and v >= 1, got s=%v v=%v", c.ZipfS, c.ZipfV)
	}
	switch c.Strategy {
	case "store", "singleflight", "optimistic":
	default:
		return fmt.Errorf("unknown strategy %q (use store, singleflight or optimistic)", c.Strategy)
	}
	return nil
}
