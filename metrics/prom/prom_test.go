package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/cachecore/cache"
)

func TestAdapter_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg, "cachecore", "test", prometheus.Labels{"cache": "unit"})

	a.Hit()
	a.Hit()
	a.Miss()
	a.Evict(cache.EvictCapacity)
	a.Evict(cache.EvictTTL)
	a.Evict(cache.EvictTTL)
	a.Discard()
	a.Size(3, 42)
	a.ObserveLoad(2*time.Millisecond, nil)
	a.ObserveLoad(time.Millisecond, errors.New("boom"))

	require.Equal(t, 2.0, testutil.ToFloat64(a.hits))
	require.Equal(t, 1.0, testutil.ToFloat64(a.misses))
	require.Equal(t, 1.0, testutil.ToFloat64(a.evicts.WithLabelValues("capacity")))
	require.Equal(t, 2.0, testutil.ToFloat64(a.evicts.WithLabelValues("ttl")))
	require.Equal(t, 1.0, testutil.ToFloat64(a.discards))
	require.Equal(t, 3.0, testutil.ToFloat64(a.sizeEnt))
	require.Equal(t, 42.0, testutil.ToFloat64(a.sizeBytes))
	require.Equal(t, 2, testutil.CollectAndCount(a.loads))
}

// Wired into a store, the adapter sees the store's traffic.
func TestAdapter_WithStore(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg, "cachecore", "store", nil)

	s, err := cache.New(cache.Options[string, int]{
		Capacity: 1,
		Metrics:  a,
		Loader:   func(context.Context, string) (int, error) { return 7, nil },
	})
	require.NoError(t, err)

	_, _, err = s.Get(context.Background(), "a") // miss + load
	require.NoError(t, err)
	_, _, err = s.Get(context.Background(), "a") // hit
	require.NoError(t, err)
	s.Put("b", 1) // evicts a

	require.Equal(t, 1.0, testutil.ToFloat64(a.hits))
	require.Equal(t, 1.0, testutil.ToFloat64(a.misses))
	require.Equal(t, 1.0, testutil.ToFloat64(a.evicts.WithLabelValues("capacity")))
	require.Equal(t, 1.0, testutil.ToFloat64(a.sizeEnt))

	n, err := testutil.GatherAndCount(reg, "cachecore_store_load_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
