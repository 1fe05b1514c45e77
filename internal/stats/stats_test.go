package stats

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCounters_HitRatio(t *testing.T) {
	t.Parallel()

	c := New()
	_, ok := c.Snapshot().HitRatio()
	require.False(t, ok, "ratio is undefined before any lookup")

	c.Hit()
	c.Hit()
	c.Hit()
	c.Miss()
	r, ok := c.Snapshot().HitRatio()
	require.True(t, ok)
	require.InDelta(t, 0.75, r, 1e-9)
}

func TestCounters_Loads(t *testing.T) {
	t.Parallel()

	c := New()
	c.Load(10*time.Millisecond, nil)
	c.Load(10*time.Millisecond, errors.New("boom"))
	c.Discard()
	c.Evict(3)
	c.Evict(0)

	s := c.Snapshot()
	require.Equal(t, uint64(2), s.Loads)
	require.Equal(t, uint64(1), s.LoadFailures)
	require.Equal(t, uint64(1), s.Discarded)
	require.Equal(t, uint64(3), s.Evictions)
	require.InDelta(t, float64(10*time.Millisecond), float64(s.LoadLatency), 1e3)
}
