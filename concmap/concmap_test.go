package concmap

import (
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestMap_ConditionalOps(t *testing.T) {
	t.Parallel()

	m := New[string, int](4, 0)

	v, loaded := m.LoadOrStore("a", 1)
	require.False(t, loaded)
	require.Equal(t, 1, v)

	v, loaded = m.LoadOrStore("a", 2)
	require.True(t, loaded)
	require.Equal(t, 1, v)

	require.False(t, m.CompareAndSwap("a", 5, 6))
	require.True(t, m.CompareAndSwap("a", 1, 7))
	require.False(t, m.CompareAndSwap("missing", 0, 1))
	got, ok := m.Load("a")
	require.True(t, ok)
	require.Equal(t, 7, got)

	require.False(t, m.CompareAndDelete("a", 1))
	require.True(t, m.CompareAndDelete("a", 7))
	_, ok = m.Load("a")
	require.False(t, ok)

	old, loaded := m.Swap("b", 2)
	require.False(t, loaded)
	require.Zero(t, old)
	old, loaded = m.Swap("b", 3)
	require.True(t, loaded)
	require.Equal(t, 2, old)

	prev, ok := m.Delete("b")
	require.True(t, ok)
	require.Equal(t, 3, prev)
	_, ok = m.Delete("b")
	require.False(t, ok)
}

func TestMap_RangeLenClear(t *testing.T) {
	t.Parallel()

	m := New[int, int](0, 100)
	for i := 0; i < 100; i++ {
		m.Store(i, i*i)
	}
	require.Equal(t, 100, m.Len())

	seen := map[int]int{}
	m.Range(func(k, v int) bool {
		seen[k] = v
		return true
	})
	require.Len(t, seen, 100)
	require.Equal(t, 81, seen[9])

	n := 0
	m.Range(func(int, int) bool {
		n++
		return n < 3
	})
	require.Equal(t, 3, n)

	// Range may write back into the map.
	m.Range(func(k, _ int) bool {
		m.Delete(k)
		return true
	})
	require.Zero(t, m.Len())

	m.Store(1, 1)
	m.Clear()
	require.Zero(t, m.Len())
}

// Exactly one of many concurrent LoadOrStore calls wins per key.
func TestMap_LoadOrStoreSingleWinner(t *testing.T) {
	t.Parallel()

	m := New[string, int](0, 0)
	var wins atomic.Int64
	var g errgroup.Group
	for w := 0; w < 16; w++ {
		g.Go(func() error {
			for i := 0; i < 100; i++ {
				if _, loaded := m.LoadOrStore("k"+strconv.Itoa(i), w); !loaded {
					wins.Add(1)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.EqualValues(t, 100, wins.Load())
	require.Equal(t, 100, m.Len())
}
