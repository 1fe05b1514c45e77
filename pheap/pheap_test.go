package pheap

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeap_ExtractMinOrder(t *testing.T) {
	t.Parallel()

	h := New[string, int](0)
	for _, p := range []int{5, 3, 8, 1} {
		h.Insert("", p)
	}

	var got []int
	for !h.IsEmpty() {
		p, ok := h.PeekPriority()
		require.True(t, ok)
		_, ok = h.ExtractMin()
		require.True(t, ok)
		got = append(got, p)
	}
	require.Equal(t, []int{1, 3, 5, 8}, got)
}

func TestHeap_EmptyQueries(t *testing.T) {
	t.Parallel()

	var h Heap[int, int64]
	_, ok := h.Peek()
	require.False(t, ok)
	_, ok = h.ExtractMin()
	require.False(t, ok)
	require.Zero(t, h.Len())
	require.True(t, h.IsEmpty())
}

func TestHeap_InvalidHandle(t *testing.T) {
	t.Parallel()

	h := New[string, int](4)
	id := h.Insert("a", 1)

	_, err := h.ChangePriority(id+1, 3)
	require.ErrorIs(t, err, ErrInvalidHandle)
	_, err = h.Remove(-1)
	require.ErrorIs(t, err, ErrInvalidHandle)

	v, err := h.Remove(id)
	require.NoError(t, err)
	require.Equal(t, "a", v)

	// A removed handle is no longer live.
	_, err = h.Remove(id)
	require.ErrorIs(t, err, ErrInvalidHandle)
	_, err = h.ChangePriorityByDelta(id, 1)
	require.ErrorIs(t, err, ErrInvalidHandle)

	// The id is recycled for the next element, but the old handle must not
	// reach it.
	b := h.Insert("b", 2)
	require.Equal(t, id.id(), b.id())
	_, err = h.Remove(id)
	require.ErrorIs(t, err, ErrInvalidHandle)
	_, err = h.Get(id)
	require.ErrorIs(t, err, ErrInvalidHandle)
	require.Equal(t, 1, h.Len())
	got, err := h.Get(b)
	require.NoError(t, err)
	require.Equal(t, "b", got)

	// Clear invalidates everything issued so far.
	h.Clear()
	c := h.Insert("c", 3)
	_, err = h.Get(b)
	require.ErrorIs(t, err, ErrInvalidHandle)
	got, err = h.Get(c)
	require.NoError(t, err)
	require.Equal(t, "c", got)
}

func TestHeap_ChangePriority(t *testing.T) {
	t.Parallel()

	h := New[string, float64](0)
	a := h.Insert("a", 1)
	b := h.Insert("b", 2)
	c := h.Insert("c", 3)

	old, err := h.ChangePriority(a, 10)
	require.NoError(t, err)
	require.Equal(t, 1.0, old)
	v, _ := h.Peek()
	require.Equal(t, "b", v)

	old, err = h.ChangePriorityByDelta(c, -2.5)
	require.NoError(t, err)
	require.Equal(t, 3.0, old)
	v, _ = h.Peek()
	require.Equal(t, "c", v)

	p, err := h.Priority(c)
	require.NoError(t, err)
	require.Equal(t, 0.5, p)

	got, err := h.Get(b)
	require.NoError(t, err)
	require.Equal(t, "b", got)
}

// Growth past the initial capacity must keep handles pointing at the right
// elements.
func TestHeap_GrowKeepsHandles(t *testing.T) {
	t.Parallel()

	h := New[int, int](1)
	ids := make([]Handle, 100)
	for i := range ids {
		ids[i] = h.Insert(i, 100-i)
	}
	for i, id := range ids {
		v, err := h.Get(id)
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
	v, _ := h.Peek()
	require.Equal(t, 99, v)
}

// After any mix of insert/remove/changePriority, Peek returns the element
// with the smallest live priority and every ref/refBack pair agrees.
func TestHeap_RandomOpsKeepMinimum(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(42))
	h := New[int, int](0)
	live := map[Handle]int{} // handle -> priority

	for step := 0; step < 5000; step++ {
		switch op := r.Intn(10); {
		case op < 5 || len(live) == 0:
			p := r.Intn(1000) - 500
			live[h.Insert(step, p)] = p
		case op < 7:
			id := pick(r, live)
			_, err := h.Remove(id)
			require.NoError(t, err)
			delete(live, id)
		case op < 9:
			id := pick(r, live)
			p := r.Intn(1000) - 500
			old, err := h.ChangePriority(id, p)
			require.NoError(t, err)
			require.Equal(t, live[id], old)
			live[id] = p
		default:
			_, ok := h.ExtractMin()
			require.True(t, ok)
			lo := minPrio(live)
			for id, p := range live {
				if p == lo {
					if _, err := h.Priority(id); err != nil {
						delete(live, id)
						break
					}
				}
			}
		}

		require.Equal(t, len(live), h.Len())
		if len(live) > 0 {
			p, ok := h.PeekPriority()
			require.True(t, ok)
			require.Equal(t, minPrio(live), p)
		}
		for id := range live {
			require.Equal(t, id, h.refBack[h.ref[id.id()]])
		}
	}
}

func pick(r *rand.Rand, live map[Handle]int) Handle {
	n := r.Intn(len(live))
	for id := range live {
		if n == 0 {
			return id
		}
		n--
	}
	panic("unreachable")
}

func minPrio(live map[Handle]int) int {
	first := true
	var m int
	for _, p := range live {
		if first || p < m {
			m, first = p, false
		}
	}
	return m
}
