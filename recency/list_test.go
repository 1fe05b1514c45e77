package recency

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func collect[T any](l *List[T]) []T {
	var out []T
	l.Each(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

func TestList_PushTouchRemoveFront(t *testing.T) {
	t.Parallel()

	l := New[string](0)
	a := l.PushBack("a")
	l.PushBack("b")
	c := l.PushBack("c")
	require.Equal(t, []string{"a", "b", "c"}, collect(l))

	require.True(t, l.Touch(a))
	require.Equal(t, []string{"b", "c", "a"}, collect(l))

	// Touching the MRU element keeps the order.
	require.True(t, l.Touch(a))
	require.Equal(t, []string{"b", "c", "a"}, collect(l))

	v, ok := l.RemoveFront()
	require.True(t, ok)
	require.Equal(t, "b", v)

	v, ok = l.Remove(c)
	require.True(t, ok)
	require.Equal(t, "c", v)
	require.Equal(t, []string{"a"}, collect(l))
	require.Equal(t, 1, l.Len())
}

func TestList_SingletonTouchIsNoop(t *testing.T) {
	t.Parallel()

	var l List[int]
	h := l.PushBack(7)
	require.True(t, l.Touch(h))
	front, _ := l.PeekFront()
	back, _ := l.PeekBack()
	require.Equal(t, 7, front)
	require.Equal(t, 7, back)
	require.Equal(t, h, l.Front())
	require.Equal(t, h, l.Back())
}

func TestList_Empty(t *testing.T) {
	t.Parallel()

	var l List[int]
	_, ok := l.PeekFront()
	require.False(t, ok)
	_, ok = l.RemoveFront()
	require.False(t, ok)
	require.Zero(t, l.Front())
	require.False(t, l.Touch(0))
	l.Clear()
}

func TestList_StaleHandleRejected(t *testing.T) {
	t.Parallel()

	l := New[string](0)
	a := l.PushBack("a")
	_, ok := l.Remove(a)
	require.True(t, ok)

	// The slot is recycled for "b"; the old handle must not reach it.
	b := l.PushBack("b")
	require.NotEqual(t, a, b)
	require.False(t, l.Touch(a))
	_, ok = l.Remove(a)
	require.False(t, ok)
	_, ok = l.Get(a)
	require.False(t, ok)

	v, ok := l.Get(b)
	require.True(t, ok)
	require.Equal(t, "b", v)
}

func TestList_ClearInvalidatesHandles(t *testing.T) {
	t.Parallel()

	l := New[int](0)
	hs := []Handle{l.PushBack(1), l.PushBack(2), l.PushBack(3)}
	l.Clear()
	require.Zero(t, l.Len())
	for _, h := range hs {
		require.False(t, l.Touch(h))
	}
	l.PushBack(4)
	l.PushBack(5)
	require.Equal(t, []int{4, 5}, collect(l))
	for _, h := range hs {
		_, ok := l.Get(h)
		require.False(t, ok)
	}
}

func TestList_Traversal(t *testing.T) {
	t.Parallel()

	l := New[int](2)
	for i := 0; i < 20; i++ { // forces growth
		l.PushBack(i)
	}
	var fwd []int
	for h := l.Front(); h != 0; h = l.Next(h) {
		v, _ := l.Get(h)
		fwd = append(fwd, v)
	}
	var back []int
	for h := l.Back(); h != 0; h = l.Prev(h) {
		v, _ := l.Get(h)
		back = append(back, v)
	}
	require.Len(t, fwd, 20)
	for i := range fwd {
		require.Equal(t, i, fwd[i])
		require.Equal(t, 19-i, back[i])
	}
}

// Random pushes, touches and removals against a slice model: iteration must
// match the model order and prev/next must stay mutual inverses.
func TestList_RandomOpsMatchModel(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(7))
	l := New[int](0)
	var model []int
	handles := map[int]Handle{}
	next := 0

	indexOf := func(v int) int {
		for i, x := range model {
			if x == v {
				return i
			}
		}
		return -1
	}

	for step := 0; step < 4000; step++ {
		switch op := r.Intn(4); {
		case op == 0 || len(model) == 0:
			handles[next] = l.PushBack(next)
			model = append(model, next)
			next++
		case op == 1:
			v := model[r.Intn(len(model))]
			require.True(t, l.Touch(handles[v]))
			i := indexOf(v)
			model = append(append(model[:i:i], model[i+1:]...), v)
		case op == 2:
			v, ok := l.RemoveFront()
			require.True(t, ok)
			require.Equal(t, model[0], v)
			model = model[1:]
			delete(handles, v)
		default:
			v := model[r.Intn(len(model))]
			got, ok := l.Remove(handles[v])
			require.True(t, ok)
			require.Equal(t, v, got)
			i := indexOf(v)
			model = append(model[:i:i], model[i+1:]...)
			delete(handles, v)
		}

		require.Equal(t, len(model), l.Len())
		if len(model) > 0 {
			require.Equal(t, model, collect(l))
		}
		for i := int32(0); int(i) < len(l.next); i++ {
			if l.prev[i] == freeLink {
				continue
			}
			require.Equal(t, i, l.prev[l.next[i]])
			require.Equal(t, i, l.next[l.prev[i]])
		}
	}
}
