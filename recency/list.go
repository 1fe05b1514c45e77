// Package recency implements an array-backed intrusive doubly linked list
// that keeps elements in least- to most-recently-used order.
//
// Links are int32 slot indices held in parallel arrays rather than pointers,
// so pushing, touching and evicting never allocate once the arrays have
// grown to the working-set size. Slot 0 is a permanent sentinel:
// next[0] is the LRU slot and prev[0] the MRU slot.
//
// Handles carry a per-slot generation, so a handle kept after its element
// left the list is rejected instead of silently addressing a recycled slot.
//
// A List is not safe for concurrent use.
package recency

const (
	minCap   = 8
	freeLink = -1 // prev value of a slot on the free list
)

// Handle identifies an element in a List. The zero Handle is never valid.
type Handle uint64

func makeHandle(slot int32, gen uint32) Handle { return Handle(uint64(gen)<<32 | uint64(uint32(slot))) }

func (h Handle) slot() int32 { return int32(uint32(h)) }
func (h Handle) gen() uint32 { return uint32(h >> 32) }

// List is the recency list. The zero value is ready to use.
type List[T any] struct {
	elems []T
	next  []int32
	prev  []int32
	gen   []uint32
	free  int32 // head of the free chain (linked through next), 0 = none
	n     int
}

// New returns an empty list sized for hint elements.
func New[T any](hint int) *List[T] {
	l := &List[T]{}
	l.init(hint)
	return l
}

func (l *List[T]) init(hint int) {
	if hint < minCap {
		hint = minCap
	}
	l.elems = make([]T, 1, hint+1)
	l.next = make([]int32, 1, hint+1)
	l.prev = make([]int32, 1, hint+1)
	l.gen = make([]uint32, 1, hint+1)
	l.free = 0
	l.n = 0
}

// Len returns the number of live elements.
func (l *List[T]) Len() int { return l.n }

// PushBack appends elem as the most recently used element.
func (l *List[T]) PushBack(elem T) Handle {
	if l.next == nil {
		l.init(minCap)
	}
	i := l.alloc()
	l.elems[i] = elem
	l.linkBack(i)
	l.n++
	return makeHandle(i, l.gen[i])
}

// Touch marks h as the most recently used element. It reports false for a
// stale handle.
func (l *List[T]) Touch(h Handle) bool {
	i, ok := l.valid(h)
	if !ok {
		return false
	}
	// A singleton, or an element already at the MRU end, stays put.
	if l.n > 1 && l.prev[0] != i {
		l.unlink(i)
		l.linkBack(i)
	}
	return true
}

// PeekFront returns the least recently used element.
func (l *List[T]) PeekFront() (T, bool) {
	if l.n == 0 {
		var zero T
		return zero, false
	}
	return l.elems[l.next[0]], true
}

// PeekBack returns the most recently used element.
func (l *List[T]) PeekBack() (T, bool) {
	if l.n == 0 {
		var zero T
		return zero, false
	}
	return l.elems[l.prev[0]], true
}

// RemoveFront removes and returns the least recently used element.
func (l *List[T]) RemoveFront() (T, bool) {
	if l.n == 0 {
		var zero T
		return zero, false
	}
	return l.release(l.next[0]), true
}

// Remove deletes the element behind h.
func (l *List[T]) Remove(h Handle) (T, bool) {
	i, ok := l.valid(h)
	if !ok {
		var zero T
		return zero, false
	}
	return l.release(i), true
}

// Get returns the element behind h without changing its position.
func (l *List[T]) Get(h Handle) (T, bool) {
	i, ok := l.valid(h)
	if !ok {
		var zero T
		return zero, false
	}
	return l.elems[i], true
}

// Front returns the handle of the LRU element, or 0 if the list is empty.
func (l *List[T]) Front() Handle {
	if l.n == 0 {
		return 0
	}
	return l.handle(l.next[0])
}

// Back returns the handle of the MRU element, or 0 if the list is empty.
func (l *List[T]) Back() Handle {
	if l.n == 0 {
		return 0
	}
	return l.handle(l.prev[0])
}

// Next returns the handle following h towards the MRU end, or 0.
func (l *List[T]) Next(h Handle) Handle {
	i, ok := l.valid(h)
	if !ok {
		return 0
	}
	return l.handle(l.next[i])
}

// Prev returns the handle preceding h towards the LRU end, or 0.
func (l *List[T]) Prev(h Handle) Handle {
	i, ok := l.valid(h)
	if !ok {
		return 0
	}
	return l.handle(l.prev[i])
}

// Each calls fn for every element from LRU to MRU until fn returns false.
// fn must not modify the list.
func (l *List[T]) Each(fn func(T) bool) {
	if l.n == 0 {
		return
	}
	for i := l.next[0]; i != 0; i = l.next[i] {
		if !fn(l.elems[i]) {
			return
		}
	}
}

// Clear removes every element; outstanding handles become stale.
func (l *List[T]) Clear() {
	if l.next == nil {
		return
	}
	var zero T
	l.free = 0
	for i := int32(len(l.next) - 1); i > 0; i-- {
		if l.prev[i] != freeLink {
			l.gen[i]++
			l.elems[i] = zero
		}
		l.prev[i] = freeLink
		l.next[i] = l.free
		l.free = i
	}
	l.next[0], l.prev[0] = 0, 0
	l.n = 0
}

func (l *List[T]) handle(i int32) Handle {
	if i == 0 {
		return 0
	}
	return makeHandle(i, l.gen[i])
}

func (l *List[T]) valid(h Handle) (int32, bool) {
	i := h.slot()
	if i <= 0 || int(i) >= len(l.next) || l.prev[i] == freeLink || l.gen[i] != h.gen() {
		return 0, false
	}
	return i, true
}

// alloc takes a slot from the free chain, appending (and so growing the
// arrays by doubling) when the chain is empty.
func (l *List[T]) alloc() int32 {
	if i := l.free; i != 0 {
		l.free = l.next[i]
		return i
	}
	var zero T
	l.elems = append(l.elems, zero)
	l.next = append(l.next, 0)
	l.prev = append(l.prev, 0)
	l.gen = append(l.gen, 1)
	return int32(len(l.next) - 1)
}

// release unlinks slot i, bumps its generation and puts it on the free chain.
func (l *List[T]) release(i int32) T {
	elem := l.elems[i]
	l.unlink(i)
	var zero T
	l.elems[i] = zero
	l.gen[i]++
	l.prev[i] = freeLink
	l.next[i] = l.free
	l.free = i
	l.n--
	return elem
}

// linkBack splices i in front of the sentinel (the MRU position).
func (l *List[T]) linkBack(i int32) {
	last := l.prev[0]
	l.prev[i] = last
	l.next[i] = 0
	l.next[last] = i
	l.prev[0] = i
}

func (l *List[T]) unlink(i int32) {
	p, n := l.prev[i], l.next[i]
	l.next[p] = n
	l.prev[n] = p
}
