// Package pheap implements an indexed binary min-heap.
//
// Every inserted element gets a Handle that stays valid until the element
// leaves the heap, no matter how many swaps happen in between. The handle
// lets callers reprioritize or remove an element in O(log n) without
// searching for it. Handles carry a per-id generation, so a handle kept
// after its element left is rejected even once the id is reused.
//
// A Heap is not safe for concurrent use; callers serialize access.
package pheap

import (
	"errors"
	"fmt"
)

// ErrInvalidHandle is returned when a handle is out of range or no longer
// refers to a live element.
var ErrInvalidHandle = errors.New("pheap: invalid handle")

// Number is the set of priority types the heap can order.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Handle identifies an element inside a Heap: the id in the low 32 bits,
// its generation above. Valid handles are never negative.
type Handle int64

func makeHandle(id int32, gen uint32) Handle {
	return Handle(int64(gen&genMask)<<32 | int64(uint32(id)))
}

func (h Handle) id() int32   { return int32(uint32(h)) }
func (h Handle) gen() uint32 { return uint32(h>>32) & genMask }

const genMask = 1<<31 - 1

// NoHandle is the zero-like value callers can use to mark "not in a heap".
const NoHandle Handle = -1

const minCap = 8

// Heap is a 1-indexed array-backed min-heap. Children of slot i live at
// 2i and 2i+1; slot 0 is unused.
//
//	ref[id]    = heap slot holding id (0 if id is free)
//	gen[id]    = generation of the handle currently issued for id
//	refBack[i] = handle stored in heap slot i
type Heap[T any, P Number] struct {
	elems   []T // by slot
	prio    []P // by slot
	refBack []Handle
	ref     []int
	gen     []uint32
	free    []int32
	n       int
}

// New returns an empty heap with room for hint elements.
func New[T any, P Number](hint int) *Heap[T, P] {
	if hint < minCap {
		hint = minCap
	}
	return &Heap[T, P]{
		elems:   make([]T, hint+1),
		prio:    make([]P, hint+1),
		refBack: make([]Handle, hint+1),
		ref:     make([]int, 0, hint),
		gen:     make([]uint32, 0, hint),
	}
}

// Len returns the number of live elements.
func (h *Heap[T, P]) Len() int { return h.n }

// IsEmpty reports whether the heap holds no elements.
func (h *Heap[T, P]) IsEmpty() bool { return h.n == 0 }

// Insert adds elem with the given priority and returns its handle.
func (h *Heap[T, P]) Insert(elem T, prio P) Handle {
	if h.elems == nil {
		*h = *New[T, P](minCap)
	}
	if h.n+1 == len(h.elems) {
		h.grow()
	}
	var id int32
	if k := len(h.free); k > 0 {
		id = h.free[k-1]
		h.free = h.free[:k-1]
	} else {
		id = int32(len(h.ref))
		h.ref = append(h.ref, 0)
		h.gen = append(h.gen, 0)
	}
	h.n++
	i := h.n
	hd := makeHandle(id, h.gen[id])
	h.elems[i] = elem
	h.prio[i] = prio
	h.refBack[i] = hd
	h.ref[id] = i
	h.up(i)
	return hd
}

// Peek returns the minimum element without removing it.
func (h *Heap[T, P]) Peek() (T, bool) {
	if h.n == 0 {
		var zero T
		return zero, false
	}
	return h.elems[1], true
}

// PeekPriority returns the priority of the minimum element.
func (h *Heap[T, P]) PeekPriority() (P, bool) {
	if h.n == 0 {
		return 0, false
	}
	return h.prio[1], true
}

// ExtractMin removes and returns the minimum element.
func (h *Heap[T, P]) ExtractMin() (T, bool) {
	if h.n == 0 {
		var zero T
		return zero, false
	}
	return h.removeAt(1), true
}

// Get returns the element behind handle id.
func (h *Heap[T, P]) Get(id Handle) (T, error) {
	i, err := h.slot(id)
	if err != nil {
		var zero T
		return zero, err
	}
	return h.elems[i], nil
}

// Priority returns the current priority of handle id.
func (h *Heap[T, P]) Priority(id Handle) (P, error) {
	i, err := h.slot(id)
	if err != nil {
		return 0, err
	}
	return h.prio[i], nil
}

// ChangePriority sets a new priority for id and returns the old one.
func (h *Heap[T, P]) ChangePriority(id Handle, prio P) (P, error) {
	i, err := h.slot(id)
	if err != nil {
		return 0, err
	}
	old := h.prio[i]
	h.prio[i] = prio
	switch {
	case prio < old:
		h.up(i)
	case prio > old:
		h.down(i)
	}
	return old, nil
}

// ChangePriorityByDelta adds delta to the priority of id and returns the
// old priority.
func (h *Heap[T, P]) ChangePriorityByDelta(id Handle, delta P) (P, error) {
	i, err := h.slot(id)
	if err != nil {
		return 0, err
	}
	return h.ChangePriority(id, h.prio[i]+delta)
}

// Remove deletes the element behind id and returns it.
func (h *Heap[T, P]) Remove(id Handle) (T, error) {
	i, err := h.slot(id)
	if err != nil {
		var zero T
		return zero, err
	}
	return h.removeAt(i), nil
}

// Clear drops every element. Outstanding handles become invalid.
func (h *Heap[T, P]) Clear() {
	var zero T
	for i := 1; i <= h.n; i++ {
		h.elems[i] = zero
		h.release(h.refBack[i].id())
	}
	h.n = 0
}

func (h *Heap[T, P]) slot(hd Handle) (int, error) {
	id := hd.id()
	if hd < 0 || int(id) >= len(h.ref) || h.ref[id] == 0 || h.gen[id] != hd.gen() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidHandle, hd)
	}
	return h.ref[id], nil
}

// release frees id and bumps its generation so old handles stop matching.
func (h *Heap[T, P]) release(id int32) {
	h.ref[id] = 0
	h.gen[id] = (h.gen[id] + 1) & genMask
	h.free = append(h.free, id)
}

// removeAt moves the last slot into i and restores heap order.
func (h *Heap[T, P]) removeAt(i int) T {
	elem := h.elems[i]
	id := h.refBack[i].id()
	last := h.n
	if i != last {
		h.swap(i, last)
	}
	var zero T
	h.elems[last] = zero
	h.n--
	h.release(id)
	if i <= h.n {
		// The moved element may need to travel either way.
		h.down(i)
		h.up(i)
	}
	return elem
}

func (h *Heap[T, P]) up(i int) {
	for i > 1 {
		p := i / 2
		if h.prio[p] <= h.prio[i] {
			return
		}
		h.swap(i, p)
		i = p
	}
}

func (h *Heap[T, P]) down(i int) {
	for {
		l := 2 * i
		if l > h.n {
			return
		}
		m := l
		if r := l + 1; r <= h.n && h.prio[r] < h.prio[l] {
			m = r
		}
		if h.prio[i] <= h.prio[m] {
			return
		}
		h.swap(i, m)
		i = m
	}
}

func (h *Heap[T, P]) swap(i, j int) {
	h.elems[i], h.elems[j] = h.elems[j], h.elems[i]
	h.prio[i], h.prio[j] = h.prio[j], h.prio[i]
	h.refBack[i], h.refBack[j] = h.refBack[j], h.refBack[i]
	h.ref[h.refBack[i].id()] = i
	h.ref[h.refBack[j].id()] = j
}

// grow doubles the slot arrays.
func (h *Heap[T, P]) grow() {
	c := 2 * len(h.elems)
	elems := make([]T, c)
	copy(elems, h.elems)
	prio := make([]P, c)
	copy(prio, h.prio)
	back := make([]Handle, c)
	copy(back, h.refBack)
	h.elems, h.prio, h.refBack = elems, prio, back
}
