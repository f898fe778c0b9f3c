// Package eheap implements a bounded min-heap with an auxiliary position
// index, allowing removal of an arbitrary element in O(log n) instead of a
// linear scan. The heap additionally tracks the most recently inserted
// element and caches the peak, the extremum opposite the root (the maximum
// of a min-heap). A max-heap is obtained by inverting the comparison.
//
// Elements must be unique under Go equality; pushing an element that is
// already present is rejected. When a size limit is configured, inserting
// into a full heap evicts the root and hands it back to the caller.
//
// The comparison function may fail. A failing comparison aborts the
// operation before any element or index mutation takes place, so the heap
// is left exactly as it was before the call.
//
// None of the operations are safe for concurrent use; callers requiring
// concurrency must serialize access externally.
package eheap

import "math"

// Unbounded is the limit of a heap without a configured size limit.
const Unbounded = math.MaxInt

// LessFunc reports whether a has higher priority than b, i.e. whether a
// should sort closer to the root. A non-nil error marks the pair as not
// comparable and is propagated to the caller of the mutating operation.
type LessFunc[T any] func(a, b T) (bool, error)

// Heap is a binary heap over unique elements of type T. The zero value is
// not usable; construct instances with New.
type Heap[T comparable] struct {
	less  LessFunc[T]
	items []T
	index map[T]int
	limit int

	last    T
	hasLast bool
	peak    T
	hasPeak bool

	path []int // scratch for down-sift commits
}

// New returns an empty heap ordered by less.
func New[T comparable](less LessFunc[T], opts ...Option) *Heap[T] {
	o := options{limit: Unbounded}
	for _, fn := range opts {
		fn(&o)
	}
	return &Heap[T]{
		less:  less,
		items: make([]T, 0, o.sliceCap),
		index: make(map[T]int),
		limit: o.limit,
	}
}

// Len returns the number of elements currently stored.
func (h *Heap[T]) Len() int { return len(h.items) }

// Limit returns the maximum number of elements the heap may hold.
func (h *Heap[T]) Limit() int { return h.limit }

// Contains reports whether item is currently stored.
func (h *Heap[T]) Contains(item T) bool {
	_, ok := h.index[item]
	return ok
}

// Push inserts item. If the heap is full the root of the heap as it would
// be after the insertion is evicted and returned with evicted set to true;
// an item that does not outrank the current root is handed straight back
// as the eviction without entering the heap. Pushing an element already
// present fails with ErrAlreadyPresent.
func (h *Heap[T]) Push(item T) (out T, evicted bool, err error) {
	var zero T
	if _, ok := h.index[item]; ok {
		return zero, false, ErrAlreadyPresent
	}
	if len(h.items) >= h.limit {
		out, err = h.pushPop(item)
		if err != nil {
			return zero, false, err
		}
		return out, true, nil
	}
	n := len(h.items)
	to, err := h.upPath(item, n)
	if err != nil {
		return zero, false, err
	}
	h.items = append(h.items, zero)
	h.commitUp(item, n, to)
	h.noteInserted(item)
	if len(h.items) == 1 {
		h.peak, h.hasPeak = item, true
	} else {
		h.adjustPeak(item)
	}
	return zero, false, nil
}

// PushPop is a push followed by a pop in a single pass, without the heap
// ever growing. If item does not outrank the current root it is returned
// unchanged and the heap is untouched; otherwise the root is returned and
// item takes its place.
func (h *Heap[T]) PushPop(item T) (T, error) {
	if _, ok := h.index[item]; ok {
		var zero T
		return zero, ErrAlreadyPresent
	}
	return h.pushPop(item)
}

func (h *Heap[T]) pushPop(item T) (T, error) {
	if len(h.items) == 0 {
		return item, nil
	}
	outranks, err := h.cmp(h.items[0], item)
	if err != nil {
		var zero T
		return zero, err
	}
	if !outranks {
		// The new item would end up at the root anyway.
		return item, nil
	}
	return h.replaceRoot(item)
}

// Pop removes and returns the root, the element with the highest priority.
func (h *Heap[T]) Pop() (T, error) {
	var zero T
	n := len(h.items) - 1
	if n < 0 {
		return zero, ErrEmpty
	}
	out := h.items[0]
	if n == 0 {
		delete(h.index, out)
		h.items[0] = zero
		h.items = h.items[:0]
		h.dropped(out)
		return out, nil
	}
	moved := h.items[n]
	if _, err := h.downPath(moved, 0, n); err != nil {
		return zero, err
	}
	delete(h.index, out)
	h.items[n] = zero
	h.items = h.items[:n]
	h.commitDown(moved, 0)
	h.dropped(out)
	return out, nil
}

// Replace atomically pops the root and pushes item, returning the previous
// root. It is equivalent to a pop followed by a push but resettles the heap
// only once. Fails with ErrEmpty on an empty heap and ErrAlreadyPresent if
// item is already stored.
func (h *Heap[T]) Replace(item T) (T, error) {
	var zero T
	if len(h.items) == 0 {
		return zero, ErrEmpty
	}
	if _, ok := h.index[item]; ok {
		return zero, ErrAlreadyPresent
	}
	return h.replaceRoot(item)
}

// replaceRoot writes item over the root and resettles toward the leaves.
// The caller has already ruled out an empty heap and a duplicate item.
func (h *Heap[T]) replaceRoot(item T) (T, error) {
	out := h.items[0]
	if _, err := h.downPath(item, 0, len(h.items)); err != nil {
		var zero T
		return zero, err
	}
	delete(h.index, out)
	h.commitDown(item, 0)
	h.noteInserted(item)
	h.dropped(out)
	h.adjustPeak(item)
	return out, nil
}

// Remove removes item from anywhere in the heap in O(log n).
func (h *Heap[T]) Remove(item T) error {
	pos, ok := h.index[item]
	if !ok {
		return ErrNotFound
	}
	var zero T
	n := len(h.items) - 1
	if pos == n {
		delete(h.index, item)
		h.items[n] = zero
		h.items = h.items[:n]
		h.dropped(item)
		return nil
	}
	// The last element fills the vacated slot; its resting place may lie
	// toward the leaves or toward the root.
	moved := h.items[n]
	down, err := h.downPath(moved, pos, n)
	if err != nil {
		return err
	}
	up := pos
	if down == pos {
		if up, err = h.upPath(moved, pos); err != nil {
			return err
		}
	}
	delete(h.index, item)
	h.items[n] = zero
	h.items = h.items[:n]
	if down != pos {
		h.commitDown(moved, pos)
	} else {
		h.commitUp(moved, pos, up)
	}
	h.dropped(item)
	return nil
}

// Top returns the root without removing it.
func (h *Heap[T]) Top() (T, error) {
	if len(h.items) == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return h.items[0], nil
}

// Peak returns the extremum opposite the root, e.g. the maximum of a
// min-heap. The result is cached; when the cache is invalid the peak is
// recomputed by scanning the leaf half of the array, which is guaranteed
// to contain it.
func (h *Heap[T]) Peak() (T, error) {
	var zero T
	n := len(h.items)
	if n == 0 {
		return zero, ErrEmpty
	}
	if h.hasPeak {
		return h.peak, nil
	}
	peak := h.items[n/2]
	for i := n/2 + 1; i < n; i++ {
		// The element the comparison prefers less is closer to the peak.
		outranks, err := h.cmp(peak, h.items[i])
		if err != nil {
			return zero, err
		}
		if outranks {
			peak = h.items[i]
		}
	}
	h.peak, h.hasPeak = peak, true
	return peak, nil
}

// Last returns the most recently inserted element. It fails with ErrNoLast
// once that element has left the heap by any path, and with ErrEmpty on an
// empty heap.
func (h *Heap[T]) Last() (T, error) {
	var zero T
	if len(h.items) == 0 {
		return zero, ErrEmpty
	}
	if !h.hasLast {
		return zero, ErrNoLast
	}
	return h.last, nil
}

// At returns the element at position i of the backing array. The array is
// in heap order, not sorted order.
func (h *Heap[T]) At(i int) (T, error) {
	if i < 0 || i >= len(h.items) {
		var zero T
		return zero, ErrOutOfRange
	}
	return h.items[i], nil
}

// SetLimit changes the size limit. Shrinking below the current length pops
// elements until the heap fits and returns them in pop order; growing never
// evicts. A negative n means unbounded.
func (h *Heap[T]) SetLimit(n int) ([]T, error) {
	if n < 0 {
		n = Unbounded
	}
	h.limit = n
	var out []T
	for len(h.items) > n {
		popped, err := h.Pop()
		if err != nil {
			return out, err
		}
		out = append(out, popped)
	}
	return out, nil
}

// Clear removes all elements and resets the cached last and peak.
func (h *Heap[T]) Clear() {
	clear(h.index)
	clear(h.items)
	h.items = h.items[:0]
	var zero T
	h.last, h.hasLast = zero, false
	h.peak, h.hasPeak = zero, false
}

// Items returns a copy of the backing array in heap order. It is intended
// for read-only traversal of every stored element, e.g. by a collaborator
// tracking element lifetimes.
func (h *Heap[T]) Items() []T {
	out := make([]T, len(h.items))
	copy(out, h.items)
	return out
}

// noteInserted records item as the most recent arrival.
func (h *Heap[T]) noteInserted(item T) {
	h.last, h.hasLast = item, true
}

// dropped is the single place every removal path reports the element that
// left the heap, so the cached last and peak are invalidated exactly once.
func (h *Heap[T]) dropped(item T) {
	if h.hasLast && h.last == item {
		var zero T
		h.last, h.hasLast = zero, false
	}
	if h.hasPeak && h.peak == item {
		var zero T
		h.peak, h.hasPeak = zero, false
	}
}

// adjustPeak widens the cached peak to cover a newly inserted item. A
// failing comparison only drops the cache; the peak is recomputed on
// demand and the comparison error reported then.
func (h *Heap[T]) adjustPeak(item T) {
	if !h.hasPeak {
		return
	}
	outranks, err := h.cmp(h.peak, item)
	if err != nil {
		var zero T
		h.peak, h.hasPeak = zero, false
		return
	}
	if outranks {
		h.peak = item
	}
}
