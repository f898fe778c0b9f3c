package eheap

import "fmt"

// The sift helpers are split into a read-only path computation and a
// mutation-only commit. An up-sift compares the inserted item against its
// successive ancestors and a down-sift against elements of the subtree
// below the vacated slot, so neither comparison sequence depends on
// mutations the sift itself would make. Computing the full path first means
// a failing comparison aborts the operation with the array and the position
// index untouched.

// cmp wraps the configured comparison, tagging failures with ErrComparison.
func (h *Heap[T]) cmp(a, b T) (bool, error) {
	less, err := h.less(a, b)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrComparison, err)
	}
	return less, nil
}

// upPath returns the index at which item would come to rest if placed at
// from and sifted toward the root. No state is modified.
func (h *Heap[T]) upPath(item T, from int) (int, error) {
	pos := from
	for pos > 0 {
		parent := (pos - 1) / 2
		less, err := h.cmp(item, h.items[parent])
		if err != nil {
			return 0, err
		}
		if !less {
			break
		}
		pos = parent
	}
	return pos, nil
}

// commitUp places item at to, shifting the ancestors between to and from
// one level toward the leaves. Every element move updates the position
// index in the same step.
func (h *Heap[T]) commitUp(item T, from, to int) {
	for from > to {
		parent := (from - 1) / 2
		h.items[from] = h.items[parent]
		h.index[h.items[from]] = from
		from = parent
	}
	h.items[to] = item
	h.index[item] = to
}

// downPath computes the chain of child slots a hole at from travels while
// item settles toward the leaves, considering only the first n elements.
// The chosen slots are recorded in h.path for commitDown. No state is
// modified.
func (h *Heap[T]) downPath(item T, from, n int) (int, error) {
	h.path = h.path[:0]
	pos := from
	for {
		child := 2*pos + 1
		if child >= n || child < 0 { // child < 0 after int overflow
			break
		}
		if right := child + 1; right < n {
			less, err := h.cmp(h.items[right], h.items[child])
			if err != nil {
				return 0, err
			}
			if less {
				child = right
			}
		}
		less, err := h.cmp(h.items[child], item)
		if err != nil {
			return 0, err
		}
		if !less {
			break
		}
		h.path = append(h.path, child)
		pos = child
	}
	return pos, nil
}

// commitDown replays the path recorded by the last downPath call, pulling
// each chosen child one level toward the root and placing item in the
// final hole.
func (h *Heap[T]) commitDown(item T, from int) {
	for _, child := range h.path {
		h.items[from] = h.items[child]
		h.index[h.items[from]] = from
		from = child
	}
	h.items[from] = item
	h.index[item] = from
}
