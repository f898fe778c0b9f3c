package eheap

import "errors"

var (
	// ErrEmpty is returned by operations that need at least one element.
	ErrEmpty = errors.New("heap is empty")
	// ErrNotFound is returned by Remove for an element that is not stored.
	ErrNotFound = errors.New("item not found in heap")
	// ErrAlreadyPresent is returned when inserting an element equal to one
	// already stored; the position index cannot hold two slots for it.
	ErrAlreadyPresent = errors.New("item already present in heap")
	// ErrNoLast is returned by Last once the most recently inserted
	// element has been removed.
	ErrNoLast = errors.New("no record of the last inserted item")
	// ErrOutOfRange is returned by At for an index beyond the current
	// length.
	ErrOutOfRange = errors.New("index out of range")
	// ErrComparison wraps an error returned by the comparison function.
	ErrComparison = errors.New("comparison failed")
)
