package eheap

type options struct {
	limit    int
	sliceCap int
}

// Option configures a heap created by New.
type Option func(*options)

// WithLimit bounds the number of elements the heap may hold. Inserting
// into a full heap evicts the root. A negative n means unbounded.
func WithLimit(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = Unbounded
		}
		o.limit = n
	}
}

// WithSliceCap sets the initial capacity of the backing array.
func WithSliceCap(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.sliceCap = n
		}
	}
}
