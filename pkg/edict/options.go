package edict

type options[K, V comparable] struct {
	limit     int
	onAdded   func(K, V)
	onRemoved func(K, V)
}

// Option configures a map created by New.
type Option[K, V comparable] func(*options[K, V])

// WithLimit bounds the number of pairs the map may hold. A negative n
// means unbounded.
func WithLimit[K, V comparable](n int) Option[K, V] {
	return func(o *options[K, V]) {
		if n >= 0 {
			o.limit = n
		}
	}
}

// WithCallbacks registers the notification hooks. onAdded fires for every
// pair entering the map and onRemoved for every pair leaving it through
// eviction or replacement; either may be nil.
func WithCallbacks[K, V comparable](onAdded, onRemoved func(K, V)) Option[K, V] {
	return func(o *options[K, V]) {
		o.onAdded = onAdded
		o.onRemoved = onRemoved
	}
}
