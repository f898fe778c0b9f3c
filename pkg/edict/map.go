// Package edict implements a fixed-capacity key/value map whose eviction
// order is governed by an indexed heap over its pairs, ordered by value.
// Once the capacity is exceeded the least prioritized pair is evicted
// automatically. Optional callbacks notify the owner of payloads entering
// and leaving the map so externally held resources can be reconciled.
//
// The map and the heap are kept in lockstep; every mutation touches both
// or neither. Operations are not safe for concurrent use.
package edict

import (
	"errors"

	cerrors "cloudeng.io/errors"

	"github.com/thoth-station/fext/pkg/eheap"
)

var (
	// ErrKeyNotFound is returned when the requested key is not stored.
	ErrKeyNotFound = errors.New("key not present")
	// ErrKeyExists is returned by Add for a key that is already stored.
	ErrKeyExists = errors.New("key already present")
)

// Pair is a key/value pair as stored in the eviction heap. Two pairs are
// equal only when both key and value match, while the heap orders them by
// value alone.
type Pair[K, V comparable] struct {
	Key   K
	Value V
}

// LessFunc orders values; a sorts before b means a is evicted first. A
// non-nil error marks the pair of values as not comparable.
type LessFunc[V any] func(a, b V) (bool, error)

// Map is a bounded key/value store. Construct instances with New.
type Map[K, V comparable] struct {
	entries map[K]V
	order   *eheap.Heap[Pair[K, V]]
	limit   int

	onAdded   func(K, V)
	onRemoved func(K, V)
}

// New returns an empty map whose eviction order is defined by less.
func New[K, V comparable](less LessFunc[V], opts ...Option[K, V]) *Map[K, V] {
	o := options[K, V]{limit: eheap.Unbounded}
	for _, fn := range opts {
		fn(&o)
	}
	byValue := func(a, b Pair[K, V]) (bool, error) {
		return less(a.Value, b.Value)
	}
	// The heap itself is unbounded; the map enforces the limit so that
	// restoring a pair after a failed replacement can never evict.
	return &Map[K, V]{
		entries:   make(map[K]V),
		order:     eheap.New(byValue),
		limit:     o.limit,
		onAdded:   o.onAdded,
		onRemoved: o.onRemoved,
	}
}

// Len returns the number of pairs currently stored.
func (m *Map[K, V]) Len() int { return len(m.entries) }

// Limit returns the maximum number of pairs the map may hold.
func (m *Map[K, V]) Limit() int { return m.limit }

// Contains reports whether key is currently stored.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.entries[key]
	return ok
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, error) {
	value, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, ErrKeyNotFound
	}
	return value, nil
}

// Add inserts a pair under a key that must not be stored yet. The added
// callback fires for the new pair and the removed callback for a pair
// evicted to honor the limit.
func (m *Map[K, V]) Add(key K, value V) error {
	if _, ok := m.entries[key]; ok {
		return ErrKeyExists
	}
	return m.insert(key, value)
}

// Set inserts or replaces the value stored under key. Replacement removes
// the prior pair before the new one is inserted; if the insertion fails
// the prior pair is restored, so the map never loses a key it held before
// the call. The removed callback fires for a replaced value after the new
// pair has settled.
func (m *Map[K, V]) Set(key K, value V) error {
	old, existed := m.entries[key]
	if existed {
		if err := m.order.Remove(Pair[K, V]{key, old}); err != nil {
			return err
		}
		delete(m.entries, key)
	}
	if err := m.insert(key, value); err != nil {
		if !existed {
			return err
		}
		errs := cerrors.M{}
		errs.Append(err)
		// The slot the prior pair occupied was already accounted for in
		// the limit, so reinstating it cannot evict.
		if _, _, rerr := m.order.Push(Pair[K, V]{key, old}); rerr != nil {
			errs.Append(rerr)
		} else {
			m.entries[key] = old
		}
		return errs.Err()
	}
	if existed && m.onRemoved != nil {
		m.onRemoved(key, old)
	}
	return nil
}

// insert places the pair in both containers, evicting the current root of
// the eviction heap if the map would exceed its limit.
func (m *Map[K, V]) insert(key K, value V) error {
	if _, _, err := m.order.Push(Pair[K, V]{key, value}); err != nil {
		return err
	}
	m.entries[key] = value
	if len(m.entries) > m.limit {
		if err := m.evictOne(); err != nil {
			// Unwind this insertion rather than leave the map over limit.
			errs := cerrors.M{}
			errs.Append(err)
			if rerr := m.order.Remove(Pair[K, V]{key, value}); rerr != nil {
				errs.Append(rerr)
			} else {
				delete(m.entries, key)
			}
			return errs.Err()
		}
	}
	if m.onAdded != nil {
		m.onAdded(key, value)
	}
	return nil
}

// evictOne removes the least prioritized pair from both containers and
// notifies the removed callback.
func (m *Map[K, V]) evictOne() error {
	out, err := m.order.Pop()
	if err != nil {
		return err
	}
	delete(m.entries, out.Key)
	if m.onRemoved != nil {
		m.onRemoved(out.Key, out.Value)
	}
	return nil
}

// Remove removes the pair stored under key and returns its value.
// Ownership transfers through the return value, so the removed callback
// does not fire.
func (m *Map[K, V]) Remove(key K) (V, error) {
	value, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, ErrKeyNotFound
	}
	if err := m.order.Remove(Pair[K, V]{key, value}); err != nil {
		var zero V
		return zero, err
	}
	delete(m.entries, key)
	return value, nil
}

// SetLimit changes the capacity. Shrinking below the current length evicts
// pairs in priority order, notifying the removed callback for each;
// growing never evicts. A negative n means unbounded.
func (m *Map[K, V]) SetLimit(n int) error {
	if n < 0 {
		n = eheap.Unbounded
	}
	for len(m.entries) > n {
		if err := m.evictOne(); err != nil {
			return err
		}
	}
	m.limit = n
	return nil
}

// Clear empties the map. No per-pair callbacks fire; reconciling a bulk
// teardown is the caller's responsibility.
func (m *Map[K, V]) Clear() {
	clear(m.entries)
	m.order.Clear()
}

// PeakKey returns the key of the pair opposite the eviction order, e.g.
// the key of the largest value when small values evict first.
func (m *Map[K, V]) PeakKey() (K, error) {
	pair, err := m.order.Peak()
	if err != nil {
		var zero K
		return zero, err
	}
	return pair.Key, nil
}

// Each calls fn for every stored pair in map iteration order, stopping
// early when fn returns false. The order is arbitrary; use Pairs for the
// heap's view.
func (m *Map[K, V]) Each(fn func(K, V) bool) {
	for k, v := range m.entries {
		if !fn(k, v) {
			return
		}
	}
}

// Pairs returns a copy of the eviction heap's backing array in heap order.
func (m *Map[K, V]) Pairs() []Pair[K, V] {
	return m.order.Items()
}

// Keys returns the stored keys in arbitrary order.
func (m *Map[K, V]) Keys() []K {
	out := make([]K, 0, len(m.entries))
	for k := range m.entries {
		out = append(out, k)
	}
	return out
}

// Values returns the stored values in arbitrary order.
func (m *Map[K, V]) Values() []V {
	out := make([]V, 0, len(m.entries))
	for _, v := range m.entries {
		out = append(out, v)
	}
	return out
}
