// Package lrucache provides a concurrent get-or-load cache on top of the
// single-threaded bounded map. Keys are sharded by hash, each shard guarded
// by its own mutex, and concurrent loads of the same key are coalesced
// through promises. Entries are evicted least-recently-accessed first once
// a shard is full, or on expiry of the configured TTL.
package lrucache

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/thinkdata-works/gopromise/pkg/promise"

	"github.com/thoth-station/fext/pkg/edict"
)

type entry[V any] struct {
	p            *promise.Promise[V]
	lastAccessed time.Time
}

func (e *entry[V]) hasExpired(ttl time.Duration, t time.Time) bool {
	return !t.Before(e.lastAccessed.Add(ttl))
}

type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries *edict.Map[K, *entry[V]]
}

// Cache is a sharded LRU cache. All methods are safe for concurrent use.
type Cache[K comparable, V any] struct {
	shards []*shard[K, V]
	ttl    time.Duration
}

// New returns a cache holding at most shardSize entries per shard across
// numShards shards. Entries older than ttl are reloaded on access.
func New[K comparable, V any](shardSize, numShards int, ttl time.Duration) *Cache[K, V] {
	if shardSize <= 0 {
		shardSize = 64
	}
	if numShards <= 0 {
		numShards = 16
	}
	c := &Cache[K, V]{
		shards: make([]*shard[K, V], numShards),
		ttl:    ttl,
	}
	for i := range c.shards {
		c.shards[i] = &shard[K, V]{
			entries: edict.New[K, *entry[V]](
				byLastAccess[V],
				edict.WithLimit[K, *entry[V]](shardSize),
			),
		}
	}
	return c
}

// byLastAccess evicts the entry that has gone longest without access.
func byLastAccess[V any](a, b *entry[V]) (bool, error) {
	return a.lastAccessed.Before(b.lastAccessed), nil
}

func hash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

func (c *Cache[K, V]) shardFor(key K) *shard[K, V] {
	return c.shards[hash(fmt.Sprintf("%v", key))%uint32(len(c.shards))]
}

// Get returns the cached value for key, loading it with load on a miss or
// after expiry. Concurrent calls for the same key share a single load.
func (c *Cache[K, V]) Get(key K, load func() (*V, error)) (*V, error) {
	s := c.shardFor(key)

	s.mu.Lock()
	now := time.Now()
	if e, err := s.entries.Get(key); err == nil && !e.hasExpired(c.ttl, now) {
		// Fresh entry; bump its access time and reorder.
		e.lastAccessed = now
		if err := s.entries.Set(key, e); err != nil {
			s.mu.Unlock()
			return nil, err
		}
		s.mu.Unlock()
		return e.p.Wait()
	}

	// Missing or expired; replace with a new in-flight entry.
	e := &entry[V]{p: promise.NewPromise[V](), lastAccessed: now}
	if err := s.entries.Set(key, e); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	go func() {
		v, err := load()
		if err != nil {
			e.p.Reject(err)
			return
		}
		e.p.Resolve(v)
	}()

	return e.p.Wait()
}

// HasKey reports whether key holds an unexpired entry. An expired entry is
// removed on the way.
func (c *Cache[K, V]) HasKey(key K) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.entries.Get(key)
	if err != nil {
		return false
	}
	if e.hasExpired(c.ttl, time.Now()) {
		_, _ = s.entries.Remove(key)
		return false
	}
	return true
}

// Remove drops the entry stored under key, reporting whether one existed.
// An in-flight load keeps running; its waiters are still answered.
func (c *Cache[K, V]) Remove(key K) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.entries.Remove(key)
	return err == nil
}

// ShardLen returns the number of entries in the shard that key maps to.
func (c *Cache[K, V]) ShardLen(key K) int {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Len()
}
