package gocas

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// ============================================================
// Simplifier cache
// ============================================================

// exprCache is a bounded memo table from input tree to simplified tree.
// Entries are keyed by structural hash and verified with Equal; the oldest
// entry is evicted first.
type exprCache struct {
	mu       sync.Mutex
	capacity int
	buckets  map[uint64][]cacheEntry
	order    []cacheKey
	head     int
	size     int
	hits     int64
	misses   int64
}

type cacheEntry struct {
	key   Expr
	value Expr
}

type cacheKey struct {
	hash uint64
	key  Expr
}

func newExprCache(capacity int) *exprCache {
	return &exprCache{
		capacity: capacity,
		buckets:  make(map[uint64][]cacheEntry, capacity),
		order:    make([]cacheKey, capacity),
	}
}

var simplifyCache = newExprCache(DefaultConfig().CacheCapacity)

func (c *exprCache) get(e Expr, h uint64) (Expr, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ent := range c.buckets[h] {
		if Equal(ent.key, e) {
			atomic.AddInt64(&c.hits, 1)
			return ent.value, true
		}
	}
	atomic.AddInt64(&c.misses, 1)
	return nil, false
}

func (c *exprCache) put(e Expr, h uint64, v Expr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ent := range c.buckets[h] {
		if Equal(ent.key, e) {
			return
		}
	}
	if c.size == c.capacity {
		c.evictOldest()
	}
	slot := (c.head + c.size) % c.capacity
	c.order[slot] = cacheKey{hash: h, key: e}
	c.size++
	c.buckets[h] = append(c.buckets[h], cacheEntry{key: e, value: v})
}

// evictOldest drops the entry at head. The caller holds mu.
func (c *exprCache) evictOldest() {
	old := c.order[c.head]
	c.order[c.head] = cacheKey{}
	c.head = (c.head + 1) % c.capacity
	c.size--
	bucket := c.buckets[old.hash]
	for i, ent := range bucket {
		if ent.key == old.key {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(c.buckets, old.hash)
	} else {
		c.buckets[old.hash] = bucket
	}
	if l := kernelLog(); l.IsLevelEnabled(logrus.TraceLevel) {
		l.WithField("key", old.key.String()).Trace("simplify cache eviction")
	}
}

// resize empties the cache and changes its capacity.
func (c *exprCache) resize(capacity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capacity = capacity
	c.clearLocked()
}

// reset empties the cache and keeps its capacity.
func (c *exprCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

func (c *exprCache) clearLocked() {
	c.buckets = make(map[uint64][]cacheEntry, c.capacity)
	c.order = make([]cacheKey, c.capacity)
	c.head, c.size = 0, 0
}

func (c *exprCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// CacheStats reports the simplifier cache occupancy and hit counters.
type CacheStats struct {
	Size     int   `json:"size"`
	Capacity int   `json:"capacity"`
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
}

// SimplifyCacheStats returns a snapshot of the simplifier cache.
func SimplifyCacheStats() CacheStats {
	c := simplifyCache
	c.mu.Lock()
	size, capacity := c.size, c.capacity
	c.mu.Unlock()
	return CacheStats{
		Size:     size,
		Capacity: capacity,
		Hits:     atomic.LoadInt64(&c.hits),
		Misses:   atomic.LoadInt64(&c.misses),
	}
}

// ClearSimplifyCache drops every cached result.
func ClearSimplifyCache() { simplifyCache.resize(cfg().CacheCapacity) }
