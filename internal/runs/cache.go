package runs

import (
	"container/list"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"
)

// CacheKey identifies a cached run result.
type CacheKey string

// lruCache implements a thread-safe LRU cache with optional TTL expiry.
type lruCache struct {
	capacity int
	ttl      time.Duration

	mu    sync.RWMutex
	cache map[CacheKey]*list.Element
	lru   *list.List

	hits   int64
	misses int64
}

type cacheEntry struct {
	key       CacheKey
	value     interface{}
	expiresAt time.Time
}

func newLRUCache(capacity int, ttl time.Duration) *lruCache {
	return &lruCache{
		capacity: capacity,
		ttl:      ttl,
		cache:    make(map[CacheKey]*list.Element, capacity),
		lru:      list.New(),
	}
}

func (c *lruCache) Get(key CacheKey) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.cache[key]
	if !exists {
		c.misses++
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	if c.ttl > 0 && time.Now().After(entry.expiresAt) {
		c.removeElement(elem)
		c.misses++
		return nil, false
	}

	c.lru.MoveToFront(elem)
	c.hits++
	return entry.value, true
}

func (c *lruCache) Put(key CacheKey, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.cache[key]; exists {
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		if c.ttl > 0 {
			entry.expiresAt = time.Now().Add(c.ttl)
		}
		c.lru.MoveToFront(elem)
		return
	}

	entry := &cacheEntry{key: key, value: value}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}

	elem := c.lru.PushFront(entry)
	c.cache[key] = elem

	if c.lru.Len() > c.capacity {
		c.evictOldest()
	}
}

func (c *lruCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[CacheKey]*list.Element, c.capacity)
	c.lru.Init()
	c.hits = 0
	c.misses = 0
}

func (c *lruCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lru.Len()
}

// CacheStats holds cache performance statistics.
type CacheStats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Size    int     `json:"size"`
	HitRate float64 `json:"hit_rate"`
}

func (c *lruCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return CacheStats{Hits: c.hits, Misses: c.misses, Size: c.lru.Len(), HitRate: hitRate}
}

func (c *lruCache) evictOldest() {
	elem := c.lru.Back()
	if elem != nil {
		c.removeElement(elem)
	}
}

func (c *lruCache) removeElement(elem *list.Element) {
	c.lru.Remove(elem)
	entry := elem.Value.(*cacheEntry)
	delete(c.cache, entry.key)
}

// ResultCache caches completed runs keyed by the hash of their owner,
// dataset, and parameters, so that an owner resubmitting the same dataset
// with the same epsilon/min_pts/peak settings skips re-running OPTICS.
type ResultCache struct {
	cache *lruCache
}

// NewResultCache creates a run-result cache with the given capacity and
// entry TTL (0 disables expiry).
func NewResultCache(capacity int, ttl time.Duration) *ResultCache {
	return &ResultCache{cache: newLRUCache(capacity, ttl)}
}

// Key derives a cache key from the submitting owner, a dataset, and its
// run parameters. Two requests from the same owner with identical datasets
// and parameters hash identically regardless of submission order; the
// owner ID is folded in so owners never see each other's cached runs even
// for byte-identical submissions.
func Key(ownerID string, dataset [][]float64, params Params) CacheKey {
	h := sha256.New()

	h.Write([]byte(ownerID))
	h.Write([]byte{0})

	for _, point := range dataset {
		for _, v := range point {
			binary.Write(h, binary.LittleEndian, math.Float64bits(v))
		}
	}

	binary.Write(h, binary.LittleEndian, math.Float64bits(params.Epsilon))
	binary.Write(h, binary.LittleEndian, int32(params.MinPts))
	h.Write([]byte(params.PeakMode))
	binary.Write(h, binary.LittleEndian, int32(params.TopK))
	binary.Write(h, binary.LittleEndian, math.Float64bits(params.PersistenceTau))
	binary.Write(h, binary.LittleEndian, math.Float64bits(params.OutlierThreshold))

	return CacheKey(fmt.Sprintf("run:%x", h.Sum(nil)[:16]))
}

// Get retrieves a cached run by key.
func (rc *ResultCache) Get(key CacheKey) (*Run, bool) {
	value, found := rc.cache.Get(key)
	if !found {
		return nil, false
	}

	run, ok := value.(*Run)
	if !ok {
		rc.cache.removeKey(key)
		return nil, false
	}
	return run, true
}

// Put stores a completed run under key.
func (rc *ResultCache) Put(key CacheKey, run *Run) {
	rc.cache.Put(key, run)
}

// Clear removes all cached runs.
func (rc *ResultCache) Clear() {
	rc.cache.Clear()
}

// Stats returns cache performance statistics.
func (rc *ResultCache) Stats() CacheStats {
	return rc.cache.Stats()
}

// Size returns the number of cached entries.
func (rc *ResultCache) Size() int {
	return rc.cache.Size()
}

// removeKey removes a specific key, used when a cached value fails its
// type assertion.
func (c *lruCache) removeKey(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, exists := c.cache[key]; exists {
		c.removeElement(elem)
	}
}
