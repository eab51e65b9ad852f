package imagekit

import (
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ============================================================================
// Cache Interface
// ============================================================================

// Cache stores inspection results by fingerprint. Implementations must be
// safe for concurrent use.
type Cache interface {
	// Get retrieves a result from the cache.
	Get(key string) (Result, bool)

	// Set stores a result with the given TTL. A TTL of 0 means no expiration.
	Set(key string, value Result, ttl time.Duration)

	// Delete removes a result from the cache.
	Delete(key string)

	// Clear removes all results from the cache.
	Clear()
}

// CacheStatistics contains cache performance metrics.
type CacheStatistics struct {
	Hits    int64   `json:"hits" yaml:"hits"`
	Misses  int64   `json:"misses" yaml:"misses"`
	Size    int64   `json:"size" yaml:"size"`
	HitRate float64 `json:"hit_rate" yaml:"hit_rate"`
}

// Fingerprint identifies a stored file version by path, size and modification
// time. Any change to the file yields a new fingerprint, so cached results
// never need explicit invalidation.
func Fingerprint(path string, size int64, modTime time.Time) string {
	d := xxhash.New()
	_, _ = d.WriteString(path)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strconv.FormatInt(size, 10))
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strconv.FormatInt(modTime.UnixNano(), 10))
	return strconv.FormatUint(d.Sum64(), 16)
}

// ContentFingerprint identifies an in-memory image by its bytes.
func ContentFingerprint(data []byte) string {
	return "c" + strconv.FormatUint(xxhash.Sum64(data), 16)
}

// ============================================================================
// In-Memory Cache Implementation
// ============================================================================

type cacheEntry struct {
	value      Result
	expiration time.Time
	hasExpiry  bool
}

// MemoryCache is an in-memory Cache with TTL-based expiration.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	hits    int64
	misses  int64
	now     func() time.Time
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*cacheEntry),
		now:     time.Now,
	}
}

// Get retrieves a result from the cache.
func (c *MemoryCache) Get(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		c.misses++
		return Result{}, false
	}

	if entry.hasExpiry && c.now().After(entry.expiration) {
		delete(c.entries, key)
		c.misses++
		return Result{}, false
	}

	c.hits++
	return entry.value, true
}

// Set stores a result in the cache.
func (c *MemoryCache) Set(key string, value Result, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry{value: value}
	if ttl > 0 {
		entry.expiration = c.now().Add(ttl)
		entry.hasExpiry = true
	}
	c.entries[key] = entry
}

// Delete removes a result from the cache.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all results from the cache.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Stats returns cache statistics.
func (c *MemoryCache) Stats() CacheStatistics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return CacheStatistics{
		Hits:    c.hits,
		Misses:  c.misses,
		Size:    int64(len(c.entries)),
		HitRate: hitRate,
	}
}

// Cleanup removes expired entries from the cache.
// Call this periodically to bound memory in long-running watchers.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if entry.hasExpiry && now.After(entry.expiration) {
			delete(c.entries, key)
		}
	}
}

var _ Cache = (*MemoryCache)(nil)
