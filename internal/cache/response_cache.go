// internal/cache/response_cache.go
package cache

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"smartborrow/internal/common/logger"
	"smartborrow/internal/common/metrics"
	"smartborrow/internal/models"
)

const (
	DefaultTTL      = time.Hour
	DefaultCapacity = 1000
)

// entry pairs the cached Answer with its creation time so eviction order can
// be audited and stale entries are observable.
type entry struct {
	answer    models.Answer
	createdAt time.Time
}

// Stats is a point-in-time snapshot of the cache counters. Hit/miss counters
// are process-wide and reset only at process start.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Size    int     `json:"size"`
	HitRate float64 `json:"hitRate"`
}

// ResponseCache stores fully-built Answers keyed by normalized query text.
// Entries expire after the configured TTL and the least recently used entry
// is evicted once capacity is exceeded. Safe for concurrent use; concurrent
// writers to the same key race with last-write-wins semantics.
type ResponseCache struct {
	lru    *expirable.LRU[string, entry]
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
	logger logger.Logger
}

// New creates a ResponseCache. Zero ttl or capacity fall back to the
// defaults (3600s, 1000 entries).
func New(ttl time.Duration, capacity int, log logger.Logger) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ResponseCache{
		lru:    expirable.NewLRU[string, entry](capacity, nil, ttl),
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "response-cache"}),
	}
}

// Get returns the Answer cached under key, if present and unexpired. Expired
// entries are treated as absent and removed. Every call moves the counters.
func (c *ResponseCache) Get(key string) (models.Answer, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		metrics.CacheMisses.Inc()
		return models.Answer{}, false
	}

	c.hits.Add(1)
	metrics.CacheHits.Inc()
	return e.answer, true
}

// Put stores a fully-built Answer. Answers carrying an error must never be
// cached; callers enforce that, Put double-checks.
func (c *ResponseCache) Put(key string, answer models.Answer) {
	if answer.Error != "" {
		c.logger.Warn("refusing to cache degraded answer", map[string]interface{}{
			"key": key,
		})
		return
	}
	c.lru.Add(key, entry{answer: answer, createdAt: time.Now()})
}

// Invalidate removes the entry for key, if any.
func (c *ResponseCache) Invalidate(key string) {
	c.lru.Remove(key)
}

// Purge drops every entry. Counters are left untouched.
func (c *ResponseCache) Purge() {
	c.lru.Purge()
}

// Stats returns the current hit/miss counters and live entry count.
func (c *ResponseCache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	rate := 0.0
	if total > 0 {
		rate = float64(hits) / float64(total)
	}

	return Stats{
		Hits:    hits,
		Misses:  misses,
		Size:    c.lru.Len(),
		HitRate: rate,
	}
}
