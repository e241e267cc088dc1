// internal/agents/webcache.go
package agents

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"smartborrow/internal/clients/websearch"
	"smartborrow/internal/common/database"
	"smartborrow/internal/common/logger"
)

const webCacheKeyPrefix = "websearch:"

// DefaultWebCacheTTL keeps web results far longer than answers; page content
// for the covered topics moves on the order of days, not hours.
const DefaultWebCacheTTL = 24 * time.Hour

// WebCache stores web search results in Redis under the normalized query.
// Its TTL is independent of the response cache. Cache trouble is never
// fatal: a failing Redis degrades to searching every time.
type WebCache struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewWebCache(rc *database.RedisClient, ttl time.Duration, log logger.Logger) *WebCache {
	if ttl <= 0 {
		ttl = DefaultWebCacheTTL
	}
	return &WebCache{
		redis:  rc,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "web-cache"}),
	}
}

func (c *WebCache) Get(ctx context.Context, normalizedQuery string) ([]websearch.Result, bool) {
	raw, err := c.redis.Get(ctx, webCacheKeyPrefix+normalizedQuery)
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("web cache read failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	var results []websearch.Result
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		c.logger.Warn("web cache entry corrupt, dropping", map[string]interface{}{"error": err.Error()})
		_ = c.redis.Del(ctx, webCacheKeyPrefix+normalizedQuery)
		return nil, false
	}

	return results, true
}

func (c *WebCache) Put(ctx context.Context, normalizedQuery string, results []websearch.Result) {
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, webCacheKeyPrefix+normalizedQuery, raw, c.ttl); err != nil {
		c.logger.Warn("web cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
