package engine

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// rankingCache memoizes recent rankings so repeated tool calls do not each
// launch a browser. Memory only: entries are lost on restart.
var rankingCache *memCache

// Cache hit/miss counters.
var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

type memCache struct {
	entries         sync.Map // key → *cacheEntry
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stop            chan struct{}
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// InitCache sets up the ranking cache. A non-positive ttl disables caching.
// Calling it again replaces the previous cache and stops its cleanup loop.
func InitCache(ttl time.Duration, maxEntries int, cleanupInterval time.Duration) {
	if rankingCache != nil {
		close(rankingCache.stop)
		rankingCache = nil
	}
	if ttl <= 0 {
		slog.Info("cache: disabled")
		return
	}

	c := &memCache{
		ttl:             ttl,
		maxEntries:      maxEntries,
		cleanupInterval: cleanupInterval,
		stop:            make(chan struct{}),
	}
	rankingCache = c
	slog.Info("cache: initialized", slog.Duration("ttl", ttl), slog.Int("max_entries", maxEntries))

	go c.cleanupLoop()
}

// CacheKey builds a deterministic cache key from parts.
func CacheKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("st:%x", hash[:12]) // 24-char hex prefix
}

// CacheGet returns the cached ranking for key if present and fresh.
func CacheGet(_ context.Context, key string) (StreamRankingOutput, bool) {
	if rankingCache == nil {
		cacheMisses.Add(1)
		return StreamRankingOutput{}, false
	}

	if val, ok := rankingCache.entries.Load(key); ok {
		entry := val.(*cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			var out StreamRankingOutput
			if json.Unmarshal(entry.data, &out) == nil {
				slog.Debug("cache: hit", slog.String("key", key))
				cacheHits.Add(1)
				return out, true
			}
		}
		rankingCache.entries.Delete(key) // expired or corrupt
	}

	cacheMisses.Add(1)
	return StreamRankingOutput{}, false
}

// CacheSet stores value under key for the configured TTL.
func CacheSet(_ context.Context, key string, value StreamRankingOutput) {
	if rankingCache == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	rankingCache.evictIfNeeded()
	rankingCache.entries.Store(key, &cacheEntry{
		data:      data,
		expiresAt: time.Now().Add(rankingCache.ttl),
	})
}

// CacheStats returns current cache hit/miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}

// evictIfNeeded removes entries when the cache reaches maxEntries.
// Removes expired entries first, then oldest entries if still over limit.
func (c *memCache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	count := 0
	c.entries.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count < c.maxEntries {
		return
	}

	// Phase 1: remove expired
	now := time.Now()
	c.entries.Range(func(key, val any) bool {
		if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
			c.entries.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})
	if count < c.maxEntries {
		return
	}

	// Phase 2: remove oldest entries until under limit
	for count >= c.maxEntries {
		var oldestKey any
		oldestAt := time.Now().Add(c.ttl + time.Hour)
		c.entries.Range(func(key, val any) bool {
			// Earlier expiry = older entry (since expiry = createdAt + ttl)
			if entry, ok := val.(*cacheEntry); ok && entry.expiresAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = entry.expiresAt
			}
			return true
		})
		if oldestKey == nil {
			break
		}
		c.entries.Delete(oldestKey)
		count--
	}
}

// cleanupLoop periodically removes expired entries.
func (c *memCache) cleanupLoop() {
	interval := c.cleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.entries.Range(func(key, val any) bool {
				if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
					c.entries.Delete(key)
				}
				return true
			})
		}
	}
}
