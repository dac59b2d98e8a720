package engine

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		k1 := CacheKey("stream_ranking", "all", "rust kingdom")
		k2 := CacheKey("stream_ranking", "all", "rust kingdom")
		if k1 != k2 {
			t.Errorf("CacheKey not deterministic: %q != %q", k1, k2)
		}
	})

	t.Run("different inputs differ", func(t *testing.T) {
		k1 := CacheKey("stream_ranking", "twitch")
		k2 := CacheKey("stream_ranking", "kick")
		if k1 == k2 {
			t.Errorf("different inputs produced same key: %q", k1)
		}
	})

	t.Run("has prefix", func(t *testing.T) {
		k := CacheKey("test")
		if k[:3] != "st:" {
			t.Errorf("expected st: prefix, got %q", k[:3])
		}
	})
}

func TestCacheGetSet(t *testing.T) {
	InitCache(1*time.Minute, 100, 5*time.Minute)
	t.Cleanup(func() { InitCache(0, 0, 0) })

	ctx := context.Background()
	key := CacheKey("test", "round-trip")

	if _, ok := CacheGet(ctx, key); ok {
		t.Error("expected cache miss on empty cache")
	}

	val := StreamRankingOutput{
		Platform: "all",
		Match:    "rust kingdom",
		Streams:  []RankedStream{{Rank: 1, Platform: "Twitch", Title: "x", Viewers: "1K viewers", ViewerCount: 1000}},
	}
	CacheSet(ctx, key, val)

	got, ok := CacheGet(ctx, key)
	if !ok {
		t.Fatal("expected cache hit after set")
	}
	if len(got.Streams) != 1 || got.Streams[0].ViewerCount != 1000 {
		t.Errorf("got %+v, want %+v", got, val)
	}
}

func TestCacheDisabled(t *testing.T) {
	InitCache(0, 100, 5*time.Minute)

	ctx := context.Background()
	key := CacheKey("test", "disabled")
	CacheSet(ctx, key, StreamRankingOutput{Match: "x"})
	if _, ok := CacheGet(ctx, key); ok {
		t.Error("expected miss with cache disabled")
	}
}

func TestCacheExpiration(t *testing.T) {
	InitCache(1*time.Millisecond, 100, 5*time.Minute)
	t.Cleanup(func() { InitCache(0, 0, 0) })

	ctx := context.Background()
	key := CacheKey("test", "expiry")

	CacheSet(ctx, key, StreamRankingOutput{Match: "temp"})
	time.Sleep(5 * time.Millisecond)

	if _, ok := CacheGet(ctx, key); ok {
		t.Error("expected cache miss after TTL expiry")
	}
}

func TestCacheEviction(t *testing.T) {
	InitCache(1*time.Minute, 3, 5*time.Minute)
	t.Cleanup(func() { InitCache(0, 0, 0) })
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		key := CacheKey("evict", fmt.Sprintf("item-%d", i))
		CacheSet(ctx, key, StreamRankingOutput{Match: fmt.Sprintf("v%d", i)})
	}

	count := 0
	rankingCache.entries.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count > 3 {
		t.Errorf("expected at most 3 entries after eviction, got %d", count)
	}
}

func TestCacheStats(t *testing.T) {
	InitCache(1*time.Minute, 100, 5*time.Minute)
	t.Cleanup(func() { InitCache(0, 0, 0) })
	cacheHits.Store(0)
	cacheMisses.Store(0)

	ctx := context.Background()
	key := CacheKey("stats", "test")

	CacheGet(ctx, key)
	if _, misses := CacheStats(); misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}

	CacheSet(ctx, key, StreamRankingOutput{Match: "x"})
	CacheGet(ctx, key)

	hits, misses := CacheStats()
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
	if misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}
}
