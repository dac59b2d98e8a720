package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	TwitchScrapes  atomic.Int64
	KickScrapes    atomic.Int64
	ScrapeErrors   atomic.Int64
	CardsSeen      atomic.Int64
	CardsMatched   atomic.Int64
	CardsFailed    atomic.Int64
	StreamsOpened  atomic.Int64
	RankingCalls   atomic.Int64
	BrowserLaunch  atomic.Int64
	BrowserFailure atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"twitch_scrapes":   metrics.TwitchScrapes.Load(),
		"kick_scrapes":     metrics.KickScrapes.Load(),
		"scrape_errors":    metrics.ScrapeErrors.Load(),
		"cards_seen":       metrics.CardsSeen.Load(),
		"cards_matched":    metrics.CardsMatched.Load(),
		"cards_failed":     metrics.CardsFailed.Load(),
		"streams_opened":   metrics.StreamsOpened.Load(),
		"ranking_calls":    metrics.RankingCalls.Load(),
		"browser_launches": metrics.BrowserLaunch.Load(),
		"browser_failures": metrics.BrowserFailure.Load(),
		"cache_hits":       hits,
		"cache_misses":     misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"twitch_scrapes", "kick_scrapes", "scrape_errors",
		"cards_seen", "cards_matched", "cards_failed",
		"streams_opened", "ranking_calls",
		"browser_launches", "browser_failures",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for platforms/ and session/ sub-packages.
func IncrTwitchScrapes()   { metrics.TwitchScrapes.Add(1) }
func IncrKickScrapes()     { metrics.KickScrapes.Add(1) }
func IncrScrapeErrors()    { metrics.ScrapeErrors.Add(1) }
func IncrCardsSeen()       { metrics.CardsSeen.Add(1) }
func IncrCardsMatched()    { metrics.CardsMatched.Add(1) }
func IncrCardsFailed()     { metrics.CardsFailed.Add(1) }
func IncrStreamsOpened()   { metrics.StreamsOpened.Add(1) }
func IncrRankingCalls()    { metrics.RankingCalls.Add(1) }
func IncrBrowserLaunch()   { metrics.BrowserLaunch.Add(1) }
func IncrBrowserFailures() { metrics.BrowserFailure.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
