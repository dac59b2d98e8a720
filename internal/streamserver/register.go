package streamserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_streams/internal/browser"
	"github.com/anatolykoptev/go_streams/internal/engine"
	"github.com/anatolykoptev/go_streams/internal/engine/platforms"
	"github.com/anatolykoptev/go_streams/internal/toolutil"
)

// Launcher opens a fresh browser session for one tool call. It records the
// browser_launches and browser_failures metrics itself.
type Launcher func(ctx context.Context) (browser.Driver, error)

// RegisterTools registers the stream tools on the given MCP server: stream_ranking.
func RegisterTools(server *mcp.Server, launch Launcher) {
	registerStreamRanking(server, launch)
}

func registerStreamRanking(server *mcp.Server, launch Launcher) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "stream_ranking",
		Description: "List live streams in the Rust category on Twitch and Kick whose title contains a phrase (default \"rust kingdom\"), ranked by viewer count, highest first. Returns structured JSON with platform, title, raw viewer label and normalized viewer count.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.StreamRankingInput) (*mcp.CallToolResult, engine.StreamRankingOutput, error) {
		out, err := Ranking(ctx, launch, input)
		if err != nil {
			return nil, engine.StreamRankingOutput{}, err
		}
		return nil, out, nil
	})
}

// Ranking scrapes the requested platforms in a new browser session and ranks
// the matching streams. Results are cached per platform and filter.
func Ranking(ctx context.Context, launch Launcher, input engine.StreamRankingInput) (engine.StreamRankingOutput, error) {
	platform := toolutil.NormPlatform(input.Platform)
	useTwitch, useKick, err := toolutil.Platforms(platform)
	if err != nil {
		return engine.StreamRankingOutput{}, err
	}

	f := platforms.DefaultFilter()
	if m, ok := toolutil.Match(input.Match); ok {
		f = platforms.Filter{Title: m, KickRule: engine.KickRuleContains}
	}

	cacheKey := engine.CacheKey("stream_ranking", platform, strings.ToLower(f.Title), f.KickRule)
	if out, ok := engine.CacheGet(ctx, cacheKey); ok {
		return out, nil
	}

	d, err := launch(ctx)
	if err != nil {
		return engine.StreamRankingOutput{}, fmt.Errorf("browser: %w", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			slog.Debug("browser close failed", slog.Any("error", err))
		}
	}()

	var (
		cands    []platforms.Candidate
		failures int
		errs     []error
	)
	gather := func(col *platforms.Collection, err error) {
		if err != nil {
			engine.IncrScrapeErrors()
			slog.Warn("stream_ranking: collection failed", slog.Any("error", err))
			errs = append(errs, err)
			return
		}
		cands = append(cands, col.Matches...)
		failures += len(col.Failures)
	}
	if useTwitch {
		gather(platforms.CollectTwitch(ctx, d, f))
	}
	if useKick {
		gather(platforms.CollectKick(ctx, d, f))
	}

	attempted := 0
	if useTwitch {
		attempted++
	}
	if useKick {
		attempted++
	}
	if len(errs) == attempted {
		return engine.StreamRankingOutput{}, errors.Join(errs...)
	}

	out := engine.StreamRankingOutput{
		Platform: platform,
		Match:    f.Title,
		Streams:  make([]engine.RankedStream, 0, len(cands)),
		Failures: failures,
	}
	for i, c := range platforms.Rank(cands) {
		out.Streams = append(out.Streams, engine.RankedStream{
			Rank:        i + 1,
			Platform:    string(c.Platform),
			Title:       c.Title,
			Viewers:     c.ViewersText,
			ViewerCount: c.ViewerCount,
		})
	}

	// Partial results are not cached so the failed platform is retried next call.
	if len(errs) == 0 {
		engine.CacheSet(ctx, cacheKey, out)
	}
	slog.Debug("stream_ranking: complete", slog.Int("streams", len(out.Streams)), slog.Int("failures", failures))
	return out, nil
}
