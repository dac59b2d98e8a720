// Package session runs the interactive picker: collect Twitch, offer a pick,
// collect Kick, show the combined ranking, offer a Kick pick.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/anatolykoptev/go_streams/internal/browser"
	"github.com/anatolykoptev/go_streams/internal/console"
	"github.com/anatolykoptev/go_streams/internal/engine"
	"github.com/anatolykoptev/go_streams/internal/engine/platforms"
)

// slowCollection is how long a platform collection may take before it is logged as slow.
const slowCollection = 90 * time.Second

// Summary reports what a session did.
type Summary struct {
	Twitch   []engine.StreamRecord // ranked Twitch matches
	Kick     []engine.StreamRecord // ranked Kick matches
	All      []engine.StreamRecord // ranked Twitch cards plus Kick matches
	Opened   []engine.StreamRecord // streams the operator opened
	Failures int                   // cards that could not be read
}

// Run drives one interactive session on d, talking to the operator through
// con. Per-card and per-platform scrape failures are logged and skipped; Run
// only returns an error when ctx ends or the console cannot be read.
func Run(ctx context.Context, d browser.Driver, con *console.Console, f platforms.Filter) (*Summary, error) {
	label := cases.Title(language.English).String(f.Title)
	sum := &Summary{}

	twitch, err := collect(ctx, engine.Twitch, func(ctx context.Context) (*platforms.Collection, error) {
		return platforms.CollectTwitch(ctx, d, f)
	})
	if err != nil {
		return sum, err
	}
	sum.Failures += len(twitch.Failures)

	twitchRanked := platforms.Rank(twitch.Matches)
	sum.Twitch = platforms.Records(twitchRanked)
	con.PrintRanking(
		fmt.Sprintf("Twitch %q streams:", label),
		sum.Twitch,
		fmt.Sprintf("No Twitch %q streams found.", label),
	)
	if len(twitchRanked) > 0 {
		q := fmt.Sprintf("Enter the number of the Twitch %q stream to click (or press Enter to proceed to Kick): ", label)
		opened, _, err := pick(ctx, con, q, twitchRanked)
		if err != nil {
			return sum, err
		}
		sum.Opened = append(sum.Opened, opened...)
	}

	kick, err := collect(ctx, engine.Kick, func(ctx context.Context) (*platforms.Collection, error) {
		return platforms.CollectKick(ctx, d, f)
	})
	if err != nil {
		return sum, err
	}
	sum.Failures += len(kick.Failures)

	all := platforms.Rank(append(append([]platforms.Candidate{}, twitch.All...), kick.All...))
	sum.All = platforms.Records(all)
	con.PrintRanking("All streams:", sum.All, "No streams found.")

	kickRanked := platforms.Rank(kick.Matches)
	sum.Kick = platforms.Records(kickRanked)
	con.PrintRanking(
		fmt.Sprintf("Kick %q streams:", label),
		sum.Kick,
		fmt.Sprintf("No Kick %q streams found.", label),
	)
	if len(kickRanked) > 0 {
		q := fmt.Sprintf("Enter the number of the Kick %q stream to click (or press Enter to exit): ", label)
		opened, chosen, err := pick(ctx, con, q, kickRanked)
		if err != nil {
			return sum, err
		}
		if !chosen {
			con.Print("No Kick stream selected")
		}
		sum.Opened = append(sum.Opened, opened...)
	}

	slog.Info("session complete",
		slog.Int("twitch_matches", len(sum.Twitch)),
		slog.Int("kick_matches", len(sum.Kick)),
		slog.Int("opened", len(sum.Opened)),
		slog.Int("failures", sum.Failures),
	)
	return sum, nil
}

// collect runs one platform collection. A page-level failure is logged and
// yields an empty collection so the session can continue with the next
// platform; only context cancellation is returned.
func collect(ctx context.Context, p engine.Platform, fn func(context.Context) (*platforms.Collection, error)) (*platforms.Collection, error) {
	var col *platforms.Collection
	err := engine.TrackOperation(ctx, "collect "+string(p), slowCollection, func(ctx context.Context) error {
		var err error
		col, err = fn(ctx)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		engine.IncrScrapeErrors()
		slog.Error("collection failed", slog.String("platform", string(p)), slog.Any("error", err))
		return &platforms.Collection{Platform: p}, nil
	}
	if n := len(col.Failures); n > 0 {
		slog.Warn("cards could not be read", slog.String("platform", string(p)), slog.Int("count", n))
	}
	return col, nil
}

// pick asks the operator to choose among ranked and opens the choice. chosen
// reports a valid answer, even when the stream then fails to open; an invalid
// answer opens nothing.
func pick(ctx context.Context, con *console.Console, question string, ranked []platforms.Candidate) (opened []engine.StreamRecord, chosen bool, err error) {
	idx, ok, err := con.Choose(question, len(ranked))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	c := ranked[idx]
	slog.Info("opening stream", slog.String("platform", string(c.Platform)), slog.String("title", c.Title))
	if err := c.Open(); err != nil {
		slog.Error("open stream failed", slog.String("title", c.Title), slog.Any("error", err))
		con.Print(fmt.Sprintf("Could not open stream: %s", c.Title))
		return nil, true, nil
	}
	con.Print(fmt.Sprintf("Clicked stream: %s", c.Title))
	if err := browser.Pause(ctx, engine.Cfg.ClickWait); err != nil {
		return nil, true, err
	}
	return []engine.StreamRecord{c.StreamRecord}, true, nil
}
