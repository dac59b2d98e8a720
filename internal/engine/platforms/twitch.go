package platforms

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_streams/internal/browser"
	"github.com/anatolykoptev/go_streams/internal/engine"
)

// Twitch directory markup. The stat wrapper class carries a generated
// suffix, hence the substring match.
const (
	twitchCardSelector   = "article"
	twitchTitleSelector  = "h4[title]"
	twitchViewerSelector = `div[class*="ScMediaCardStatWrapper"]`
	twitchLinkSelector   = `a[data-a-target="preview-card-image-link"]`
)

// CollectTwitch opens the Twitch category directory in the current tab and
// reads every stream card. All readable cards land in All; those whose title
// passes f also land in Matches.
func CollectTwitch(ctx context.Context, d browser.Driver, f Filter) (*Collection, error) {
	engine.IncrTwitchScrapes()
	c := engine.Cfg

	slog.Info("twitch: navigating", slog.String("url", c.TwitchURL))
	if err := d.Navigate(ctx, c.TwitchURL); err != nil {
		return nil, fmt.Errorf("twitch: %w", err)
	}
	if err := d.Maximize(ctx); err != nil {
		slog.Debug("twitch: maximize failed", slog.Any("error", err))
	}
	if err := d.WaitFor(ctx, twitchCardSelector, c.WaitTimeout); err != nil {
		return nil, fmt.Errorf("twitch: %w", err)
	}
	if err := scrollToBottom(ctx, d, engine.Twitch); err != nil {
		return nil, err
	}

	cards, err := d.FindAll(ctx, twitchCardSelector)
	if err != nil {
		return nil, fmt.Errorf("twitch: %w", err)
	}
	slog.Info("twitch: cards found", slog.Int("cards", len(cards)))

	col := &Collection{Platform: engine.Twitch}
	for i, card := range cards {
		engine.IncrCardsSeen()
		html, err := card.HTML()
		if err != nil {
			col.fail(i+1, fmt.Errorf("read card: %w", err))
			continue
		}
		title, viewers, err := parseTwitchCard(html)
		if err != nil {
			col.fail(i+1, err)
			continue
		}
		rec := engine.NewStreamRecord(engine.Twitch, title, viewers)
		slog.Debug("twitch: card", slog.String("title", title), slog.String("viewers", viewers))
		col.add(NewCandidate(rec, card, twitchLinkSelector, 0), f.AllowTwitch(title))
	}

	slog.Info("twitch: collection complete",
		slog.Int("streams", len(col.All)),
		slog.Int("matches", len(col.Matches)),
		slog.Int("failures", len(col.Failures)),
	)
	return col, nil
}

// parseTwitchCard extracts the title and raw viewer label from a card's outer HTML.
func parseTwitchCard(cardHTML string) (title, viewers string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cardHTML))
	if err != nil {
		return "", "", fmt.Errorf("parse card: %w", err)
	}

	// An empty title attribute still yields a card; it lists under All
	// but never matches a filter.
	h4 := doc.Find(twitchTitleSelector).First()
	if h4.Length() == 0 {
		return "", "", ErrNoTitle
	}
	title = strings.TrimSpace(h4.AttrOr("title", ""))

	stat := doc.Find(twitchViewerSelector).First()
	if stat.Length() == 0 {
		return "", "", ErrNoViewers
	}
	viewers = engine.CleanText(stat.Text())
	if viewers == "" {
		return "", "", ErrNoViewers
	}
	return title, viewers, nil
}
