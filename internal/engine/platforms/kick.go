package platforms

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_streams/internal/browser"
	"github.com/anatolykoptev/go_streams/internal/engine"
)

// Kick category markup. Cards have no stable container class, so they are
// reached from their thumbnail image.
const (
	kickThumbSelector  = `img[src*="video_thumbnails"]`
	kickCookieSelector = `button[data-testid="accept-cookies"]`
	kickCardXPath      = `ancestor::div[contains(@class, "stream-card") or contains(@class, "card")]`
	kickViewerSelector = "div.z-controls span[title]"
	kickLinkSelector   = "a"
)

// Phrases of the as-authored Kick title rule.
const (
	kickPhrase         = "rust kingdom"
	kickPhrasePlural   = "rust kingdoms"
	kickReversed       = "kingdom rusts"
	kickReversedPlural = "kingdoms rust"
)

// Paths under the Kick origin that are not live channels.
var kickNonStreamPaths = []string{"/video/", "/categories/", "/clips/"}

// CollectKick opens the Kick category page in a new tab and reads every
// thumbnail card whose title passes f's Kick rule. Kick cards that are
// read successfully land in both All and Matches.
func CollectKick(ctx context.Context, d browser.Driver, f Filter) (*Collection, error) {
	engine.IncrKickScrapes()
	c := engine.Cfg

	slog.Info("kick: opening new tab")
	if err := d.OpenTab(ctx); err != nil {
		return nil, fmt.Errorf("kick: %w", err)
	}
	slog.Info("kick: navigating", slog.String("url", c.KickURL))
	if err := d.Navigate(ctx, c.KickURL); err != nil {
		return nil, fmt.Errorf("kick: %w", err)
	}
	if err := d.WaitFor(ctx, kickThumbSelector, c.WaitTimeout); err != nil {
		return nil, fmt.Errorf("kick: %w", err)
	}
	if err := dismissKickCookies(ctx, d); err != nil {
		return nil, err
	}
	if err := scrollToBottom(ctx, d, engine.Kick); err != nil {
		return nil, err
	}

	thumbs, err := d.FindAll(ctx, kickThumbSelector)
	if err != nil {
		return nil, fmt.Errorf("kick: %w", err)
	}
	slog.Info("kick: thumbnails found", slog.Int("thumbnails", len(thumbs)))

	col := &Collection{Platform: engine.Kick}
	seen := make(map[string]bool)
	for i, img := range thumbs {
		engine.IncrCardsSeen()
		title, err := img.Attribute("alt")
		if err != nil {
			col.fail(i+1, fmt.Errorf("%w: %w", ErrNoTitle, err))
			continue
		}
		if !f.AllowKick(title) {
			col.Skipped++
			slog.Debug("kick: title rejected", slog.Int("card", i+1), slog.String("title", title))
			continue
		}
		if seen[title] {
			col.Skipped++
			slog.Debug("kick: duplicate title", slog.Int("card", i+1), slog.String("title", title))
			continue
		}
		seen[title] = true

		card, err := img.FindXPath(kickCardXPath)
		if err != nil {
			col.fail(i+1, fmt.Errorf("find card: %w", err))
			continue
		}
		html, err := card.HTML()
		if err != nil {
			col.fail(i+1, fmt.Errorf("read card: %w", err))
			continue
		}
		viewers, href, err := parseKickCard(html, c.KickURL)
		if err != nil {
			col.fail(i+1, err)
			continue
		}

		rec := engine.NewStreamRecord(engine.Kick, title, viewers)
		slog.Debug("kick: card", slog.String("title", title), slog.String("viewers", viewers))
		col.add(NewHrefCandidate(rec, card, kickLinkSelector, href, c.KickURL), true)
	}

	slog.Info("kick: collection complete",
		slog.Int("matches", len(col.Matches)),
		slog.Int("skipped", col.Skipped),
		slog.Int("failures", len(col.Failures)),
	)
	return col, nil
}

// AllowKick applies the Kick title rule.
//
// The as-authored rule keeps a title only if it contains both "rust kingdom"
// and "rust kingdoms" and neither reversed phrase, which rejects most titles
// that merely mention "Rust Kingdom". It is kept as the default until the
// intended rule is confirmed; KickRuleContains applies the Twitch rule instead.
func (f Filter) AllowKick(title string) bool {
	if f.KickRule == engine.KickRuleContains {
		return engine.TitleContains(title, f.Title)
	}
	t := strings.ToLower(title)
	return strings.Contains(t, kickPhrase) &&
		strings.Contains(t, kickPhrasePlural) &&
		!strings.Contains(t, kickReversed) &&
		!strings.Contains(t, kickReversedPlural)
}

func dismissKickCookies(ctx context.Context, d browser.Driver) error {
	buttons, err := d.FindAll(ctx, kickCookieSelector)
	if err != nil || len(buttons) == 0 {
		slog.Debug("kick: no cookie consent button")
		return nil
	}
	if err := buttons[0].Click(); err != nil {
		slog.Warn("kick: cookie consent click failed", slog.Any("error", err))
		return nil
	}
	slog.Debug("kick: cookie consent dismissed")
	return browser.Pause(ctx, engine.Cfg.CookieWait)
}

// parseKickCard extracts the viewer label and the absolute href of the link
// to the live channel from a card's outer HTML.
func parseKickCard(cardHTML, pageURL string) (viewers, link string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cardHTML))
	if err != nil {
		return "", "", fmt.Errorf("parse card: %w", err)
	}

	span := doc.Find(kickViewerSelector).First()
	if span.Length() == 0 {
		return "", "", ErrNoViewers
	}
	count := engine.CleanText(span.Text())
	if count == "" {
		return "", "", ErrNoViewers
	}

	origin := kickOrigin(pageURL)
	doc.Find(kickLinkSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		if abs := resolveHref(pageURL, href); isKickStreamLink(abs, origin) {
			link = abs
			return false
		}
		return true
	})
	if link == "" {
		return "", "", ErrNoLink
	}

	return count + " watching", link, nil
}

// kickOrigin returns "scheme://host/" of the category page URL.
func kickOrigin(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return "https://kick.com/"
	}
	return u.Scheme + "://" + u.Host + "/"
}

func isKickStreamLink(href, origin string) bool {
	if !strings.HasPrefix(href, origin) {
		return false
	}
	for _, p := range kickNonStreamPaths {
		if strings.Contains(href, p) {
			return false
		}
	}
	return true
}
