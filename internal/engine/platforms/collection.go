// Package platforms scrapes stream cards from the Twitch and Kick category
// pages. Every card either becomes a Candidate or a ScrapeError; one bad card
// never aborts a collection.
package platforms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_streams/internal/browser"
	"github.com/anatolykoptev/go_streams/internal/engine"
)

var (
	ErrNoTitle   = errors.New("no title")
	ErrNoViewers = errors.New("no viewer count")
	ErrNoLink    = errors.New("no stream link")
)

// ScrapeError records why a single card could not be turned into a record.
type ScrapeError struct {
	Platform engine.Platform
	Card     int // 1-based position on the page
	Err      error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("%s card %d: %v", e.Platform, e.Card, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// Candidate is a scraped stream plus the means to open it in the browser.
type Candidate struct {
	engine.StreamRecord

	card         browser.Element
	linkSelector string
	linkIndex    int
	linkHref     string // absolute href to match; empty = use linkIndex
	linkBase     string // page URL relative hrefs resolve against
}

// NewCandidate ties a record to the card element it was read from. Open clicks
// the linkIndex-th element matching linkSelector inside card.
func NewCandidate(rec engine.StreamRecord, card browser.Element, linkSelector string, linkIndex int) Candidate {
	return Candidate{StreamRecord: rec, card: card, linkSelector: linkSelector, linkIndex: linkIndex}
}

// NewHrefCandidate ties a record to its card like NewCandidate, but Open clicks
// the first element matching linkSelector whose href, resolved against base,
// equals href. Parsed card HTML can disagree with the live DOM on anchor
// positions, so positions are not reused across the two.
func NewHrefCandidate(rec engine.StreamRecord, card browser.Element, linkSelector, href, base string) Candidate {
	return Candidate{StreamRecord: rec, card: card, linkSelector: linkSelector, linkHref: href, linkBase: base}
}

// Open clicks the stream link inside the candidate's card.
func (c Candidate) Open() error {
	if c.card == nil {
		return fmt.Errorf("%s: %w", c.Title, ErrNoLink)
	}
	links, err := c.card.FindAll(c.linkSelector)
	if err != nil {
		return fmt.Errorf("find stream link: %w", err)
	}
	link := c.pickLink(links)
	if link == nil {
		return fmt.Errorf("%s: %w", c.Title, ErrNoLink)
	}
	if err := link.Click(); err != nil {
		return fmt.Errorf("click stream link: %w", err)
	}
	engine.IncrStreamsOpened()
	return nil
}

func (c Candidate) pickLink(links []browser.Element) browser.Element {
	if c.linkHref == "" {
		if c.linkIndex < 0 || c.linkIndex >= len(links) {
			return nil
		}
		return links[c.linkIndex]
	}
	for _, l := range links {
		href, err := l.Attribute("href")
		if err != nil {
			continue
		}
		if resolveHref(c.linkBase, href) == c.linkHref {
			return l
		}
	}
	return nil
}

// Filter decides which titles count as matches.
type Filter struct {
	Title    string // case-insensitive substring
	KickRule string // engine.KickRuleAsAuthored or engine.KickRuleContains
}

// DefaultFilter builds the filter from the engine configuration.
func DefaultFilter() Filter {
	return Filter{Title: engine.Cfg.TitleFilter, KickRule: engine.Cfg.KickTitleRule}
}

// AllowTwitch reports whether a Twitch title matches.
func (f Filter) AllowTwitch(title string) bool {
	return engine.TitleContains(title, f.Title)
}

// Collection is the outcome of scraping one platform page.
type Collection struct {
	Platform engine.Platform
	All      []Candidate // every card that could be read
	Matches  []Candidate // cards whose title passed the platform's filter
	Failures []*ScrapeError
	Skipped  int // cards dropped by the title filter or as duplicates
}

func (c *Collection) fail(card int, err error) {
	engine.IncrCardsFailed()
	se := &ScrapeError{Platform: c.Platform, Card: card, Err: err}
	c.Failures = append(c.Failures, se)
	slog.Debug("card skipped", slog.String("platform", string(c.Platform)), slog.Any("error", se))
}

func (c *Collection) add(cand Candidate, matched bool) {
	c.All = append(c.All, cand)
	if matched {
		engine.IncrCardsMatched()
		c.Matches = append(c.Matches, cand)
	}
}

// Records returns the stream records of the given candidates in order.
func Records(cands []Candidate) []engine.StreamRecord {
	out := make([]engine.StreamRecord, len(cands))
	for i, c := range cands {
		out[i] = c.StreamRecord
	}
	return out
}

// Rank orders candidates by viewer count, highest first, keeping scrape order on ties.
func Rank(cands []Candidate) []Candidate {
	engine.IncrRankingCalls()
	return engine.RankBy(cands, func(c Candidate) int64 { return c.ViewerCount })
}

// scrollToBottom forces the configured number of scrolls so lazily loaded
// cards are rendered before collection.
func scrollToBottom(ctx context.Context, d browser.Driver, platform engine.Platform) error {
	n := engine.Cfg.ScrollIterations
	slog.Debug("scrolling to bottom", slog.String("platform", string(platform)), slog.Int("iterations", n))
	for i := range n {
		height, err := d.ScrollToBottom(ctx)
		if err != nil {
			return fmt.Errorf("%s scroll: %w", strings.ToLower(string(platform)), err)
		}
		slog.Debug("scrolled", slog.Int("scroll", i+1), slog.Int("page_height", height))
		if err := browser.Pause(ctx, engine.Cfg.ScrollWait); err != nil {
			return err
		}
	}
	return nil
}

// resolveHref makes href absolute against base, returning href unchanged if
// either fails to parse.
func resolveHref(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
