package streamserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_streams/internal/browser"
	"github.com/anatolykoptev/go_streams/internal/browser/browsertest"
	"github.com/anatolykoptev/go_streams/internal/engine"
)

const (
	twitchURL = "https://twitch.test/directory/category/rust"
	kickURL   = "https://kick.test/category/rust"
)

func setup(t *testing.T) {
	t.Helper()
	prev := *engine.Cfg
	c := engine.DefaultConfig()
	c.TwitchURL = twitchURL
	c.KickURL = kickURL
	c.ScrollIterations = 1
	c.ScrollWait = 0
	c.CookieWait = 0
	c.ClickWait = 0
	engine.Init(c)
	engine.InitCache(time.Minute, 16, time.Minute)
	t.Cleanup(func() {
		engine.Init(prev)
		engine.InitCache(0, 0, 0)
	})
}

func twitchCard(title, viewers string) *browsertest.Element {
	return &browsertest.Element{OuterHTML: `<article><div class="ScMediaCardStatWrapper-x">` + viewers +
		`</div><h4 title="` + title + `">` + title + `</h4></article>`}
}

func kickThumb(title, viewers string) *browsertest.Element {
	card := &browsertest.Element{OuterHTML: `<div class="stream-card"><a href="/someone">x</a>` +
		`<div class="z-controls"><span title="` + viewers + `">` + viewers + `</span></div></div>`}
	return &browsertest.Element{
		Attrs:  map[string]string{"alt": title},
		XPaths: map[string]*browsertest.Element{`ancestor::div[contains(@class, "stream-card") or contains(@class, "card")]`: card},
	}
}

// launcher hands out fresh fake drivers and records them.
type launcher struct {
	pages   map[string]*browsertest.Page
	err     error
	drivers []*browsertest.Driver
}

func (l *launcher) launch(context.Context) (browser.Driver, error) {
	if l.err != nil {
		return nil, l.err
	}
	d := &browsertest.Driver{Pages: l.pages}
	l.drivers = append(l.drivers, d)
	return d, nil
}

func bothPages() map[string]*browsertest.Page {
	return map[string]*browsertest.Page{
		twitchURL: {Selectors: map[string][]*browsertest.Element{"article": {
			twitchCard("Rust Kingdom wipe", "500 viewers"),
			twitchCard("rust kingdom clan wars", "3.1K viewers"),
			twitchCard("Vanilla", "10K viewers"),
		}}},
		kickURL: {Selectors: map[string][]*browsertest.Element{`img[src*="video_thumbnails"]`: {
			kickThumb("Rust Kingdoms x Rust Kingdom", "1.5K"),
			kickThumb("rust kingdom clan wars", "900"),
		}}},
	}
}

func TestRankingAll(t *testing.T) {
	setup(t)
	l := &launcher{pages: bothPages()}

	out, err := Ranking(context.Background(), l.launch, engine.StreamRankingInput{})
	require.NoError(t, err)

	assert.Equal(t, "all", out.Platform)
	assert.Equal(t, "rust kingdom", out.Match)
	require.Len(t, out.Streams, 3)
	assert.Equal(t, engine.RankedStream{Rank: 1, Platform: "Twitch", Title: "rust kingdom clan wars", Viewers: "3.1K viewers", ViewerCount: 3100}, out.Streams[0])
	assert.Equal(t, "Kick", out.Streams[1].Platform)
	assert.Equal(t, "1.5K watching", out.Streams[1].Viewers)
	assert.Equal(t, 3, out.Streams[2].Rank)
	assert.Equal(t, int64(500), out.Streams[2].ViewerCount)

	require.Len(t, l.drivers, 1)
	assert.True(t, l.drivers[0].Closed)

	again, err := Ranking(context.Background(), l.launch, engine.StreamRankingInput{Platform: "ALL"})
	require.NoError(t, err)
	assert.Equal(t, out, again)
	assert.Len(t, l.drivers, 1, "second call served from cache")
}

func TestRankingCustomMatch(t *testing.T) {
	setup(t)
	l := &launcher{pages: bothPages()}

	out, err := Ranking(context.Background(), l.launch, engine.StreamRankingInput{Platform: "kick", Match: " Clan Wars "})
	require.NoError(t, err)

	assert.Equal(t, "Clan Wars", out.Match)
	require.Len(t, out.Streams, 1)
	assert.Equal(t, "rust kingdom clan wars", out.Streams[0].Title)
	assert.Equal(t, []string{kickURL}, l.drivers[0].Visited)
}

func TestRankingUnknownPlatform(t *testing.T) {
	setup(t)
	l := &launcher{pages: bothPages()}

	_, err := Ranking(context.Background(), l.launch, engine.StreamRankingInput{Platform: "youtube"})
	assert.ErrorContains(t, err, "unknown platform")
	assert.Empty(t, l.drivers)
}

func TestRankingLaunchFailure(t *testing.T) {
	setup(t)
	l := &launcher{err: errors.New("no chrome")}

	_, err := Ranking(context.Background(), l.launch, engine.StreamRankingInput{})
	assert.ErrorContains(t, err, "browser: no chrome")
}

func TestRankingPartialFailure(t *testing.T) {
	setup(t)
	pages := bothPages()
	delete(pages, twitchURL)
	l := &launcher{pages: pages}

	out, err := Ranking(context.Background(), l.launch, engine.StreamRankingInput{})
	require.NoError(t, err)
	require.Len(t, out.Streams, 1)
	assert.Equal(t, "Kick", out.Streams[0].Platform)

	_, err = Ranking(context.Background(), l.launch, engine.StreamRankingInput{})
	require.NoError(t, err)
	assert.Len(t, l.drivers, 2, "partial results are not cached")
}

func TestRankingAllPlatformsFail(t *testing.T) {
	setup(t)
	l := &launcher{pages: map[string]*browsertest.Page{}}

	_, err := Ranking(context.Background(), l.launch, engine.StreamRankingInput{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "twitch")
	assert.ErrorContains(t, err, "kick")
}

func TestRankingLeavesLaunchMetricsToLauncher(t *testing.T) {
	setup(t)
	l := &launcher{pages: bothPages()}
	before := engine.GetMetrics()

	_, err := Ranking(context.Background(), l.launch, engine.StreamRankingInput{Platform: "twitch"})
	require.NoError(t, err)
	_, err = Ranking(context.Background(), (&launcher{err: errors.New("no chrome")}).launch, engine.StreamRankingInput{Platform: "kick"})
	require.Error(t, err)

	after := engine.GetMetrics()
	assert.Equal(t, before["browser_launches"], after["browser_launches"])
	assert.Equal(t, before["browser_failures"], after["browser_failures"])
}
