package engine

import "time"

// Kick title rules selectable through KICK_TITLE_RULE.
const (
	KickRuleAsAuthored = "as-authored"
	KickRuleContains   = "contains"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	TitleFilter      string        // case-insensitive substring a stream title must contain
	TwitchURL        string        // Twitch category directory
	KickURL          string        // Kick category page
	WaitTimeout      time.Duration // max wait for the first cards to render
	ScrollIterations int           // forced scrolls per page
	ScrollWait       time.Duration // pause after each scroll
	ClickWait        time.Duration // pause after opening a stream
	CookieWait       time.Duration // pause after dismissing the cookie banner
	KickTitleRule    string        // KickRuleAsAuthored or KickRuleContains

	Headless          bool
	BrowserBin        string   // empty = let the launcher download/locate Chromium
	BrowserControlURL string   // connect to a running browser instead of launching one
	BrowserFlags      []string // extra launcher flags, "name" or "name=value"
	BrowserProxy      string   // host:port for --proxy-server; empty = direct
	KeepOpen          bool     // leave the browser running after the interactive session

	CacheTTL        time.Duration
	CacheMaxEntries int
}

// DefaultConfig returns the page URLs and waits the picker runs with out of the box.
func DefaultConfig() Config {
	return Config{
		TitleFilter:      "rust kingdom",
		TwitchURL:        "https://www.twitch.tv/directory/category/rust",
		KickURL:          "https://kick.com/categories/rust",
		WaitTimeout:      15 * time.Second,
		ScrollIterations: 5,
		ScrollWait:       3 * time.Second,
		ClickWait:        3 * time.Second,
		CookieWait:       2 * time.Second,
		KickTitleRule:    KickRuleAsAuthored,
		CacheTTL:         2 * time.Minute,
		CacheMaxEntries:  64,
	}
}

var cfg = DefaultConfig()

// Cfg exposes the engine configuration for sub-packages.
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
