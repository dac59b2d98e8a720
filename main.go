// go_streams: Twitch and Kick live stream picker for the Rust category.
//
// Scrapes the Twitch and Kick Rust directories in a real browser, ranks the
// streams whose title mentions "Rust Kingdom" by viewer count and lets the
// operator open one. `go_streams serve` exposes the same ranking as an MCP tool.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_streams/internal/browser"
	"github.com/anatolykoptev/go_streams/internal/console"
	"github.com/anatolykoptev/go_streams/internal/engine"
	"github.com/anatolykoptev/go_streams/internal/engine/platforms"
	"github.com/anatolykoptev/go_streams/internal/session"
	"github.com/anatolykoptev/go_streams/internal/streamserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
	debug   bool
)

func main() {
	root := &cobra.Command{
		Use:   "go_streams",
		Short: "Pick a live Rust Kingdom stream on Twitch or Kick",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogger()
			initEngine()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPicker(cmd.Context())
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the stream_ranking MCP tool",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("go_streams %s\n", version)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runPicker(ctx context.Context) error {
	slog.Info("starting go_streams", slog.String("version", version))

	d, err := launchBrowser(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if engine.Cfg.KeepOpen {
			slog.Info("leaving browser open")
			return
		}
		slog.Info("quitting browser")
		if err := d.Close(); err != nil {
			slog.Warn("browser close failed", slog.Any("error", err))
		}
	}()

	con := console.New(os.Stdin, os.Stdout)
	_, err = session.Run(ctx, d, con, platforms.DefaultFilter())
	return err
}

func runServer() error {
	engine.InitCache(engine.Cfg.CacheTTL, engine.Cfg.CacheMaxEntries, 5*time.Minute)

	slog.Info("starting go_streams server", slog.String("port", mcpPort))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_streams",
		Version: version,
	}, nil)

	streamserver.RegisterTools(server, func(ctx context.Context) (browser.Driver, error) {
		return launchBrowser(ctx)
	})
	slog.Info("tools registered", slog.Int("count", 1))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_streams",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 300 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		return err
	}
	return nil
}

func launchBrowser(ctx context.Context) (browser.Driver, error) {
	c := engine.Cfg
	d, err := browser.Launch(ctx, browser.Options{
		Headless:       c.Headless,
		Bin:            c.BrowserBin,
		ControlURL:     c.BrowserControlURL,
		Flags:          c.BrowserFlags,
		Proxy:          c.BrowserProxy,
		UserAgent:      engine.BrowserUserAgent(),
		AcceptLanguage: engine.BrowserLanguage(),
	})
	if err != nil {
		engine.IncrBrowserFailures()
		return nil, err
	}
	engine.IncrBrowserLaunch()
	slog.Info("browser initialized", slog.Bool("headless", c.Headless))
	return d, nil
}

func initLogger() {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else if err := level.UnmarshalText([]byte(env.Str("LOG_LEVEL", "info"))); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func initEngine() {
	d := engine.DefaultConfig()
	c := engine.Config{
		TitleFilter:       env.Str("TITLE_FILTER", d.TitleFilter),
		TwitchURL:         env.Str("TWITCH_URL", d.TwitchURL),
		KickURL:           env.Str("KICK_URL", d.KickURL),
		WaitTimeout:       env.Duration("WAIT_TIMEOUT", d.WaitTimeout),
		ScrollIterations:  env.Int("SCROLL_ITERATIONS", d.ScrollIterations),
		ScrollWait:        env.Duration("SCROLL_WAIT", d.ScrollWait),
		ClickWait:         env.Duration("CLICK_WAIT", d.ClickWait),
		CookieWait:        env.Duration("COOKIE_WAIT", d.CookieWait),
		KickTitleRule:     strings.ToLower(env.Str("KICK_TITLE_RULE", d.KickTitleRule)),
		Headless:          envBool("HEADLESS", false),
		BrowserBin:        env.Str("BROWSER_BIN", ""),
		BrowserControlURL: env.Str("BROWSER_CONTROL_URL", ""),
		BrowserFlags:      env.List("BROWSER_FLAGS", ""),
		BrowserProxy:      env.Str("BROWSER_PROXY", ""),
		KeepOpen:          envBool("KEEP_OPEN", false),
		CacheTTL:          env.Duration("CACHE_TTL", d.CacheTTL),
		CacheMaxEntries:   env.Int("CACHE_MAX_ENTRIES", d.CacheMaxEntries),
	}

	switch c.KickTitleRule {
	case engine.KickRuleAsAuthored:
		slog.Warn("kick title rule is as-authored: only titles containing both \"rust kingdom\" and \"rust kingdoms\" are kept; set KICK_TITLE_RULE=contains to match like Twitch")
	case engine.KickRuleContains:
	default:
		slog.Warn("unknown KICK_TITLE_RULE, using as-authored", slog.String("rule", c.KickTitleRule))
		c.KickTitleRule = engine.KickRuleAsAuthored
	}

	engine.Init(c)
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(env.Str(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}
