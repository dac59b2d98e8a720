package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
)

// Options configures how Launch obtains a browser.
type Options struct {
	Headless       bool
	Bin            string   // browser binary; empty = launcher default
	ControlURL     string   // DevTools URL of an already running browser
	Flags          []string // "name" or "name=value"
	Proxy          string   // host:port passed as --proxy-server
	UserAgent      string
	AcceptLanguage string
}

// Rod is a Driver backed by go-rod.
type Rod struct {
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher // nil when connected to an external browser
	opts     Options
}

// Launch starts (or connects to) a browser and opens the first tab.
func Launch(ctx context.Context, opts Options) (*Rod, error) {
	d := &Rod{opts: opts}

	controlURL := opts.ControlURL
	if controlURL == "" {
		l := launcher.New().Context(ctx).Headless(opts.Headless)
		if opts.Bin != "" {
			l = l.Bin(opts.Bin)
		}
		if opts.Proxy != "" {
			l = l.Proxy(opts.Proxy)
		}
		for _, f := range opts.Flags {
			name, value, hasValue := strings.Cut(f, "=")
			if hasValue {
				l = l.Set(flags.Flag(name), value)
			} else {
				l = l.Set(flags.Flag(name))
			}
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		d.launcher = l
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		d.kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	d.browser = b

	if err := d.OpenTab(ctx); err != nil {
		_ = d.Close()
		return nil, err
	}
	slog.Debug("browser: ready", slog.String("control_url", controlURL), slog.Bool("headless", opts.Headless))
	return d, nil
}

func (d *Rod) Navigate(ctx context.Context, url string) error {
	p := d.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("load %s: %w", url, err)
	}
	return nil
}

func (d *Rod) Maximize(ctx context.Context) error {
	return d.page.Context(ctx).SetWindow(&proto.BrowserBounds{
		WindowState: proto.BrowserWindowStateMaximized,
	})
}

func (d *Rod) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	// Page.Element retries until the selector matches or the context ends.
	if _, err := d.page.Context(ctx).Timeout(timeout).Element(selector); err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func (d *Rod) FindAll(ctx context.Context, selector string) ([]Element, error) {
	els, err := d.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("find %q: %w", selector, err)
	}
	return wrapAll(els), nil
}

func (d *Rod) ScrollToBottom(ctx context.Context) (int, error) {
	p := d.page.Context(ctx)
	res, err := p.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, fmt.Errorf("read page height: %w", err)
	}
	height := res.Value.Int()
	if _, err := p.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
		return height, fmt.Errorf("scroll: %w", err)
	}
	return height, nil
}

func (d *Rod) OpenTab(ctx context.Context) error {
	p, err := d.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("open tab: %w", err)
	}
	if d.opts.UserAgent != "" || d.opts.AcceptLanguage != "" {
		if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      d.opts.UserAgent,
			AcceptLanguage: d.opts.AcceptLanguage,
		}); err != nil {
			slog.Warn("browser: user agent override failed", slog.Any("error", err))
		}
	}
	if _, err := p.Activate(); err != nil {
		return fmt.Errorf("activate tab: %w", err)
	}
	// Keep the page free of the opening context so later calls can attach their own.
	d.page = p.Context(context.Background())
	return nil
}

func (d *Rod) Close() error {
	var err error
	if d.browser != nil {
		err = d.browser.Close()
	}
	d.kill()
	return err
}

func (d *Rod) kill() {
	if d.launcher != nil {
		d.launcher.Kill()
	}
}

// rodElement adapts *rod.Element to Element.
type rodElement struct {
	el *rod.Element
}

func wrapAll(els rod.Elements) []Element {
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, rodElement{el: el})
	}
	return out
}

func (e rodElement) Find(selector string) (Element, error) {
	// Elements does not wait, unlike Element, so a missing child fails fast.
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%q: %w", selector, ErrNotFound)
	}
	return rodElement{el: els.First()}, nil
}

func (e rodElement) FindAll(selector string) ([]Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapAll(els), nil
}

func (e rodElement) FindXPath(xpath string) (Element, error) {
	els, err := e.el.ElementsX(xpath)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%q: %w", xpath, ErrNotFound)
	}
	return rodElement{el: els.First()}, nil
}

func (e rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e rodElement) Attribute(name string) (string, error) {
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", fmt.Errorf("%s: %w", name, ErrNoAttribute)
	}
	return *v, nil
}

func (e rodElement) HTML() (string, error) {
	return e.el.HTML()
}

func (e rodElement) Click() error {
	if err := e.el.ScrollIntoView(); err != nil {
		return fmt.Errorf("scroll into view: %w", err)
	}
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}
