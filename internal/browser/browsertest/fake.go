// Package browsertest provides an in-memory browser.Driver for tests. Pages
// are keyed by URL and answer selector lookups from fixed element lists.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anatolykoptev/go_streams/internal/browser"
)

// Element is a scripted DOM node.
type Element struct {
	Attrs     map[string]string
	TextValue string
	OuterHTML string
	Children  map[string][]*Element // selector → matches, in document order
	XPaths    map[string]*Element
	ClickErr  error

	Clicks int
}

func (e *Element) Find(selector string) (browser.Element, error) {
	els := e.Children[selector]
	if len(els) == 0 {
		return nil, fmt.Errorf("%q: %w", selector, browser.ErrNotFound)
	}
	return els[0], nil
}

func (e *Element) FindAll(selector string) ([]browser.Element, error) {
	return wrap(e.Children[selector]), nil
}

func (e *Element) FindXPath(xpath string) (browser.Element, error) {
	el, ok := e.XPaths[xpath]
	if !ok {
		return nil, fmt.Errorf("%q: %w", xpath, browser.ErrNotFound)
	}
	return el, nil
}

func (e *Element) Text() (string, error) { return e.TextValue, nil }

func (e *Element) Attribute(name string) (string, error) {
	v, ok := e.Attrs[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, browser.ErrNoAttribute)
	}
	return v, nil
}

func (e *Element) HTML() (string, error) { return e.OuterHTML, nil }

func (e *Element) Click() error {
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.Clicks++
	return nil
}

// Page maps selectors to the elements they match.
type Page struct {
	Selectors map[string][]*Element
}

// Driver is a browser.Driver over a fixed set of pages.
type Driver struct {
	Pages       map[string]*Page
	NavigateErr error

	Visited []string
	Tabs    int
	Scrolls int
	Closed  bool

	current *Page
}

var errNoPage = errors.New("no page loaded")

func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.Visited = append(d.Visited, url)
	if d.NavigateErr != nil {
		return d.NavigateErr
	}
	p, ok := d.Pages[url]
	if !ok {
		return fmt.Errorf("navigate %s: 404", url)
	}
	d.current = p
	return nil
}

func (d *Driver) Maximize(context.Context) error { return nil }

func (d *Driver) WaitFor(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.current == nil {
		return errNoPage
	}
	if len(d.current.Selectors[selector]) == 0 {
		return fmt.Errorf("wait for %q: %w", selector, context.DeadlineExceeded)
	}
	return nil
}

func (d *Driver) FindAll(_ context.Context, selector string) ([]browser.Element, error) {
	if d.current == nil {
		return nil, errNoPage
	}
	return wrap(d.current.Selectors[selector]), nil
}

func (d *Driver) ScrollToBottom(context.Context) (int, error) {
	d.Scrolls++
	return 1000 * d.Scrolls, nil
}

func (d *Driver) OpenTab(context.Context) error {
	d.Tabs++
	d.current = nil
	return nil
}

func (d *Driver) Close() error {
	d.Closed = true
	return nil
}

func wrap(els []*Element) []browser.Element {
	out := make([]browser.Element, len(els))
	for i, e := range els {
		out[i] = e
	}
	return out
}
