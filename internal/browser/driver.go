// Package browser is the thin browser-automation layer the scrapers drive.
// Driver and Element are small enough to fake in tests; Rod implements them
// on top of a real Chromium through go-rod.
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Element.Find and Element.FindXPath when
	// nothing matches.
	ErrNotFound = errors.New("element not found")
	// ErrNoAttribute is returned by Element.Attribute when the attribute is absent.
	ErrNoAttribute = errors.New("attribute not present")
)

// Driver controls one browser session. The current tab is the one the last
// Navigate or OpenTab acted on.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Maximize(ctx context.Context) error
	// WaitFor blocks until at least one element matches selector.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	FindAll(ctx context.Context, selector string) ([]Element, error)
	// ScrollToBottom scrolls the window to the end of the document and
	// returns the document height measured before scrolling.
	ScrollToBottom(ctx context.Context) (int, error)
	// OpenTab opens a blank tab and makes it current.
	OpenTab(ctx context.Context) error
	Close() error
}

// Element is a handle to a DOM node in the current tab.
type Element interface {
	Find(selector string) (Element, error)
	FindAll(selector string) ([]Element, error)
	FindXPath(xpath string) (Element, error)
	Text() (string, error)
	Attribute(name string) (string, error)
	// HTML returns the element's outer HTML.
	HTML() (string, error)
	Click() error
}

// Pause waits for d or until ctx is done.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
