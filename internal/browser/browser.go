package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when an element is absent or a bounded wait expires.
	ErrNotFound = errors.New("element not found")
	// ErrAttributeMissing is returned when an element lacks the requested attribute.
	ErrAttributeMissing = errors.New("attribute missing")
	// ErrClosed is returned by operations on a driver that was already closed.
	ErrClosed = errors.New("browser session closed")
)

// Cookie is a browser cookie visible to the current session.
type Cookie struct {
	Name   string
	Value  string
	Domain string
}

// Tab is a secondary browsing context opened next to the primary one.
type Tab interface {
	// WaitPresent blocks until selector matches or timeout expires.
	WaitPresent(ctx context.Context, selector string, timeout time.Duration) error
	// Snapshot returns the current DOM of the tab.
	Snapshot(ctx context.Context) (*Page, error)
	// Close closes the tab. The primary context is left untouched.
	Close() error
}

// Driver is a controllable browser session with a single primary context.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	// WaitPresent blocks until selector matches or timeout expires.
	WaitPresent(ctx context.Context, selector string, timeout time.Duration) error
	// Fill scrolls the matched input into view and types value into it.
	Fill(ctx context.Context, selector, value string) error
	// Click scrolls the matched element into view and clicks it.
	Click(ctx context.Context, selector string) error
	// ClickInFrame waits up to timeout for frameSelector, then clicks selector inside the frame.
	ClickInFrame(ctx context.Context, frameSelector, selector string, timeout time.Duration) error
	Cookies(ctx context.Context) ([]Cookie, error)
	// Snapshot returns the current DOM of the primary context.
	Snapshot(ctx context.Context) (*Page, error)
	// OpenTab opens url in a new secondary context.
	OpenTab(ctx context.Context, url string) (Tab, error)
	Close() error
}
