package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	defaultOpTimeout = 30 * time.Second
	defaultWidth     = 1920
	defaultHeight    = 1080
)

// Options configures the Chrome instance.
type Options struct {
	Headless  bool
	UserAgent string
	Width     int
	Height    int
	// OpTimeout bounds every single browser operation.
	OpTimeout time.Duration
}

// Chrome is a Driver backed by a local Chrome process controlled over CDP.
type Chrome struct {
	log       *slog.Logger
	opTimeout time.Duration

	ctx         context.Context //nolint:containedctx // chromedp binds the browser lifetime to a context.
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

var _ Driver = (*Chrome)(nil)

// NewChrome launches a browser. The browser outlives ctx; release it with Close.
func NewChrome(ctx context.Context, log *slog.Logger, opts Options) (*Chrome, error) {
	const opn = "browser.NewChrome"

	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Width == 0 || opts.Height == 0 {
		opts.Width, opts.Height = defaultWidth, defaultHeight
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = defaultOpTimeout
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.UserAgent(opts.UserAgent),
		chromedp.WindowSize(opts.Width, opts.Height),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// The first Run allocates the browser; it must use the undecorated context.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("%s: failed to start browser: %w", opn, err)
	}

	log.InfoContext(ctx, "Browser started", "headless", opts.Headless)

	return &Chrome{
		log:         log,
		opTimeout:   opts.OpTimeout,
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
	}, nil
}

// Navigate loads url in the primary context.
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	c.log.DebugContext(ctx, "Navigate", "url", url)
	if err := c.run(ctx, c.ctx, c.opTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	return nil
}

// Reload reloads the primary context.
func (c *Chrome) Reload(ctx context.Context) error {
	if err := c.run(ctx, c.ctx, c.opTimeout, chromedp.Reload()); err != nil {
		return fmt.Errorf("failed to reload page: %w", err)
	}

	return nil
}

func (c *Chrome) WaitPresent(ctx context.Context, selector string, timeout time.Duration) error {
	return c.wait(ctx, c.ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (c *Chrome) Fill(ctx context.Context, selector, value string) error {
	return c.wait(ctx, c.ctx, c.opTimeout,
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

func (c *Chrome) Click(ctx context.Context, selector string) error {
	return c.wait(ctx, c.ctx, c.opTimeout,
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
}

// ClickInFrame queries inside the frame's document through the frame node, so
// the primary context never switches and needs no restoring afterwards.
func (c *Chrome) ClickInFrame(ctx context.Context, frameSelector, selector string, timeout time.Duration) error {
	var frames []*cdp.Node
	if err := c.wait(ctx, c.ctx, timeout, chromedp.Nodes(frameSelector, &frames, chromedp.ByQuery)); err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, frameSelector)
	}

	return c.wait(ctx, c.ctx, timeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery, chromedp.FromNode(frames[0])),
		chromedp.ScrollIntoView(selector, chromedp.ByQuery, chromedp.FromNode(frames[0])),
		chromedp.Click(selector, chromedp.ByQuery, chromedp.FromNode(frames[0])),
	)
}

// Cookies returns the cookies the browser holds for the current page.
func (c *Chrome) Cookies(ctx context.Context) ([]Cookie, error) {
	var raw []*network.Cookie
	err := c.run(ctx, c.ctx, c.opTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to get cookies: %w", err)
	}

	cookies := make([]Cookie, 0, len(raw))
	for _, ck := range raw {
		cookies = append(cookies, Cookie{Name: ck.Name, Value: ck.Value, Domain: ck.Domain})
	}

	return cookies, nil
}

func (c *Chrome) Snapshot(ctx context.Context) (*Page, error) {
	return c.snapshot(ctx, c.ctx)
}

// OpenTab opens url in a new target of the same browser, sharing its cookies.
func (c *Chrome) OpenTab(ctx context.Context, url string) (Tab, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}

	tabCtx, tabCancel := chromedp.NewContext(c.ctx)
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}

	tab := &chromeTab{parent: c, ctx: tabCtx, cancel: tabCancel}
	if err := c.run(ctx, tabCtx, c.opTimeout, chromedp.Navigate(url)); err != nil {
		_ = tab.Close()
		return nil, fmt.Errorf("failed to navigate tab to %s: %w", url, err)
	}

	c.log.DebugContext(ctx, "Opened tab", "url", url)

	return tab, nil
}

// Close shuts the browser down. A second call returns ErrClosed.
func (c *Chrome) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.closed = true

	err := chromedp.Cancel(c.ctx)
	c.cancel()
	c.allocCancel()

	c.log.Info("Browser closed")

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close browser: %w", err)
	}

	return nil
}

func (c *Chrome) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

// run executes actions against target, bounded by timeout and aborted when ctx is done.
func (c *Chrome) run(ctx, target context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if c.isClosed() {
		return ErrClosed
	}

	runCtx, cancel := context.WithTimeout(target, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}

	return nil
}

// wait is run for element queries: an expired bound becomes ErrNotFound.
func (c *Chrome) wait(ctx, target context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	err := c.run(ctx, target, timeout, actions...)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: waited %s: %w", ErrNotFound, timeout, err)
	}

	return err
}

func (c *Chrome) snapshot(ctx, target context.Context) (*Page, error) {
	var location, html string
	err := c.run(ctx, target, c.opTimeout,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture page: %w", err)
	}

	return NewPage(location, html)
}

type chromeTab struct {
	parent *Chrome
	ctx    context.Context //nolint:containedctx // the tab lives as long as this context.
	cancel context.CancelFunc
	once   sync.Once
}

func (t *chromeTab) WaitPresent(ctx context.Context, selector string, timeout time.Duration) error {
	return t.parent.wait(ctx, t.ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (t *chromeTab) Snapshot(ctx context.Context) (*Page, error) {
	return t.parent.snapshot(ctx, t.ctx)
}

func (t *chromeTab) Close() error {
	err := ErrClosed
	t.once.Do(func() {
		err = chromedp.Cancel(t.ctx)
		t.cancel()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	})

	return err
}
