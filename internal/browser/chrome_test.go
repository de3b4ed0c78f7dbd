package browser_test

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/Houeta/stock-watch/internal/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blankPage = `<html><body><p id="here">ready</p></body></html>`

// newChrome starts a headless browser, skipping the test when none is installed.
func newChrome(t *testing.T) *browser.Chrome {
	t.Helper()

	if testing.Short() {
		t.Skip("browser tests are disabled in short mode")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	drv, err := browser.NewChrome(t.Context(), logger, browser.Options{Headless: true})
	if err != nil {
		t.Skipf("chrome is not available: %v", err)
	}

	return drv
}

func TestChrome_Close(t *testing.T) {
	drv := newChrome(t)

	require.NoError(t, drv.Close())
	require.ErrorIs(t, drv.Close(), browser.ErrClosed)
	require.ErrorIs(t, drv.Reload(t.Context()), browser.ErrClosed)

	_, err := drv.OpenTab(t.Context(), "about:blank")
	require.ErrorIs(t, err, browser.ErrClosed)
}

func TestChrome_WaitPresent(t *testing.T) {
	drv := newChrome(t)
	t.Cleanup(func() { _ = drv.Close() })

	require.NoError(t, drv.Navigate(t.Context(), "data:text/html,"+url.PathEscape(blankPage)))

	t.Run("present element", func(t *testing.T) {
		require.NoError(t, drv.WaitPresent(t.Context(), "#here", 5*time.Second))
	})

	t.Run("expired wait is not found", func(t *testing.T) {
		err := drv.WaitPresent(t.Context(), "#missing", 200*time.Millisecond)

		require.ErrorIs(t, err, browser.ErrNotFound)
	})

	t.Run("cancelled caller keeps its error", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err := drv.WaitPresent(ctx, "#missing", 5*time.Second)

		require.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, browser.ErrNotFound)
	})
}
