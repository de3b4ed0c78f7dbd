package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Houeta/stock-watch/internal/browser"
	"github.com/Houeta/stock-watch/internal/models"
)

// ErrTornDown is returned by Teardown when the session was already released.
var ErrTornDown = errors.New("session already torn down")

// Defaults for a WooCommerce login form guarded by a reCAPTCHA checkbox.
const (
	DefaultUsernameSelector  = `input[name='username']`
	DefaultPasswordSelector  = `input[name='password']`
	DefaultSubmitSelector    = `button[name='login']`
	DefaultChallengeFrame    = `iframe[title='reCAPTCHA']`
	DefaultChallengeCheckbox = `.recaptcha-checkbox-border`
	DefaultMarkerCookie      = "wordpress_logged_in_"

	defaultLoginTimeout     = 10 * time.Second
	defaultChallengeTimeout = 3 * time.Second
	defaultPollInterval     = 500 * time.Millisecond
)

// Options describes the target site and the bounds of every wait.
type Options struct {
	LoginURL   string
	CatalogURL string
	Username   string
	Password   string

	UsernameSelector  string
	PasswordSelector  string
	SubmitSelector    string
	ChallengeFrame    string
	ChallengeCheckbox string
	// MarkerCookie is the name prefix of the cookie set only for logged-in users.
	MarkerCookie string

	LoginTimeout     time.Duration
	ChallengeTimeout time.Duration
	PollInterval     time.Duration
}

func (o *Options) applyDefaults() {
	setDefault(&o.UsernameSelector, DefaultUsernameSelector)
	setDefault(&o.PasswordSelector, DefaultPasswordSelector)
	setDefault(&o.SubmitSelector, DefaultSubmitSelector)
	setDefault(&o.ChallengeFrame, DefaultChallengeFrame)
	setDefault(&o.ChallengeCheckbox, DefaultChallengeCheckbox)
	setDefault(&o.MarkerCookie, DefaultMarkerCookie)

	if o.LoginTimeout <= 0 {
		o.LoginTimeout = defaultLoginTimeout
	}
	if o.ChallengeTimeout <= 0 {
		o.ChallengeTimeout = defaultChallengeTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Manager owns an authenticated browser session.
type Manager struct {
	log  *slog.Logger
	drv  browser.Driver
	opts Options

	state    models.SessionState
	tornDown bool
}

// NewManager creates a Manager that takes ownership of drv.
func NewManager(log *slog.Logger, drv browser.Driver, opts Options) *Manager {
	opts.applyDefaults()
	return &Manager{log: log, drv: drv, opts: opts, state: models.Unauthenticated}
}

// Authenticate submits the login form and confirms the login through the marker cookie.
// It returns false without an error when the marker does not appear in time.
func (m *Manager) Authenticate(ctx context.Context) (bool, error) {
	const opn = "session.Authenticate"
	log := m.log.With("op", opn)

	if m.tornDown {
		return false, fmt.Errorf("%s: %w", opn, ErrTornDown)
	}

	log.InfoContext(ctx, "Starting login process", "login_page", m.opts.LoginURL)
	m.state = models.Unauthenticated

	if err := m.drv.Navigate(ctx, m.opts.LoginURL); err != nil {
		return false, fmt.Errorf("%s: failed to open login page: %w", opn, err)
	}
	if err := m.drv.Fill(ctx, m.opts.UsernameSelector, m.opts.Username); err != nil {
		return false, fmt.Errorf("%s: failed to fill username: %w", opn, err)
	}
	if err := m.drv.Fill(ctx, m.opts.PasswordSelector, m.opts.Password); err != nil {
		return false, fmt.Errorf("%s: failed to fill password: %w", opn, err)
	}

	m.handleChallenge(ctx)

	if err := m.drv.Click(ctx, m.opts.SubmitSelector); err != nil {
		return false, fmt.Errorf("%s: failed to submit login form: %w", opn, err)
	}

	found, err := m.waitForMarker(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", opn, err)
	}
	if !found {
		log.ErrorContext(ctx, "Login failed: session cookie not found", "waited", m.opts.LoginTimeout)
		return false, nil
	}
	log.InfoContext(ctx, "Login successful. Session cookie found.")

	if err = m.drv.Navigate(ctx, m.opts.CatalogURL); err != nil {
		return false, fmt.Errorf("%s: failed to open catalog page: %w", opn, err)
	}
	m.state = models.Authenticated

	return true, nil
}

// IsAuthenticated inspects the cookies the browser currently holds.
func (m *Manager) IsAuthenticated(ctx context.Context) (bool, error) {
	const opn = "session.IsAuthenticated"

	if m.tornDown {
		return false, fmt.Errorf("%s: %w", opn, ErrTornDown)
	}

	cookies, err := m.drv.Cookies(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", opn, err)
	}

	ok := hasMarker(cookies, m.opts.MarkerCookie)
	if !ok {
		m.state = models.Unauthenticated
	}

	return ok, nil
}

// Browser lends the driver to callers for the duration of a scan.
func (m *Manager) Browser() browser.Driver {
	return m.drv
}

// State returns the last known authentication state.
func (m *Manager) State() models.SessionState {
	return m.state
}

// Teardown releases the browser. Calling it twice is a caller bug and is reported.
func (m *Manager) Teardown() error {
	const opn = "session.Teardown"

	if m.tornDown {
		return fmt.Errorf("%s: %w", opn, ErrTornDown)
	}
	m.tornDown = true
	m.state = models.Unauthenticated

	m.log.Info("Closing browser session", "op", opn)
	if err := m.drv.Close(); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// waitForMarker polls cookies until the marker shows up or LoginTimeout elapses.
func (m *Manager) waitForMarker(ctx context.Context) (bool, error) {
	deadline := time.NewTimer(m.opts.LoginTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for {
		cookies, err := m.drv.Cookies(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to read cookies: %w", err)
		}
		if hasMarker(cookies, m.opts.MarkerCookie) {
			return true, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline.C:
			return false, nil
		case <-ticker.C:
		}
	}
}

func hasMarker(cookies []browser.Cookie, prefix string) bool {
	for _, c := range cookies {
		if strings.HasPrefix(c.Name, prefix) {
			return true
		}
	}

	return false
}
