package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Houeta/stock-watch/internal/browser"
	"github.com/Houeta/stock-watch/internal/models"
	"github.com/Houeta/stock-watch/internal/services/checker"
)

const (
	loginFailedMessage = "⚠️ Login failed. Manual intervention required."
	shutdownMessage    = "Bot has shut down"

	defaultInterval        = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

var (
	// ErrLoginFailed means the site refused the configured credentials.
	ErrLoginFailed = errors.New("login failed")
	// ErrUnrecoverable means the session could not be rebuilt MaxRecoveries times in a row.
	ErrUnrecoverable = errors.New("session could not be recovered")
)

// FatalError ends the polling loop. Any other error returned by a cycle is
// treated as transient and triggers a session rebuild.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return "fatal: " + e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// State of the polling loop.
type State int

const (
	Starting State = iota
	Polling
	Recovering
	ShuttingDown
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Polling:
		return "polling"
	case Recovering:
		return "recovering"
	case ShuttingDown:
		return "shutting_down"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is an authenticated browser session.
type Session interface {
	Authenticate(ctx context.Context) (bool, error)
	IsAuthenticated(ctx context.Context) (bool, error)
	Browser() browser.Driver
	Teardown() error
}

// SessionFactory builds a fresh, unauthenticated session.
type SessionFactory func(ctx context.Context) (Session, error)

type Scanner interface {
	Scan(ctx context.Context, drv browser.Driver) (*models.ScanResult, error)
}

type Notifier interface {
	Format(ctx context.Context, result *models.ScanResult, changes models.Changes, checkedAt time.Time) string
	Notify(ctx context.Context, message string) error
}

// Gate decides whether an in-stock scan is worth an alert.
type Gate interface {
	Evaluate(ctx context.Context, result *models.ScanResult, checkedAt time.Time) (checker.Decision, error)
}

// Config bounds the loop.
type Config struct {
	Interval time.Duration
	// MaxRecoveries is the number of consecutive failed session rebuilds
	// tolerated before giving up. Zero disables the limit.
	MaxRecoveries   int
	ShutdownTimeout time.Duration
}

// Monitor drives the session, the scanner and the notifier on a fixed interval.
type Monitor struct {
	log        *slog.Logger
	newSession SessionFactory
	scanner    Scanner
	notifier   Notifier
	gate       Gate
	cfg        Config
	now        func() time.Time

	session Session
	state   State
}

// NewMonitor creates a Monitor. gate may be nil, in which case every scan
// with stock is reported.
func NewMonitor(
	log *slog.Logger,
	newSession SessionFactory,
	scanner Scanner,
	notifier Notifier,
	gate Gate,
	cfg Config,
) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	return &Monitor{
		log:        log,
		newSession: newSession,
		scanner:    scanner,
		notifier:   notifier,
		gate:       gate,
		cfg:        cfg,
		now:        time.Now,
	}
}

// State returns the current loop state.
func (m *Monitor) State() State {
	return m.state
}

// Run blocks until ctx is cancelled or a fatal error occurs. The session is
// always torn down and a final notification attempted before it returns.
// Cancellation is a clean exit and returns nil.
func (m *Monitor) Run(ctx context.Context) error {
	const opn = "monitor.Run"

	err := m.start(ctx)
	if err == nil {
		err = m.loop(ctx)
	}

	m.shutdown(ctx)

	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

func (m *Monitor) start(ctx context.Context) error {
	const opn = "monitor.start"
	log := m.log.With("op", opn)

	m.setState(ctx, Starting)
	log.InfoContext(ctx, "Stock monitor starting")

	sess, err := m.newSession(ctx)
	if err != nil {
		m.alert(ctx, loginFailedMessage)
		return &FatalError{Err: fmt.Errorf("%w: failed to create session: %w", ErrLoginFailed, err)}
	}
	m.session = sess

	log.InfoContext(ctx, "Logging in")
	ok, err := sess.Authenticate(ctx)
	switch {
	case err != nil:
		log.ErrorContext(ctx, "Login attempt failed", "error", err)
		m.alert(ctx, loginFailedMessage)
		return &FatalError{Err: fmt.Errorf("%w: %w", ErrLoginFailed, err)}
	case !ok:
		log.ErrorContext(ctx, "Login rejected")
		m.alert(ctx, loginFailedMessage)
		return &FatalError{Err: ErrLoginFailed}
	}

	log.InfoContext(ctx, "Login successful")

	return nil
}

func (m *Monitor) loop(ctx context.Context) error {
	log := m.log.With("op", "monitor.loop")

	failures := 0
	state := Polling
	for {
		m.setState(ctx, state)

		switch state {
		case Polling:
			err := m.poll(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				var fatal *FatalError
				if errors.As(err, &fatal) {
					return err
				}
				log.ErrorContext(ctx, "Polling cycle failed, recovering", "error", err)
				state = Recovering
				continue
			}
		case Recovering:
			if err := m.rebuild(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				failures++
				log.ErrorContext(ctx, "Recovery failed", "attempt", failures, "error", err)
				if m.cfg.MaxRecoveries > 0 && failures >= m.cfg.MaxRecoveries {
					return fmt.Errorf("%w: %w", ErrUnrecoverable, err)
				}
			} else {
				failures = 0
				state = Polling
			}
		}

		if !m.sleep(ctx) {
			return nil
		}
	}
}

// poll runs a single polling cycle.
func (m *Monitor) poll(ctx context.Context) error {
	const opn = "monitor.poll"
	log := m.log.With("op", opn)

	// 1. Session check
	ok, err := m.session.IsAuthenticated(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to check session: %w", opn, err)
	}
	if !ok {
		log.InfoContext(ctx, "Session expired, logging in again")
		ok, err = m.session.Authenticate(ctx)
		if err != nil {
			return fmt.Errorf("%s: re-login failed: %w", opn, err)
		}
		if !ok {
			log.ErrorContext(ctx, "Re-login rejected")
			m.alert(ctx, loginFailedMessage)
			return &FatalError{Err: ErrLoginFailed}
		}
		log.InfoContext(ctx, "Re-login successful")
	}

	// 2. Scan
	checkedAt := m.now()
	result, err := m.scanner.Scan(ctx, m.session.Browser())
	if err != nil {
		return fmt.Errorf("%s: scan failed: %w", opn, err)
	}

	// 3. Notify
	notify, changes := m.shouldNotify(ctx, result, checkedAt)
	if notify && result.StockCount > 0 {
		msg := m.notifier.Format(ctx, result, changes, checkedAt)
		if err = m.notifier.Notify(ctx, msg); err != nil {
			return fmt.Errorf("%s: %w", opn, err)
		}
		log.InfoContext(ctx, "Stock alert sent", "in_stock", result.StockCount)
	}

	// 4. Refresh the listing for the next cycle
	if err = m.session.Browser().Reload(ctx); err != nil {
		return fmt.Errorf("%s: failed to refresh listing: %w", opn, err)
	}

	return nil
}

// shouldNotify consults the gate. Gate failures never suppress an alert;
// they only lose the change set.
func (m *Monitor) shouldNotify(
	ctx context.Context,
	result *models.ScanResult,
	checkedAt time.Time,
) (bool, models.Changes) {
	if m.gate == nil {
		return true, models.Changes{}
	}

	decision, err := m.gate.Evaluate(ctx, result, checkedAt)
	if err != nil {
		m.log.WarnContext(ctx, "Notification gate failed, alerting anyway", "op", "monitor.shouldNotify", "error", err)
		return true, models.Changes{}
	}

	return decision.Notify, decision.Changes
}

// rebuild replaces the current session with a fresh one.
func (m *Monitor) rebuild(ctx context.Context) error {
	const opn = "monitor.rebuild"
	log := m.log.With("op", opn)

	if m.session != nil {
		if err := m.session.Teardown(); err != nil {
			log.WarnContext(ctx, "Failed to tear down session", "error", err)
		}
		m.session = nil
	}

	sess, err := m.newSession(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to create session: %w", opn, err)
	}
	m.session = sess

	// The next cycle's session check decides what a failed login means.
	ok, err := sess.Authenticate(ctx)
	switch {
	case err != nil:
		log.WarnContext(ctx, "Login after recovery failed", "error", err)
	case !ok:
		log.WarnContext(ctx, "Login after recovery rejected")
	default:
		log.InfoContext(ctx, "Session recovered")
	}

	return nil
}

func (m *Monitor) shutdown(ctx context.Context) {
	const opn = "monitor.shutdown"
	log := m.log.With("op", opn)

	m.setState(ctx, ShuttingDown)

	if m.session != nil {
		if err := m.session.Teardown(); err != nil {
			log.ErrorContext(ctx, "Failed to tear down session", "error", err)
		}
	}

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.ShutdownTimeout)
	defer cancel()

	m.alert(sctx, shutdownMessage)
	log.InfoContext(sctx, "Stock monitor stopped")
}

// alert sends a best-effort operational message.
func (m *Monitor) alert(ctx context.Context, message string) {
	if err := m.notifier.Notify(ctx, message); err != nil {
		m.log.ErrorContext(ctx, "Failed to send alert", "op", "monitor.alert", "message", message, "error", err)
	}
}

// sleep waits for the polling interval. It reports false when ctx was cancelled.
func (m *Monitor) sleep(ctx context.Context) bool {
	timer := time.NewTimer(m.cfg.Interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		m.log.InfoContext(ctx, "Interrupt received, stopping", "op", "monitor.sleep")
		return false
	case <-timer.C:
		return true
	}
}

func (m *Monitor) setState(ctx context.Context, state State) {
	if m.state != state {
		m.log.DebugContext(ctx, "State transition", "from", m.state, "to", state)
	}
	m.state = state
}
