package session

import (
	"context"
	"errors"

	"github.com/Houeta/stock-watch/internal/browser"
)

// handleChallenge clicks the challenge checkbox when the widget shows up.
// Its outcome never decides whether the login succeeded.
func (m *Manager) handleChallenge(ctx context.Context) {
	log := m.log.With("op", "session.handleChallenge")

	err := m.drv.ClickInFrame(ctx, m.opts.ChallengeFrame, m.opts.ChallengeCheckbox, m.opts.ChallengeTimeout)
	switch {
	case err == nil:
		log.InfoContext(ctx, "reCAPTCHA bypassed")
	case errors.Is(err, browser.ErrNotFound):
		log.InfoContext(ctx, "reCAPTCHA not found")
	default:
		log.WarnContext(ctx, "reCAPTCHA could not be clicked, continuing", "error", err)
	}
}
