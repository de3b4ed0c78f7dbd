package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Houeta/stock-watch/internal/models"
)

// TimestampLayout renders the "last checked" time, e.g. "Tue, 15 Oct 03:04 PM".
const TimestampLayout = "Mon, 02 Jan 03:04 PM"

// Sender delivers a text message to the configured chat.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Notifier renders scan results and hands them to a Sender.
type Notifier struct {
	log         *slog.Logger
	sender      Sender
	companyName string
	loc         *time.Location
}

// NewNotifier creates a new Notifier. A nil loc means local time.
func NewNotifier(log *slog.Logger, sender Sender, companyName string, loc *time.Location) *Notifier {
	if loc == nil {
		loc = time.Local
	}

	return &Notifier{log: log, sender: sender, companyName: companyName, loc: loc}
}

// Format renders result as checked at checkedAt. Products in changes.Added are marked as new.
func (n *Notifier) Format(
	ctx context.Context,
	result *models.ScanResult,
	changes models.Changes,
	checkedAt time.Time,
) string {
	fresh := make([]string, 0, len(changes.Added))
	for _, p := range changes.Added {
		fresh = append(fresh, p.Title)
	}

	msg := FormatMessage(result, n.companyName, checkedAt.In(n.loc).Format(TimestampLayout), fresh...)
	n.log.InfoContext(
		ctx,
		"Formatted message created",
		"op", "notifier.Format",
		"in_stock", result.StockCount,
		"new", len(fresh),
	)

	return msg
}

// Notify sends message once. Failures are returned to the caller untouched by retries.
func (n *Notifier) Notify(ctx context.Context, message string) error {
	const opn = "notifier.Notify"

	if err := n.sender.Send(ctx, message); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// FormatMessage builds the alert text. Out-of-stock products are left out and
// titles listed in fresh get a "new" mark.
func FormatMessage(result *models.ScanResult, companyName, timestamp string, fresh ...string) string {
	var b strings.Builder

	b.WriteString(companyName + " Stock Check\n\n")
	b.WriteString("🕜 Last Checked: " + timestamp + "\n\n")

	for _, p := range result.Products {
		if p.Status != models.InStock {
			continue
		}

		mark := ""
		if slices.Contains(fresh, p.Title) {
			mark = " 🆕"
		}
		fmt.Fprintf(&b, "🍵 Name: %s%s\n✅ Status: %s\n", p.Title, mark, p.Status)
		for _, v := range p.Variants {
			fmt.Fprintf(&b, "➡️ %s: %s\n", v.Size, v.Price)
		}
		fmt.Fprintf(&b, "🔗 Link: %s\n\n", p.URL)
	}

	return b.String()
}
