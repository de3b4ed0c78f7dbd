package notifier_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Houeta/stock-watch/internal/models"
	"github.com/Houeta/stock-watch/internal/notifier"
	"github.com/Houeta/stock-watch/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *models.ScanResult {
	result := &models.ScanResult{}
	result.Add(models.Product{
		Title: "Wako",
		URL:   "https://shop.example.com/products/wako",
		Variants: []models.Variant{
			{Size: "40g tin", Price: "21.60"},
			{Size: "100g bag", Price: "48.00"},
		},
	})
	result.Add(models.Product{Title: "Isuzu", URL: "https://shop.example.com/products/isuzu"})

	return result
}

func TestFormatMessage(t *testing.T) {
	expected := "Marukyu Stock Check\n\n" +
		"🕜 Last Checked: Tue, 15 Oct 03:04 PM\n\n" +
		"🍵 Name: Wako\n✅ Status: In Stock\n" +
		"➡️ 40g tin: 21.60\n" +
		"➡️ 100g bag: 48.00\n" +
		"🔗 Link: https://shop.example.com/products/wako\n\n"

	got := notifier.FormatMessage(sampleResult(), "Marukyu", "Tue, 15 Oct 03:04 PM")

	assert.Equal(t, expected, got)
	assert.NotContains(t, got, "Isuzu")
	assert.Equal(t, got, notifier.FormatMessage(sampleResult(), "Marukyu", "Tue, 15 Oct 03:04 PM"))
}

func TestFormatMessage_NoStock(t *testing.T) {
	got := notifier.FormatMessage(&models.ScanResult{}, "Marukyu", "now")

	assert.Equal(t, "Marukyu Stock Check\n\n🕜 Last Checked: now\n\n", got)
}

func TestFormatMessage_MarksNewProducts(t *testing.T) {
	result := sampleResult()
	result.Add(models.Product{
		Title:    "Aoarashi",
		URL:      "https://shop.example.com/products/aoarashi",
		Variants: []models.Variant{{Size: "20g", Price: "9.80"}},
	})

	got := notifier.FormatMessage(result, "Marukyu", "now", "Aoarashi", "Isuzu")

	assert.Contains(t, got, "🍵 Name: Wako\n")
	assert.Contains(t, got, "🍵 Name: Aoarashi 🆕\n")
	assert.NotContains(t, got, "Isuzu")
}

func TestNotifier_Format(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	n := notifier.NewNotifier(logger, mocks.NewSender(t), "Marukyu", time.UTC)

	checkedAt := time.Date(2026, time.October, 15, 15, 4, 0, 0, time.UTC)

	t.Run("timestamp in configured location", func(t *testing.T) {
		got := n.Format(t.Context(), sampleResult(), models.Changes{}, checkedAt)

		assert.Contains(t, got, "🕜 Last Checked: Thu, 15 Oct 03:04 PM\n")
		assert.NotContains(t, got, "🆕")
	})

	t.Run("added products are marked", func(t *testing.T) {
		changes := models.Changes{Added: []models.Product{{Title: "Wako"}}}

		got := n.Format(t.Context(), sampleResult(), changes, checkedAt)

		assert.Contains(t, got, "🍵 Name: Wako 🆕\n✅ Status: In Stock\n")
	})
}

func TestNotifier_Notify(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := t.Context()

	t.Run("success", func(t *testing.T) {
		sender := mocks.NewSender(t)
		sender.On("Send", ctx, "hello").Return(nil).Once()

		err := notifier.NewNotifier(logger, sender, "Marukyu", nil).Notify(ctx, "hello")

		require.NoError(t, err)
	})

	t.Run("transport error is not retried", func(t *testing.T) {
		sender := mocks.NewSender(t)
		sender.On("Send", ctx, "hello").Return(assert.AnError).Once()

		err := notifier.NewNotifier(logger, sender, "Marukyu", nil).Notify(ctx, "hello")

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "notifier.Notify")
	})
}
