package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/Houeta/stock-watch/internal/notifier"
	"github.com/Houeta/stock-watch/internal/repository"
	"gopkg.in/telebot.v4"
)

// startHandler process command /start.
func (b *Bot) startHandler(ctx telebot.Context) error {
	b.log.Info("User started the bot", "username", ctx.Sender().Username)

	if err := ctx.Send("Hello! Send /subscribe to receive stock alerts in this chat."); err != nil {
		return fmt.Errorf("failed to send greeting message: %w", err)
	}

	return nil
}

// statusHandler process command /status.
func (b *Bot) statusHandler(ctx telebot.Context) error {
	reqCtx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	reply := "No scans yet."
	last, err := b.repo.LastScan(reqCtx)
	switch {
	case errors.Is(err, repository.ErrScanNotFound):
	case err != nil:
		b.log.Error("failed to get last scan", "op", "bot.statusHandler", "error", err)
		reply = "Status is unavailable right now."
	default:
		reply = fmt.Sprintf("🕜 Last Checked: %s\n📦 Products: %d\n✅ In Stock: %d",
			last.CheckedAt.In(b.loc).Format(notifier.TimestampLayout), last.ProductCount, last.StockCount)
	}

	if err = ctx.Send(reply); err != nil {
		return fmt.Errorf("failed to send status message: %w", err)
	}

	return nil
}

// subscribeHandler process command /subscribe.
func (b *Bot) subscribeHandler(ctx telebot.Context) error {
	reqCtx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	chatID := ctx.Chat().ID
	if err := b.repo.SubscribeChat(reqCtx, chatID); err != nil {
		b.log.Error("failed to subscribe chat", "op", "bot.subscribeHandler", "chat_id", chatID, "error", err)
		return ctx.Send("Subscription failed, please try again later.")
	}
	b.log.Info("Chat subscribed", "chat_id", chatID)

	if err := ctx.Send("Subscribed to stock alerts."); err != nil {
		return fmt.Errorf("failed to send subscribe message: %w", err)
	}

	return nil
}

// unsubscribeHandler process command /unsubscribe.
func (b *Bot) unsubscribeHandler(ctx telebot.Context) error {
	reqCtx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	chatID := ctx.Chat().ID
	if err := b.repo.UnsubscribeChat(reqCtx, chatID); err != nil {
		b.log.Error("failed to unsubscribe chat", "op", "bot.unsubscribeHandler", "chat_id", chatID, "error", err)
		return ctx.Send("Unsubscribe failed, please try again later.")
	}
	b.log.Info("Chat unsubscribed", "chat_id", chatID)

	if err := ctx.Send("Unsubscribed from stock alerts."); err != nil {
		return fmt.Errorf("failed to send unsubscribe message: %w", err)
	}

	return nil
}
