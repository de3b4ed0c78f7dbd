package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/telebot.v4"
)

const handlerTimeout = 5 * time.Second

// Bot contains the bot API instance and other information.
type Bot struct {
	bot  API
	log  *slog.Logger
	repo Subscriptions
	chat telebot.ChatID
	loc  *time.Location
}

func NewBot(
	log *slog.Logger,
	token string,
	poller time.Duration,
	chatID int64,
	repo Subscriptions,
	loc *time.Location,
) (*Bot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: poller},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", bot.Me.Username)

	if loc == nil {
		loc = time.Local
	}

	botInstance := &Bot{bot: bot, log: log, repo: repo, chat: telebot.ChatID(chatID), loc: loc}

	botInstance.registerRoutes()

	return botInstance, nil
}

// Start launches the bot to listen for updates.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop gracefully stops the Telegram bot and logs the action.
func (b *Bot) Stop() {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()
}

// Send delivers text to the configured chat and to every subscribed chat.
// Each recipient is tried once; failures are joined.
func (b *Bot) Send(ctx context.Context, text string) error {
	const opn = "bot.Send"
	log := b.log.With("op", opn)

	var errs []error

	recipients := []telebot.ChatID{b.chat}
	subscribed, err := b.repo.GetSubscribedChats(ctx)
	if err != nil {
		log.WarnContext(ctx, "failed to load subscribed chats", "error", err)
		errs = append(errs, err)
	}
	for _, id := range subscribed {
		if telebot.ChatID(id) != b.chat {
			recipients = append(recipients, telebot.ChatID(id))
		}
	}

	for _, to := range recipients {
		if err = ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err = b.bot.Send(to, text); err != nil {
			log.ErrorContext(ctx, "failed to send message", "chat_id", int64(to), "error", err)
			errs = append(errs, fmt.Errorf("chat %d: %w", int64(to), err))
		}
	}

	if err = errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// registerRoutes configures all routes (commands).
func (b *Bot) registerRoutes() {
	// Public routes.
	b.bot.Handle("/start", b.startHandler)
	b.bot.Handle("/status", b.statusHandler)
	b.bot.Handle("/subscribe", b.subscribeHandler)
	b.bot.Handle("/unsubscribe", b.unsubscribeHandler)
}
