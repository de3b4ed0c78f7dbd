package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Houeta/stock-watch/internal/bot"
	"github.com/Houeta/stock-watch/internal/browser"
	"github.com/Houeta/stock-watch/internal/config"
	"github.com/Houeta/stock-watch/internal/notifier"
	"github.com/Houeta/stock-watch/internal/repository/sqlite"
	"github.com/Houeta/stock-watch/internal/services/checker"
	"github.com/Houeta/stock-watch/internal/services/monitor"
	"github.com/Houeta/stock-watch/internal/services/scanner"
	"github.com/Houeta/stock-watch/internal/session"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	if err := run(); err != nil {
		log.Printf("stock-watch stopped with error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	out := io.Writer(os.Stdout)
	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer logFile.Close()
		out = io.MultiWriter(os.Stdout, logFile)
	}

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env, out)

	policy, err := checker.ParsePolicy(cfg.NotifyPolicy)
	if err != nil {
		return err
	}

	repo, err := sqlite.NewRepository(ctx, logger, cfg.StoragePath)
	if err != nil {
		return err
	}
	defer repo.Close()

	stockBot, err := bot.NewBot(logger, cfg.Tg.Token, cfg.Tg.Timeout, cfg.Tg.ChatID, repo, cfg.Location)
	if err != nil {
		return err
	}

	newSession := func(ctx context.Context) (monitor.Session, error) {
		drv, err := browser.NewChrome(ctx, logger, browser.Options{
			Headless:  cfg.Browser.Headless,
			UserAgent: cfg.Browser.UserAgent,
		})
		if err != nil {
			return nil, err
		}

		return session.NewManager(logger, drv, session.Options{
			LoginURL:         cfg.Site.LoginURL,
			CatalogURL:       cfg.Site.CatalogURL,
			Username:         cfg.Site.Email,
			Password:         cfg.Site.Password,
			MarkerCookie:     cfg.Site.MarkerCookie,
			LoginTimeout:     cfg.Browser.LoginTimeout,
			ChallengeTimeout: cfg.Browser.ChallengeTimeout,
		}), nil
	}

	stockMonitor := monitor.NewMonitor(
		logger,
		newSession,
		scanner.NewScanner(logger, scanner.DefaultSelectors(), cfg.Excluded, cfg.Browser.ElementTimeout),
		notifier.NewNotifier(logger, stockBot, cfg.CompanyName, cfg.Location),
		checker.NewChecker(logger, repo, policy),
		monitor.Config{
			Interval:      cfg.Poll.Interval,
			MaxRecoveries: cfg.Poll.MaxRecoveries,
		},
	)

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.", "policy", policy)

	// Start the bot in a goroutine so that commands are served while polling.
	go stockBot.Start()
	defer stockBot.Stop()

	// Run blocks until the context is canceled (e.g., by Ctrl+C) or a fatal error occurs.
	err = stockMonitor.Run(ctx)

	var fatal *monitor.FatalError
	switch {
	case err == nil:
		logger.InfoContext(ctx, "Application stopped gracefully.")
	case errors.As(err, &fatal):
		logger.ErrorContext(ctx, "Application stopped on a fatal error", "error", err)
	default:
		logger.ErrorContext(ctx, "Application stopped", "error", err)
	}

	return err
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string, out io.Writer) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(out, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				AddSource:   false,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{
				Level:       slog.LevelError,
				AddSource:   false,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
