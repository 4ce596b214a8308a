package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/wordcards/internal/api"
	"github.com/example/wordcards/internal/bot"
	"github.com/example/wordcards/internal/config"
	"github.com/example/wordcards/internal/database"
	"github.com/example/wordcards/internal/excel"
	"github.com/example/wordcards/internal/logger"
	"github.com/example/wordcards/internal/scheduler"
	"github.com/example/wordcards/internal/state"
	"github.com/example/wordcards/internal/wordbook"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.Setup(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		zap.S().Warnw("load .env", "error", envErr)
	} else if envErr != nil {
		zap.S().Debug("no .env file, using the environment")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		zap.S().Fatalw("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.Up(ctx); err != nil {
		zap.S().Fatalw("Failed to run migrations", "error", err)
	}

	client := api.New(cfg.API)
	if !client.Authenticated() {
		zap.S().Warn("no API token configured, favorites and reviews will be rejected by the server")
	}

	var books wordbook.Source = client
	if cfg.WordBook.Source == "file" {
		books = excel.NewFileSource(cfg.WordBook.Dir)
		zap.S().Infow("reading word books from files", "dir", cfg.WordBook.Dir)
	}

	repo := database.NewStateRepository(db, "")

	botAPI, err := bot.Connect(cfg.Telegram.Token)
	if err != nil {
		zap.S().Fatalw("Failed to create bot", "error", err)
	}

	b := bot.New(botAPI, bot.Deps{
		Service: client,
		Books:   books,
		Accounts: func(account string) state.Backend {
			return repo.WithAccount(account)
		},
		DefaultBook: cfg.WordBook.Default,
		DailyCount:  cfg.Study.DailyCount,
	})

	sched := scheduler.New(cfg.Scheduler, b, b)
	if err := sched.Start(); err != nil {
		zap.S().Fatalw("Failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	updates := bot.Updates(botAPI)
	zap.S().Info("Bot started. Press Ctrl+C to stop.")
	b.Run(ctx, updates)

	botAPI.StopReceivingUpdates()
	zap.S().Info("Bot stopped successfully")
}
