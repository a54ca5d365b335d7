package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"weekly-menu-planner/internal/app"
	"weekly-menu-planner/internal/config"
	"weekly-menu-planner/internal/logging"
	"weekly-menu-planner/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Telegram.BotToken == "" {
		fatalf("TELEGRAM_BOT_TOKEN is required for the bot")
	}

	log, err := logging.New(cfg.Debug)
	if err != nil {
		fatalf("Failed to create logger: %v", err)
	}
	defer log.Sync()

	application, err := app.New(cfg, log)
	if err != nil {
		fatalf("Failed to initialize: %v", err)
	}
	defer application.Close()

	bot, err := telegram.NewBot(application)
	if err != nil {
		fatalf("Failed to initialize Telegram bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("bot started")
	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("bot stopped", zap.Error(err))
		os.Exit(1)
	}
	log.Info("bot exiting")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
