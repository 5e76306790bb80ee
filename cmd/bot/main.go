package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/doEggi/do-bot/config"
	tgDelivery "github.com/doEggi/do-bot/internal/giveaway/delivery/telegram"
	"github.com/doEggi/do-bot/internal/giveaway/repository/sqlite"
	"github.com/doEggi/do-bot/internal/giveaway/usecase"
	"github.com/doEggi/do-bot/internal/httpserver"
	"github.com/doEggi/do-bot/internal/scheduler"
	"github.com/doEggi/do-bot/pkg/log"
	"github.com/doEggi/do-bot/pkg/telegram"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting do-bot...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)

	// 3. Storage
	db, err := sqlite.New(cfg.Database.Path, cfg.Giveaway.DefaultTimezone)
	if err != nil {
		logger.Fatalf(ctx, "Failed to open database %s: %v", cfg.Database.Path, err)
	}
	defer db.Close()

	// 4. Telegram client and webhook registration
	bot := telegram.NewBot(cfg.Telegram.BotToken)
	if cfg.Telegram.WebhookURL != "" {
		if err := bot.SetWebhook(cfg.Telegram.WebhookURL+"/webhook/telegram", cfg.Telegram.WebhookSecret); err != nil {
			logger.Warnf(ctx, "Failed to set Telegram webhook: %v", err)
		} else {
			logger.Infof(ctx, "Telegram webhook registered at %s/webhook/telegram", cfg.Telegram.WebhookURL)
		}
	}

	// 5. Giveaway domain
	sched := scheduler.New()
	defer sched.Stop()

	giveawayUC := usecase.New(logger, db, bot, sched)
	if err := giveawayUC.Restore(ctx); err != nil {
		logger.Errorf(ctx, "Failed to restore scheduled giveaways: %v", err)
	}

	telegramHandler := tgDelivery.New(logger, giveawayUC, bot, cfg.Giveaway.AdminIDs, cfg.Telegram.WebhookSecret)

	// 6. HTTP server
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:          logger,
		Port:            cfg.HTTPServer.Port,
		Mode:            cfg.HTTPServer.Mode,
		Environment:     cfg.Environment.Name,
		TelegramHandler: telegramHandler,
	})
	if err != nil {
		logger.Errorf(ctx, "Failed to initialize HTTP server: %v", err)
		return
	}

	if err := httpServer.Run(); err != nil {
		logger.Errorf(ctx, "Failed to run server: %v", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}
