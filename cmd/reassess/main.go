// Command reassess runs one batch tier reassessment against the configured
// database and exits. It is meant for cron hosts and manual backfills when
// the in-process schedule is disabled.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kkkkikiki/loyalty/internal/config"
	"github.com/kkkkikiki/loyalty/internal/database"
	"github.com/kkkkikiki/loyalty/internal/logging"
	"github.com/kkkkikiki/loyalty/internal/service"
	"github.com/kkkkikiki/loyalty/internal/tier"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 1
	}

	logger, err := logging.New(cfg.App)
	if err != nil {
		log.Printf("Failed to create logger: %v", err)
		return 1
	}
	defer logger.Sync()

	db, err := database.NewDB(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return 1
	}
	defer db.Close()

	window, _ := tier.ParseSpendWindow(cfg.Tier.SpendWindow)
	engine := service.NewEngine(db.Postgres, logger,
		service.WithSpendWindow(window),
		service.WithWorkers(cfg.Reassess.Workers))

	ctx, cancel := context.WithTimeout(ctx, cfg.Reassess.Timeout)
	defer cancel()

	result, err := engine.ReassessAllCustomers(ctx)
	if err != nil {
		logger.Error("reassessment interrupted",
			zap.Int("processed", result.Processed),
			zap.Int("failed", result.Failed),
			zap.Error(err))
		return 1
	}
	if result.Failed > 0 {
		return 2
	}
	return 0
}
