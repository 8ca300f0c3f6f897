// Command sweep runs a single reminder sweep and exits. It is meant for cron
// style deployments that set REMINDER_SCHEDULER_ENABLED=false on the API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"artistevents/config"
	"artistevents/internal/app"
	"artistevents/internal/database"
)

const sweepTimeout = 2 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	db, err := database.Open(ctx, cfg.DBUrl, database.Options{MaxOpenConns: 4, MaxIdleConns: 1})
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	sweeper, closeDispatcher, err := app.NewSweeper(cfg, db, logger)
	if err != nil {
		logger.Error("reminder dispatcher init failed", "channel", cfg.Reminder.Channel, "error", err)
		os.Exit(1)
	}
	defer closeDispatcher()

	report, err := sweeper.Sweep(ctx)
	if err != nil {
		logger.Error("reminder sweep failed", "error", err)
		closeDispatcher()
		db.Close()
		os.Exit(1)
	}
	if report.Failed > 0 {
		logger.Warn("reminder sweep finished with failures",
			"failed", report.Failed,
			"failed_events", report.FailedEvents,
		)
	}
}
