// @title                      Artist Events API
// @version                    1.0
// @description                Artist events, RSVPs and one-hour reminders.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"artistevents/config"
	"artistevents/internal/adapters/auth"
	"artistevents/internal/app"
	"artistevents/internal/clock"
	"artistevents/internal/database"
	deliveryhttp "artistevents/internal/delivery/http"
	"artistevents/internal/delivery/http/controllers"
	"artistevents/internal/repository/postgres"
	"artistevents/internal/scheduler"
	"artistevents/internal/services"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger(cfg)

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := database.Open(startupCtx, cfg.DBUrl, database.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	clk := clock.NewSystem()
	eventRepo := postgres.NewEventRepository(db)
	rsvpRepo := postgres.NewRSVPRepository(db)
	followRepo := postgres.NewFollowRepository(db)

	eventSvc := services.NewEventService(eventRepo, rsvpRepo, followRepo, clk, cfg.RequestTimeout)
	attendanceSvc := services.NewAttendanceService(postgres.NewTransactor(db), eventRepo, rsvpRepo, clk, cfg.RequestTimeout)

	sweeper, closeDispatcher, err := app.NewSweeper(cfg, db, logger)
	if err != nil {
		logger.Error("reminder dispatcher init failed", "channel", cfg.Reminder.Channel, "error", err)
		os.Exit(1)
	}
	defer closeDispatcher()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(sweeper, cfg.Reminder.Interval, logger)
	if cfg.Reminder.SchedulerEnabled {
		sched.Start(stopCtx)
		defer sched.Stop()
	} else {
		logger.Warn("reminder scheduler disabled; run cmd/sweep externally")
	}

	handler := deliveryhttp.NewRouter(deliveryhttp.RouterDeps{
		Events:      controllers.NewEventController(logger, eventSvc),
		RSVPs:       controllers.NewRSVPController(logger, attendanceSvc),
		Feed:        controllers.NewFeedController(logger, eventSvc),
		Verifier:    auth.NewJWTVerifier(cfg.JWTSecret),
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		logger.Info("api listening", "port", cfg.Port, "env", cfg.Environment)
		srvErr <- server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
