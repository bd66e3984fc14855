package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/amanmodak98/hisaab/internal/amqp"
	"github.com/amanmodak98/hisaab/internal/config"
	applog "github.com/amanmodak98/hisaab/internal/log"
	gsheet "github.com/amanmodak98/hisaab/internal/sheets/google"
	"github.com/amanmodak98/hisaab/internal/storage"
	"github.com/amanmodak98/hisaab/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting hisaab-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	// The worker reads the same SQLite slots the server writes.
	slots, err := storage.NewSQLiteSlotStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite slot store", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer slots.Close()

	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("Google Sheets mirror requires GOOGLE_SPREADSHEET_ID")
		os.Exit(1)
	}
	sheetsClient, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mirror := worker.NewMirrorWorker(slots, sheetsClient, cfg.MirrorInterval)

	// Catch up on anything missed while the worker was down.
	if err := mirror.Refresh(ctx); err != nil {
		logger.Error("Startup mirror refresh failed", applog.FieldError, err)
		// Keep going, the consume loop and ticker will retry.
	}

	if err := mirror.Start(ctx); err != nil {
		logger.Error("Failed to start mirror worker", applog.FieldError, err)
		os.Exit(1)
	}

	// AMQP consumption makes the mirror near-real-time; without it the
	// periodic refresh still keeps the sheet current.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			if err := amqpClient.ConsumeChanges(ctx, mirror.HandleChange); err != nil &&
				!errors.Is(err, context.Canceled) {
				logger.Error("Message consumption stopped", applog.FieldError, err)
			}
		}()
		logger.Info("Consuming ledger changes", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - relying on periodic refresh only",
			"interval", cfg.MirrorInterval)
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mirror.Stop(stopCtx); err != nil {
		logger.Error("Mirror worker shutdown error", applog.FieldError, err)
	}

	logger.Info("Worker stopped")
}
