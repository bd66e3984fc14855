package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/amanmodak98/hisaab/internal/amqp"
	"github.com/amanmodak98/hisaab/internal/config"
	apphttp "github.com/amanmodak98/hisaab/internal/http"
	"github.com/amanmodak98/hisaab/internal/ledger"
	applog "github.com/amanmodak98/hisaab/internal/log"
	"github.com/amanmodak98/hisaab/internal/services"
	"github.com/amanmodak98/hisaab/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting hisaab server")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	// Choose the slot store backend.
	var slots ledger.SlotStore
	switch cfg.DataBackend {
	case "sqlite":
		sqliteStore, err := storage.NewSQLiteSlotStore(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite slot store", applog.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer sqliteStore.Close()
		slots = sqliteStore
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)
	default:
		slots = storage.NewMemorySlotStore()
		logger.Info("Initialized memory backend")
	}

	store := ledger.New(slots)
	if err := store.Restore(context.Background()); err != nil {
		logger.Error("Failed to restore ledger", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Ledger restored",
		"credits", len(store.Credits()),
		"expenses", len(store.Expenses()),
		"udhaar", len(store.Udhaar()),
		"contacts", len(store.Contacts()))

	// AMQP is optional; without it mutations are persisted but not announced.
	var publisher services.ChangePublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		publisher = amqpClient
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	service := services.NewLedgerService(store, publisher)
	defer service.Close()

	srv := apphttp.NewServer(":"+cfg.Port, service)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
