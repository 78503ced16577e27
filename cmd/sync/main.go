package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"copytrade-scanner-go/internal/config"
	"copytrade-scanner-go/internal/database"
	"copytrade-scanner-go/internal/logger"
	"copytrade-scanner-go/internal/source"
	"copytrade-scanner-go/internal/syncer"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// One-shot manual resync: same wiring as the server, without the HTTP layer.
// Useful for seeding a fresh store or forcing an update outside the schedule.
func main() {
	_ = godotenv.Load()

	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	var adapter source.Adapter
	if cfg.Source.Provider == "bitget" {
		adapter = source.NewBitgetAdapter(&cfg.Source, log)
	} else {
		adapter = source.NewStaticAdapter()
	}

	// Abort cleanly on SIGINT/SIGTERM; the syncer honors ctx cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, aborting sync...")
		cancel()
	}()

	catalogSyncer := syncer.New(log, db, adapter,
		time.Duration(cfg.Sync.FetchTimeoutSeconds)*time.Second,
		time.Duration(cfg.Sync.StoreTimeoutSeconds)*time.Second,
	)

	result, err := catalogSyncer.Sync(ctx)
	if err != nil {
		log.Fatal("Sync failed", zap.Error(err))
	}

	log.Info("Sync complete",
		zap.Int("written", result.Written),
		zap.Int("dropped", result.Dropped),
		zap.Strings("traders", result.Nicknames),
	)
}
