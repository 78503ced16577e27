package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"copytrade-scanner-go/internal/config"
	"copytrade-scanner-go/internal/database"
	"copytrade-scanner-go/internal/logger"
	"copytrade-scanner-go/internal/source"
	"copytrade-scanner-go/internal/syncer"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Local .env overrides, if present (production uses real env vars).
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to the catalog store
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Pick the feed adapter
	adapter := newAdapter(&cfg, log)
	log.Info("Using source adapter", zap.String("adapter", adapter.Name()))

	catalogSyncer := syncer.New(log, db, adapter,
		time.Duration(cfg.Sync.FetchTimeoutSeconds)*time.Second,
		time.Duration(cfg.Sync.StoreTimeoutSeconds)*time.Second,
	)

	// Setup HTTP server
	mux := http.NewServeMux()
	apiHandler := NewAPIHandler(log, db, catalogSyncer, cfg.Sync.Secret)

	mux.HandleFunc("/api/cron/update-traders", apiHandler.SyncHandler)
	mux.HandleFunc("GET /api/traders", apiHandler.TradersHandler)
	mux.HandleFunc("GET /api/traders/{uid}", apiHandler.TraderHandler)
	mux.HandleFunc("GET /api/status", apiHandler.StatusHandler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting web server", zap.String("address", addr))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("Web server failed", zap.Error(err))
	}
}

// newAdapter builds the configured source adapter.
func newAdapter(cfg *config.Config, log *zap.Logger) source.Adapter {
	if cfg.Source.Provider == "bitget" {
		return source.NewBitgetAdapter(&cfg.Source, log)
	}
	return source.NewStaticAdapter()
}
