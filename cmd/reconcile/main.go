package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-pos-sync/internal/catalog"
	"go-pos-sync/internal/config"
	"go-pos-sync/internal/images"
	"go-pos-sync/internal/ingest"
	"go-pos-sync/internal/store"
	"go-pos-sync/pkg/database"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// One-shot full reconciliation sweep, for operators who do not want to wait
// for the nightly run. Rows it changes land dirty; the daemon pushes them on
// its next cycle.
func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	cfg, err := config.New[config.Config]()
	if err != nil {
		log.Fatalf("❌ Failed to parse config: %v", err)
	}
	if cfg.Catalog.BaseURL == "" {
		log.Fatal("❌ CATALOG_BASE_URL is not set")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Setup Databases
	localDB, err := database.OpenLocal(cfg.Local.DSN())
	if err != nil {
		log.Fatalf("❌ Failed to open local database: %v", err)
	}
	local, err := store.NewLocal(localDB)
	if err != nil {
		log.Fatalf("❌ Failed to migrate local database: %v", err)
	}

	cloudDB, err := database.OpenCloud(cfg.Cloud.DSN())
	if err != nil {
		log.Fatalf("❌ Failed to open cloud database: %v", err)
	}
	cloud := store.NewCloud(cloudDB)

	// 3. Run the sweep
	deriver := images.NewDeriver(cfg.Catalog.ImageBaseURL, cfg.Catalog.RequestTimeout, logger)
	defer deriver.Close()
	applier := ingest.NewApplier(local, deriver, nil, logger)
	client := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, cfg.Catalog.RequestTimeout)
	defer client.Close()
	reconciler := ingest.NewReconciler(client, applier, local, cloud, cfg.Catalog.ReconcileHour, cfg.Catalog.PageSize, cfg.Catalog.PageDelay, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := reconciler.RunOnce(ctx); err != nil {
		log.Fatalf("❌ Reconciliation failed: %v", err)
	}

	log.Println("✅ Reconciliation complete")
}
