package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-pos-sync/internal/catalog"
	"go-pos-sync/internal/config"
	"go-pos-sync/internal/handler"
	"go-pos-sync/internal/images"
	"go-pos-sync/internal/ingest"
	"go-pos-sync/internal/middleware"
	"go-pos-sync/internal/netmon"
	"go-pos-sync/internal/service"
	"go-pos-sync/internal/store"
	"go-pos-sync/internal/sync"
	"go-pos-sync/internal/ws"
	"go-pos-sync/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.New[config.Config]()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	// 2. Setup Databases. The local store must open no matter what; the
	// cloud handle is constructed without a ping so the terminal boots
	// offline and connects on the first cycle that finds a network.
	localDB, err := database.OpenLocal(cfg.Local.DSN())
	if err != nil {
		logger.Fatal("open local database", zap.Error(err))
	}
	localStore, err := store.NewLocal(localDB)
	if err != nil {
		logger.Fatal("migrate local database", zap.Error(err))
	}

	cloudDB, err := database.OpenCloud(cfg.Cloud.DSN())
	if err != nil {
		logger.Fatal("open cloud database", zap.Error(err))
	}
	cloudStore := store.NewCloud(cloudDB)

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub(logger.Named("ws"))
	go wsHub.Run()

	// 4. Ingestion pipeline. Every path that lands catalog data funnels
	// through one applier; the coordinator is bound to it afterwards
	// because the two reference each other.
	ingestLog := logger.Named("ingest")
	deriver := images.NewDeriver(cfg.Catalog.ImageBaseURL, cfg.Catalog.RequestTimeout, logger.Named("images"))
	defer deriver.Close()
	applier := ingest.NewApplier(localStore, deriver, nil, ingestLog)

	monitor := netmon.New(cfg.Sync.ProbeURL, cfg.Sync.ProbeInterval, cfg.Sync.ProbeTimeout, logger.Named("netmon"))
	netCh := monitor.Subscribe()

	coordinator := sync.New(sync.Config{
		Debounce:  cfg.Sync.Debounce,
		Interval:  cfg.Sync.Interval,
		OpTimeout: cfg.Sync.OpTimeout,
	}, localStore, cloudStore, applier, netCh, logger.Named("sync"), wsHub)
	applier.SetNotifier(coordinator)

	monitor.Start()
	coordinator.Start()

	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, cfg.Catalog.RequestTimeout)
	defer catalogClient.Close()
	poller := ingest.NewPoller(catalogClient, applier, localStore, cfg.Catalog.PollInterval, cfg.Catalog.PageSize, cfg.Catalog.PageDelay, ingestLog)
	reconciler := ingest.NewReconciler(catalogClient, applier, localStore, cloudStore, cfg.Catalog.ReconcileHour, cfg.Catalog.PageSize, cfg.Catalog.PageDelay, ingestLog)
	if cfg.Catalog.BaseURL != "" {
		poller.Start()
		reconciler.Start()
	} else {
		logger.Warn("catalog base URL not set, poll and reconcile disabled")
	}
	webhook := ingest.NewWebhook(cfg.Catalog.WebhookSecret, applier, ingestLog)

	// 5. Dependency Injection (Wiring Layers)
	terminalService := service.NewTerminalService(localStore, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	posService := service.NewPOSService(localStore, coordinator, wsHub)

	authHandler := handler.NewAuthHandler(terminalService)
	posHandler := handler.NewPOSHandler(posService)
	syncHandler := handler.NewSyncHandler(coordinator, localStore)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   "POS Sync Terminal v1.0",
		BodyLimit: cfg.HTTP.BodyLimit,
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS for the terminal UI

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	// Terminal login and the platform-signed webhook carry their own
	// credentials (access key, HMAC signature).
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)

	app.Post("/webhooks/catalog", webhook.Handle)

	// ============ PROTECTED ROUTES ============
	// All routes below require a terminal token
	protected := api.Group("", middleware.RequireTerminal(terminalService))

	// Product Routes
	protected.Get("/products", posHandler.GetProducts)
	protected.Post("/products", posHandler.CreateProduct)
	protected.Get("/products/:id", posHandler.GetProduct)
	protected.Put("/products/:id", posHandler.UpdateProduct)
	protected.Delete("/products/:id", posHandler.DeleteProduct)

	// Cart Routes
	protected.Get("/cart/:session", posHandler.GetCart)
	protected.Post("/cart", posHandler.AddToCart)
	protected.Put("/cart/:id", posHandler.UpdateCartItem)
	protected.Delete("/cart/:id", posHandler.RemoveCartItem)

	// Sale Routes
	protected.Post("/checkout", posHandler.Checkout)
	protected.Get("/sales", posHandler.GetSales)
	protected.Get("/sales/:id", posHandler.GetSale)
	protected.Post("/sales/:id/cancel", posHandler.CancelSale)

	// Sync Routes
	protected.Get("/sync/status", syncHandler.GetStatus)
	protected.Post("/sync/trigger", syncHandler.Trigger)
	protected.Get("/sync/checkpoints", syncHandler.GetCheckpoints)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(wsHub.Handler()))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownTimeout, err := time.ParseDuration(cfg.HTTP.ShutdownTimeout)
	if err != nil {
		shutdownTimeout = 10 * time.Second
	}
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// Ingestion stops before the coordinator so nothing queues new work,
	// then the coordinator gets a last chance to flush in-flight pushes.
	if cfg.Catalog.BaseURL != "" {
		poller.Stop()
		reconciler.Stop()
	}
	monitor.Stop()
	coordinator.Stop()

	logger.Info("terminal exited")
}
