package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/api"
	"github.com/example/fooddelivery/internal/app"
	"github.com/example/fooddelivery/internal/config"
	"github.com/example/fooddelivery/internal/logging"
	"github.com/example/fooddelivery/internal/middleware"
	"github.com/example/fooddelivery/internal/seed"
	"github.com/example/fooddelivery/pkg/messagequeue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.GinMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	application, err := app.New(initCtx, cfg, logger)
	cancelInit()
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("Error releasing resources", zap.Error(err))
		}
	}()

	// The in-memory store starts empty, so load the seed file for local runs.
	if cfg.StoreBackend == config.StoreMemory {
		seedMemoryStore(application, cfg.SeedPath, logger)
	}

	runCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	startInProcessNotifier(runCtx, application, logger)

	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORSMiddleware(cfg.ClientURL))
	if cfg.ClientURL == "" {
		logger.Warn("CLIENT_URL is not set, CORS allows every origin")
	}

	api.SetupRoutes(router, application.AuthMiddleware(), application.Services, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("address", srv.Addr),
			zap.String("ginMode", gin.Mode()),
			zap.String("store", cfg.StoreBackend),
			zap.String("catalogSource", cfg.CatalogSource),
			zap.String("statusPolicy", cfg.OrderStatusPolicy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Shutting down server", zap.String("signal", sig.String()))

	stopBackground()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

func seedMemoryStore(application *app.App, path string, logger *zap.Logger) {
	file, err := seed.Load(path)
	if err != nil {
		logger.Warn("Skipping seed for the in-memory store", zap.String("path", path), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := application.Seeder().Run(ctx, file); err != nil {
		logger.Warn("Seeding the in-memory store failed", zap.Error(err))
	}
}

// startInProcessNotifier consumes order events inside the server when they never leave the
// process. With a broker configured the notifier binary does this instead.
func startInProcessNotifier(ctx context.Context, application *app.App, logger *zap.Logger) {
	if _, ok := application.Queue.(*messagequeue.MemoryQueue); !ok || !application.HasEventConsumer() {
		return
	}
	notifier, err := application.Notifier()
	if err != nil {
		logger.Warn("Order notifications disabled", zap.Error(err))
		return
	}
	go func() {
		if err := notifier.Run(ctx, application.Queue, application.Config.OrderEventsQueue); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Order notifier stopped", zap.Error(err))
		}
	}()
}
