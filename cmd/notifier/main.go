package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/app"
	"github.com/example/fooddelivery/internal/config"
	"github.com/example/fooddelivery/internal/logging"
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

	if cfg.AMQPURL == "" {
		logger.Fatal("AMQP_URL is required; without a broker the server delivers notifications itself")
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	application, err := app.New(initCtx, cfg, logger)
	cancelInit()
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer func() { _ = application.Close() }()

	notifier, err := application.Notifier()
	if err != nil {
		logger.Fatal("Failed to build notifier", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := notifier.Run(ctx, application.Queue, cfg.OrderEventsQueue); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Notifier stopped", zap.Error(err))
	}
	logger.Info("Notifier exited")
}
