package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/app"
	"github.com/example/fooddelivery/internal/config"
	"github.com/example/fooddelivery/internal/logging"
	"github.com/example/fooddelivery/internal/seed"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	path := flag.String("file", cfg.SeedPath, "seed file to load")
	checkOnly := flag.Bool("check", false, "only report which collections hold data")
	flag.Parse()

	logger, err := logging.New(cfg.LogLevel, cfg.GinMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer func() { _ = application.Close() }()

	seeder := application.Seeder()
	var out interface{}
	if *checkOnly {
		state, err := seeder.CheckInitialization(ctx)
		if err != nil {
			logger.Fatal("Initialization check failed", zap.Error(err))
		}
		out = state
	} else {
		file, err := seed.Load(*path)
		if err != nil {
			logger.Fatal("Failed to load seed file", zap.String("path", *path), zap.Error(err))
		}
		report, err := seeder.Run(ctx, file)
		if err != nil {
			logger.Fatal("Seeding failed", zap.Error(err))
		}
		out = report
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatal("Failed to print report", zap.Error(err))
	}
}
