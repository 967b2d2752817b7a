package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"carbon-scribe/farm-emissions/internal/config"
	"carbon-scribe/farm-emissions/internal/defaults"
	"carbon-scribe/farm-emissions/internal/emissions"
	"carbon-scribe/farm-emissions/internal/emissions/calculation"
	"carbon-scribe/farm-emissions/internal/scenarios"
	"carbon-scribe/farm-emissions/pkg/logging"
	"carbon-scribe/farm-emissions/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Mode)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	tables, err := defaults.LoadTables(cfg.Defaults.TablesPath)
	if err != nil {
		logger.Fatal("Failed to load default tables", zap.Error(err))
	}
	defaultsCtx, err := defaults.NewContext(cfg.Calculation.CountryVersion, tables)
	if err != nil {
		logger.Fatal("Failed to build defaults context", zap.Error(err))
	}
	router, err := calculation.NewDefaultRouter(defaultsCtx)
	if err != nil {
		logger.Fatal("Failed to build calculator routing table", zap.Error(err))
	}

	// Connect to database
	db, err := scenarios.OpenPostgres(cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	repo, err := scenarios.NewGormRepository(db)
	if err != nil {
		logger.Fatal("Failed to initialize scenario repository", zap.Error(err))
	}
	logger.Info("Connected to database")

	emissionsService := emissions.NewService(router, logger, metrics.NewCollector("farm_emissions_worker", nil), emissions.Config{
		MaxConcurrentFarms:      cfg.Calculation.MaxConcurrentFarms,
		MaxConcurrentComponents: cfg.Calculation.MaxConcurrentComponents,
	})
	emissionsService.SetCropEconomicDataApplied(cfg.Calculation.CropEconomicDataApplied)

	worker := scenarios.NewRecalculationWorker(
		scenarios.NewService(repo, emissionsService, logger),
		logger,
		scenarios.WorkerConfig{Schedule: cfg.Worker.Schedule, BatchSize: cfg.Worker.BatchSize},
	)

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := worker.Start(ctx); err != nil {
		logger.Fatal("Failed to start recalculation worker", zap.Error(err))
	}

	// Process stale scenarios immediately
	worker.RunOnce(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutdown signal received")
	cancel()
	worker.Stop()

	logger.Info("Recalculation worker stopped")
}
