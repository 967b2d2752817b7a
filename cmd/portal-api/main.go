package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"carbon-scribe/farm-emissions/internal/config"
	"carbon-scribe/farm-emissions/internal/defaults"
	"carbon-scribe/farm-emissions/internal/emissions"
	"carbon-scribe/farm-emissions/internal/emissions/calculation"
	"carbon-scribe/farm-emissions/internal/farm"
	"carbon-scribe/farm-emissions/internal/scenarios"
	"carbon-scribe/farm-emissions/pkg/logging"
	"carbon-scribe/farm-emissions/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Default data is loaded once and shared read-only by every calculation
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector("farm_emissions", registry)

	// Initialize emissions module
	emissionsService := emissions.NewService(router, logger, collector, emissions.Config{
		MaxConcurrentFarms:      cfg.Calculation.MaxConcurrentFarms,
		MaxConcurrentComponents: cfg.Calculation.MaxConcurrentComponents,
	})
	emissionsService.SetCropEconomicDataApplied(cfg.Calculation.CropEconomicDataApplied)
	emissionsHandler := emissions.NewHandler(emissionsService, farm.NewFactory(defaultsCtx), logger)

	// Connect to database
	logger.Info("Connecting to database",
		zap.String("host", cfg.Database.Host),
		zap.String("db_name", cfg.Database.DBName))
	db, err := scenarios.OpenPostgres(cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxConnections)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.MaxLifetime)
		defer sqlDB.Close()
	}

	// Initialize scenarios module
	scenarioRepo, err := scenarios.NewGormRepository(db)
	if err != nil {
		logger.Fatal("Failed to initialize scenario repository", zap.Error(err))
	}
	scenarioService := scenarios.NewService(scenarioRepo, emissionsService, logger)
	scenarioHandler := scenarios.NewHandler(scenarioService, logger)

	// Setup Router
	if cfg.Logging.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), collector.Middleware())

	// CORS Middleware
	engine.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Register Routes
	api := engine.Group("/api/v1")
	{
		emissionsHandler.RegisterRoutes(api)
		scenarioHandler.RegisterRoutes(api)
	}

	// Health Check
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"country_version": defaultsCtx.Version(),
			"timestamp":       time.Now(),
		})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("addr", srv.Addr),
		zap.String("country_version", string(defaultsCtx.Version())))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
