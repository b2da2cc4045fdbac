package main

// @title Spot Resolver API
// @version 1.0.0
// @description Выбор спота по клику на карте, сверка маркеров видимой области и сохранённые прогнозы.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/spot-resolver/docs"
	"github.com/spot-resolver/internal/config"
	httpDelivery "github.com/spot-resolver/internal/delivery/http"
	"github.com/spot-resolver/internal/delivery/http/handler"
	"github.com/spot-resolver/internal/pkg/logger"
	"github.com/spot-resolver/internal/repository/cache"
	"github.com/spot-resolver/internal/repository/postgres"
	"github.com/spot-resolver/internal/scheduler"
	"github.com/spot-resolver/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "spot-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Spot Resolver API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.Float64("nearest_radius_km", cfg.Engine.NearestRadiusKm),
	)

	// 3. Connect to PostgreSQL (прогнозы и сохранённые записи)
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()
	log.Info("PostgreSQL connected")

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, "spot-api", log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()
	log.Info("Redis connected")

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}
	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize Repositories
	spotRepo := postgres.NewBreakerSpotRepository(postgres.NewSpotRepository(db), log)
	savedRepo := postgres.NewSavedRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)

	log.Info("Repositories initialized")

	// 7. Initialize Use Cases
	datasetUC := usecase.NewDatasetUseCase(
		spotRepo,
		cacheRepo,
		log,
		cfg.Cache.DatasetCacheTTL,
		cfg.Cache.ForecastCacheTTL,
	)
	savedUC := usecase.NewSavedUseCase(savedRepo, datasetUC, log)
	resolver := usecase.NewSelectionResolver(cfg.Engine.NearestRadiusKm, cfg.Engine.NoticeTimeout)

	log.Info("Use cases initialized")

	// 8. Initialize HTTP Handlers
	spotHandler := handler.NewSpotHandler(datasetUC, resolver, log)
	viewportHandler := handler.NewViewportHandler(datasetUC, log)
	savedHandler := handler.NewSavedHandler(datasetUC, savedUC, log)
	healthHandler := handler.NewHealthHandler(map[string]handler.HealthChecker{
		"postgres": db,
		"redis":    redisClient,
	}, log)

	log.Info("HTTP handlers initialized")

	// 9. Dataset warm-up
	var warmer *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		warmer = scheduler.New(datasetUC, cfg.Scheduler.RefreshInterval, cfg.Scheduler.WarmDays, cfg.Scheduler.WarmTimes, log)
		if err := warmer.Start(); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	// 10. Initialize HTTP Server
	server := httpDelivery.NewServer(
		cfg,
		log,
		spotHandler,
		viewportHandler,
		savedHandler,
		healthHandler,
	)

	// 11. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 12. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	if warmer != nil {
		warmer.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
