package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spot-resolver/internal/config"
	"github.com/spot-resolver/internal/pkg/logger"
	"github.com/spot-resolver/internal/repository/cache"
	"github.com/spot-resolver/internal/repository/postgres"
	redisRepo "github.com/spot-resolver/internal/repository/redis"
	"github.com/spot-resolver/internal/scheduler"
	"github.com/spot-resolver/internal/usecase"
	"github.com/spot-resolver/internal/worker"
	"github.com/spot-resolver/internal/worker/session"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "spot-worker")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Map Session Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("batch_size", cfg.Worker.BatchSize),
		zap.Duration("read_timeout", cfg.Worker.StreamReadTimeout),
		zap.Int("max_sessions", cfg.Worker.MaxSessions))

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, "spot-worker", log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Initialize repositories
	spotRepo := postgres.NewBreakerSpotRepository(postgres.NewSpotRepository(db), log)
	savedRepo := postgres.NewSavedRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(
		redisClient.Client(),
		log,
		int64(cfg.Worker.BatchSize),
		cfg.Worker.StreamReadTimeout,
		cfg.Worker.ClaimIdle,
	)

	// 6. Initialize use cases
	datasetUC := usecase.NewDatasetUseCase(
		spotRepo,
		cacheRepo,
		log,
		cfg.Cache.DatasetCacheTTL,
		cfg.Cache.ForecastCacheTTL,
	)

	// 7. Initialize workers
	sessionWorker := session.NewSessionWorker(
		streamRepo,
		datasetUC,
		savedRepo,
		session.Config{
			ConsumerGroup: cfg.Worker.ConsumerGroup,
			MaxSessions:   cfg.Worker.MaxSessions,
			Engine: usecase.EngineConfig{
				NearestRadiusKm: cfg.Engine.NearestRadiusKm,
				NoticeTimeout:   cfg.Engine.NoticeTimeout,
			},
		},
		log,
	)

	// 8. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log, worker.DefaultShutdownTimeout)
	workerManager.Register(sessionWorker)

	// 9. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var warmer *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		warmer = scheduler.New(datasetUC, cfg.Scheduler.RefreshInterval, cfg.Scheduler.WarmDays, cfg.Scheduler.WarmTimes, log)
		if err := warmer.Start(); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	// Start workers
	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	if warmer != nil {
		warmer.Stop()
	}

	// Cancel context to stop workers
	cancel()

	// Stop worker manager
	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
