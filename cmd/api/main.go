package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/aggregator"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/api"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/collector"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/config"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/hub"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/storage"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/storage/memory"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/storage/postgres"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/storage/sqlite"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize storage
	store, err := newStorage(cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	// Wire the collection and aggregation pipeline
	hubClient := hub.NewClient(cfg.HubBaseURL, cfg.HubRequestPause)
	sampler := collector.NewSampler(hubClient, logger)
	recorder := collector.NewRecorder(store, logger)
	pipeline := collector.NewPipeline(sampler, recorder)
	agg := aggregator.NewAggregator(sampler, store, logger)

	handler := api.NewHandler(agg, pipeline, store, cfg.Repos)
	router := api.SetupRoutes(handler, logger)

	// Periodic sampling runs for the lifetime of the server
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collectWorker := worker.NewCollectWorker(cfg.SampleInterval, pipeline, cfg.Repos, logger)
	go func() {
		if err := collectWorker.Start(ctx); err != nil {
			logger.Error("collect worker stopped", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	logger.Info("starting API server",
		zap.String("addr", addr),
		zap.String("storage", cfg.StorageType),
		zap.Int("repos", len(cfg.Repos)))

	if err := router.Run(addr); err != nil {
		logger.Error("failed to start server", zap.Error(err))
		os.Exit(1)
	}
}

// newStorage builds the storage adapter selected by configuration
func newStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageType {
	case "postgres":
		return postgres.NewPostgresStorage(cfg.PostgresURL)
	case "memory":
		return memory.NewMemoryStorage(), nil
	default:
		return sqlite.NewSQLiteStorage(cfg.SQLitePath)
	}
}
