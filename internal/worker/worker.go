package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/collector"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/domain"
)

// CollectWorker periodically runs the sample-and-record pipeline for the
// configured repositories. A failed pass is logged and the next tick runs as
// usual; the worker itself only stops when its context is cancelled.
type CollectWorker struct {
	interval time.Duration
	pipeline *collector.Pipeline
	repos    []domain.Repository
	logger   *zap.Logger
}

// NewCollectWorker creates a new collection worker
func NewCollectWorker(interval time.Duration, pipeline *collector.Pipeline, repos []domain.Repository, logger *zap.Logger) *CollectWorker {
	return &CollectWorker{
		interval: interval,
		pipeline: pipeline,
		repos:    repos,
		logger:   logger,
	}
}

// Start runs the worker until the given context is done. One pass runs
// immediately so a fresh deployment has samples before the first tick.
func (w *CollectWorker) Start(ctx context.Context) error {
	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce runs one collection pass
func (w *CollectWorker) runOnce(ctx context.Context) {
	samples := w.pipeline.Collect(ctx, w.repos)

	if len(samples) < len(w.repos) {
		w.logger.Warn("collection pass finished with missing samples",
			zap.Int("sampled", len(samples)),
			zap.Int("configured", len(w.repos)))
		return
	}
	w.logger.Info("collection pass finished",
		zap.Int("sampled", len(samples)))
}
