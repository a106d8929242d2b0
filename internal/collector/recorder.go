package collector

import (
	"context"

	"go.uber.org/zap"

	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/domain"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/storage"
)

// storageRecorder implements Recorder on top of the Storage interface
type storageRecorder struct {
	storage storage.Storage
	logger  *zap.Logger
}

// NewRecorder creates a new recorder writing to the given store
func NewRecorder(store storage.Storage, logger *zap.Logger) Recorder {
	return &storageRecorder{
		storage: store,
		logger:  logger,
	}
}

// Record appends each sample. There is no transaction across the batch: a
// failed append loses that one sample and the loop moves on.
func (r *storageRecorder) Record(ctx context.Context, samples []*domain.Sample) {
	for _, sample := range samples {
		if err := r.storage.AppendSample(ctx, sample); err != nil {
			r.logger.Warn("failed to record sample",
				zap.String("repo", sample.Org+"/"+sample.Repo),
				zap.Int64("pulls", sample.Pulls),
				zap.Error(err))
		}
	}
}
