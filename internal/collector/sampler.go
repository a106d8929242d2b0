package collector

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/domain"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/hub"
)

// hubSampler implements Sampler using the Docker Hub client
type hubSampler struct {
	hub    hub.Client
	logger *zap.Logger
}

// NewSampler creates a new sampler backed by the given Docker Hub client
func NewSampler(client hub.Client, logger *zap.Logger) Sampler {
	return &hubSampler{
		hub:    client,
		logger: logger,
	}
}

// Sample fetches one sample per repository. The loop is deliberately
// sequential: the hub client paces consecutive requests to respect the
// upstream rate limit, and fanning out here would defeat that.
func (s *hubSampler) Sample(ctx context.Context, repos []domain.Repository) []*domain.Sample {
	samples := make([]*domain.Sample, 0, len(repos))

	for _, repo := range repos {
		pulls, err := s.hub.PullCount(ctx, repo.Org, repo.Name)
		if err != nil {
			s.logger.Warn("failed to sample pull count, skipping repository",
				zap.String("repo", repo.Key()),
				zap.Error(err))
			continue
		}

		samples = append(samples, &domain.Sample{
			ID:        uuid.New().String(),
			Org:       repo.Org,
			Repo:      repo.Name,
			Timestamp: time.Now().UTC(),
			Pulls:     pulls,
		})
	}

	return samples
}
