package collector

import (
	"context"

	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/domain"
)

// Sampler fetches the current pull counter for each tracked repository
type Sampler interface {
	// Sample fetches one sample per repository, sequentially, in the given
	// order. Repositories whose fetch fails are skipped; they contribute no
	// sample and no placeholder.
	Sample(ctx context.Context, repos []domain.Repository) []*domain.Sample
}

// Recorder appends samples to the store
type Recorder interface {
	// Record appends each sample, best-effort: an individual append failure
	// is logged and the remaining samples are still written
	Record(ctx context.Context, samples []*domain.Sample)
}
