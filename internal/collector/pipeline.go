package collector

import (
	"context"

	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/domain"
)

// Pipeline runs one sample-and-record pass. Both the periodic worker and the
// diagnostic collect endpoint go through it.
type Pipeline struct {
	sampler  Sampler
	recorder Recorder
}

// NewPipeline creates a new collection pipeline
func NewPipeline(sampler Sampler, recorder Recorder) *Pipeline {
	return &Pipeline{
		sampler:  sampler,
		recorder: recorder,
	}
}

// Collect samples every repository, records the successful samples, and
// returns them. Failed repositories are simply missing from the result.
func (p *Pipeline) Collect(ctx context.Context, repos []domain.Repository) []*domain.Sample {
	samples := p.sampler.Sample(ctx, repos)
	p.recorder.Record(ctx, samples)
	return samples
}
