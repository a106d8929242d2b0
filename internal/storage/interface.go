package storage

import (
	"context"
	"time"

	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/domain"
)

// Storage is the abstract interface for the pull-sample persistence layer.
// Samples are append-only; nothing in this interface updates or deletes.
type Storage interface {
	// AppendSample appends one observation of a repository's pull counter
	AppendSample(ctx context.Context, sample *domain.Sample) error

	// OldestSince returns the earliest sample of org/repo with a timestamp
	// strictly after since, or nil when no such sample exists
	OldestSince(ctx context.Context, org, repo string, since time.Time) (*domain.Sample, error)

	// LatestSample returns the most recent sample of org/repo, or nil when
	// the repository has never been sampled
	LatestSample(ctx context.Context, org, repo string) (*domain.Sample, error)

	// ListSamples returns all samples of org/repo with a timestamp strictly
	// after since, ascending by timestamp
	ListSamples(ctx context.Context, org, repo string, since time.Time) ([]*domain.Sample, error)

	// Migration
	Migrate(ctx context.Context) error

	// Connection management
	Close() error
}
