package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/domain"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/storage"
)

// memoryStorage implements the Storage interface in memory. It backs tests
// and the zero-configuration "memory" storage type; data does not survive a
// restart.
type memoryStorage struct {
	mu      sync.RWMutex
	samples map[string][]*domain.Sample // keyed by org/repo, kept sorted by timestamp
}

// NewMemoryStorage creates a new in-memory storage instance
func NewMemoryStorage() storage.Storage {
	return &memoryStorage{
		samples: make(map[string][]*domain.Sample),
	}
}

// AppendSample appends one observation of a repository's pull counter
func (s *memoryStorage) AppendSample(ctx context.Context, sample *domain.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sample.Org + "/" + sample.Repo
	copied := *sample
	list := append(s.samples[key], &copied)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp.Before(list[j].Timestamp)
	})
	s.samples[key] = list
	return nil
}

// OldestSince returns the earliest sample with a timestamp strictly after since
func (s *memoryStorage) OldestSince(ctx context.Context, org, repo string, since time.Time) (*domain.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sample := range s.samples[org+"/"+repo] {
		if sample.Timestamp.After(since) {
			copied := *sample
			return &copied, nil
		}
	}
	return nil, nil
}

// LatestSample returns the most recent sample of org/repo
func (s *memoryStorage) LatestSample(ctx context.Context, org, repo string) (*domain.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.samples[org+"/"+repo]
	if len(list) == 0 {
		return nil, nil
	}
	copied := *list[len(list)-1]
	return &copied, nil
}

// ListSamples returns all samples after since, ascending by timestamp
func (s *memoryStorage) ListSamples(ctx context.Context, org, repo string, since time.Time) ([]*domain.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Sample
	for _, sample := range s.samples[org+"/"+repo] {
		if sample.Timestamp.After(since) {
			copied := *sample
			result = append(result, &copied)
		}
	}
	return result, nil
}

// Migrate is a no-op for the in-memory adapter
func (s *memoryStorage) Migrate(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory adapter
func (s *memoryStorage) Close() error {
	return nil
}
