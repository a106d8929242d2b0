package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/domain"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/storage/memory"
)

// stubHub serves canned pull counts and errors per repository key
type stubHub struct {
	counts map[string]int64
	calls  []string
}

func (s *stubHub) PullCount(ctx context.Context, org, repo string) (int64, error) {
	key := org + "/" + repo
	s.calls = append(s.calls, key)
	count, ok := s.counts[key]
	if !ok {
		return 0, errors.New("fetch failed")
	}
	return count, nil
}

func TestSamplerSkipsFailedRepos(t *testing.T) {
	hub := &stubHub{counts: map[string]int64{
		"acme/widget": 1000,
		"acme/gadget": 2500,
	}}
	sampler := NewSampler(hub, zap.NewNop())

	repos := []domain.Repository{
		{Org: "acme", Name: "widget"},
		{Org: "acme", Name: "broken"},
		{Org: "acme", Name: "gadget"},
	}

	samples := sampler.Sample(context.Background(), repos)

	require.Len(t, samples, 2)
	assert.Equal(t, "widget", samples[0].Repo)
	assert.Equal(t, int64(1000), samples[0].Pulls)
	assert.Equal(t, "gadget", samples[1].Repo)
	assert.Equal(t, int64(2500), samples[1].Pulls)

	// Every repo was attempted, in configuration order.
	assert.Equal(t, []string{"acme/widget", "acme/broken", "acme/gadget"}, hub.calls)
}

func TestSamplerTimestampsAreFresh(t *testing.T) {
	hub := &stubHub{counts: map[string]int64{"acme/widget": 1000}}
	sampler := NewSampler(hub, zap.NewNop())

	before := time.Now().UTC()
	samples := sampler.Sample(context.Background(), []domain.Repository{{Org: "acme", Name: "widget"}})
	after := time.Now().UTC()

	require.Len(t, samples, 1)
	assert.False(t, samples[0].Timestamp.Before(before))
	assert.False(t, samples[0].Timestamp.After(after))
	assert.NotEmpty(t, samples[0].ID)
}

func TestSamplerAllFailed(t *testing.T) {
	hub := &stubHub{counts: map[string]int64{}}
	sampler := NewSampler(hub, zap.NewNop())

	samples := sampler.Sample(context.Background(), []domain.Repository{
		{Org: "acme", Name: "widget"},
		{Org: "acme", Name: "gadget"},
	})

	assert.Empty(t, samples)
}

// flakyStorage fails the first append and delegates the rest
type flakyStorage struct {
	inner    *wrappedStorage
	failures int
}

// wrappedStorage records appended samples for assertions
type wrappedStorage struct {
	appended []*domain.Sample
}

func (w *wrappedStorage) AppendSample(ctx context.Context, sample *domain.Sample) error {
	w.appended = append(w.appended, sample)
	return nil
}

func (w *wrappedStorage) OldestSince(ctx context.Context, org, repo string, since time.Time) (*domain.Sample, error) {
	return nil, nil
}

func (w *wrappedStorage) LatestSample(ctx context.Context, org, repo string) (*domain.Sample, error) {
	return nil, nil
}

func (w *wrappedStorage) ListSamples(ctx context.Context, org, repo string, since time.Time) ([]*domain.Sample, error) {
	return nil, nil
}

func (w *wrappedStorage) Migrate(ctx context.Context) error { return nil }
func (w *wrappedStorage) Close() error                      { return nil }

func (f *flakyStorage) AppendSample(ctx context.Context, sample *domain.Sample) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("append failed")
	}
	return f.inner.AppendSample(ctx, sample)
}

func (f *flakyStorage) OldestSince(ctx context.Context, org, repo string, since time.Time) (*domain.Sample, error) {
	return f.inner.OldestSince(ctx, org, repo, since)
}

func (f *flakyStorage) LatestSample(ctx context.Context, org, repo string) (*domain.Sample, error) {
	return f.inner.LatestSample(ctx, org, repo)
}

func (f *flakyStorage) ListSamples(ctx context.Context, org, repo string, since time.Time) ([]*domain.Sample, error) {
	return f.inner.ListSamples(ctx, org, repo, since)
}

func (f *flakyStorage) Migrate(ctx context.Context) error { return f.inner.Migrate(ctx) }
func (f *flakyStorage) Close() error                      { return f.inner.Close() }

func TestRecorderContinuesAfterFailure(t *testing.T) {
	store := &flakyStorage{inner: &wrappedStorage{}, failures: 1}
	recorder := NewRecorder(store, zap.NewNop())

	samples := []*domain.Sample{
		{ID: "a", Org: "acme", Repo: "widget", Timestamp: time.Now(), Pulls: 1},
		{ID: "b", Org: "acme", Repo: "gadget", Timestamp: time.Now(), Pulls: 2},
	}

	recorder.Record(context.Background(), samples)

	// The first append failed; the second still went through.
	require.Len(t, store.inner.appended, 1)
	assert.Equal(t, "b", store.inner.appended[0].ID)
}

func TestPipelineCollect(t *testing.T) {
	hub := &stubHub{counts: map[string]int64{"acme/widget": 1000}}
	store := memory.NewMemoryStorage()
	pipeline := NewPipeline(
		NewSampler(hub, zap.NewNop()),
		NewRecorder(store, zap.NewNop()),
	)

	samples := pipeline.Collect(context.Background(), []domain.Repository{{Org: "acme", Name: "widget"}})

	require.Len(t, samples, 1)

	stored, err := store.LatestSample(context.Background(), "acme", "widget")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, int64(1000), stored.Pulls)
}
