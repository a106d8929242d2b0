package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/collector"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/domain"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/storage"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAggregator returns fixed stats
type stubAggregator struct {
	stats []*domain.PullStats
}

func (s *stubAggregator) CombinedStats(ctx context.Context, repos []domain.Repository) []*domain.PullStats {
	return s.stats
}

// stubSampler returns fixed samples
type stubSampler struct {
	samples []*domain.Sample
}

func (s *stubSampler) Sample(ctx context.Context, repos []domain.Repository) []*domain.Sample {
	return s.samples
}

var testRepos = []domain.Repository{{Org: "acme", Name: "widget"}}

func newTestRouter(t *testing.T, agg *stubAggregator, sampler *stubSampler, store storage.Storage) *gin.Engine {
	t.Helper()
	if store == nil {
		store = memory.NewMemoryStorage()
	}
	pipeline := collector.NewPipeline(sampler, collector.NewRecorder(store, zap.NewNop()))
	handler := NewHandler(agg, pipeline, store, testRepos)
	return SetupRoutes(handler, zap.NewNop())
}

func TestGetStats(t *testing.T) {
	agg := &stubAggregator{stats: []*domain.PullStats{
		{Org: "acme", Repo: "widget", TotalPulls: 1000, OneDayPulls: 50},
	}}
	router := newTestRouter(t, agg, &stubSampler{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []*domain.PullStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Data, 1)
	assert.Equal(t, int64(1000), response.Data[0].TotalPulls)
	assert.Equal(t, int64(50), response.Data[0].OneDayPulls)
}

func TestCollect(t *testing.T) {
	store := memory.NewMemoryStorage()
	sampler := &stubSampler{samples: []*domain.Sample{
		{ID: "a", Org: "acme", Repo: "widget", Timestamp: time.Now().UTC(), Pulls: 1000},
	}}
	router := newTestRouter(t, &stubAggregator{}, sampler, store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/collect", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []*domain.Sample `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Data, 1)
	assert.Equal(t, int64(1000), response.Data[0].Pulls)

	// The diagnostic pass also recorded the sample.
	stored, err := store.LatestSample(context.Background(), "acme", "widget")
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestCollectAllFailed(t *testing.T) {
	router := newTestRouter(t, &stubAggregator{}, &stubSampler{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/collect", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "UNAVAILABLE")
}

func TestDashboard(t *testing.T) {
	agg := &stubAggregator{stats: []*domain.PullStats{
		{Org: "acme", Repo: "widget", TotalPulls: 1000, SevenDayPulls: 100},
	}}
	router := newTestRouter(t, agg, &stubSampler{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "acme/widget")
	assert.Contains(t, w.Body.String(), "1000")
}

func TestGetSamples(t *testing.T) {
	store := memory.NewMemoryStorage()
	require.NoError(t, store.AppendSample(context.Background(), &domain.Sample{
		ID: "a", Org: "acme", Repo: "widget",
		Timestamp: time.Now().UTC().Add(-time.Hour), Pulls: 900,
	}))
	router := newTestRouter(t, &stubAggregator{}, &stubSampler{}, store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/repos/acme/widget/samples?window=7d", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data struct {
			Latest  *domain.Sample   `json:"latest"`
			Samples []*domain.Sample `json:"samples"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotNil(t, response.Data.Latest)
	assert.Equal(t, int64(900), response.Data.Latest.Pulls)
	assert.Len(t, response.Data.Samples, 1)
}

func TestGetSamplesUntrackedRepo(t *testing.T) {
	router := newTestRouter(t, &stubAggregator{}, &stubSampler{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/repos/acme/unknown/samples", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSamplesBadWindow(t *testing.T) {
	router := newTestRouter(t, &stubAggregator{}, &stubSampler{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/repos/acme/widget/samples?window=90d", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t, &stubAggregator{}, &stubSampler{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
