package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/aggregator"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/collector"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/domain"
	apperrors "github.com/kurihiro0119/dockerhub-pull-metrics/internal/errors"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/storage"
)

// Handler handles API requests
type Handler struct {
	aggregator aggregator.Aggregator
	pipeline   *collector.Pipeline
	storage    storage.Storage
	repos      []domain.Repository
}

// NewHandler creates a new API handler. repos is the immutable tracked set
// loaded at startup.
func NewHandler(agg aggregator.Aggregator, pipeline *collector.Pipeline, store storage.Storage, repos []domain.Repository) *Handler {
	return &Handler{
		aggregator: agg,
		pipeline:   pipeline,
		storage:    store,
		repos:      repos,
	}
}

// tracked reports whether org/repo is in the configured set
func (h *Handler) tracked(org, repo string) bool {
	for _, r := range h.repos {
		if r.Org == org && r.Name == repo {
			return true
		}
	}
	return false
}

// Dashboard renders the HTML pull statistics table
// GET /
func (h *Handler) Dashboard(c *gin.Context) {
	stats := h.aggregator.CombinedStats(c.Request.Context(), h.repos)

	c.HTML(http.StatusOK, "dashboard", gin.H{
		"Stats": stats,
	})
}

// GetStats returns the combined pull statistics
// GET /api/v1/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats := h.aggregator.CombinedStats(c.Request.Context(), h.repos)

	c.JSON(http.StatusOK, gin.H{
		"data": stats,
	})
}

// Collect runs one sample-and-record pass and returns the raw samples
// POST /api/v1/collect
func (h *Handler) Collect(c *gin.Context) {
	samples := h.pipeline.Collect(c.Request.Context(), h.repos)

	// The only failure surfaced to the caller: a non-empty configuration
	// where not a single repository could be sampled.
	if len(samples) == 0 && len(h.repos) > 0 {
		respondError(c, apperrors.NewUnavailableError("sampling failed for every repository", nil))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": samples,
	})
}

// GetSamples returns the stored samples of one tracked repository
// GET /api/v1/repos/:org/:repo/samples?window=30d
func (h *Handler) GetSamples(c *gin.Context) {
	org := c.Param("org")
	repo := c.Param("repo")

	if !h.tracked(org, repo) {
		respondError(c, apperrors.NewNotFoundError("repository "+org+"/"+repo))
		return
	}

	window, err := domain.ParseWindow(c.DefaultQuery("window", "30d"))
	if err != nil {
		respondError(c, apperrors.NewBadRequestError(err.Error()))
		return
	}

	ctx := c.Request.Context()
	since := time.Now().Add(-window.Duration())

	samples, err := h.storage.ListSamples(ctx, org, repo, since)
	if err != nil {
		respondError(c, apperrors.NewUnavailableError("failed to list samples", err))
		return
	}

	latest, err := h.storage.LatestSample(ctx, org, repo)
	if err != nil {
		respondError(c, apperrors.NewUnavailableError("failed to load latest sample", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"latest":  latest,
			"samples": samples,
		},
	})
}

// HealthCheck returns the service health
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// respondError maps application errors to HTTP responses
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := apperrors.ErrCodeInternal
	message := err.Error()

	if appErr, ok := err.(*apperrors.AppError); ok {
		code = appErr.Code
		switch appErr.Code {
		case apperrors.ErrCodeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrCodeBadRequest:
			status = http.StatusBadRequest
		case apperrors.ErrCodeUnavailable:
			status = http.StatusBadGateway
		case apperrors.ErrCodeRateLimited:
			status = http.StatusTooManyRequests
		}
		message = appErr.Message
	}

	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
