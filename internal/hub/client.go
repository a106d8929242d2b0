package hub

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	apperrors "github.com/kurihiro0119/dockerhub-pull-metrics/internal/errors"
)

// Client fetches the current absolute pull counter for a repository
type Client interface {
	// PullCount retrieves the current pull count for org/repo
	PullCount(ctx context.Context, org, repo string) (int64, error)
}

// repositoryInfo is the subset of the Docker Hub repository payload we read
type repositoryInfo struct {
	PullCount int64 `json:"pull_count"`
}

// hubClient implements Client against the Docker Hub v2 API
type hubClient struct {
	client      *resty.Client
	rateLimiter RateLimiter
}

// NewClient creates a new Docker Hub client. baseURL is the API root
// (https://hub.docker.com in production, an httptest server in tests);
// requestPause is the fixed delay enforced between consecutive calls.
func NewClient(baseURL string, requestPause time.Duration) Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second)

	return &hubClient{
		client:      client,
		rateLimiter: NewRateLimiter(requestPause),
	}
}

// PullCount retrieves the current pull count for org/repo
func (c *hubClient) PullCount(ctx context.Context, org, repo string) (int64, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return 0, err
	}

	var info repositoryInfo
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&info).
		Get(fmt.Sprintf("/v2/repositories/%s/%s/", org, repo))
	if err != nil {
		return 0, apperrors.NewUnavailableError(fmt.Sprintf("failed to fetch pull count for %s/%s", org, repo), err)
	}

	switch {
	case resp.StatusCode() == 404:
		return 0, apperrors.NewNotFoundError(fmt.Sprintf("repository %s/%s", org, repo))
	case resp.StatusCode() == 429:
		return 0, apperrors.NewRateLimitedError(fmt.Sprintf("rate limited fetching %s/%s", org, repo))
	case resp.IsError():
		return 0, apperrors.NewUnavailableError(fmt.Sprintf("unexpected status %d for %s/%s", resp.StatusCode(), org, repo), nil)
	}

	if info.PullCount < 0 {
		return 0, apperrors.NewInternalError(fmt.Sprintf("negative pull count for %s/%s", org, repo), nil)
	}

	return info.PullCount, nil
}
