package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/domain"
)

// Client is the API client for dockerhub-pull-metrics
type Client struct {
	client *resty.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second),
	}
}

// GetStats retrieves the combined pull statistics
func (c *Client) GetStats(ctx context.Context) ([]*domain.PullStats, error) {
	var response struct {
		Data []*domain.PullStats `json:"data"`
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&response).
		Get("/api/v1/stats")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return response.Data, nil
}

// Collect triggers one sample-and-record pass and returns the raw samples
func (c *Client) Collect(ctx context.Context) ([]*domain.Sample, error) {
	var response struct {
		Data []*domain.Sample `json:"data"`
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&response).
		Post("/api/v1/collect")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return response.Data, nil
}
