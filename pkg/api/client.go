// Package api implements the query builder and fetcher for the sports
// statistics HTTP API. One Fetch call issues exactly one authenticated GET
// and normalizes the JSON payload into a table. No retries, no pagination;
// retry policy, if any, belongs to the caller.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/statpull/statpull/pkg/errors"
	"github.com/statpull/statpull/pkg/table"
)

// DefaultTimeout bounds the HTTP request when the caller does not supply
// a timeout.
const DefaultTimeout = 120 * time.Second

// ClientConfig configures a Client. Zero values fall back to defaults.
type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Client issues authenticated queries against the stats API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewClient creates a Client from the given configuration.
func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		logger:     logger,
	}
}

// Fetch issues one GET for the query and returns the normalized table.
// A non-200 status yields an api_request error carrying the status code;
// network failure or timeout yields a transport error. Neither is retried.
func (c *Client) Fetch(ctx context.Context, query Query) (*table.Table, error) {
	if query.Category == "" {
		return nil, errors.New(errors.TypeValidation, "category is required")
	}

	url := query.URL(c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.TypeValidation, "failed to build request").
			WithDetail("url", url)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	c.logger.Info("querying stats api",
		zap.String("url", url),
		zap.String("category", query.Category),
		zap.Int("filters", len(query.Filters)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.TypeTransport, "request failed").
			WithDetail("url", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.TypeAPIRequest, "unexpected status %d", resp.StatusCode).
			WithDetail("status_code", resp.StatusCode).
			WithDetail("url", url)
	}

	result, err := table.FromJSON(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Info("fetch complete",
		zap.String("category", query.Category),
		zap.Int("rows", result.NumRows()),
		zap.Int("columns", len(result.Columns)),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}
