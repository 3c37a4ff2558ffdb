// Package eli provides the HTTP client for an ELI-style legal act API.
//
// The client layers the process-wide resilience machinery around every
// request: a proactive rate limiter, a response cache with per-kind TTLs,
// request collapsing for concurrent identical fetches, retries with
// capped exponential backoff for transient failures, and a circuit
// breaker that short-circuits while the upstream is unhealthy.
package eli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/acta-dev/acta-mcp/internal/cache"
	"github.com/acta-dev/acta-mcp/internal/core/domain"
	"github.com/acta-dev/acta-mcp/internal/core/ports/driven"
	"github.com/acta-dev/acta-mcp/internal/logger"
	"github.com/acta-dev/acta-mcp/internal/resilience"
)

// Ensure Client implements the interface.
var _ driven.ActAPI = (*Client)(nil)

const (
	// Version identifies the client in the User-Agent header.
	Version = "0.1.0"

	// DefaultBaseURL is the public ELI API endpoint.
	DefaultBaseURL = "https://api.sejm.gov.pl/eli"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the number of attempts for transient failures.
	MaxRetries = 3

	// maxRetryDelay caps the exponential backoff between attempts.
	maxRetryDelay = 10 * time.Second

	// ProactiveRate is the proactive throttle rate in requests/second.
	ProactiveRate = 5

	// DefaultSearchLimit is the record cap applied when a search query
	// does not specify one.
	DefaultSearchLimit = 50
)

// Config holds the client settings.
type Config struct {
	// BaseURL overrides the upstream endpoint. Empty means DefaultBaseURL.
	BaseURL string

	// Timeout is the per-request HTTP timeout. Zero means DefaultTimeout.
	Timeout time.Duration

	// SearchTTL is the cache TTL for search responses.
	SearchTTL time.Duration

	// BrowseTTL is the cache TTL for yearly journal listings.
	BrowseTTL time.Duration

	// TextTTL is the cache TTL for act text responses.
	TextTTL time.Duration
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.SearchTTL <= 0 {
		c.SearchTTL = 10 * time.Minute
	}
	if c.BrowseTTL <= 0 {
		c.BrowseTTL = time.Hour
	}
	if c.TextTTL <= 0 {
		c.TextTTL = time.Hour
	}
}

// IsFailure reports whether an error should count as an upstream failure
// for circuit-breaking purposes. Only transient failures count: a 404 is
// a definitive answer, not a sign of an unhealthy upstream.
func IsFailure(err error) bool {
	return errors.Is(err, domain.ErrUpstreamUnavailable)
}

// Client is the upstream ELI API client.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      *cache.Cache[[]byte]
	breaker    *resilience.CircuitBreaker
	limiter    *rate.Limiter
	group      singleflight.Group

	// retryDelay is the initial backoff, shortened in tests.
	retryDelay time.Duration
}

// NewClient creates an upstream client. The breaker is constructed from
// breakerConfig with the transient-failure classifier installed.
func NewClient(responseCache *cache.Cache[[]byte], breakerConfig resilience.Config, config Config) (*Client, error) {
	if responseCache == nil {
		return nil, fmt.Errorf("%w: response cache is required", domain.ErrInvalidConfig)
	}
	config.applyDefaults()

	if breakerConfig.IsFailure == nil {
		breakerConfig.IsFailure = IsFailure
	}
	if breakerConfig.OnStateChange == nil {
		breakerConfig.OnStateChange = func(from, to resilience.State) {
			logger.Info("upstream circuit breaker: %s -> %s", from, to)
		}
	}
	breaker, err := resilience.New(breakerConfig)
	if err != nil {
		return nil, err
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		cache:      responseCache,
		breaker:    breaker,
		limiter:    rate.NewLimiter(rate.Limit(ProactiveRate), ProactiveRate),
		retryDelay: time.Second,
	}, nil
}

// Breaker exposes the upstream circuit breaker, e.g. for health output.
func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// searchResponse is the upstream search payload.
type searchResponse struct {
	Items []actItem `json:"items"`
	Count int       `json:"count"`
}

// actItem is one upstream act record.
type actItem struct {
	ELI          string `json:"eli"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	Year         int    `json:"year"`
	Pos          int    `json:"pos"`
	Publisher    string `json:"publisher"`
	Promulgation string `json:"promulgation"`
	InForce      string `json:"entryIntoForce"`
}

// SearchActs runs a metadata search and returns matching summaries.
func (c *Client) SearchActs(ctx context.Context, query domain.SearchQuery) ([]domain.ActSummary, error) {
	params := url.Values{}
	if query.Title != "" {
		params.Set("title", query.Title)
	}
	if query.Year != 0 {
		params.Set("year", strconv.Itoa(query.Year))
	}
	if query.Type != "" {
		params.Set("type", query.Type)
	}
	if query.Publisher != "" {
		params.Set("publisher", query.Publisher)
	}
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	params.Set("limit", strconv.Itoa(limit))

	data, err := c.getCached(ctx, "acts/search", params, c.config.SearchTTL)
	if err != nil {
		return nil, err
	}
	return decodeActList(data)
}

// BrowseActs lists every act a journal published in a year.
func (c *Client) BrowseActs(ctx context.Context, publisher string, year int) ([]domain.ActSummary, error) {
	if publisher == "" {
		return nil, fmt.Errorf("%w: publisher is required", domain.ErrInvalidInput)
	}
	if year <= 0 {
		return nil, fmt.Errorf("%w: year is required", domain.ErrInvalidInput)
	}

	path := fmt.Sprintf("acts/%s/%d", publisher, year)
	data, err := c.getCached(ctx, path, nil, c.config.BrowseTTL)
	if err != nil {
		return nil, err
	}
	return decodeActList(data)
}

// decodeActList decodes an upstream act listing into summaries.
func decodeActList(data []byte) ([]domain.ActSummary, error) {
	var resp searchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding act list: %w", err)
	}

	acts := make([]domain.ActSummary, len(resp.Items))
	for i, item := range resp.Items {
		acts[i] = domain.ActSummary{
			ELI:              item.ELI,
			Title:            item.Title,
			Type:             item.Type,
			Status:           item.Status,
			Year:             item.Year,
			Pos:              item.Pos,
			Publisher:        item.Publisher,
			PromulgationDate: item.Promulgation,
			EffectiveDate:    item.InForce,
		}
	}
	return acts, nil
}

// FetchActText returns the consolidated text of an act.
func (c *Client) FetchActText(ctx context.Context, eli string) (string, error) {
	if eli == "" {
		return "", fmt.Errorf("%w: eli is required", domain.ErrInvalidInput)
	}
	data, err := c.getCached(ctx, "acts/"+eli+"/text", nil, c.config.TextTTL)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// getCached serves a GET from the response cache, collapsing concurrent
// misses for the same key into a single upstream fetch.
func (c *Client) getCached(ctx context.Context, path string, params url.Values, ttl time.Duration) ([]byte, error) {
	key := path
	if len(params) > 0 {
		key += "?" + params.Encode()
	}

	if data, ok := c.cache.Get(key); ok {
		logger.Debug("cache hit: %s", key)
		return data, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		data, err := c.fetch(ctx, key)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, data, ttl)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// fetch performs a GET with retries. Transient failures are retried with
// capped exponential backoff; a rejection by the circuit breaker is not.
func (c *Client) fetch(ctx context.Context, key string) ([]byte, error) {
	var lastErr error
	delay := c.retryDelay
	for attempt := 1; attempt <= MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var data []byte
		err := c.breaker.Execute(ctx, func(ctx context.Context) error {
			var err error
			data, err = c.doRequest(ctx, key)
			return err
		})
		if err == nil {
			return data, nil
		}
		lastErr = err

		if errors.Is(err, resilience.ErrCircuitOpen) || !IsFailure(err) {
			return nil, err
		}
		if attempt == MaxRetries {
			break
		}

		logger.Debug("upstream attempt %d/%d failed for %s: %v", attempt, MaxRetries, key, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
	return nil, lastErr
}

// doRequest performs a single GET against the upstream API.
func (c *Client) doRequest(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/"+key, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "acta-mcp/"+Version)
	req.Header.Set("Accept", "application/json, text/plain")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", key, domain.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: upstream status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("upstream status %d for %s", resp.StatusCode, key)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrUpstreamUnavailable, err)
	}
	return data, nil
}
