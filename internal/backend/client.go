package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/seven011/searchgate/internal/types"
)

// maxResponseBytes bounds how much of an upstream body the gateway will
// buffer before passing it through.
const maxResponseBytes = 8 << 20

// Client talks to the 0711 search service. It holds the only copy of the
// bearer credential in the process; nothing read from it is returned to
// gateway clients.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	apiKey      string
}

// Config holds connection settings for the 0711 service.
type Config struct {
	BaseURL           string
	APIKey            string
	RequestTimeout    time.Duration
	ConnectionTimeout time.Duration
	RateLimit         float64
	RateBurst         int
	MaxConnections    int
	MaxIdleConns      int
	IdleConnTimeout   time.Duration
}

// NewConfigFromTypes builds a backend Config from the root configuration.
func NewConfigFromTypes(cfg *types.Config) *Config {
	return &Config{
		BaseURL:           cfg.BackendBaseURL,
		APIKey:            cfg.BackendAPIKey,
		RequestTimeout:    cfg.BackendRequestTimeout,
		ConnectionTimeout: cfg.BackendConnectionTimeout,
		RateLimit:         cfg.BackendRateLimit,
		RateBurst:         cfg.BackendRateBurst,
		MaxConnections:    cfg.BackendMaxConnections,
		MaxIdleConns:      cfg.BackendMaxIdleConns,
		IdleConnTimeout:   cfg.BackendIdleConnTimeout,
	}
}

func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10.0
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 20
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if cfg.ConnectionTimeout == 0 {
		cfg.ConnectionTimeout = 30 * time.Second
	}
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = 100
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 10
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		MaxConnsPerHost:       cfg.MaxConnections,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConns / 2,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.RequestTimeout,
	}

	httpClient := &http.Client{
		Transport: transport,
		Timeout:   cfg.ConnectionTimeout,
	}

	return &Client{
		httpClient:  httpClient,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
	}, nil
}

// Search forwards a normalized query to POST {base}/v1/search and returns
// the raw JSON body on success. The body is passed through untouched so the
// gateway can hand it to clients verbatim. No retries: a failed submission
// is terminal.
func (c *Client) Search(ctx context.Context, query *types.BackendQuery) ([]byte, error) {
	if query == nil {
		return nil, fmt.Errorf("query cannot be nil")
	}

	payload, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search payload: %w", err)
	}

	body, err := c.post(ctx, "/v1/search", payload)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, ClassifyBodyError()
	}

	return body, nil
}

// ListCollections fetches the collections visible to the gateway credential
// from GET {base}/v1/collections.
func (c *Client) ListCollections(ctx context.Context) ([]types.CollectionInfo, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/collections", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build collections request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ClassifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ClassifyHTTPStatus(resp.StatusCode)
	}

	var collections []types.CollectionInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&collections); err != nil {
		return nil, ClassifyBodyError()
	}

	return collections, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build backend request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ClassifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused; the body is discarded
		// because upstream error text is not exposed to clients.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, ClassifyHTTPStatus(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, ClassifyTransportError(err)
	}

	return body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
