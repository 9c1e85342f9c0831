package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/seven011/searchgate/internal/types"
)

const defaultAPITimeout = 30 * time.Second

// APIClient is the SearchClient that talks to a running gateway over HTTP.
// It sends the minimal client payload; defaults and credentials are the
// gateway's responsibility.
type APIClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewAPIClient builds a client for the gateway at baseURL. A zero timeout
// falls back to a default so a hung gateway cannot hang the caller forever.
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = defaultAPITimeout
	}
	return &APIClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Search posts the request to POST {gateway}/api/search and decodes either
// a SearchResponse or the gateway's error envelope.
func (c *APIClient) Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope types.ErrorEnvelope
		if err := json.Unmarshal(body, &envelope); err == nil {
			if envelope.Details != "" {
				return nil, errors.New(envelope.Details)
			}
			if envelope.Error != "" {
				return nil, errors.New(envelope.Error)
			}
		}
		return nil, fmt.Errorf("search request failed with HTTP %d", resp.StatusCode)
	}

	var searchResp types.SearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("malformed search response body")
	}

	return &searchResp, nil
}
