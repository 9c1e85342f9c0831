package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seven011/searchgate/internal/backend"
	"github.com/seven011/searchgate/internal/types"
)

// stubBackend captures the forwarded query and returns a canned body or error.
type stubBackend struct {
	captured *types.BackendQuery
	body     []byte
	err      error
	calls    int
}

func (b *stubBackend) Search(ctx context.Context, query *types.BackendQuery) ([]byte, error) {
	b.calls++
	b.captured = query
	if b.err != nil {
		return nil, b.err
	}
	return b.body, nil
}

func testConfig() *types.Config {
	return &types.Config{
		BackendBaseURL:        "https://search.example.com",
		BackendAPIKey:         "secret",
		Collection:            "pension-docs",
		DefaultK:              20,
		BackendRequestTimeout: 5 * time.Second,
		ServerHost:            "localhost",
		ServerPort:            8080,
		ServerReadTimeout:     5 * time.Second,
		ServerWriteTimeout:    5 * time.Second,
		ServerIdleTimeout:     5 * time.Second,
		ServerShutdownTimeout: 5 * time.Second,
	}
}

func newTestServer(t *testing.T, stub *stubBackend) *Server {
	t.Helper()
	server, err := NewServer(testConfig(), stub, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	return server
}

func postSearch(t *testing.T, server *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestSearchAppliesDefaults(t *testing.T) {
	stub := &stubBackend{body: []byte(`{"results":[],"total":0,"query":"q"}`)}
	server := newTestServer(t, stub)

	rec := postSearch(t, server, `{"query":"q"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.captured)
	assert.Equal(t, "pension-docs", stub.captured.Collection)
	assert.Equal(t, 20, stub.captured.K)
	assert.True(t, stub.captured.Hybrid)
	assert.Equal(t, types.DefaultReturnFields(), stub.captured.Return)
}

func TestSearchPreservesExplicitFields(t *testing.T) {
	stub := &stubBackend{body: []byte(`{"results":[],"total":0,"query":"q"}`)}
	server := newTestServer(t, stub)

	rec := postSearch(t, server, `{"query":"q","k":5,"hybrid":false,"return":["title","score"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, stub.captured.K)
	assert.False(t, stub.captured.Hybrid, "explicit hybrid=false must be preserved")
	assert.Equal(t, []string{"title", "score"}, stub.captured.Return)
}

func TestSearchTrimsQueryBeforeForwarding(t *testing.T) {
	stub := &stubBackend{body: []byte(`{"results":[],"total":0,"query":"q"}`)}
	server := newTestServer(t, stub)

	rec := postSearch(t, server, `{"query":"  pension deduction  "}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pension deduction", stub.captured.Query)
}

func TestSearchPassesUpstreamBodyThroughVerbatim(t *testing.T) {
	upstream := `{"results":[{"title":"A","snippet":"s","score":0.9,"source_url":"https://x.test/a"}],"total":1,"query":"pension deduction","extra_field":"untouched"}`
	stub := &stubBackend{body: []byte(upstream)}
	server := newTestServer(t, stub)

	rec := postSearch(t, server, `{"query":"pension deduction"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, upstream, rec.Body.String(), "upstream body must not be re-encoded")
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	stub := &stubBackend{}
	server := newTestServer(t, stub)

	for _, body := range []string{`{"query":""}`, `{"query":"   "}`, `{}`} {
		rec := postSearch(t, server, body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		envelope := decodeEnvelope(t, rec)
		assert.Equal(t, "Search failed", envelope.Error)
		assert.Equal(t, "query is required", envelope.Details)
	}

	assert.Equal(t, 0, stub.calls, "validation failures never reach the backend")
}

func TestSearchRejectsMalformedBody(t *testing.T) {
	stub := &stubBackend{}
	server := newTestServer(t, stub)

	rec := postSearch(t, server, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, stub.calls)
}

func TestSearchMapsUpstreamFailureToEnvelope(t *testing.T) {
	stub := &stubBackend{err: backend.ClassifyHTTPStatus(http.StatusServiceUnavailable)}
	server := newTestServer(t, stub)

	rec := postSearch(t, server, `{"query":"q"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "Search failed", envelope.Error)
	assert.NotEmpty(t, envelope.Details)
	assert.NotContains(t, envelope.Details, "example.com", "details must not leak the backend host")
}

func TestSearchMapsUnknownErrorToGenericDetails(t *testing.T) {
	stub := &stubBackend{err: io.ErrUnexpectedEOF}
	server := newTestServer(t, stub)

	rec := postSearch(t, server, `{"query":"q"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "Search failed", envelope.Details)
}

func TestSearchMethodNotAllowed(t *testing.T) {
	server := newTestServer(t, &stubBackend{})

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSearchCORSHeaders(t *testing.T) {
	stub := &stubBackend{body: []byte(`{"results":[],"total":0,"query":"q"}`)}
	server := newTestServer(t, stub)

	rec := postSearch(t, server, `{"query":"q"}`)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	// Preflight is answered without touching the backend.
	req := httptest.NewRequest(http.MethodOptions, "/api/search", nil)
	pre := httptest.NewRecorder()
	server.Handler().ServeHTTP(pre, req)

	assert.Equal(t, http.StatusNoContent, pre.Code)
	assert.Equal(t, "*", pre.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, pre.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Equal(t, 1, stub.calls)
}

func TestRequestIDHeader(t *testing.T) {
	stub := &stubBackend{body: []byte(`{"results":[],"total":0,"query":"q"}`)}
	server := newTestServer(t, stub)

	rec := postSearch(t, server, `{"query":"q"}`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	// An inbound ID is echoed back unchanged.
	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewBufferString(`{"query":"q"}`))
	req.Header.Set("X-Request-ID", "trace-me")
	echo := httptest.NewRecorder()
	server.Handler().ServeHTTP(echo, req)
	assert.Equal(t, "trace-me", echo.Header().Get("X-Request-ID"))
}

func TestHealth(t *testing.T) {
	server := newTestServer(t, &stubBackend{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestSequentialSearchesAreIndependent(t *testing.T) {
	stub := &stubBackend{body: []byte(`{"results":[],"total":0,"query":"q"}`)}
	server := newTestServer(t, stub)

	first := postSearch(t, server, `{"query":"q"}`)
	require.Equal(t, http.StatusOK, first.Code)

	stub.err = backend.ClassifyHTTPStatus(http.StatusServiceUnavailable)
	second := postSearch(t, server, `{"query":"q"}`)
	require.Equal(t, http.StatusInternalServerError, second.Code)

	assert.Equal(t, 2, stub.calls)
}
