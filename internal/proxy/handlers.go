package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/seven011/searchgate/internal/backend"
	"github.com/seven011/searchgate/internal/types"
)

// searchFailedMessage is the uniform client-facing error string.
const searchFailedMessage = "Search failed"

var gatewayTracer = otel.Tracer("searchgate/proxy")

// handleSearch is the trust boundary between browsers and the 0711 backend.
// It accepts the minimal client payload, fills in defaults and the
// configured collection, attaches credentials downstream, and passes a
// successful upstream body through verbatim.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()

	var req types.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		s.recordSearch(r.Context(), start, "invalid_body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		s.recordSearch(r.Context(), start, "empty_query")
		return
	}

	query := s.normalize(&req)

	ctx, cancel := context.WithTimeout(r.Context(), s.config.BackendRequestTimeout)
	defer cancel()

	ctx, span := gatewayTracer.Start(ctx, "gateway.search")
	span.SetAttributes(
		attribute.Int("search.k", query.K),
		attribute.Bool("search.hybrid", query.Hybrid),
		attribute.String("search.collection", query.Collection),
	)

	body, err := s.backend.Search(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "backend_error")
		span.End()
		s.logger.Printf("Search request failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, clientDetails(err))
		s.recordSearch(r.Context(), start, "backend_error")
		return
	}
	span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Printf("Failed to write search response: %v", err)
	}
	s.recordSearch(r.Context(), start, "ok")
}

// normalize applies the gateway defaults: k=20 (configurable), hybrid=true
// unless the caller explicitly sent false, the fixed return field list, and
// the collection from configuration. The client can never choose the
// collection.
func (s *Server) normalize(req *types.SearchRequest) *types.BackendQuery {
	k := s.config.DefaultK
	if req.K != nil && *req.K > 0 {
		k = *req.K
	}

	hybrid := true
	if req.Hybrid != nil {
		hybrid = *req.Hybrid
	}

	returnFields := req.Return
	if len(returnFields) == 0 {
		returnFields = types.DefaultReturnFields()
	}

	return &types.BackendQuery{
		Collection: s.config.Collection,
		Query:      req.Query,
		K:          k,
		Hybrid:     hybrid,
		Return:     returnFields,
	}
}

// handleHealth reports gateway liveness without touching the backend.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, map[string]string{"status": "ok"})
}

// clientDetails picks the redacted failure description for the envelope.
// Backend errors carry a safe message; anything else collapses to the
// generic one so internals never leak.
func clientDetails(err error) string {
	var backendErr *backend.BackendError
	if errors.As(err, &backendErr) && backendErr.ClientMessage() != "" {
		return backendErr.ClientMessage()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "search backend request timed out"
	}
	return searchFailedMessage
}

// writeError responds with the uniform error envelope.
func (s *Server) writeError(w http.ResponseWriter, status int, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(&types.ErrorEnvelope{
		Error:   searchFailedMessage,
		Details: details,
	}); err != nil {
		s.logger.Printf("Failed to encode error envelope: %v", err)
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("Failed to encode JSON: %v", err)
	}
}

func (s *Server) recordSearch(ctx context.Context, start time.Time, outcome string) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	if s.requests != nil {
		s.requests.Add(ctx, 1, attrs)
	}
	if s.latency != nil {
		s.latency.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}
