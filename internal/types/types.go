package types

import (
	"time"
)

// SearchRequest is the minimal payload a client sends to the gateway.
// K and Hybrid are pointers so that an absent field can be told apart
// from an explicit zero value during normalization.
type SearchRequest struct {
	Query  string   `json:"query"`
	K      *int     `json:"k,omitempty"`
	Hybrid *bool    `json:"hybrid,omitempty"`
	Return []string `json:"return,omitempty"`
}

// BackendQuery is the full payload forwarded to the 0711 search endpoint.
// The collection is injected from configuration, never by the client.
type BackendQuery struct {
	Collection string   `json:"collection"`
	Query      string   `json:"query"`
	K          int      `json:"k"`
	Hybrid     bool     `json:"hybrid"`
	Return     []string `json:"return"`
}

// Citation is a supporting source attached to a search result.
type Citation struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// SearchResult is a single ranked hit as returned by the backend.
// Results are immutable once received; the backend's order is the
// authoritative display order.
type SearchResult struct {
	Title     string     `json:"title"`
	Snippet   string     `json:"snippet"`
	Score     float64    `json:"score"`
	SourceURL string     `json:"source_url"`
	DocType   string     `json:"doc_type,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
}

// SearchResponse is the backend's answer to a search query. Total is the
// count reported by the backend and may exceed len(Results).
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
	Query   string         `json:"query"`
}

// ErrorEnvelope is the uniform error shape the gateway returns to clients.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// CollectionInfo describes a document collection on the backend.
type CollectionInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DefaultReturnFields returns the field list requested from the backend
// when the client does not specify one.
func DefaultReturnFields() []string {
	return []string{"title", "snippet", "score", "citations", "source_url", "doc_type"}
}

// ErrorType classifies failures on the path to the search backend.
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeUpstream       ErrorType = "upstream"
	ErrorTypeNetworkTimeout ErrorType = "network_timeout"
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypeMalformedBody  ErrorType = "malformed_body"
	ErrorTypeUnknown        ErrorType = "unknown"
)

// Config represents the gateway configuration. It is resolved once from the
// environment at process start and passed to components by injection; it is
// never written after that.
type Config struct {
	// 0711 search backend
	BackendBaseURL           string        `json:"backend_base_url" env:"SEVEN011_BASE_URL,required=true"`
	BackendAPIKey            string        `json:"-" env:"SEVEN011_API_KEY,required=true"`
	Collection               string        `json:"collection" env:"SEARCHGATE_COLLECTION,required=true"`
	DefaultK                 int           `json:"default_k" env:"SEARCHGATE_DEFAULT_K,default=20"`
	BackendRequestTimeout    time.Duration `json:"backend_request_timeout" env:"SEVEN011_REQUEST_TIMEOUT,default=15s"`
	BackendConnectionTimeout time.Duration `json:"backend_connection_timeout" env:"SEVEN011_CONNECTION_TIMEOUT,default=30s"`
	BackendRateLimit         float64       `json:"backend_rate_limit" env:"SEVEN011_RATE_LIMIT,default=10.0"`
	BackendRateBurst         int           `json:"backend_rate_burst" env:"SEVEN011_RATE_BURST,default=20"`
	BackendMaxConnections    int           `json:"backend_max_connections" env:"SEVEN011_MAX_CONNECTIONS,default=100"`
	BackendMaxIdleConns      int           `json:"backend_max_idle_conns" env:"SEVEN011_MAX_IDLE_CONNS,default=10"`
	BackendIdleConnTimeout   time.Duration `json:"backend_idle_conn_timeout" env:"SEVEN011_IDLE_CONN_TIMEOUT,default=90s"`

	// Gateway HTTP server
	ServerHost            string        `json:"server_host" env:"SEARCHGATE_HOST,default=localhost"`
	ServerPort            int           `json:"server_port" env:"SEARCHGATE_PORT,default=8080"`
	ServerReadTimeout     time.Duration `json:"server_read_timeout" env:"SEARCHGATE_READ_TIMEOUT,default=30s"`
	ServerWriteTimeout    time.Duration `json:"server_write_timeout" env:"SEARCHGATE_WRITE_TIMEOUT,default=30s"`
	ServerIdleTimeout     time.Duration `json:"server_idle_timeout" env:"SEARCHGATE_IDLE_TIMEOUT,default=120s"`
	ServerShutdownTimeout time.Duration `json:"server_shutdown_timeout" env:"SEARCHGATE_SHUTDOWN_TIMEOUT,default=30s"`

	// OpenTelemetry export
	OTelEnabled              bool          `json:"otel_enabled" env:"OTEL_ENABLED,default=false"`
	OTelServiceName          string        `json:"otel_service_name" env:"OTEL_SERVICE_NAME,default=searchgate"`
	OTelExporterOTLPEndpoint string        `json:"otel_exporter_otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelExporterOTLPProtocol string        `json:"otel_exporter_otlp_protocol" env:"OTEL_EXPORTER_OTLP_PROTOCOL,default=http/protobuf"`
	OTelTracesSampler        string        `json:"otel_traces_sampler" env:"OTEL_TRACES_SAMPLER,default=always_on"`
	OTelTracesSamplerArg     float64       `json:"otel_traces_sampler_arg" env:"OTEL_TRACES_SAMPLER_ARG,default=1.0"`
	OTelMetricExportInterval time.Duration `json:"otel_metric_export_interval" env:"OTEL_METRIC_EXPORT_INTERVAL,default=60s"`
	OTelResourceAttributes   string        `json:"otel_resource_attributes" env:"OTEL_RESOURCE_ATTRIBUTES"`
}
