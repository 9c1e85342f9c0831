package proxy

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/seven011/searchgate/internal/types"
)

// SearchBackend is the outbound side of the proxy. The production
// implementation is internal/backend.Client; tests substitute stubs.
type SearchBackend interface {
	Search(ctx context.Context, query *types.BackendQuery) ([]byte, error)
}

// Server is the gateway HTTP server. It is stateless across requests: the
// only shared data is the read-only configuration and the backend client.
type Server struct {
	config       *types.Config
	backend      SearchBackend
	httpServer   *http.Server
	logger       *log.Logger
	requests     metric.Int64Counter
	latency      metric.Float64Histogram
	shutdownOnce sync.Once
}

// NewServer creates a gateway server. Configuration is injected, never read
// from globals, so tests can construct servers directly.
func NewServer(cfg *types.Config, backend SearchBackend, logger *log.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if backend == nil {
		return nil, fmt.Errorf("backend cannot be nil")
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[searchgate] ", log.LstdFlags)
	}

	s := &Server{
		config:  cfg,
		backend: backend,
		logger:  logger,
	}

	meter := otel.Meter("github.com/seven011/searchgate/internal/proxy")
	var err error
	s.requests, err = meter.Int64Counter("searchgate.requests",
		metric.WithDescription("Number of search requests handled by the gateway"))
	if err != nil {
		logger.Printf("Warning: failed to create request counter: %v", err)
	}
	s.latency, err = meter.Float64Histogram("searchgate.request.duration",
		metric.WithDescription("Search request duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		logger.Printf("Warning: failed to create latency histogram: %v", err)
	}

	return s, nil
}

// Run starts the server and blocks until the context is cancelled or the
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.ServerHost, s.config.ServerPort),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ServerReadTimeout,
		WriteTimeout: s.config.ServerWriteTimeout,
		IdleTimeout:  s.config.ServerIdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("Starting search gateway at http://%s:%d", s.config.ServerHost, s.config.ServerPort)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		return s.shutdown()
	case err := <-errChan:
		return err
	}
}

// Handler builds the full middleware-wrapped route table. Exposed so tests
// can drive the server through httptest without opening a port.
func (s *Server) Handler() http.Handler {
	return s.requestIDMiddleware(s.loggingMiddleware(s.setupRoutes()))
}

// shutdown performs graceful shutdown
func (s *Server) shutdown() error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.Println("Shutting down gateway...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ServerShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}
	})
	return shutdownErr
}

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Console page
	consoleFS, err := fs.Sub(consoleFiles, "static")
	if err != nil {
		s.logger.Printf("Warning: failed to setup console files: %v", err)
	} else {
		mux.Handle("/", http.FileServer(http.FS(consoleFS)))
	}

	// API endpoints; reads are public, hence the open CORS wrapper.
	mux.Handle("/api/search", s.corsMiddleware(http.HandlerFunc(s.handleSearch)))
	mux.Handle("/api/health", s.corsMiddleware(http.HandlerFunc(s.handleHealth)))

	return mux
}
