package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seven011/searchgate/internal/backend"
	appconfig "github.com/seven011/searchgate/internal/config"
	"github.com/seven011/searchgate/internal/observability"
	"github.com/seven011/searchgate/internal/proxy"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the search gateway server",
	Long: `
The serve command starts the gateway HTTP server:
- POST /api/search  proxies normalized queries to the 0711 backend
- GET  /api/health  liveness probe
- GET  /            static search console page

Configuration comes from the environment (or a .env file in the working
directory); SEVEN011_BASE_URL and SEVEN011_API_KEY are required.

Example:
  searchgate serve                 # listen on localhost:8080
  searchgate serve --port 9090     # custom port
`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind (overrides SEARCHGATE_HOST)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to bind (overrides SEARCHGATE_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stdout, "[searchgate] ", log.LstdFlags)

	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if serveHost != "" {
		cfg.ServerHost = serveHost
	}
	if servePort != 0 {
		cfg.ServerPort = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelCfg, err := observability.LoadConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to load observability configuration: %w", err)
	}

	shutdownTelemetry, err := observability.Init(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Printf("Telemetry shutdown error: %v", err)
		}
	}()

	backendClient, err := backend.NewClient(backend.NewConfigFromTypes(cfg))
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	server, err := proxy.NewServer(cfg, backendClient, logger)
	if err != nil {
		return fmt.Errorf("failed to create gateway server: %w", err)
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.Run(ctx)
	})

	return group.Wait()
}
