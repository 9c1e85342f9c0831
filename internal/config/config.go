package config

import (
	"fmt"
	"net/url"
	"strings"

	env "github.com/netflix/go-env"

	"github.com/seven011/searchgate/internal/types"
)

// Type alias for Config
type Config = types.Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var config Config

	_, err := env.UnmarshalFromEnviron(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values and adjusts them to safe ranges
func validateConfig(config *Config) error {
	if err := validateBackendConfig(config); err != nil {
		return fmt.Errorf("backend configuration validation failed: %w", err)
	}

	if err := validateServerConfig(config); err != nil {
		return fmt.Errorf("server configuration validation failed: %w", err)
	}

	return nil
}

// validateBackendConfig validates the 0711 backend connection settings
func validateBackendConfig(config *Config) error {
	parsedURL, err := url.Parse(config.BackendBaseURL)
	if err != nil {
		return fmt.Errorf("invalid SEVEN011_BASE_URL format: %w", err)
	}

	if parsedURL.Scheme == "" {
		return fmt.Errorf("SEVEN011_BASE_URL must include scheme (http:// or https://)")
	}

	if !strings.HasPrefix(parsedURL.Scheme, "http") {
		return fmt.Errorf("SEVEN011_BASE_URL scheme must be http or https")
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("SEVEN011_BASE_URL must include a valid host")
	}

	if strings.TrimSpace(config.BackendAPIKey) == "" {
		return fmt.Errorf("SEVEN011_API_KEY cannot be blank")
	}

	if strings.TrimSpace(config.Collection) == "" {
		return fmt.Errorf("SEARCHGATE_COLLECTION cannot be blank")
	}

	// Clamp the default result count to the range the backend accepts
	if config.DefaultK < 1 {
		config.DefaultK = 1
	}
	if config.DefaultK > 100 {
		config.DefaultK = 100
	}

	if config.BackendRateLimit <= 0 {
		return fmt.Errorf("SEVEN011_RATE_LIMIT must be greater than 0")
	}
	if config.BackendRateLimit > 1000 {
		return fmt.Errorf("SEVEN011_RATE_LIMIT cannot exceed 1000 requests/second")
	}

	if config.BackendRateBurst <= 0 {
		return fmt.Errorf("SEVEN011_RATE_BURST must be greater than 0")
	}
	if config.BackendRateBurst > int(config.BackendRateLimit*10) {
		return fmt.Errorf("SEVEN011_RATE_BURST should not exceed 10x the rate limit")
	}

	if config.BackendRequestTimeout <= 0 {
		return fmt.Errorf("SEVEN011_REQUEST_TIMEOUT must be greater than 0")
	}
	if config.BackendConnectionTimeout <= 0 {
		return fmt.Errorf("SEVEN011_CONNECTION_TIMEOUT must be greater than 0")
	}

	if config.BackendMaxConnections <= 0 {
		return fmt.Errorf("SEVEN011_MAX_CONNECTIONS must be greater than 0")
	}
	if config.BackendMaxConnections > 100 {
		return fmt.Errorf("SEVEN011_MAX_CONNECTIONS cannot exceed 100")
	}

	if config.BackendMaxIdleConns <= 0 {
		return fmt.Errorf("SEVEN011_MAX_IDLE_CONNS must be greater than 0")
	}
	if config.BackendMaxIdleConns > config.BackendMaxConnections {
		return fmt.Errorf("SEVEN011_MAX_IDLE_CONNS cannot exceed SEVEN011_MAX_CONNECTIONS")
	}

	if config.BackendIdleConnTimeout <= 0 {
		return fmt.Errorf("SEVEN011_IDLE_CONN_TIMEOUT must be greater than 0")
	}

	return nil
}

// validateServerConfig validates the gateway HTTP server settings
func validateServerConfig(config *Config) error {
	if config.ServerPort < 1 || config.ServerPort > 65535 {
		return fmt.Errorf("SEARCHGATE_PORT must be between 1 and 65535")
	}

	if config.ServerHost == "" {
		return fmt.Errorf("SEARCHGATE_HOST cannot be empty")
	}

	if config.ServerReadTimeout <= 0 {
		return fmt.Errorf("SEARCHGATE_READ_TIMEOUT must be greater than 0")
	}
	if config.ServerWriteTimeout <= 0 {
		return fmt.Errorf("SEARCHGATE_WRITE_TIMEOUT must be greater than 0")
	}
	if config.ServerIdleTimeout <= 0 {
		return fmt.Errorf("SEARCHGATE_IDLE_TIMEOUT must be greater than 0")
	}
	if config.ServerShutdownTimeout <= 0 {
		return fmt.Errorf("SEARCHGATE_SHUTDOWN_TIMEOUT must be greater than 0")
	}

	return nil
}
