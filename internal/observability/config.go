package observability

import (
	"fmt"
	"strings"
	"time"

	"github.com/seven011/searchgate/internal/types"
)

const (
	defaultServiceName      = "searchgate"
	defaultExporterProtocol = "http/protobuf"
	protocolGRPC            = "grpc"
	serviceNameKey          = "service.name"
)

// Config keeps OpenTelemetry runtime settings resolved from the root
// configuration.
type Config struct {
	Enabled              bool
	ServiceName          string
	ExporterEndpoint     string
	ExporterProtocol     string
	ResourceAttributes   map[string]string
	TracesSampler        string
	TracesSamplerArg     float64
	MetricExportInterval time.Duration
}

// LoadConfig resolves observability specific configuration from the root config.
func LoadConfig(cfg *types.Config) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("observability: nil root configuration provided")
	}

	attributes, err := parseResourceAttributes(cfg.OTelResourceAttributes)
	if err != nil {
		return nil, fmt.Errorf("observability: failed to parse resource attributes: %w", err)
	}

	otelCfg := &Config{
		Enabled:              cfg.OTelEnabled,
		ServiceName:          strings.TrimSpace(cfg.OTelServiceName),
		ExporterEndpoint:     strings.TrimSpace(cfg.OTelExporterOTLPEndpoint),
		ExporterProtocol:     strings.TrimSpace(cfg.OTelExporterOTLPProtocol),
		ResourceAttributes:   attributes,
		TracesSampler:        strings.TrimSpace(cfg.OTelTracesSampler),
		TracesSamplerArg:     cfg.OTelTracesSamplerArg,
		MetricExportInterval: cfg.OTelMetricExportInterval,
	}

	if err := otelCfg.Validate(); err != nil {
		return nil, err
	}

	return otelCfg, nil
}

// Validate normalises defaults and rejects configurations that cannot be
// initialised.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("observability: config is nil")
	}

	if c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}

	c.ExporterProtocol = strings.ToLower(strings.TrimSpace(c.ExporterProtocol))
	if c.ExporterProtocol == "" {
		c.ExporterProtocol = defaultExporterProtocol
	}

	if c.TracesSampler == "" {
		c.TracesSampler = "always_on"
	}

	if c.MetricExportInterval <= 0 {
		c.MetricExportInterval = time.Minute
	}

	if !c.Enabled {
		return nil
	}

	if c.ExporterEndpoint == "" {
		return fmt.Errorf("observability: exporter endpoint is required when telemetry is enabled")
	}

	switch c.ExporterProtocol {
	case defaultExporterProtocol, protocolGRPC:
	default:
		return fmt.Errorf("observability: unsupported exporter protocol %q", c.ExporterProtocol)
	}

	return nil
}

// parseResourceAttributes parses a comma separated key=value list.
func parseResourceAttributes(raw string) (map[string]string, error) {
	attributes := make(map[string]string)
	if strings.TrimSpace(raw) == "" {
		return attributes, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid resource attribute %q", pair)
		}
		attributes[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return attributes, nil
}
