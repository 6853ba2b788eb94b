package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service. Loaded once at
// startup and validated eagerly so the process never starts with
// missing or invalid values.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// UPS
	UPSClientID      string `envconfig:"UPS_CLIENT_ID"`
	UPSClientSecret  string `envconfig:"UPS_CLIENT_SECRET"`
	UPSAccountNumber string `envconfig:"UPS_ACCOUNT_NUMBER"`
	UPSBaseURL       string `envconfig:"UPS_BASE_URL" default:"https://onlinetools.ups.com"`
	UPSEnabled       bool   `envconfig:"UPS_ENABLED" default:"true"`
	UPSUseMock       bool   `envconfig:"UPS_USE_MOCK" default:"false"`

	// Outbound HTTP
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	HTTPMaxRPS     float64       `envconfig:"HTTP_MAX_RPS" default:"0"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"cybership-rateshop"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.1.0"`
}

// Load reads configuration from the environment, with an optional .env
// file, and validates it.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the whole configuration and reports every problem at
// once rather than failing lazily per call.
func (c *Config) Validate() error {
	var problems []string

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT: %d is not a valid port", c.Port))
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "REQUEST_TIMEOUT: must be positive")
	}
	if c.HTTPMaxRPS < 0 {
		problems = append(problems, "HTTP_MAX_RPS: must not be negative")
	}

	if c.UPSEnabled && !c.UPSUseMock {
		if c.UPSClientID == "" {
			problems = append(problems, "UPS_CLIENT_ID: is required")
		}
		if c.UPSClientSecret == "" {
			problems = append(problems, "UPS_CLIENT_SECRET: is required")
		}
		if c.UPSAccountNumber == "" {
			problems = append(problems, "UPS_ACCOUNT_NUMBER: is required")
		}
	}
	if u, err := url.Parse(c.UPSBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("UPS_BASE_URL: %q is not a valid http(s) URL", c.UPSBaseURL))
	}

	if len(problems) > 0 {
		return fmt.Errorf("missing or invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("ups.enabled", c.UPSEnabled),
		attribute.Bool("ups.mock", c.UPSUseMock),
	}
}
