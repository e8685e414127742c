package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Balikobot
	BalikobotAPIUser         string            `envconfig:"BALIKOBOT_API_USER"`
	BalikobotAPIKey          string            `envconfig:"BALIKOBOT_API_KEY"`
	BalikobotBaseURL         string            `envconfig:"BALIKOBOT_BASE_URL" default:"https://apiv2.balikobot.cz"`
	BalikobotTimeout         time.Duration     `envconfig:"BALIKOBOT_TIMEOUT" default:"30s"`
	BalikobotUseMock         bool              `envconfig:"BALIKOBOT_USE_MOCK" default:"false"`
	BalikobotCarriers        []string          `envconfig:"BALIKOBOT_CARRIERS" default:"cp,dpd,ppl,gls,ups,zasilkovna"`
	BalikobotCarrierVersions map[string]string `envconfig:"BALIKOBOT_CARRIER_VERSIONS"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"balikobot-bridge"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables. Variables found in
// the given dotenv files are applied first without overriding the process
// environment; missing files are ignored.
func Load(dotenv ...string) (*Config, error) {
	for _, path := range dotenv {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// CarrierVersion returns the API version configured for a carrier code, or
// "" for the unversioned endpoint.
func (c *Config) CarrierVersion(code string) string {
	return c.BalikobotCarrierVersions[code]
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("balikobot.base_url", c.BalikobotBaseURL),
		attribute.Bool("balikobot.use_mock", c.BalikobotUseMock),
		attribute.StringSlice("balikobot.carriers", c.BalikobotCarriers),
	}
}
