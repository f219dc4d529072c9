// Package config loads service configuration from an optional YAML file
// overlaid with environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Jorudan   JorudanConfig   `yaml:"jorudan"`
	Search    SearchConfig    `yaml:"search"`
	Auth      AuthConfig      `yaml:"auth"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port        int    `yaml:"port" validate:"gt=0,lte=65535"`
	Environment string `yaml:"environment" validate:"oneof=development test staging production"`

	// RateLimit is the number of search requests allowed per client per
	// minute. Zero disables rate limiting.
	RateLimit int `yaml:"rateLimit" validate:"gte=0"`

	// RequireTLS rejects requests forwarded over plain HTTP.
	RequireTLS bool `yaml:"requireTLS"`
}

// TelemetryConfig contains OpenTelemetry configuration.
type TelemetryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	OTLPEndpoint string `yaml:"otlpEndpoint" validate:"required_if=Enabled true,omitempty,hostname_port"`

	// SampleRatio is the fraction of root traces kept.
	SampleRatio float64 `yaml:"sampleRatio" validate:"gte=0,lte=1"`
}

// JorudanConfig contains upstream configuration.
type JorudanConfig struct {
	SuggestURL     string        `yaml:"suggestURL" validate:"required,url"`
	RouteSearchURL string        `yaml:"routeSearchURL" validate:"required,url"`
	UserAgent      string        `yaml:"userAgent"`
	Timeout        time.Duration `yaml:"timeout" validate:"gt=0"`

	// BreakerTimeout is how long the circuit stays open before probing.
	BreakerTimeout time.Duration `yaml:"breakerTimeout" validate:"gt=0"`
}

// SearchConfig contains search defaults.
type SearchConfig struct {
	// DefaultMaxTokens applies when a request does not set a budget.
	// Zero means unlimited.
	DefaultMaxTokens int `yaml:"defaultMaxTokens" validate:"gte=0"`

	// Tokenizer selects the token counter: "tiktoken" or "rune".
	Tokenizer string `yaml:"tokenizer" validate:"oneof=tiktoken rune"`
}

// AuthConfig contains bearer-token configuration.
type AuthConfig struct {
	// JWTSigningKey enables HS256 bearer auth on search endpoints when set.
	JWTSigningKey string `yaml:"jwtSigningKey" validate:"omitempty,min=16"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:        8080,
			Environment: "development",
			RateLimit:   60,
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
			SampleRatio:  1,
		},
		Jorudan: JorudanConfig{
			SuggestURL:     "https://navi.jorudan.co.jp/api/compat/suggest/agg",
			RouteSearchURL: "https://www.jorudan.co.jp/norikae/cgi/nori.cgi",
			Timeout:        10 * time.Second,
			BreakerTimeout: 60 * time.Second,
		},
		Search: SearchConfig{
			Tokenizer: "tiktoken",
		},
	}
}

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks every field constraint.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error

	c.Server.Port, err = strconv.Atoi(getEnvOrDefault("APP_PORT", strconv.Itoa(c.Server.Port)))
	if err != nil {
		return fmt.Errorf("APP_PORT: %w", err)
	}
	c.Server.Environment = getEnvOrDefault("APP_ENV", c.Server.Environment)
	c.Server.RateLimit, err = strconv.Atoi(getEnvOrDefault("RATE_LIMIT_PER_MINUTE", strconv.Itoa(c.Server.RateLimit)))
	if err != nil {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE: %w", err)
	}

	if v, ok := os.LookupEnv("REQUIRE_TLS"); ok {
		c.Server.RequireTLS = v == "true"
	}

	if v, ok := os.LookupEnv("OTEL_ENABLED"); ok {
		c.Telemetry.Enabled = v == "true"
	}
	c.Telemetry.OTLPEndpoint = getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", c.Telemetry.OTLPEndpoint)
	c.Telemetry.SampleRatio, err = strconv.ParseFloat(getEnvOrDefault("OTEL_TRACES_SAMPLER_ARG",
		strconv.FormatFloat(c.Telemetry.SampleRatio, 'f', -1, 64)), 64)
	if err != nil {
		return fmt.Errorf("OTEL_TRACES_SAMPLER_ARG: %w", err)
	}

	c.Jorudan.SuggestURL = getEnvOrDefault("JORUDAN_SUGGEST_URL", c.Jorudan.SuggestURL)
	c.Jorudan.RouteSearchURL = getEnvOrDefault("JORUDAN_ROUTE_SEARCH_URL", c.Jorudan.RouteSearchURL)
	c.Jorudan.Timeout, err = time.ParseDuration(getEnvOrDefault("JORUDAN_TIMEOUT", c.Jorudan.Timeout.String()))
	if err != nil {
		return fmt.Errorf("JORUDAN_TIMEOUT: %w", err)
	}

	c.Search.DefaultMaxTokens, err = strconv.Atoi(getEnvOrDefault("DEFAULT_MAX_TOKENS", strconv.Itoa(c.Search.DefaultMaxTokens)))
	if err != nil {
		return fmt.Errorf("DEFAULT_MAX_TOKENS: %w", err)
	}
	c.Search.Tokenizer = getEnvOrDefault("TOKENIZER", c.Search.Tokenizer)

	c.Auth.JWTSigningKey = getEnvOrDefault("JWT_SIGNING_KEY", c.Auth.JWTSigningKey)

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
