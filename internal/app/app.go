// Package app wires configuration into the search service shared by the
// API server and the CLI.
package app

import (
	"github.com/rs/zerolog"

	"github.com/norikae/norikae/internal/config"
	"github.com/norikae/norikae/internal/jorudan"
	"github.com/norikae/norikae/internal/provider/resilience"
	"github.com/norikae/norikae/internal/search"
	"github.com/norikae/norikae/internal/telemetry"
	"github.com/norikae/norikae/internal/tokenizer"
)

// Components are the long-lived objects built from a Config.
type Components struct {
	Search   *search.Service
	Jorudan  *jorudan.Client
	Registry *resilience.Registry
	Counter  tokenizer.Counter
}

// Options holds the optional collaborators of Build.
type Options struct {
	Logger  zerolog.Logger
	Metrics *telemetry.ProviderMetrics
}

// Build creates the Jorudan client, its resilient HTTP client and the search
// service. The HTTP client is registered under jorudan.ProviderName.
func Build(cfg config.Config, opts Options) *Components {
	registry := resilience.NewRegistry()

	httpConfig := jorudan.DefaultHTTPConfig(registry)
	httpConfig.Timeout = cfg.Jorudan.Timeout
	httpConfig.Breaker.OpenTimeout = cfg.Jorudan.BreakerTimeout
	httpConfig.Breaker.OnStateChange = resilience.LogStateChanges(opts.Logger)

	client := jorudan.NewClient(jorudan.ClientConfig{
		SuggestURL:     cfg.Jorudan.SuggestURL,
		RouteSearchURL: cfg.Jorudan.RouteSearchURL,
		UserAgent:      cfg.Jorudan.UserAgent,
		HTTPClient:     resilience.NewClient(httpConfig),
		Logger:         opts.Logger,
	})

	counter := NewCounter(cfg.Search.Tokenizer, opts.Logger)

	return &Components{
		Search: search.NewService(search.ServiceConfig{
			Provider: client,
			Counter:  counter,
			Metrics:  opts.Metrics,
			Logger:   opts.Logger,
		}),
		Jorudan:  client,
		Registry: registry,
		Counter:  counter,
	}
}

// NewCounter returns the named token counter. The tiktoken encoder falls
// back to counting runes when it cannot be loaded.
func NewCounter(name string, logger zerolog.Logger) tokenizer.Counter {
	if name == "rune" {
		return tokenizer.RuneCounter{}
	}

	enc, err := tokenizer.NewTiktoken()
	if err != nil {
		logger.Warn().Err(err).Msg("tiktoken unavailable, counting runes instead")
		return tokenizer.RuneCounter{}
	}
	return enc
}
