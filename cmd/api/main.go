// Package main provides the entrypoint for the norikae API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/norikae/norikae/internal/api"
	"github.com/norikae/norikae/internal/api/middleware"
	"github.com/norikae/norikae/internal/app"
	"github.com/norikae/norikae/internal/auth"
	"github.com/norikae/norikae/internal/config"
	"github.com/norikae/norikae/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const (
	serviceName = "norikae-api"

	readTimeout     = 15 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.Error().Err(err).Msg("server exited")
		stop()
		os.Exit(1) //nolint:gocritic // stop already ran
	}
	log.Info().Msg("server stopped")
}

// run serves until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, log zerolog.Logger) error {
	log.Info().Str("build_time", BuildTime).Msg("starting norikae API")

	cfg, err := config.Load(os.Getenv("NORIKAE_CONFIG"))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Server.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(flushCtx); err != nil {
			log.Error().Err(err).Msg("failed to flush telemetry")
		}
	}()
	if tp.Enabled() {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Float64("sample_ratio", cfg.Telemetry.SampleRatio).
			Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		return fmt.Errorf("creating HTTP metrics: %w", err)
	}
	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		return fmt.Errorf("creating provider metrics: %w", err)
	}

	components := app.Build(cfg, app.Options{Logger: log, Metrics: providerMetrics})
	log.Info().
		Str("suggest_url", cfg.Jorudan.SuggestURL).
		Str("route_search_url", cfg.Jorudan.RouteSearchURL).
		Str("tokenizer", cfg.Search.Tokenizer).
		Msg("search service initialized")

	var jwtService *auth.JWTService
	if cfg.Auth.JWTSigningKey != "" {
		jwtService = auth.NewJWTService(auth.JWTConfig{SigningKey: cfg.Auth.JWTSigningKey})
		log.Info().Msg("bearer auth enabled")
	} else {
		log.Warn().Msg("JWT signing key not configured, search endpoints are public")
	}

	server := &http.Server{
		Addr: ":" + strconv.Itoa(cfg.Server.Port),
		Handler: api.NewRouter(api.RouterConfig{
			Version:          Version,
			BuildTime:        BuildTime,
			Logger:           log,
			ServiceName:      serviceName,
			Metrics:          httpMetrics,
			Searcher:         components.Search,
			Registry:         components.Registry,
			DefaultMaxTokens: cfg.Search.DefaultMaxTokens,
			SearchRateLimit:  middleware.PerMinute(cfg.Server.RateLimit),
			JWTService:       jwtService,
			RequireTLS:       cfg.Server.RequireTLS,
		}),
		ReadTimeout: readTimeout,
		// A search may take the whole upstream timeout before rendering.
		WriteTimeout: cfg.Jorudan.Timeout + readTimeout,
		IdleTimeout:  idleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("draining connections: %w", err)
	}
	return nil
}
