// Package api provides the HTTP API for norikae.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/norikae/norikae/internal/api/handler"
	"github.com/norikae/norikae/internal/api/middleware"
	"github.com/norikae/norikae/internal/api/response"
	"github.com/norikae/norikae/internal/auth"
	"github.com/norikae/norikae/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// Searcher answers the search endpoints (required).
	Searcher handler.Searcher

	// Registry reports upstream health on the ops endpoints.
	Registry *resilience.Registry

	// DefaultMaxTokens applies when a search request sets no budget.
	DefaultMaxTokens int

	// SearchRateLimit limits the search endpoints per client.
	// A zero limit disables rate limiting.
	SearchRateLimit middleware.RateLimitConfig

	// JWTService, when set, guards the search endpoints and /v1/ops/status
	// with bearer tokens.
	JWTService *auth.JWTService

	// RequireTLS rejects plain-HTTP requests behind a proxy.
	RequireTLS bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "norikae-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))         // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))       // Panic recovery
	r.Use(chimiddleware.RealIP)                  // Real IP extraction
	r.Use(middleware.SecurityHeaders)            // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS)) // TLS enforcement behind a proxy
	r.Use(middleware.ContentTypeJSON)            // JSON unless a handler writes text

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Problem(w, r, http.StatusNotFound, "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Problem(w, r, http.StatusMethodNotAllowed, r.Method+" is not supported on "+r.URL.Path)
	})

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry)
	searchHandler := handler.NewSearchHandler(cfg.Searcher, cfg.DefaultMaxTokens, cfg.Logger)

	// Pass-through unless a signing key is configured
	authMiddleware := func(next http.Handler) http.Handler { return next }
	if cfg.JWTService != nil {
		authMiddleware = middleware.Auth(cfg.JWTService)
	}

	searchRateLimit := func(next http.Handler) http.Handler { return next }
	if cfg.SearchRateLimit.Enabled() {
		searchRateLimit = middleware.RateLimitByClient(cfg.SearchRateLimit)
	}

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Search endpoints - one upstream request each, client rate limiting
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(searchRateLimit)
			r.Get("/places", searchHandler.FindPlaces)
			r.With(middleware.RequireJSON).Post("/routes:search", searchHandler.SearchRoutes)
		})
	})

	return r
}
