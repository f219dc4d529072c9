// Package search answers place and route queries against Jorudan and
// returns text ready for a language model.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/norikae/norikae/internal/jorudan"
	"github.com/norikae/norikae/internal/route"
	"github.com/norikae/norikae/internal/route/parser"
	"github.com/norikae/norikae/internal/route/render"
	"github.com/norikae/norikae/internal/telemetry"
	"github.com/norikae/norikae/internal/tokenizer"
)

const tracerName = "github.com/norikae/norikae/internal/search"

// DatetimeLayout is the query datetime format.
const DatetimeLayout = "2006-01-02 15:04:05"

var datetimeLayouts = []string{DatetimeLayout, "2006-01-02 15:04", "2006-01-02T15:04:05", "2006-01-02T15:04"}

// Tokyo is Japan Standard Time. Japan observes no daylight saving time.
var Tokyo = time.FixedZone("JST", 9*60*60)

// ErrInvalidDatetime is returned for a datetime in neither accepted layout.
var ErrInvalidDatetime = errors.New("invalid datetime")

// Provider fetches suggestions and results pages.
type Provider interface {
	Suggest(ctx context.Context, q jorudan.SuggestQuery) (*jorudan.SuggestResponse, error)
	SearchRoutes(ctx context.Context, q jorudan.RouteSearchQuery) (*jorudan.RouteDocument, error)
	Name() string
}

// PlaceQuery asks for places matching a partial name.
type PlaceQuery struct {
	Query     string
	MaxTokens int
	OnlyName  bool
}

// RouteQuery asks for routes between two places.
type RouteQuery struct {
	From string
	To   string
	Mode jorudan.SearchMode

	// Datetime is "YYYY-MM-DD HH:MM[:SS]" in Japan time. Empty means now.
	Datetime string

	// MaxTokens caps the rendered output. Zero means no cap.
	MaxTokens int
}

// ServiceConfig holds configuration for the search service.
type ServiceConfig struct {
	// Provider is the upstream (required).
	Provider Provider

	// Counter measures output against token budgets.
	// Default: tokenizer.RuneCounter.
	Counter tokenizer.Counter

	// Metrics records provider calls (optional).
	Metrics *telemetry.ProviderMetrics

	// Logger for service operations.
	Logger zerolog.Logger

	// Now is the clock (default: time.Now).
	Now func() time.Time
}

// Service answers place and route queries. It is safe for concurrent use.
type Service struct {
	provider  Provider
	parser    *parser.Parser
	truncator render.Truncator
	counter   tokenizer.Counter
	metrics   *telemetry.ProviderMetrics
	logger    zerolog.Logger
	now       func() time.Time
	tracer    trace.Tracer
}

// NewService creates a new search service.
func NewService(cfg ServiceConfig) *Service {
	counter := cfg.Counter
	if counter == nil {
		counter = tokenizer.RuneCounter{}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		provider:  cfg.Provider,
		parser:    parser.New(parser.Config{Logger: cfg.Logger, Now: now}),
		truncator: render.Truncator{Counter: counter},
		counter:   counter,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		now:       now,
		tracer:    telemetry.Tracer(tracerName),
	}
}

// FindPlaces returns matching stations, bus stops and spots as one
// comma-separated line.
func (s *Service) FindPlaces(ctx context.Context, q PlaceQuery) (string, error) {
	ctx, span := s.tracer.Start(ctx, "search.FindPlaces", trace.WithAttributes(
		attribute.String("place.query", q.Query),
		attribute.Int("max_tokens", q.MaxTokens),
	))
	defer span.End()

	start := time.Now()
	resp, err := s.provider.Suggest(ctx, jorudan.SuggestQuery{Query: q.Query})
	s.recordRequest("suggest", start, err)
	if err != nil {
		return "", s.fail(span, fmt.Errorf("fetching suggestions: %w", err))
	}

	places := Interleave(resp)
	descriptions := lo.Map(places, func(p jorudan.Place, _ int) string {
		return DescribePlace(p, q.OnlyName)
	})

	span.SetAttributes(attribute.Int("place.count", len(places)))

	return JoinWithinBudget(descriptions, s.counter, q.MaxTokens), nil
}

// FindRoutes searches routes and renders them, truncated to q.MaxTokens.
func (s *Service) FindRoutes(ctx context.Context, q RouteQuery) (string, error) {
	ctx, span := s.tracer.Start(ctx, "search.FindRoutes", trace.WithAttributes(
		attribute.String("route.from", q.From),
		attribute.String("route.to", q.To),
		attribute.String("route.mode", q.Mode.String()),
		attribute.Int("max_tokens", q.MaxTokens),
	))
	defer span.End()

	at, datetime, err := s.resolveDatetime(q.Datetime)
	if err != nil {
		return "", s.fail(span, err)
	}

	start := time.Now()
	doc, err := s.provider.SearchRoutes(ctx, jorudan.NewRouteSearchQuery(q.From, q.To, q.Mode, at))
	s.recordRequest("search_routes", start, err)
	if err != nil {
		return "", s.fail(span, fmt.Errorf("fetching routes: %w", err))
	}

	result, err := s.parser.Parse(doc.Body)
	if err != nil {
		return "", s.fail(span, fmt.Errorf("parsing routes: %w", err))
	}

	if s.metrics != nil {
		s.metrics.RecordExtraction(s.provider.Name(), len(result.Routes), len(result.Skipped))
	}
	span.SetAttributes(
		attribute.Int("route.count", len(result.Routes)),
		attribute.Int("route.skipped", len(result.Skipped)),
	)

	params := render.Params{
		SourceURL:     doc.FinalURL.String(),
		Origin:        q.From,
		Destination:   q.To,
		QueryDatetime: datetime,
	}
	text := s.truncator.Truncate(&result.SearchResult, func(r *route.SearchResult) string {
		return render.Render(r, params)
	}, q.MaxTokens)

	s.logger.Info().
		Str("from", q.From).
		Str("to", q.To).
		Str("mode", q.Mode.String()).
		Int("routes", len(result.Routes)).
		Int("skipped", len(result.Skipped)).
		Msg("route search completed")

	return text, nil
}

// resolveDatetime parses raw in Japan time, or takes the current Japan time
// when raw is empty. It returns the echoed datetime string as well.
func (s *Service) resolveDatetime(raw string) (time.Time, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		now := s.now().In(Tokyo)
		return now, now.Format(DatetimeLayout), nil
	}

	for _, layout := range datetimeLayouts {
		if at, err := time.ParseInLocation(layout, raw, Tokyo); err == nil {
			return at, raw, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("%w: %q (want YYYY-MM-DD HH:MM:SS)", ErrInvalidDatetime, raw)
}

func (s *Service) recordRequest(operation string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.RecordRequest(s.provider.Name(), operation, time.Since(start), err)
	}
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// RouteErrorText formats a FindRoutes failure as the single-line payload
// returned to callers.
func RouteErrorText(err error) string {
	return "Route search error: " + err.Error()
}

// PlaceErrorText formats a FindPlaces failure as the single-line payload
// returned to callers.
func PlaceErrorText(err error) string {
	return "Place search error: " + err.Error()
}
