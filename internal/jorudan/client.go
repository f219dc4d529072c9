// Package jorudan fetches place suggestions and route search pages from
// Jorudan's public transit search.
package jorudan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"

	"github.com/norikae/norikae/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider in health reports.
	ProviderName = "jorudan"

	// DefaultSuggestURL is the place suggestion endpoint.
	DefaultSuggestURL = "https://navi.jorudan.co.jp/api/compat/suggest/agg"

	// DefaultRouteSearchURL is the route search results page.
	DefaultRouteSearchURL = "https://www.jorudan.co.jp/norikae/cgi/nori.cgi"

	defaultUserAgent = "norikae/1.0"

	// maxBodyBytes bounds a results page read.
	maxBodyBytes = 8 << 20
)

// ClientConfig holds configuration for the Jorudan client.
type ClientConfig struct {
	// SuggestURL is the suggestion endpoint (optional).
	SuggestURL string

	// RouteSearchURL is the results page endpoint (optional).
	RouteSearchURL string

	// UserAgent is sent with every request (optional).
	UserAgent string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client that sends each request once and
	// keeps cookies between requests.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client talks to Jorudan. It is safe for concurrent use.
type Client struct {
	suggestURL     string
	routeSearchURL string
	userAgent      string
	httpClient     *resilience.Client
	logger         zerolog.Logger
}

// NewClient creates a new Jorudan client.
func NewClient(cfg ClientConfig) *Client {
	suggestURL := cfg.SuggestURL
	if suggestURL == "" {
		suggestURL = DefaultSuggestURL
	}

	routeSearchURL := cfg.RouteSearchURL
	if routeSearchURL == "" {
		routeSearchURL = DefaultRouteSearchURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(DefaultHTTPConfig(nil))
	}

	return &Client{
		suggestURL:     suggestURL,
		routeSearchURL: routeSearchURL,
		userAgent:      userAgent,
		httpClient:     httpClient,
		logger:         cfg.Logger,
	}
}

// DefaultHTTPConfig returns the resilient client settings used for Jorudan:
// no retries, a cookie jar, and registration with registry when non-nil.
func DefaultHTTPConfig(registry *resilience.Registry) resilience.ClientConfig {
	cfg := resilience.DefaultClientConfig(ProviderName)
	cfg.Retry.Max = 0
	cfg.Registry = registry
	// cookiejar.New only fails for a non-nil PublicSuffixList error.
	cfg.Jar, _ = cookiejar.New(nil)
	return cfg
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Suggest looks up stations, bus stops and spots matching q.Query.
func (c *Client) Suggest(ctx context.Context, q SuggestQuery) (*SuggestResponse, error) {
	if strings.TrimSpace(q.Query) == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidQuery)
	}

	resp, err := c.get(ctx, c.suggestURL+"?"+q.Values().Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var suggestions SuggestResponse
	if err := json.NewDecoder(resp.Body).Decode(&suggestions); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	c.logger.Debug().
		Str("query", q.Query).
		Int("railway", len(suggestions.Railway)).
		Int("bus", len(suggestions.Bus)).
		Int("spots", len(suggestions.Spots)).
		Msg("fetched place suggestions")

	return &suggestions, nil
}

// SearchRoutes fetches the results page for q.
func (c *Client) SearchRoutes(ctx context.Context, q RouteSearchQuery) (*RouteDocument, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, c.routeSearchURL+"?"+q.Values().Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	doc := &RouteDocument{
		FinalURL: resp.Request.URL,
		Body:     string(body),
	}

	c.logger.Debug().
		Str("from", q.From).
		Str("to", q.To).
		Str("url", doc.FinalURL.String()).
		Int("bytes", len(body)).
		Msg("fetched route search page")

	return doc, nil
}

// get issues a GET and returns the response only for status 200.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "ja")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return resp, nil
}
