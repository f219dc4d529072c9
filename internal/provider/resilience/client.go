package resilience

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned without contacting the upstream while its
// breaker is open or out of half-open probes.
var ErrCircuitOpen = errors.New("circuit breaker is open")

const (
	defaultTimeout         = 10 * time.Second
	defaultRetries         = 3
	defaultInitialInterval = 100 * time.Millisecond
	defaultMaxInterval     = 5 * time.Second
)

// StatusError is an upstream response with an error status code.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// RetryConfig bounds the retries of transient failures: network errors and
// 5xx responses.
type RetryConfig struct {
	// Max is the number of retries after the first attempt. Zero sends each
	// request exactly once.
	Max uint64

	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// ClientConfig holds configuration for a Client.
type ClientConfig struct {
	// Name identifies the upstream in breaker logs and health reports.
	Name string

	// Timeout bounds each attempt.
	Timeout time.Duration

	Retry   RetryConfig
	Breaker BreakerConfig

	// Jar keeps cookies across requests. Optional.
	Jar http.CookieJar

	// Registry receives the outcome of every call. Optional.
	Registry *Registry
}

// DefaultClientConfig returns a config with three retries and the default
// breaker.
func DefaultClientConfig(name string) ClientConfig {
	return ClientConfig{
		Name:    name,
		Timeout: defaultTimeout,
		Retry: RetryConfig{
			Max:             defaultRetries,
			InitialInterval: defaultInitialInterval,
			MaxInterval:     defaultMaxInterval,
		},
		Breaker: DefaultBreakerConfig(),
	}
}

// Client is an HTTP client for one upstream, with a circuit breaker and
// bounded retries. It is safe for concurrent use.
type Client struct {
	name     string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	retry    RetryConfig
	registry *Registry
}

// NewClient creates a Client and adds it to cfg.Registry when one is set.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retry.InitialInterval == 0 {
		cfg.Retry.InitialInterval = defaultInitialInterval
	}
	if cfg.Retry.MaxInterval == 0 {
		cfg.Retry.MaxInterval = defaultMaxInterval
	}

	c := &Client{
		name:     cfg.Name,
		http:     &http.Client{Timeout: cfg.Timeout, Jar: cfg.Jar},
		breaker:  gobreaker.NewCircuitBreaker[*http.Response](cfg.Breaker.settings(cfg.Name)), //nolint:bodyclose // type parameter
		retry:    cfg.Retry,
		registry: cfg.Registry,
	}
	cfg.Registry.add(c)

	return c
}

// Name returns the upstream name.
func (c *Client) Name() string {
	return c.name
}

// State returns the current breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the breaker's counts for the current generation.
func (c *Client) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}

// Do sends req under the breaker, retrying transient failures with
// exponential backoff until the retry budget or req's context runs out.
// A 5xx response that exhausts the retries is returned with a nil error
// for the caller to inspect; 4xx responses are never retried.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	var last *http.Response
	keep := func(resp *http.Response) {
		if last != nil {
			last.Body.Close()
		}
		last = resp
	}

	attempt := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // kept and closed by keep
			return c.send(req.Clone(ctx))
		})
		if resp != nil {
			keep(resp)
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(ErrCircuitOpen)
		}
		return err
	}

	err := backoff.Retry(attempt, backoff.WithContext(c.policy(), ctx))
	c.registry.Observe(c.name, outcome(err, last))

	if last != nil {
		return last, nil
	}
	return nil, err
}

// send counts 5xx responses as failures so they trip the breaker.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return resp, &StatusError{StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func (c *Client) policy() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retry.InitialInterval
	bo.MaxInterval = c.retry.MaxInterval
	bo.MaxElapsedTime = 0
	return backoff.WithMaxRetries(bo, c.retry.Max)
}

// outcome is the error recorded for a finished call; any status of 400 or
// above counts as a failure.
func outcome(err error, resp *http.Response) error {
	if err != nil {
		return err
	}
	if resp != nil && resp.StatusCode >= http.StatusBadRequest {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}
