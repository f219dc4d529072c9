// Package resilience guards calls to upstream providers with a circuit
// breaker and bounded retries, and keeps a health record per provider.
package resilience

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

const (
	defaultProbes      = 1
	defaultOpenTimeout = 60 * time.Second

	tripMinRequests  = 5
	tripFailureRatio = 0.5
)

// BreakerConfig tunes the circuit breaker of a Client.
type BreakerConfig struct {
	// Probes is the number of requests let through while half-open.
	Probes uint32

	// Window clears the closed-state counts periodically. Zero keeps them
	// until the state changes.
	Window time.Duration

	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration

	// Trip decides when the breaker opens. Nil trips at a 50% failure
	// ratio over at least five requests.
	Trip func(counts gobreaker.Counts) bool

	// OnStateChange is called on every transition.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerConfig returns the breaker settings used for upstream calls.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Probes:      defaultProbes,
		OpenTimeout: defaultOpenTimeout,
		Trip:        TripOnFailureRatio(tripMinRequests, tripFailureRatio),
	}
}

// TripOnFailureRatio opens the breaker once at least minRequests have been
// counted and the share of failures reaches ratio.
func TripOnFailureRatio(minRequests uint32, ratio float64) func(gobreaker.Counts) bool {
	return func(c gobreaker.Counts) bool {
		if c.Requests == 0 || c.Requests < minRequests {
			return false
		}
		return float64(c.TotalFailures)/float64(c.Requests) >= ratio
	}
}

// TripOnConsecutiveFailures opens the breaker after n failures in a row.
func TripOnConsecutiveFailures(n uint32) func(gobreaker.Counts) bool {
	return func(c gobreaker.Counts) bool {
		return c.ConsecutiveFailures >= n
	}
}

// LogStateChanges returns an OnStateChange hook that logs every transition,
// at warn level when the breaker opens.
func LogStateChanges(logger zerolog.Logger) func(name string, from, to gobreaker.State) {
	return func(name string, from, to gobreaker.State) {
		event := logger.Info()
		if to == gobreaker.StateOpen {
			event = logger.Warn()
		}
		event.
			Str("provider", name).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("circuit breaker state changed")
	}
}

func (c BreakerConfig) settings(name string) gobreaker.Settings {
	s := gobreaker.Settings{
		Name:          name,
		MaxRequests:   c.Probes,
		Interval:      c.Window,
		Timeout:       c.OpenTimeout,
		ReadyToTrip:   c.Trip,
		OnStateChange: c.OnStateChange,
	}
	if s.MaxRequests == 0 {
		s.MaxRequests = defaultProbes
	}
	if s.Timeout == 0 {
		s.Timeout = defaultOpenTimeout
	}
	if s.ReadyToTrip == nil {
		s.ReadyToTrip = TripOnFailureRatio(tripMinRequests, tripFailureRatio)
	}
	return s
}
