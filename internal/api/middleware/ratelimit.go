package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitConfig is a fixed request budget per window.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

// PerMinute returns a one-minute window allowing n requests.
func PerMinute(n int) RateLimitConfig {
	return RateLimitConfig{RequestLimit: n, WindowLength: time.Minute}
}

// Enabled reports whether the config limits anything.
func (c RateLimitConfig) Enabled() bool {
	return c.RequestLimit > 0 && c.WindowLength > 0
}

// RateLimitByClient limits requests per authenticated client, or per real
// IP for anonymous requests. It must run after Auth to see the client ID.
// Every search request costs one upstream fetch, so the budget protects
// Jorudan as much as the API.
func RateLimitByClient(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(clientOrIPKey),
		httprate.WithLimitHandler(rateLimitExceeded(cfg.WindowLength)),
	)
}

func clientOrIPKey(r *http.Request) (string, error) {
	if clientID := GetClientID(r.Context()); clientID != "" {
		return "client:" + clientID, nil
	}
	return httprate.KeyByRealIP(r)
}

// rateLimitExceeded answers with a 429 problem. httprate does not expose
// the reset time, so Retry-After is the full window.
func rateLimitExceeded(window time.Duration) http.HandlerFunc {
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", retryAfter)
		writeProblem(w, r, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	}
}
