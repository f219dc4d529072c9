package resilience_test

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norikae/norikae/internal/provider/resilience"
)

// upstream answers with the statuses in order, repeating the last one.
func upstream(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(calls.Add(1))
		w.WriteHeader(statuses[min(n, len(statuses))-1])
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func fastConfig(name string, retries uint64) resilience.ClientConfig {
	cfg := resilience.DefaultClientConfig(name)
	cfg.Timeout = time.Second
	cfg.Retry = resilience.RetryConfig{
		Max:             retries,
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     20 * time.Millisecond,
	}
	cfg.Breaker.Trip = resilience.TripOnFailureRatio(100, 0.5)
	return cfg
}

func get(t *testing.T, ctx context.Context, client *resilience.Client, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	require.NoError(t, err)
	resp, err := client.Do(req)
	if resp != nil {
		t.Cleanup(func() { resp.Body.Close() })
	}
	return resp, err
}

func TestClient_Do(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		retries    uint64
		wantStatus int
		wantCalls  int32
	}{
		{"success", []int{http.StatusOK}, 3, http.StatusOK, 1},
		{"retries 5xx until success", []int{503, 503, 200}, 5, http.StatusOK, 3},
		{"4xx not retried", []int{http.StatusBadRequest}, 3, http.StatusBadRequest, 1},
		{"zero retries sends once", []int{http.StatusBadGateway}, 0, http.StatusBadGateway, 1},
		{"exhausted retries return last 5xx", []int{http.StatusInternalServerError}, 2, http.StatusInternalServerError, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, calls := upstream(t, tt.statuses...)
			client := resilience.NewClient(fastConfig("test", tt.retries))

			resp, err := get(t, context.Background(), client, server.URL)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestClient_BreakerOpens(t *testing.T) {
	server, calls := upstream(t, http.StatusInternalServerError)

	cfg := fastConfig("test-trip", 0)
	cfg.Breaker = resilience.BreakerConfig{
		OpenTimeout: time.Minute,
		Trip:        resilience.TripOnConsecutiveFailures(3),
	}
	client := resilience.NewClient(cfg)

	for range 3 {
		_, _ = get(t, context.Background(), client, server.URL)
	}
	require.Equal(t, gobreaker.StateOpen, client.State())

	resp, err := get(t, context.Background(), client, server.URL)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(3), calls.Load(), "open breaker must not reach the upstream")
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := fastConfig("test-timeout", 0)
	cfg.Timeout = 50 * time.Millisecond
	client := resilience.NewClient(cfg)

	_, err := get(t, context.Background(), client, server.URL)
	assert.Error(t, err)
}

func TestClient_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := get(t, ctx, resilience.NewClient(fastConfig("test-cancel", 3)), server.URL)
	assert.Error(t, err)
}

func TestClient_KeepsCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("session"); err != nil {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	cfg := fastConfig("test-jar", 0)
	cfg.Jar = jar
	client := resilience.NewClient(cfg)

	for _, want := range []int{http.StatusOK, http.StatusNoContent} {
		resp, err := get(t, context.Background(), client, server.URL)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode)
	}
}

func TestDefaultClientConfig(t *testing.T) {
	cfg := resilience.DefaultClientConfig("jorudan")

	assert.Equal(t, "jorudan", cfg.Name)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, uint64(3), cfg.Retry.Max)
	assert.NotNil(t, cfg.Breaker.Trip)
	assert.Nil(t, cfg.Registry)
}

func TestStatusError(t *testing.T) {
	err := &resilience.StatusError{StatusCode: http.StatusForbidden}
	assert.Equal(t, "upstream returned 403 Forbidden", err.Error())
}
