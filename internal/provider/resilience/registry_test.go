package resilience_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norikae/norikae/internal/provider/resilience"
)

func register(registry *resilience.Registry, name string) *resilience.Client {
	cfg := fastConfig(name, 0)
	cfg.Registry = registry
	return resilience.NewClient(cfg)
}

func TestRegistry_NewClientRegisters(t *testing.T) {
	registry := resilience.NewRegistry()
	register(registry, "jorudan-suggest")
	register(registry, "jorudan-route")

	assert.Equal(t, []string{"jorudan-route", "jorudan-suggest"}, registry.Names())

	h, ok := registry.Health("jorudan-route")
	require.True(t, ok)
	assert.Equal(t, gobreaker.StateClosed, h.State)
	assert.Equal(t, resilience.StatusHealthy, h.Status())
	assert.Nil(t, h.LastSuccessAt)
	assert.Nil(t, h.LastFailureAt)

	_, ok = registry.Health("unknown")
	assert.False(t, ok)
}

func TestRegistry_Observe(t *testing.T) {
	registry := resilience.NewRegistry()
	register(registry, "jorudan")

	registry.Observe("jorudan", nil)
	h, _ := registry.Health("jorudan")
	require.NotNil(t, h.LastSuccessAt)
	assert.Nil(t, h.LastFailureAt)
	assert.Empty(t, h.LastError)

	registry.Observe("jorudan", errors.New("connection refused"))
	h, _ = registry.Health("jorudan")
	require.NotNil(t, h.LastFailureAt)
	assert.NotNil(t, h.LastSuccessAt, "a failure keeps the last success")
	assert.Equal(t, "connection refused", h.LastError)

	assert.NotPanics(t, func() { registry.Observe("unknown", nil) })
}

func TestRegistry_ClientRecordsOutcomes(t *testing.T) {
	server, _ := upstream(t, http.StatusOK, http.StatusNotFound)

	registry := resilience.NewRegistry()
	client := register(registry, "jorudan")

	_, err := get(t, context.Background(), client, server.URL)
	require.NoError(t, err)
	h, _ := registry.Health("jorudan")
	assert.NotNil(t, h.LastSuccessAt)
	assert.Nil(t, h.LastFailureAt)

	_, err = get(t, context.Background(), client, server.URL)
	require.NoError(t, err)
	h, _ = registry.Health("jorudan")
	assert.NotNil(t, h.LastFailureAt)
	assert.Equal(t, "upstream returned 404 Not Found", h.LastError)
	assert.Equal(t, uint32(2), h.Counts.Requests)
}

func TestRegistry_Overall(t *testing.T) {
	server, _ := upstream(t, http.StatusInternalServerError)

	registry := resilience.NewRegistry()
	assert.Equal(t, resilience.StatusHealthy, registry.Overall())

	register(registry, "healthy")

	cfg := fastConfig("failing", 0)
	cfg.Registry = registry
	cfg.Breaker = resilience.BreakerConfig{
		OpenTimeout: time.Minute,
		Trip:        resilience.TripOnConsecutiveFailures(1),
	}
	failing := resilience.NewClient(cfg)
	assert.Equal(t, resilience.StatusHealthy, registry.Overall())

	_, _ = get(t, context.Background(), failing, server.URL)
	assert.Equal(t, resilience.StatusUnhealthy, registry.Overall())

	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "failing", snapshot[0].Name)
	assert.Equal(t, resilience.StatusUnhealthy, snapshot[0].Status())
	assert.Equal(t, resilience.StatusHealthy, snapshot[1].Status())
}

func TestHealth_Status(t *testing.T) {
	tests := []struct {
		state gobreaker.State
		want  resilience.Status
	}{
		{gobreaker.StateClosed, resilience.StatusHealthy},
		{gobreaker.StateHalfOpen, resilience.StatusDegraded},
		{gobreaker.StateOpen, resilience.StatusUnhealthy},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, resilience.Health{State: tt.state}.Status(), tt.state.String())
	}
}

func TestRegistry_Nil(t *testing.T) {
	var registry *resilience.Registry

	assert.NotPanics(t, func() { registry.Observe("jorudan", nil) })
	_, ok := registry.Health("jorudan")
	assert.False(t, ok)
	assert.Empty(t, registry.Snapshot())
	assert.Equal(t, resilience.StatusHealthy, registry.Overall())
}
