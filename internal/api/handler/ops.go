// Package handler provides HTTP handlers for the norikae API.
package handler

import (
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/norikae/norikae/internal/api/models"
	"github.com/norikae/norikae/internal/api/response"
	"github.com/norikae/norikae/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	now       func() time.Time
}

// NewOpsHandler creates a new OpsHandler. A nil registry reports no providers.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry) *OpsHandler {
	if registry == nil {
		registry = resilience.NewRegistry()
	}
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		now:       time.Now,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
		Details: map[string]string{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - not ready while any upstream
// circuit is open.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := healthStatus(h.registry.Overall())

	code := http.StatusOK
	if status == models.HealthStatusFail {
		code = http.StatusServiceUnavailable
	}

	response.JSON(w, r, code, models.Health{
		Status: status,
		Time:   models.Timestamp(h.now()),
	})
}

// SystemStatus handles GET /v1/ops/status - upstream provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	providers := lo.Map(h.registry.Snapshot(), func(p resilience.Health, _ int) models.ProviderStatus {
		return providerStatus(p)
	})

	response.JSON(w, r, http.StatusOK, models.SystemStatus{
		Status:    healthStatus(h.registry.Overall()),
		Time:      models.Timestamp(h.now()),
		Providers: providers,
	})
}

func providerStatus(p resilience.Health) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:      p.Name,
		Status:        healthStatus(p.Status()),
		CircuitState:  p.State.String(),
		Requests:      p.Counts.Requests,
		Failures:      p.Counts.ConsecutiveFailures,
		LastSuccessAt: models.TimestampPtr(p.LastSuccessAt),
		LastFailureAt: models.TimestampPtr(p.LastFailureAt),
	}
	if p.LastError != "" {
		ps.Message = lo.ToPtr(p.LastError)
	}
	return ps
}

func healthStatus(s resilience.Status) models.HealthStatus {
	switch s {
	case resilience.StatusUnhealthy:
		return models.HealthStatusFail
	case resilience.StatusDegraded:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}
