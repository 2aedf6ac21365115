// Package handler provides HTTP handlers for the dvbroute API.
package handler

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/dvbroute/dvbroute/internal/api/models"
	"github.com/dvbroute/dvbroute/internal/api/response"
	"github.com/dvbroute/dvbroute/internal/provider/resilience"
	"github.com/dvbroute/dvbroute/internal/transit"
)

// StopCache reports and clears the stop lookup cache.
type StopCache interface {
	CacheStats() transit.CacheStats
	InvalidateCache()
}

// OpsHandlerConfig holds configuration for the ops handler.
type OpsHandlerConfig struct {
	Version   string
	BuildTime string

	// Registry supplies upstream provider health (optional).
	Registry *resilience.Registry

	// Cache supplies stop cache statistics and invalidation (optional).
	Cache StopCache

	// Now overrides the clock (optional).
	Now func() time.Time
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	cache     StopCache
	now       func() time.Time
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsHandlerConfig) *OpsHandler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		registry:  cfg.Registry,
		cache:     cfg.Cache,
		now:       now,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. The service is not ready while
// any upstream circuit is open, since every plan would fail.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
	}

	status := http.StatusOK
	if h.registry != nil {
		health.Details = map[string]interface{}{"providers": h.registry.Names()}
		if open := h.registry.OpenCircuits(); len(open) > 0 {
			health.Status = models.HealthStatusFail
			health.Details["openCircuits"] = open
			status = http.StatusServiceUnavailable
		}
	}

	response.JSON(w, r, status, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(h.now()),
		Subsystems: []models.SubsystemStatus{},
		Providers:  []models.ProviderStatus{},
	}

	if h.cache != nil {
		status.Subsystems = append(status.Subsystems, cacheSubsystem(h.cache.CacheStats()))
	}

	if h.registry != nil {
		for _, ph := range h.registry.Snapshot() {
			ps := providerStatus(ph)
			status.Providers = append(status.Providers, ps)
			status.Status = worst(status.Status, ps.Status)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

// InvalidateStopCache handles DELETE /v1/ops/cache/stops. It drops every
// cached stop lookup and reports how many entries were cleared.
func (h *OpsHandler) InvalidateStopCache(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		response.NotFound(w, r, "stop cache is not configured")
		return
	}

	cleared := h.cache.CacheStats().StopEntries
	h.cache.InvalidateCache()

	sub := cacheSubsystem(h.cache.CacheStats())
	sub.Details["cleared"] = cleared
	response.JSON(w, r, http.StatusOK, sub)
}

func cacheSubsystem(stats transit.CacheStats) models.SubsystemStatus {
	return models.SubsystemStatus{
		Name:   "stop-cache",
		Status: models.HealthStatusOK,
		Details: map[string]interface{}{
			"provider": stats.Provider,
			"enabled":  stats.Enabled,
			"entries":  stats.StopEntries,
		},
	}
}

func providerStatus(ph *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:            ph.Name,
		Status:              circuitHealth(ph.CircuitState),
		CircuitState:        ph.CircuitState.String(),
		ConsecutiveFailures: ph.Counts.ConsecutiveFailures,
		Successes:           ph.Successes,
		Failures:            ph.Failures,
	}
	if ph.LastSuccessAt != nil {
		ts := models.Timestamp(*ph.LastSuccessAt)
		ps.LastSuccessAt = &ts
	}
	if ph.LastFailureAt != nil {
		ts := models.Timestamp(*ph.LastFailureAt)
		ps.LastFailureAt = &ts
	}
	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}
	return ps
}

func circuitHealth(state gobreaker.State) models.HealthStatus {
	switch state {
	case gobreaker.StateOpen:
		return models.HealthStatusFail
	case gobreaker.StateHalfOpen:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}

var severity = map[models.HealthStatus]int{
	models.HealthStatusOK:       0,
	models.HealthStatusDegraded: 1,
	models.HealthStatusFail:     2,
}

func worst(a, b models.HealthStatus) models.HealthStatus {
	if severity[b] > severity[a] {
		return b
	}
	return a
}
