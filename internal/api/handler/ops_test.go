package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvbroute/dvbroute/internal/api/models"
	"github.com/dvbroute/dvbroute/internal/provider/resilience"
)

func TestCircuitHealth(t *testing.T) {
	assert.Equal(t, models.HealthStatusOK, circuitHealth(gobreaker.StateClosed))
	assert.Equal(t, models.HealthStatusDegraded, circuitHealth(gobreaker.StateHalfOpen))
	assert.Equal(t, models.HealthStatusFail, circuitHealth(gobreaker.StateOpen))
}

func TestWorst(t *testing.T) {
	assert.Equal(t, models.HealthStatusOK, worst(models.HealthStatusOK, models.HealthStatusOK))
	assert.Equal(t, models.HealthStatusDegraded, worst(models.HealthStatusOK, models.HealthStatusDegraded))
	assert.Equal(t, models.HealthStatusFail, worst(models.HealthStatusFail, models.HealthStatusDegraded))
}

func TestProviderStatus(t *testing.T) {
	failedAt := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

	ps := providerStatus(&resilience.ProviderHealth{
		Name:          "vvo",
		CircuitState:  gobreaker.StateHalfOpen,
		Counts:        gobreaker.Counts{ConsecutiveFailures: 4},
		Successes:     10,
		Failures:      5,
		LastFailureAt: &failedAt,
		LastError:     "server error: Bad Gateway",
	})

	assert.Equal(t, "vvo", ps.Provider)
	assert.Equal(t, models.HealthStatusDegraded, ps.Status)
	assert.Equal(t, "half-open", ps.CircuitState)
	assert.Equal(t, uint32(4), ps.ConsecutiveFailures)
	assert.Equal(t, uint64(10), ps.Successes)
	assert.Equal(t, uint64(5), ps.Failures)
	assert.Nil(t, ps.LastSuccessAt)
	require.NotNil(t, ps.LastFailureAt)
	assert.Equal(t, failedAt, time.Time(*ps.LastFailureAt))
	require.NotNil(t, ps.Message)
	assert.Equal(t, "server error: Bad Gateway", *ps.Message)
}

func TestInvalidateStopCache_NotConfigured(t *testing.T) {
	h := NewOpsHandler(OpsHandlerConfig{})

	rec := httptest.NewRecorder()
	h.InvalidateStopCache(rec, httptest.NewRequest(http.MethodDelete, "/v1/ops/cache/stops", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}
