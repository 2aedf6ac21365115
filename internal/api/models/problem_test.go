package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvbroute/dvbroute/internal/api/models"
)

func TestNewProblem(t *testing.T) {
	p := models.NewProblem(models.ProblemTypeStopNotFound, "req_test123", "no stop matches \"Nirgendwo\"")

	assert.Equal(t, models.ProblemTypeStopNotFound, p.Type)
	assert.Equal(t, "Stop not found", p.Title)
	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Equal(t, "req_test123", p.TraceID)
	assert.Contains(t, p.Detail, "Nirgendwo")
	assert.Empty(t, p.Instance)
}

func TestNewProblem_UnknownType(t *testing.T) {
	p := models.NewProblem("https://example.com/other", "req_1", "d")

	assert.Equal(t, models.ProblemTypeInternal, p.Type)
	assert.Equal(t, http.StatusInternalServerError, p.Status)
}

func TestProblem_Write(t *testing.T) {
	p := models.NewBadRequest("req_test123", "invalid input", []models.FieldError{
		{Field: "at", Message: "must be RFC 3339"},
	})
	p.Instance = "/v1/routes"

	w := httptest.NewRecorder()
	p.Write(w)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req_test123", w.Header().Get("X-Request-Id"))

	var result models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.Equal(t, models.ProblemTypeValidation, result.Type)
	assert.Equal(t, "invalid input", result.Detail)
	assert.Equal(t, "/v1/routes", result.Instance)
	assert.Equal(t, "req_test123", result.TraceID)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "at", result.Errors[0].Field)
}

func TestProblem_WriteWithoutTraceID(t *testing.T) {
	w := httptest.NewRecorder()
	models.NewInternalError("", "boom").Write(w)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("X-Request-Id"))
}

func TestProblemConstructors(t *testing.T) {
	tests := []struct {
		problem *models.Problem
		typ     string
		title   string
		status  int
	}{
		{models.NewBadRequest("req_1", "d", nil), models.ProblemTypeValidation, "Validation error", http.StatusBadRequest},
		{models.NewNotFound("req_1", "d"), models.ProblemTypeNotFound, "Not found", http.StatusNotFound},
		{models.NewStopNotFound("req_1", "d"), models.ProblemTypeStopNotFound, "Stop not found", http.StatusNotFound},
		{models.NewTooManyRequests("req_1", "d"), models.ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests},
		{models.NewTLSRequired("req_1", "d"), models.ProblemTypeTLSRequired, "TLS required", http.StatusForbidden},
		{models.NewInternalError("req_1", "d"), models.ProblemTypeInternal, "Internal server error", http.StatusInternalServerError},
		{models.NewServiceUnavailable("req_1", "d"), models.ProblemTypeUnavailable, "Upstream unavailable", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.problem.Type)
			assert.Equal(t, tt.title, tt.problem.Title)
			assert.Equal(t, tt.status, tt.problem.Status)
			assert.Equal(t, "d", tt.problem.Detail)
			assert.Equal(t, "req_1", tt.problem.TraceID)
		})
	}
}
