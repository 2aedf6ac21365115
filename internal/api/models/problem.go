package models

import (
	"encoding/json"
	"net/http"
)

// Problem represents an RFC7807 error response.
// This is used for all API error responses with Content-Type: application/problem+json.
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`

	// TraceID is the request trace identifier for debugging.
	TraceID string `json:"traceId"`

	// Errors contains structured field validation errors.
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Problem types served by the API.
const (
	ProblemTypeValidation      = "https://dvbroute.dev/problems/validation-error"
	ProblemTypeNotFound        = "https://dvbroute.dev/problems/not-found"
	ProblemTypeStopNotFound    = "https://dvbroute.dev/problems/stop-not-found"
	ProblemTypeTooManyRequests = "https://dvbroute.dev/problems/too-many-requests"
	ProblemTypeTLSRequired     = "https://dvbroute.dev/problems/tls-required"
	ProblemTypeInternal        = "https://dvbroute.dev/problems/internal-error"
	ProblemTypeUnavailable     = "https://dvbroute.dev/problems/upstream-unavailable"
)

type problemKind struct {
	title  string
	status int
}

var problemKinds = map[string]problemKind{
	ProblemTypeValidation:      {"Validation error", http.StatusBadRequest},
	ProblemTypeNotFound:        {"Not found", http.StatusNotFound},
	ProblemTypeStopNotFound:    {"Stop not found", http.StatusNotFound},
	ProblemTypeTooManyRequests: {"Too many requests", http.StatusTooManyRequests},
	ProblemTypeTLSRequired:     {"TLS required", http.StatusForbidden},
	ProblemTypeInternal:        {"Internal server error", http.StatusInternalServerError},
	ProblemTypeUnavailable:     {"Upstream unavailable", http.StatusServiceUnavailable},
}

// NewProblem creates a Problem of a known type. Unknown types become
// internal errors.
func NewProblem(problemType, traceID, detail string) *Problem {
	kind, ok := problemKinds[problemType]
	if !ok {
		problemType = ProblemTypeInternal
		kind = problemKinds[problemType]
	}
	return &Problem{
		Type:    problemType,
		Title:   kind.title,
		Status:  kind.status,
		Detail:  detail,
		TraceID: traceID,
	}
}

// Write writes the Problem as JSON to the ResponseWriter.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest creates a 400 problem carrying per-field errors.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	p := NewProblem(ProblemTypeValidation, traceID, detail)
	p.Errors = errors
	return p
}

func NewNotFound(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeNotFound, traceID, detail)
}

// NewStopNotFound creates a 404 problem for a stop query without candidates.
func NewStopNotFound(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeStopNotFound, traceID, detail)
}

func NewTooManyRequests(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeTooManyRequests, traceID, detail)
}

func NewTLSRequired(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeTLSRequired, traceID, detail)
}

func NewInternalError(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeInternal, traceID, detail)
}

// NewServiceUnavailable creates a 503 problem for an unreachable upstream.
func NewServiceUnavailable(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnavailable, traceID, detail)
}
