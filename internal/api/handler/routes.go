package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvbroute/dvbroute/internal/api/models"
	"github.com/dvbroute/dvbroute/internal/api/response"
	"github.com/dvbroute/dvbroute/internal/transit"
)

// Planner resolves two stop queries and returns the simplified route.
type Planner interface {
	Plan(ctx context.Context, req transit.PlanRequest) (*transit.SimpleRoute, error)
}

// RouteHandler handles route planning.
type RouteHandler struct {
	planner Planner
	log     zerolog.Logger
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(planner Planner, log zerolog.Logger) *RouteHandler {
	return &RouteHandler{planner: planner, log: log}
}

// PlanRoute handles GET /v1/routes?from=&to=&at=&arrival= - trip options with
// transfer legs removed.
func (h *RouteHandler) PlanRoute(w http.ResponseWriter, r *http.Request) {
	req, fieldErrs := parsePlanRequest(r)
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid route query", fieldErrs)
		return
	}

	route, err := h.planner.Plan(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	response.JSON(w, r, http.StatusOK, route)
}

func parsePlanRequest(r *http.Request) (transit.PlanRequest, []models.FieldError) {
	q := r.URL.Query()
	var errs []models.FieldError

	req := transit.PlanRequest{
		Origin:      strings.TrimSpace(q.Get("from")),
		Destination: strings.TrimSpace(q.Get("to")),
	}
	if req.Origin == "" {
		errs = append(errs, models.FieldError{Field: "from", Message: "required", Code: "REQUIRED"})
	}
	if req.Destination == "" {
		errs = append(errs, models.FieldError{Field: "to", Message: "required", Code: "REQUIRED"})
	}

	if at := q.Get("at"); at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			errs = append(errs, models.FieldError{Field: "at", Message: "must be an RFC 3339 timestamp", Code: "INVALID_FORMAT"})
		}
		req.Time = t
	}

	if arrival := q.Get("arrival"); arrival != "" {
		b, err := strconv.ParseBool(arrival)
		if err != nil {
			errs = append(errs, models.FieldError{Field: "arrival", Message: "must be a boolean", Code: "INVALID_FORMAT"})
		}
		req.IsArrivalTime = b
	}

	return req, errs
}
