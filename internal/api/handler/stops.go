package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvbroute/dvbroute/internal/api/models"
	"github.com/dvbroute/dvbroute/internal/api/response"
	"github.com/dvbroute/dvbroute/internal/transit"
)

// StopFinder looks up ranked stop candidates.
type StopFinder interface {
	FindStops(ctx context.Context, query string) ([]transit.StopLocation, error)
}

// StopsHandler handles stop lookups.
type StopsHandler struct {
	finder StopFinder
	log    zerolog.Logger
}

// NewStopsHandler creates a new StopsHandler.
func NewStopsHandler(finder StopFinder, log zerolog.Logger) *StopsHandler {
	return &StopsHandler{finder: finder, log: log}
}

// FindStops handles GET /v1/stops?q= - ranked stop candidates, best first.
func (h *StopsHandler) FindStops(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		response.BadRequest(w, r, "query parameter q is required", []models.FieldError{
			{Field: "q", Message: "required", Code: "REQUIRED"},
		})
		return
	}

	stops, err := h.finder.FindStops(r.Context(), q)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	response.JSON(w, r, http.StatusOK, models.NewStopsResponse(q, stops))
}
