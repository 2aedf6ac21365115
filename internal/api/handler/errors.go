package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvbroute/dvbroute/internal/api/middleware"
	"github.com/dvbroute/dvbroute/internal/api/response"
	"github.com/dvbroute/dvbroute/internal/provider/resilience"
	"github.com/dvbroute/dvbroute/internal/transit"
)

// circuitRetryAfter is the Retry-After hint, in seconds, while the upstream
// circuit is open.
const circuitRetryAfter = 30

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, transit.ErrInvalidQuery):
		response.BadRequest(w, r, err.Error(), nil)

	case errors.Is(err, transit.ErrStopNotFound):
		response.StopNotFound(w, r, err.Error())

	case errors.Is(err, resilience.ErrCircuitOpen):
		response.ServiceUnavailable(w, r, "the trip planner is temporarily unavailable", circuitRetryAfter)

	case errors.Is(err, transit.ErrProviderUnavailable), errors.Is(err, context.DeadlineExceeded):
		detail := "the trip planner could not be reached"
		var terr *transit.Error
		if errors.As(err, &terr) {
			detail = terr.Message
		}
		log.Warn().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("upstream request failed")
		response.ServiceUnavailable(w, r, detail, 0)

	default:
		log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("request failed")
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
