// Package transit provides stop lookup, route planning and the display-oriented
// simplification of route results.
package transit

import (
	"context"
	"errors"
	"time"
)

// Transit errors.
var (
	// ErrProviderUnavailable indicates the upstream is down or its circuit breaker is open.
	ErrProviderUnavailable = errors.New("transit provider unavailable")
	// ErrStopNotFound indicates a stop query returned no candidates.
	ErrStopNotFound = errors.New("stop not found")
	// ErrInvalidQuery indicates a request is missing a required value.
	ErrInvalidQuery = errors.New("invalid query")
)

// Provider resolves stops and computes routes against an upstream transit service.
type Provider interface {
	// FindStop returns stop candidates for a free-text query, best match first.
	FindStop(ctx context.Context, query string) ([]StopLocation, error)

	// Route computes trip options between two stop IDs. When isArrivalTime is
	// false, when is the desired departure time.
	Route(ctx context.Context, originID, destinationID string, when time.Time, isArrivalTime bool) (*Route, error)

	// Name returns the provider name for logging.
	Name() string
}

// StopLocation is a physical transit stop.
type StopLocation struct {
	// ID is the opaque upstream identifier used for routing queries.
	ID string

	// Name is the stop name (e.g., "Hauptbahnhof").
	Name string

	// City is the municipality the stop belongs to.
	City string

	// Type is the upstream point type ("Stop" for regular stops).
	Type string
}

// Platform is boarding platform metadata for a stop visit.
type Platform struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Mode classifies how a segment is travelled.
type Mode struct {
	// Name is the machine tag (e.g., "Tram", "Footpath").
	Name string

	// Title is the human-readable label.
	Title string
}

// Stop is a visit to a stop at a given time.
type Stop struct {
	StopLocation

	// Platform is nil when the upstream reports none.
	Platform *Platform

	Time time.Time
}

// Node is one leg of a trip.
type Node struct {
	Line      string
	Direction string

	// Duration in minutes.
	Duration int

	Mode      Mode
	Departure Stop
	Arrival   Stop
}

// Trip is one complete itinerary option. Nodes are in travel order.
type Trip struct {
	Departure Stop
	Arrival   Stop

	// Duration in minutes.
	Duration int

	Interchanges int
	Nodes        []Node
}

// Route is a route query result. Trips keep the upstream ranking.
type Route struct {
	Origin      StopLocation
	Destination StopLocation
	Trips       []Trip
}

// SimpleStop is the display form of a Stop.
type SimpleStop struct {
	Stop     string    `json:"stop"`
	Platform *Platform `json:"platform"`
	Time     time.Time `json:"time"`
}

// SimpleNode is the display form of a Node.
type SimpleNode struct {
	Line      string     `json:"line"`
	Direction string     `json:"direction"`
	Duration  int        `json:"duration"`
	Mode      string     `json:"mode"`
	Departure SimpleStop `json:"departure"`
	Arrival   SimpleStop `json:"arrival"`
}

// SimpleTrip is the display form of a Trip.
type SimpleTrip struct {
	Departure    SimpleStop   `json:"departure"`
	Arrival      SimpleStop   `json:"arrival"`
	Duration     int          `json:"duration"`
	Interchanges int          `json:"interchanges"`
	Nodes        []SimpleNode `json:"nodes"`
}

// SimpleRoute is the display form of a Route.
type SimpleRoute struct {
	Origin      string       `json:"origin"`
	Destination string       `json:"destination"`
	Trips       []SimpleTrip `json:"trips"`
}

// PlanRequest describes a single origin/destination query.
type PlanRequest struct {
	// Origin and Destination are free-text stop queries.
	Origin      string
	Destination string

	// Time is the desired departure (or arrival, see IsArrivalTime). Zero means now.
	Time time.Time

	IsArrivalTime bool
}

// Error carries provider detail for a failed upstream call.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
