package models

import "github.com/dvbroute/dvbroute/internal/transit"

// Stop is a stop candidate returned by the stop lookup.
type Stop struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	City        string `json:"city"`
	Type        string `json:"type"`
	DisplayName string `json:"displayName"`
}

// StopsResponse is the response for GET /v1/stops.
type StopsResponse struct {
	Query string `json:"query"`
	Stops []Stop `json:"stops"`
}

// NewStopsResponse converts ranked stop candidates, keeping their order.
func NewStopsResponse(query string, stops []transit.StopLocation) StopsResponse {
	out := make([]Stop, 0, len(stops))
	for _, s := range stops {
		out = append(out, Stop{
			ID:          s.ID,
			Name:        s.Name,
			City:        s.City,
			Type:        s.Type,
			DisplayName: transit.StopDisplayName(s),
		})
	}
	return StopsResponse{Query: query, Stops: out}
}
