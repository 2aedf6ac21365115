package vvo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dvbroute/dvbroute/internal/transit"
)

// defaultCity is implied when a point carries no city.
const defaultCity = "Dresden"

// VVO API request and response structures.

type responseStatus struct {
	Code    string `json:"Code"`
	Message string `json:"Message,omitempty"`
}

type pointFinderRequest struct {
	Query         string `json:"query"`
	Limit         int    `json:"limit"`
	StopsOnly     bool   `json:"stopsOnly"`
	RegionalOnly  bool   `json:"regionalOnly"`
	StopShortcuts bool   `json:"stopShortcuts"`
	DVB           bool   `json:"dvb"`
}

type pointFinderResponse struct {
	PointStatus string         `json:"PointStatus"`
	Points      []string       `json:"Points"`
	Status      responseStatus `json:"Status"`
}

type tripsRequest struct {
	Origin           string           `json:"origin"`
	Destination      string           `json:"destination"`
	Time             string           `json:"time"`
	IsArrivalTime    bool             `json:"isarrivaltime"`
	ShortTermChanges bool             `json:"shorttermchanges"`
	MobilitySettings mobilitySettings `json:"mobilitySettings"`
	StandardSettings standardSettings `json:"standardSettings"`
}

type mobilitySettings struct {
	MobilityRestriction string `json:"mobilityRestriction"`
}

type standardSettings struct {
	MaxChanges              string `json:"maxChanges"`
	WalkingSpeed            string `json:"walkingSpeed"`
	FootpathToStop          int    `json:"footpathToStop"`
	IncludeAlternativeStops bool   `json:"includeAlternativeStops"`
}

type tripsResponse struct {
	Routes    []vvoRoute     `json:"Routes"`
	SessionID string         `json:"SessionId"`
	Status    responseStatus `json:"Status"`
}

type vvoRoute struct {
	RouteID       int               `json:"RouteId"`
	Duration      int               `json:"Duration"`
	Interchanges  int               `json:"Interchanges"`
	PartialRoutes []vvoPartialRoute `json:"PartialRoutes"`
}

type vvoPartialRoute struct {
	Duration     int              `json:"Duration"`
	Mot          vvoMot           `json:"Mot"`
	RegularStops []vvoRegularStop `json:"RegularStops"`
}

type vvoMot struct {
	Type      string `json:"Type"`
	Name      string `json:"Name"`
	Direction string `json:"Direction"`
}

type vvoRegularStop struct {
	DataID        string       `json:"DataId"`
	Name          string       `json:"Name"`
	Place         string       `json:"Place"`
	Type          string       `json:"Type"`
	ArrivalTime   string       `json:"ArrivalTime"`
	DepartureTime string       `json:"DepartureTime"`
	Platform      *vvoPlatform `json:"Platform"`
}

type vvoPlatform struct {
	Name string `json:"Name"`
	Type string `json:"Type"`
}

// parsePoint decodes a pointfinder entry of the form
// "id|type|city|name|right|up|distance||shortcut".
func parsePoint(raw string) (transit.StopLocation, bool) {
	fields := strings.Split(raw, "|")
	if len(fields) < 4 || fields[0] == "" {
		return transit.StopLocation{}, false
	}

	city := fields[2]
	if city == "" {
		city = defaultCity
	}

	return transit.StopLocation{
		ID:   fields[0],
		Name: fields[3],
		City: city,
		Type: pointType(fields[1]),
	}, true
}

func pointType(code string) string {
	switch code {
	case "":
		return "Stop"
	case "a":
		return "Address"
	case "p":
		return "POI"
	case "c":
		return "Coords"
	default:
		return code
	}
}

var dateRe = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)

// parseDate decodes the "/Date(1487877780000+0100)/" timestamp encoding.
// An empty string yields the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("malformed date %q", s)
	}

	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed date %q: %w", s, err)
	}

	t := time.UnixMilli(ms)
	if m[2] == "" {
		return t.UTC(), nil
	}

	hours, _ := strconv.Atoi(m[2][1:3])
	minutes, _ := strconv.Atoi(m[2][3:5])
	offset := hours*3600 + minutes*60
	if m[2][0] == '-' {
		offset = -offset
	}
	return t.In(time.FixedZone("", offset)), nil
}

func toStop(s *vvoRegularStop, timestamp string) (transit.Stop, error) {
	t, err := parseDate(timestamp)
	if err != nil {
		return transit.Stop{}, err
	}

	city := s.Place
	if city == "" {
		city = defaultCity
	}

	stop := transit.Stop{
		StopLocation: transit.StopLocation{
			ID:   s.DataID,
			Name: s.Name,
			City: city,
			Type: s.Type,
		},
		Time: t,
	}
	if s.Platform != nil && s.Platform.Name != "" {
		stop.Platform = &transit.Platform{Name: s.Platform.Name, Type: s.Platform.Type}
	}
	return stop, nil
}

// toNodes converts partial routes to nodes. Partial routes without stops,
// typically footpaths, depart from the previous stop-bearing node's arrival
// and arrive at the next one's departure. A stopless run at either end of a
// trip collapses onto the single endpoint it touches.
func toNodes(parts []vvoPartialRoute) ([]transit.Node, error) {
	nodes := make([]transit.Node, len(parts))
	hasStops := make([]bool, len(parts))

	for i := range parts {
		p := &parts[i]
		nodes[i] = transit.Node{
			Line:      p.Mot.Name,
			Direction: p.Mot.Direction,
			Duration:  p.Duration,
			Mode:      transit.LookupMode(p.Mot.Type),
		}

		if len(p.RegularStops) == 0 {
			continue
		}
		hasStops[i] = true

		first := &p.RegularStops[0]
		last := &p.RegularStops[len(p.RegularStops)-1]

		dep, err := toStop(first, first.DepartureTime)
		if err != nil {
			return nil, fmt.Errorf("partial route %d departure: %w", i, err)
		}
		arr, err := toStop(last, last.ArrivalTime)
		if err != nil {
			return nil, fmt.Errorf("partial route %d arrival: %w", i, err)
		}
		nodes[i].Departure = dep
		nodes[i].Arrival = arr
	}

	// prev and next hold the nearest real endpoints on either side of each
	// stopless node.
	prev := make([]*transit.Stop, len(nodes))
	var last *transit.Stop
	for i := range nodes {
		if hasStops[i] {
			last = &nodes[i].Arrival
			continue
		}
		prev[i] = last
	}

	var next *transit.Stop
	for i := len(nodes) - 1; i >= 0; i-- {
		if hasStops[i] {
			next = &nodes[i].Departure
			continue
		}
		dep, arr := prev[i], next
		if dep == nil {
			dep = next
		}
		if arr == nil {
			arr = prev[i]
		}
		if dep != nil {
			nodes[i].Departure = *dep
			nodes[i].Arrival = *arr
		}
	}

	return nodes, nil
}

// toRoute converts a trips response into the domain route. Origin and
// destination come from the first trip, or carry only the IDs without trips.
func toRoute(originID, destinationID string, resp *tripsResponse) (*transit.Route, error) {
	trips := make([]transit.Trip, 0, len(resp.Routes))

	for i := range resp.Routes {
		r := &resp.Routes[i]
		nodes, err := toNodes(r.PartialRoutes)
		if err != nil {
			return nil, fmt.Errorf("route %d: %w", r.RouteID, err)
		}

		trip := transit.Trip{
			Duration:     r.Duration,
			Interchanges: r.Interchanges,
			Nodes:        nodes,
		}
		if len(nodes) > 0 {
			trip.Departure = nodes[0].Departure
			trip.Arrival = nodes[len(nodes)-1].Arrival
		}
		trips = append(trips, trip)
	}

	route := &transit.Route{
		Origin:      transit.StopLocation{ID: originID},
		Destination: transit.StopLocation{ID: destinationID},
		Trips:       trips,
	}
	if len(trips) > 0 {
		route.Origin = trips[0].Departure.StopLocation
		route.Destination = trips[0].Arrival.StopLocation
	}

	return route, nil
}
