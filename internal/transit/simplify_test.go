package transit_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvbroute/dvbroute/internal/transit"
)

var departAt = time.Date(2026, 10, 19, 8, 15, 0, 0, time.UTC)

func stopAt(name, city string, offset time.Duration) transit.Stop {
	return transit.Stop{
		StopLocation: transit.StopLocation{ID: name, Name: name, City: city, Type: "Stop"},
		Platform:     &transit.Platform{Name: "1", Type: "Platform"},
		Time:         departAt.Add(offset),
	}
}

func nodeWithMode(tag, line string) transit.Node {
	return transit.Node{
		Line:      line,
		Direction: "Richtung " + line,
		Duration:  5,
		Mode:      transit.LookupMode(tag),
		Departure: stopAt("A"+line, "Dresden", 0),
		Arrival:   stopAt("B"+line, "Dresden", 5*time.Minute),
	}
}

func TestStopDisplayName(t *testing.T) {
	tests := []struct {
		name string
		stop transit.StopLocation
		want string
	}{
		{"name and city", transit.StopLocation{Name: "Hauptbahnhof", City: "Dresden"}, "Hauptbahnhof Dresden"},
		{"empty city keeps trailing space", transit.StopLocation{Name: "Bahnhof", City: ""}, "Bahnhof "},
		{"empty name keeps leading space", transit.StopLocation{Name: "", City: "Riesa"}, " Riesa"},
		{"no trimming", transit.StopLocation{Name: " Postplatz ", City: "Dresden"}, " Postplatz  Dresden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, transit.StopDisplayName(tt.stop))
		})
	}
}

func TestSimplifyStop_PassesThroughPlatformAndTime(t *testing.T) {
	stop := stopAt("Postplatz", "Dresden", 3*time.Minute)

	got := transit.SimplifyStop(stop)

	assert.Equal(t, "Postplatz Dresden", got.Stop)
	assert.Same(t, stop.Platform, got.Platform)
	assert.True(t, stop.Time.Equal(got.Time))
}

func TestSimplifyStop_NilPlatform(t *testing.T) {
	stop := stopAt("Postplatz", "Dresden", 0)
	stop.Platform = nil

	assert.Nil(t, transit.SimplifyStop(stop).Platform)
}

func TestSimplifyNode(t *testing.T) {
	node := nodeWithMode(transit.ModeTram, "3")

	got := transit.SimplifyNode(node)

	assert.Equal(t, "3", got.Line)
	assert.Equal(t, "Richtung 3", got.Direction)
	assert.Equal(t, 5, got.Duration)
	assert.Equal(t, "Straßenbahn", got.Mode)
	assert.Equal(t, "A3 Dresden", got.Departure.Stop)
	assert.Equal(t, "B3 Dresden", got.Arrival.Stop)
}

func TestSimplifyNodes_DropsFootpathAndStairsUp(t *testing.T) {
	for _, tag := range []string{transit.ModeFootpath, transit.ModeStairsUp} {
		t.Run(tag, func(t *testing.T) {
			nodes := []transit.Node{
				nodeWithMode(transit.ModeTram, "1"),
				nodeWithMode(tag, ""),
				nodeWithMode(transit.ModeCityBus, "62"),
			}

			got := transit.SimplifyNodes(nodes)

			require.Len(t, got, 2)
			assert.Equal(t, "1", got[0].Line)
			assert.Equal(t, "62", got[1].Line)
		})
	}
}

func TestSimplifyNodes_KeepsOtherWalkingModes(t *testing.T) {
	nodes := []transit.Node{
		nodeWithMode(transit.ModeStairsDown, ""),
		nodeWithMode(transit.ModeEscalatorUp, ""),
		nodeWithMode("footpath", ""),
		nodeWithMode("FootpathExtra", ""),
	}

	got := transit.SimplifyNodes(nodes)

	require.Len(t, got, 4)
	for i := range nodes {
		assert.Equal(t, transit.SimplifyNode(nodes[i]), got[i])
	}
}

func TestSimplifyNodes_TramFootpathBus(t *testing.T) {
	nodes := []transit.Node{
		nodeWithMode("Tram", "7"),
		nodeWithMode("Footpath", ""),
		nodeWithMode("Bus", "86"),
	}

	got := transit.SimplifyNodes(nodes)

	require.Len(t, got, 2)
	assert.Equal(t, "7", got[0].Line)
	assert.Equal(t, "86", got[1].Line)
	for _, n := range got {
		assert.NotEqual(t, "Fussweg", n.Mode)
	}
}

func TestSimplifyNodes_PreservesOrder(t *testing.T) {
	tags := []string{"Tram", "Footpath", "CityBus", "StairsUp", "Train", "Footpath", "Ferry", "SuburbanRailway"}
	nodes := make([]transit.Node, 0, len(tags))
	for i, tag := range tags {
		nodes = append(nodes, nodeWithMode(tag, string(rune('a'+i))))
	}

	got := transit.SimplifyNodes(nodes)

	lines := make([]string, 0, len(got))
	for _, n := range got {
		lines = append(lines, n.Line)
	}
	assert.Equal(t, []string{"a", "c", "e", "g", "h"}, lines)
}

func TestSimplifyNodes_AllFilteredIsEmpty(t *testing.T) {
	got := transit.SimplifyNodes([]transit.Node{
		nodeWithMode(transit.ModeFootpath, ""),
		nodeWithMode(transit.ModeStairsUp, ""),
	})

	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSimplifyTrip(t *testing.T) {
	trip := transit.Trip{
		Departure:    stopAt("Königheim", "Dresden", 0),
		Arrival:      stopAt("Bahnhof", "Riesa", 70*time.Minute),
		Duration:     70,
		Interchanges: 2,
		Nodes: []transit.Node{
			nodeWithMode(transit.ModeCityBus, "61"),
			nodeWithMode(transit.ModeFootpath, ""),
			nodeWithMode(transit.ModeSuburbanRailway, "S1"),
		},
	}

	got := transit.SimplifyTrip(trip)

	assert.Equal(t, "Königheim Dresden", got.Departure.Stop)
	assert.Equal(t, "Bahnhof Riesa", got.Arrival.Stop)
	assert.Equal(t, 70, got.Duration)
	assert.Equal(t, 2, got.Interchanges)
	assert.Equal(t, transit.SimplifyNodes(trip.Nodes), got.Nodes)
}

func TestSimplifyRoute(t *testing.T) {
	trip := transit.Trip{
		Departure: stopAt("Königheim", "Dresden", 0),
		Arrival:   stopAt("Bahnhof", "Riesa", time.Hour),
		Nodes: []transit.Node{
			nodeWithMode(transit.ModeFootpath, ""),
		},
	}
	route := transit.Route{
		Origin:      transit.StopLocation{ID: "33000001", Name: "Königheim", City: "Dresden"},
		Destination: transit.StopLocation{ID: "36030001", Name: "Bahnhof", City: "Riesa"},
		Trips:       []transit.Trip{trip, trip, trip},
	}

	got := transit.SimplifyRoute(route)

	assert.Equal(t, "Königheim Dresden", got.Origin)
	assert.Equal(t, "Bahnhof Riesa", got.Destination)
	assert.Len(t, got.Trips, len(route.Trips))
	for _, st := range got.Trips {
		assert.Empty(t, st.Nodes)
	}
}

func TestSimplifyRoute_NoTrips(t *testing.T) {
	route := transit.Route{
		Origin:      transit.StopLocation{Name: "Postplatz", City: "Dresden"},
		Destination: transit.StopLocation{Name: "Bahnhof", City: "Riesa"},
	}

	got := transit.SimplifyRoute(route)

	assert.Equal(t, "Postplatz Dresden", got.Origin)
	assert.Equal(t, "Bahnhof Riesa", got.Destination)
	require.NotNil(t, got.Trips)
	assert.Empty(t, got.Trips)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"origin":"Postplatz Dresden","destination":"Bahnhof Riesa","trips":[]}`, string(b))
}

func TestSimplifyRoute_DoesNotMutateInput(t *testing.T) {
	route := transit.Route{
		Origin:      transit.StopLocation{Name: "A", City: "Dresden"},
		Destination: transit.StopLocation{Name: "B", City: "Dresden"},
		Trips: []transit.Trip{{
			Nodes: []transit.Node{
				nodeWithMode(transit.ModeTram, "3"),
				nodeWithMode(transit.ModeFootpath, ""),
			},
		}},
	}

	_ = transit.SimplifyRoute(route)

	require.Len(t, route.Trips[0].Nodes, 2)
	assert.Equal(t, transit.ModeFootpath, route.Trips[0].Nodes[1].Mode.Name)
}

func TestLookupMode(t *testing.T) {
	assert.Equal(t, transit.Mode{Name: "Tram", Title: "Straßenbahn"}, transit.LookupMode("Tram"))
	assert.Equal(t, transit.Mode{Name: "Footpath", Title: "Fussweg"}, transit.LookupMode("Footpath"))
	assert.Equal(t, transit.Mode{Name: "Hovercraft", Title: "Hovercraft"}, transit.LookupMode("Hovercraft"))
}
