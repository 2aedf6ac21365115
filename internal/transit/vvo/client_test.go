package vvo_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvbroute/dvbroute/internal/provider/resilience"
	"github.com/dvbroute/dvbroute/internal/transit"
	"github.com/dvbroute/dvbroute/internal/transit/vvo"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return b
}

func testClient(baseURL string) *vvo.Client {
	cfg := resilience.DefaultClientConfig("vvo-test")
	cfg.MaxRetries = 1
	cfg.InitialInterval = time.Millisecond
	cfg.MaxInterval = 5 * time.Millisecond
	return vvo.NewClient(vvo.ClientConfig{
		BaseURL:    baseURL,
		HTTPClient: resilience.NewClient(cfg),
		Logger:     zerolog.Nop(),
	})
}

func TestClient_Name(t *testing.T) {
	client := vvo.NewClient(vvo.ClientConfig{Logger: zerolog.Nop()})
	assert.Equal(t, "vvo", client.Name())
}

func TestClient_FindStop(t *testing.T) {
	fixture := loadFixture(t, "pointfinder_response.json")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tr/pointfinder", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Königheim Dresden", body["query"])
		assert.Equal(t, true, body["stopsOnly"])
		assert.Equal(t, true, body["dvb"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(fixture)
	}))
	defer server.Close()

	stops, err := testClient(server.URL).FindStop(context.Background(), "Königheim Dresden")
	require.NoError(t, err)
	require.Len(t, stops, 2, "malformed points are skipped")

	assert.Equal(t, transit.StopLocation{ID: "33000742", Name: "Königheim", City: "Dresden", Type: "Stop"}, stops[0])
	assert.Equal(t, "33000743", stops[1].ID)
	assert.Equal(t, "Dresden", stops[1].City, "empty city defaults to Dresden")
}

func TestClient_FindStop_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"PointStatus":"NotIdentified","Status":{"Code":"Ok"}}`))
	}))
	defer server.Close()

	stops, err := testClient(server.URL).FindStop(context.Background(), "Nirgendwo")
	require.NoError(t, err)
	assert.Empty(t, stops)
}

func TestClient_FindStop_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Status":{"Code":"ServiceError","Message":"query too short"}}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).FindStop(context.Background(), "x")
	require.Error(t, err)

	var terr *transit.Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "ServiceError", terr.Code)
	assert.Equal(t, "query too short", terr.Message)
	assert.ErrorIs(t, err, transit.ErrProviderUnavailable)
}

func TestClient_Route(t *testing.T) {
	fixture := loadFixture(t, "trips_response.json")
	when := time.Date(2026, 10, 19, 6, 10, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tr/trips", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "33000742", body["origin"])
		assert.Equal(t, "36030001", body["destination"])
		assert.Equal(t, "2026-10-19T06:10:00Z", body["time"])
		assert.Equal(t, false, body["isarrivaltime"])
		assert.Equal(t, true, body["shorttermchanges"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(fixture)
	}))
	defer server.Close()

	route, err := testClient(server.URL).Route(context.Background(), "33000742", "36030001", when, false)
	require.NoError(t, err)

	assert.Equal(t, "Königheim", route.Origin.Name)
	assert.Equal(t, "Riesa", route.Destination.City)
	require.Len(t, route.Trips, 2)

	trip := route.Trips[0]
	assert.Equal(t, 78, trip.Duration)
	assert.Equal(t, 1, trip.Interchanges)
	require.Len(t, trip.Nodes, 4)

	assert.Equal(t, transit.Mode{Name: "Tram", Title: "Straßenbahn"}, trip.Nodes[0].Mode)
	assert.Equal(t, "11", trip.Nodes[0].Line)
	assert.Equal(t, "Dresden Hauptbahnhof", trip.Nodes[0].Direction)
	assert.Equal(t, 14, trip.Nodes[0].Duration)
	require.NotNil(t, trip.Nodes[0].Departure.Platform)
	assert.Equal(t, "1", trip.Nodes[0].Departure.Platform.Name)

	cest := time.FixedZone("", 2*3600)
	assert.True(t, time.Date(2026, 10, 19, 8, 15, 0, 0, cest).Equal(trip.Departure.Time))
	assert.True(t, time.Date(2026, 10, 19, 9, 33, 0, 0, cest).Equal(trip.Arrival.Time))

	// Footpath and stairs borrow endpoints from their neighbours.
	footpath := trip.Nodes[1]
	assert.Equal(t, "Footpath", footpath.Mode.Name)
	assert.Equal(t, "Hauptbahnhof", footpath.Departure.Name)
	assert.True(t, time.Date(2026, 10, 19, 8, 29, 0, 0, cest).Equal(footpath.Departure.Time))
	assert.True(t, time.Date(2026, 10, 19, 8, 35, 0, 0, cest).Equal(footpath.Arrival.Time))
	assert.True(t, trip.Nodes[2].Departure.Time.Equal(footpath.Departure.Time))
	assert.True(t, trip.Nodes[2].Arrival.Time.Equal(trip.Nodes[3].Departure.Time))

	second := route.Trips[1]
	require.Len(t, second.Nodes, 1)
	assert.Equal(t, "Regionalbus", second.Nodes[0].Mode.Title)
	assert.Nil(t, second.Nodes[0].Departure.Platform)
}

func TestClient_Route_SimplifiesLikeTheDisplayPipeline(t *testing.T) {
	fixture := loadFixture(t, "trips_response.json")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(fixture)
	}))
	defer server.Close()

	route, err := testClient(server.URL).Route(context.Background(), "33000742", "36030001", time.Now(), false)
	require.NoError(t, err)

	simple := transit.SimplifyRoute(*route)
	assert.Equal(t, "Königheim Dresden", simple.Origin)
	assert.Equal(t, "Bahnhof Riesa", simple.Destination)
	require.Len(t, simple.Trips, 2)
	require.Len(t, simple.Trips[0].Nodes, 2)
	assert.Equal(t, "Straßenbahn", simple.Trips[0].Nodes[0].Mode)
	assert.Equal(t, "Zug", simple.Trips[0].Nodes[1].Mode)
}

func TestClient_Route_NoTrips(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Routes":[],"Status":{"Code":"Ok"}}`))
	}))
	defer server.Close()

	route, err := testClient(server.URL).Route(context.Background(), "1", "2", time.Now(), true)
	require.NoError(t, err)

	assert.Empty(t, route.Trips)
	assert.Equal(t, "1", route.Origin.ID)
	assert.Equal(t, "2", route.Destination.ID)
}

func TestClient_Route_MalformedDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Routes":[{"RouteId":1,"PartialRoutes":[{"Mot":{"Type":"Tram"},"RegularStops":[{"Name":"A","DepartureTime":"yesterday"}]}]}],"Status":{"Code":"Ok"}}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).Route(context.Background(), "1", "2", time.Now(), false)
	require.Error(t, err)

	var terr *transit.Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "MALFORMED_RESPONSE", terr.Code)
}

func TestClient_ServerError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient(server.URL).FindStop(context.Background(), "Postplatz")
	require.Error(t, err)

	assert.ErrorIs(t, err, transit.ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "temporarily unavailable")
	assert.Equal(t, int32(2), attempts.Load(), "one retry configured")
}

func TestClient_ClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Route(context.Background(), "1", "2", time.Now(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 400")
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := testClient(url).FindStop(context.Background(), "Postplatz")
	require.Error(t, err)

	var terr *transit.Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "REQUEST_FAILED", terr.Code)
	assert.ErrorIs(t, err, transit.ErrProviderUnavailable)
}

func TestClient_DefaultHTTPClientRegistersProvider(t *testing.T) {
	registry := resilience.NewRegistry()
	_ = vvo.NewClient(vvo.ClientConfig{
		Registry: registry,
		Logger:   zerolog.Nop(),
	})

	assert.Equal(t, []string{"vvo"}, registry.Names())
}
