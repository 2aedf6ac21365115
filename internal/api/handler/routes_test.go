package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dvbroute/dvbroute/internal/transit"
)

func TestParsePlanRequest(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		want       transit.PlanRequest
		wantFields []string
	}{
		{
			name:  "endpoints only",
			query: "from=Postplatz&to=Hauptbahnhof",
			want:  transit.PlanRequest{Origin: "Postplatz", Destination: "Hauptbahnhof"},
		},
		{
			name:  "trims whitespace",
			query: "from=%20Postplatz%20&to=Hauptbahnhof%20",
			want:  transit.PlanRequest{Origin: "Postplatz", Destination: "Hauptbahnhof"},
		},
		{
			name:  "arrival time",
			query: "from=a&to=b&at=2026-10-19T09:30:00Z&arrival=1",
			want: transit.PlanRequest{
				Origin:        "a",
				Destination:   "b",
				Time:          time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
				IsArrivalTime: true,
			},
		},
		{
			name:       "blank endpoints",
			query:      "from=%20&to=",
			wantFields: []string{"from", "to"},
		},
		{
			name:       "date without time",
			query:      "from=a&to=b&at=2026-10-19",
			wantFields: []string{"at"},
		},
		{
			name:       "arrival not boolean",
			query:      "from=a&to=b&arrival=yes",
			wantFields: []string{"arrival"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/v1/routes?"+tt.query, nil)

			got, errs := parsePlanRequest(r)

			var fields []string
			for _, fe := range errs {
				fields = append(fields, fe.Field)
				assert.NotEmpty(t, fe.Code)
			}
			assert.Equal(t, tt.wantFields, fields)
			if tt.wantFields == nil {
				assert.Equal(t, tt.want.Origin, got.Origin)
				assert.Equal(t, tt.want.Destination, got.Destination)
				assert.True(t, tt.want.Time.Equal(got.Time))
				assert.Equal(t, tt.want.IsArrivalTime, got.IsArrivalTime)
			}
		})
	}
}
