package esios

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vreflex/backend/internal/contracts"
	"github.com/wonny/vreflex/backend/pkg/httputil"
	"github.com/wonny/vreflex/backend/pkg/logger"
)

const demandBody = `{
	"indicator": {
		"id": 1293,
		"name": "Demanda real",
		"short_name": "Demanda real",
		"values": [
			{"value": 24500.5, "datetime": "2025-03-02T00:00:00.000+01:00", "datetime_utc": "2025-03-01T23:00:00Z", "geo_id": 8741, "geo_name": "Península"},
			{"value": 23010.0, "datetime": "2025-03-02T01:00:00.000+01:00", "datetime_utc": "2025-03-02T00:00:00Z", "geo_id": 8741, "geo_name": "Península"}
		]
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	httpClient := httputil.New(logger.Nop(), 5*time.Second).
		DisableRetry().
		WithHeader("x-api-key", "secret")
	return NewClient(httpClient, srv.URL, 8741, logger.Nop())
}

func TestClient_FetchReadings(t *testing.T) {
	var gotPath, gotKey string
	var gotQuery map[string][]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(demandBody))
	})

	loc, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)
	start := time.Date(2025, 3, 2, 0, 0, 0, 0, loc)

	readings, err := client.FetchReadings(context.Background(), 1293, start, start.Add(2*time.Hour), contracts.ResolutionHour)
	require.NoError(t, err)

	assert.Equal(t, "/indicators/1293", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, []string{"hour"}, gotQuery["time_trunc"])
	assert.Equal(t, []string{"average"}, gotQuery["time_agg"])
	assert.Equal(t, []string{"electric_system"}, gotQuery["geo_trunc"])
	assert.Equal(t, []string{"8741"}, gotQuery["geo_ids[]"])
	assert.Equal(t, []string{"2025-03-02T00:00:00+01:00"}, gotQuery["start_date"])

	require.Len(t, readings, 2)
	assert.Equal(t, 1293, readings[0].IndicatorID)
	assert.Equal(t, 24500.5, readings[0].Value)
	assert.Equal(t, contracts.ResolutionHour, readings[0].Resolution)
	assert.True(t, readings[0].Timestamp.Equal(time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Península", readings[0].GeoName)
}

func TestClient_FetchIndicator_StatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.FetchIndicator(context.Background(), Query{IndicatorID: 1161, Start: time.Now(), End: time.Now()})
	require.Error(t, err)

	var statusErr *httputil.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
}

func TestInferResolution(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	series := func(step time.Duration) []Value {
		return []Value{{Datetime: base}, {Datetime: base.Add(step)}, {Datetime: base.Add(2 * step)}}
	}

	assert.Equal(t, contracts.ResolutionHour, inferResolution(nil))
	assert.Equal(t, contracts.ResolutionHour, inferResolution(series(time.Hour)))
	assert.Equal(t, contracts.ResolutionFifteenMinutes, inferResolution(series(15*time.Minute)))
	assert.Equal(t, contracts.ResolutionFiveMinutes, inferResolution(series(5*time.Minute)))
}
