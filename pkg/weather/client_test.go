package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/config"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/errors"
)

func testConfig(baseURL string) config.WeatherConfig {
	return config.WeatherConfig{
		BaseURL:           baseURL,
		UserAgent:         "test-agent (test@example.com)",
		RequestsPerSecond: 100,
	}
}

// newNWSServer serves canned points, forecast, and alerts responses the way
// api.weather.gov shapes them.
func newNWSServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/points/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/points/0.0000,0.0000" {
			http.Error(w, `{"title":"Data Unavailable For Requested Point"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		fmt.Fprintf(w, `{
			"properties": {
				"gridId": "SEW",
				"forecast": "%s/gridpoints/SEW/124,67/forecast",
				"forecastHourly": "%s/gridpoints/SEW/124,67/forecast/hourly",
				"relativeLocation": {"properties": {"city": "Seattle", "state": "WA"}}
			}
		}`, srv.URL, srv.URL)
	})

	mux.HandleFunc("/gridpoints/SEW/124,67/forecast", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(`{
			"properties": {
				"periods": [
					{"number": 1, "name": "Tonight", "isDaytime": false,
					 "temperature": 48, "temperatureUnit": "F",
					 "windSpeed": "5 mph", "windDirection": "SW",
					 "shortForecast": "Rain Likely",
					 "detailedForecast": "Rain likely after 8pm.",
					 "probabilityOfPrecipitation": {"value": 70}},
					{"number": 2, "name": "Saturday", "isDaytime": true,
					 "temperature": 61, "temperatureUnit": "F",
					 "windSpeed": "10 mph", "windDirection": "W",
					 "shortForecast": "Partly Sunny",
					 "detailedForecast": "Partly sunny.",
					 "probabilityOfPrecipitation": {"value": null}}
				]
			}
		}`))
	})

	mux.HandleFunc("/gridpoints/SEW/124,67/forecast/hourly", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(`{
			"properties": {
				"periods": [
					{"number": 1, "name": "", "temperature": 50, "temperatureUnit": "F",
					 "shortForecast": "Light Rain"}
				]
			}
		}`))
	})

	mux.HandleFunc("/alerts/active", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		if r.URL.Query().Get("point") == "40.0000,-100.0000" {
			_, _ = w.Write([]byte(`{"features": []}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"features": [
				{"properties": {
					"id": "urn:oid:2.49.0.1.840.0.1",
					"event": "Wind Advisory",
					"severity": "Moderate",
					"urgency": "Expected",
					"headline": "Wind Advisory issued",
					"description": "South winds 25 to 35 mph.",
					"areaDesc": "Seattle Area"
				}}
			]
		}`))
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T) *Client {
	t.Helper()

	srv := newNWSServer(t)
	client, err := NewClient(testConfig(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return client
}

func TestPoints(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	grid, err := client.Points(context.Background(), 47.6062, -122.3321)
	require.NoError(t, err)

	assert.Equal(t, "SEW", grid.GridID)
	assert.Equal(t, "Seattle", grid.City)
	assert.Equal(t, "WA", grid.State)
	assert.Contains(t, grid.ForecastURL, "/gridpoints/SEW/124,67/forecast")
}

func TestPointsOffGrid(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	_, err := client.Points(context.Background(), 0, 0)

	assert.True(t, errors.IsNotFound(err))
}

func TestPointsCoordinateValidation(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)

	_, err := client.Points(context.Background(), 91, 0)
	assert.True(t, errors.IsValidation(err))

	_, err = client.Points(context.Background(), 0, -181)
	assert.True(t, errors.IsValidation(err))
}

func TestForecast(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	periods, err := client.Forecast(context.Background(), 47.6062, -122.3321)
	require.NoError(t, err)
	require.Len(t, periods, 2)

	assert.Equal(t, "Tonight", periods[0].Name)
	assert.Equal(t, 48, periods[0].Temperature)
	require.NotNil(t, periods[0].ProbabilityOfPrecipitation.Value)
	assert.Equal(t, 70, *periods[0].ProbabilityOfPrecipitation.Value)

	// null precipitation probability stays nil
	assert.Nil(t, periods[1].ProbabilityOfPrecipitation.Value)
}

func TestHourlyForecast(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	periods, err := client.HourlyForecast(context.Background(), 47.6062, -122.3321)
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, "Light Rain", periods[0].ShortForecast)
}

func TestAlerts(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	alerts, err := client.Alerts(context.Background(), 47.6062, -122.3321)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	assert.Equal(t, "Wind Advisory", alerts[0].Event)
	assert.Equal(t, "Moderate", alerts[0].Severity)
}

func TestAlertsEmpty(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	alerts, err := client.Alerts(context.Background(), 40, -100)
	require.NoError(t, err)

	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestUpstreamServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(testConfig(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = client.Points(context.Background(), 47.6062, -122.3321)
	assert.True(t, errors.IsUpstream(err))
}
