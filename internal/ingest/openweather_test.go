package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenWeather(t *testing.T, handler http.Handler) *OpenWeather {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	ow := NewOpenWeather("test-key")
	ow.SetBaseURLs(srv.URL, srv.URL)
	return ow
}

func TestGeocode(t *testing.T) {
	ow := newTestOpenWeather(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/direct", r.URL.Path)
		assert.Equal(t, "Melbourne,AU", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		w.Write([]byte(`[{"name":"Melbourne","country":"AU","state":"Victoria","lat":-37.814,"lon":144.963}]`))
	}))

	place, err := ow.Geocode(context.Background(), "Melbourne", "AU")
	require.NoError(t, err)
	require.NotNil(t, place)
	assert.Equal(t, "Melbourne", place.Name)
	assert.Equal(t, "AU", place.Country)
	assert.InDelta(t, -37.814, place.Latitude, 0.001)
	assert.InDelta(t, 144.963, place.Longitude, 0.001)
}

func TestGeocodeMissIsNotAnError(t *testing.T) {
	ow := newTestOpenWeather(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	place, err := ow.Geocode(context.Background(), "Nowheresville", "ZZ")
	require.NoError(t, err)
	assert.Nil(t, place)
}

func TestGeocodeAuthFailureIsPermanent(t *testing.T) {
	calls := 0
	ow := newTestOpenWeather(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"cod":401,"message":"Invalid API key"}`, http.StatusUnauthorized)
	}))

	_, err := ow.Geocode(context.Background(), "Melbourne", "AU")
	require.Error(t, err)
	assert.Equal(t, 1, calls, "401 must not be retried")
}

func TestReverseGeocode(t *testing.T) {
	ow := newTestOpenWeather(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		w.Write([]byte(`[{"name":"Bright","country":"AU","lat":-36.729,"lon":146.968}]`))
	}))

	place, err := ow.ReverseGeocode(context.Background(), -36.73, 146.97)
	require.NoError(t, err)
	require.NotNil(t, place)
	assert.Equal(t, "Bright", place.Name)
}

func TestFetchForecast(t *testing.T) {
	ow := newTestOpenWeather(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		// Two samples: one with gust and rain, one bare.
		w.Write([]byte(`{
			"list": [
				{
					"dt": 1767225600,
					"main": {"temp": 24.5, "temp_max": 26.0, "temp_min": 23.0, "humidity": 60},
					"weather": [{"main": "Rain", "description": "light rain"}],
					"wind": {"speed": 5.0, "gust": 10.0},
					"rain": {"3h": 1.2},
					"snow": {"3h": 0.3}
				},
				{
					"dt": 1767236400,
					"main": {"temp": 22.0, "temp_max": 23.0, "temp_min": 21.0, "humidity": 55},
					"weather": [{"main": "Clear", "description": "clear sky"}],
					"wind": {"speed": 4.0}
				}
			],
			"city": {"timezone": 36000}
		}`))
	}))

	samples, err := ow.FetchForecast(context.Background(), -37.8, 144.9)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	first := samples[0]
	assert.InDelta(t, 24.5, first.Temp, 0.001)
	assert.InDelta(t, 18.0, first.WindSpeed, 0.001, "5 m/s is 18 km/h")
	assert.InDelta(t, 36.0, first.WindGust, 0.001)
	assert.InDelta(t, 1.5, first.Precip, 0.001, "rain and snow accumulations sum")
	assert.Equal(t, "light rain", first.Description)
	// 2026-01-01 00:00 UTC shifted by the +10h city offset.
	assert.Equal(t, "2026-01-01 10:00", first.Time.Format("2006-01-02 15:04"))

	second := samples[1]
	assert.InDelta(t, 14.4, second.WindGust, 0.001, "gust falls back to wind speed")
}

func TestFetchForecastServerError(t *testing.T) {
	ow := newTestOpenWeather(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // don't wait out the retry schedule
	_, err := ow.FetchForecast(ctx, -37.8, 144.9)
	require.Error(t, err)
}
