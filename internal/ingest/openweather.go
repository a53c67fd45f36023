// Package ingest holds the HTTP clients for the external weather and
// climate providers.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lox/outdoorcast/internal/httputil"
	"github.com/lox/outdoorcast/internal/metrics"
	"github.com/lox/outdoorcast/internal/models"
)

const (
	defaultGeoBaseURL  = "https://api.openweathermap.org/geo/1.0"
	defaultDataBaseURL = "https://api.openweathermap.org/data/2.5"
)

// OpenWeather talks to the OpenWeatherMap geocoding and forecast APIs.
type OpenWeather struct {
	apiKey      string
	client      *http.Client
	geoBaseURL  string
	dataBaseURL string
}

func NewOpenWeather(apiKey string) *OpenWeather {
	return &OpenWeather{
		apiKey:      apiKey,
		client:      httputil.NewClient(),
		geoBaseURL:  defaultGeoBaseURL,
		dataBaseURL: defaultDataBaseURL,
	}
}

// SetBaseURLs overrides the provider endpoints, for tests.
func (o *OpenWeather) SetBaseURLs(geo, data string) {
	o.geoBaseURL = geo
	o.dataBaseURL = data
}

type geocodeResult struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Geocode resolves a city+country to coordinates. A miss is not an
// error: the caller gets (nil, nil) and decides how to degrade.
func (o *OpenWeather) Geocode(ctx context.Context, city, country string) (*models.Place, error) {
	u := fmt.Sprintf("%s/direct?q=%s&limit=1&appid=%s",
		o.geoBaseURL, url.QueryEscape(city+","+country), o.apiKey)

	body, err := o.fetch(ctx, "geo/direct", u)
	if err != nil {
		return nil, err
	}

	var results []geocodeResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("unmarshal geocode: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	r := results[0]
	return &models.Place{Name: r.Name, Country: r.Country, State: r.State, Latitude: r.Lat, Longitude: r.Lon}, nil
}

// ReverseGeocode resolves coordinates to the nearest named place.
// Like Geocode, a miss returns (nil, nil).
func (o *OpenWeather) ReverseGeocode(ctx context.Context, lat, lon float64) (*models.Place, error) {
	u := fmt.Sprintf("%s/reverse?lat=%.6f&lon=%.6f&limit=1&appid=%s",
		o.geoBaseURL, lat, lon, o.apiKey)

	body, err := o.fetch(ctx, "geo/reverse", u)
	if err != nil {
		return nil, err
	}

	var results []geocodeResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("unmarshal reverse geocode: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	r := results[0]
	return &models.Place{Name: r.Name, Country: r.Country, State: r.State, Latitude: r.Lat, Longitude: r.Lon}, nil
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			TempMax  float64 `json:"temp_max"`
			TempMin  float64 `json:"temp_min"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64  `json:"speed"`
			Gust  *float64 `json:"gust"`
		} `json:"wind"`
		Rain struct {
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
		Snow struct {
			ThreeH float64 `json:"3h"`
		} `json:"snow"`
	} `json:"list"`
	City struct {
		Timezone int `json:"timezone"` // UTC offset in seconds
	} `json:"city"`
}

// FetchForecast returns the 5-day/3-hour forecast as samples in the
// city's local time, winds converted from m/s to km/h.
func (o *OpenWeather) FetchForecast(ctx context.Context, lat, lon float64) ([]models.ForecastSample, error) {
	u := fmt.Sprintf("%s/forecast?lat=%.6f&lon=%.6f&appid=%s&units=metric",
		o.dataBaseURL, lat, lon, o.apiKey)

	body, err := o.fetch(ctx, "forecast", u)
	if err != nil {
		return nil, err
	}

	var data forecastResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal forecast: %w", err)
	}

	offset := time.Duration(data.City.Timezone) * time.Second
	samples := make([]models.ForecastSample, 0, len(data.List))
	for _, item := range data.List {
		s := models.ForecastSample{
			Time:      time.Unix(item.Dt, 0).UTC().Add(offset),
			Temp:      item.Main.Temp,
			TempMax:   item.Main.TempMax,
			TempMin:   item.Main.TempMin,
			Humidity:  item.Main.Humidity,
			WindSpeed: item.Wind.Speed * 3.6,
			Precip:    item.Rain.ThreeH + item.Snow.ThreeH,
		}
		if item.Wind.Gust != nil {
			s.WindGust = *item.Wind.Gust * 3.6
		} else {
			s.WindGust = s.WindSpeed
		}
		if len(item.Weather) > 0 {
			s.Main = item.Weather[0].Main
			s.Description = item.Weather[0].Description
		}
		samples = append(samples, s)
	}

	return samples, nil
}

// fetch performs an instrumented GET with retry on transient failures.
func (o *OpenWeather) fetch(ctx context.Context, endpoint, url string) ([]byte, error) {
	var body []byte
	started := time.Now()

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}

		resp, err := o.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return fmt.Errorf("fetch %s: %w", endpoint, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			metrics.ProviderCallsTotal.WithLabelValues("openweather", endpoint, fmt.Sprint(resp.StatusCode)).Inc()
			return fmt.Errorf("fetch %s: status %d", endpoint, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			metrics.ProviderCallsTotal.WithLabelValues("openweather", endpoint, fmt.Sprint(resp.StatusCode)).Inc()
			return backoff.Permanent(fmt.Errorf("fetch %s: status %d: %s", endpoint, resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		metrics.ProviderCallsTotal.WithLabelValues("openweather", endpoint, "200").Inc()
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 20 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	metrics.ProviderLatency.WithLabelValues("openweather", endpoint).Observe(time.Since(started).Seconds())
	return body, nil
}
