package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"

	"github.com/lox/outdoorcast/internal/httputil"
	"github.com/lox/outdoorcast/internal/metrics"
	"github.com/lox/outdoorcast/internal/models"
)

const (
	defaultPowerBaseURL = "https://power.larc.nasa.gov/api/temporal/daily/point"

	// powerParams is the fixed daily parameter set: mean/max/min
	// temperature, corrected precipitation, mean/max wind, humidity.
	powerParams = "T2M,T2M_MAX,T2M_MIN,PRECTOTCORR,WS10M,WS10M_MAX,RH2M"

	// missingSentinel marks absent values in POWER responses.
	missingSentinel = -999
)

// Power fetches daily historical climate records from the NASA POWER
// API. The bulk endpoint is slow, so the client carries a long timeout.
type Power struct {
	client  *http.Client
	baseURL string
}

func NewPower() *Power {
	return &Power{
		client:  httputil.NewClientTimeout(60 * time.Second),
		baseURL: defaultPowerBaseURL,
	}
}

// SetBaseURL overrides the provider endpoint, for tests.
func (p *Power) SetBaseURL(u string) {
	p.baseURL = u
}

// FetchDaily returns complete daily records for the inclusive year
// range, sorted by date. Days where any parameter carries the missing
// sentinel are dropped.
func (p *Power) FetchDaily(ctx context.Context, lat, lon float64, startYear, endYear int) ([]models.ClimateDay, error) {
	u := fmt.Sprintf("%s?parameters=%s&community=RE&longitude=%.4f&latitude=%.4f&start=%d0101&end=%d1231&format=JSON",
		p.baseURL, powerParams, lon, lat, startYear, endYear)

	var body []byte
	started := time.Now()

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}

		resp, err := p.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return fmt.Errorf("fetch climate: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			metrics.ProviderCallsTotal.WithLabelValues("power", "daily", fmt.Sprint(resp.StatusCode)).Inc()
			return fmt.Errorf("fetch climate: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			metrics.ProviderCallsTotal.WithLabelValues("power", "daily", fmt.Sprint(resp.StatusCode)).Inc()
			return backoff.Permanent(fmt.Errorf("fetch climate: status %d: %s", resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		metrics.ProviderCallsTotal.WithLabelValues("power", "daily", "200").Inc()
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 3 * time.Minute
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	metrics.ProviderLatency.WithLabelValues("power", "daily").Observe(time.Since(started).Seconds())

	return parsePowerDaily(body)
}

// parsePowerDaily decodes the POWER response. Each parameter arrives as
// a map keyed by YYYYMMDD date strings, so the structure is walked with
// gjson rather than fixed structs.
func parsePowerDaily(body []byte) ([]models.ClimateDay, error) {
	params := gjson.GetBytes(body, "properties.parameter")
	if !params.Exists() {
		return nil, fmt.Errorf("parse climate: missing properties.parameter")
	}

	t2m := params.Get("T2M")
	if !t2m.Exists() {
		return nil, fmt.Errorf("parse climate: missing T2M series")
	}

	var days []models.ClimateDay
	var parseErr error

	t2m.ForEach(func(key, value gjson.Result) bool {
		dateStr := key.String()
		date, err := time.Parse("20060102", dateStr)
		if err != nil {
			parseErr = fmt.Errorf("parse date %q: %w", dateStr, err)
			return false
		}

		results := []gjson.Result{
			value,
			params.Get("T2M_MAX." + dateStr),
			params.Get("T2M_MIN." + dateStr),
			params.Get("PRECTOTCORR." + dateStr),
			params.Get("WS10M." + dateStr),
			params.Get("WS10M_MAX." + dateStr),
			params.Get("RH2M." + dateStr),
		}
		fields := make([]float64, len(results))
		for i, r := range results {
			// An absent series entry is as incomplete as a sentinel.
			if !r.Exists() || r.Float() == missingSentinel {
				return true // incomplete day, skip
			}
			fields[i] = r.Float()
		}

		days = append(days, models.ClimateDay{
			Date:     date,
			TempMean: fields[0],
			TempMax:  fields[1],
			TempMin:  fields[2],
			Precip:   fields[3],
			WindMean: fields[4],
			WindMax:  fields[5],
			Humidity: fields[6],
		})
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days, nil
}
