package predict

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/outdoorcast/internal/activity"
	"github.com/lox/outdoorcast/internal/models"
)

type fakeWeather struct {
	place       *models.Place
	geocodeErr  error
	reverseErr  error
	samples     []models.ForecastSample
	forecastErr error

	blockForecast bool
	geocodeCalls  atomic.Int32
}

func (f *fakeWeather) Geocode(_ context.Context, _, _ string) (*models.Place, error) {
	f.geocodeCalls.Add(1)
	return f.place, f.geocodeErr
}

func (f *fakeWeather) ReverseGeocode(_ context.Context, _, _ float64) (*models.Place, error) {
	return f.place, f.reverseErr
}

func (f *fakeWeather) FetchForecast(ctx context.Context, _, _ float64) ([]models.ForecastSample, error) {
	if f.blockForecast {
		<-ctx.Done()
		// Linger so the deadline branch wins the select deterministically.
		time.Sleep(100 * time.Millisecond)
		return nil, ctx.Err()
	}
	return f.samples, f.forecastErr
}

type fakeRisks struct {
	ready      bool
	trainOK    bool
	trainErr   error
	trainCalls atomic.Int32
	risks      map[string]float64
}

func (f *fakeRisks) Ready() bool { return f.ready }

func (f *fakeRisks) Train(_ context.Context, _, _ float64) (bool, error) {
	f.trainCalls.Add(1)
	if f.trainErr == nil && f.trainOK {
		f.ready = true
	}
	return f.trainOK, f.trainErr
}

func (f *fakeRisks) Risks(_ []float64) map[string]float64 { return f.risks }

type memStore struct {
	reports []models.ReportRecord
}

func (m *memStore) InsertReport(r models.ReportRecord) (int64, error) {
	m.reports = append(m.reports, r)
	return int64(len(m.reports)), nil
}

func calmSamples(days int) []models.ForecastSample {
	var samples []models.ForecastSample
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	for d := 0; d < days; d++ {
		for h := 0; h < 8; h++ {
			samples = append(samples, models.ForecastSample{
				Time:        start.AddDate(0, 0, d).Add(time.Duration(h) * 3 * time.Hour),
				Temp:        27,
				TempMax:     30,
				TempMin:     24,
				WindSpeed:   10,
				WindGust:    15,
				Humidity:    55,
				Precip:      0,
				Description: "clear sky",
			})
		}
	}
	return samples
}

func melbourne() *models.Place {
	return &models.Place{Name: "Melbourne", Country: "AU", Latitude: -37.814, Longitude: 144.963}
}

func beachRequest() Request {
	return Request{
		City:     "Melbourne",
		Country:  "AU",
		Date:     "2026-01-10",
		Duration: 3,
		Activity: activity.SelectPreset("beach"),
	}
}

func TestPredictRendersReport(t *testing.T) {
	weather := &fakeWeather{place: melbourne(), samples: calmSamples(3)}
	store := &memStore{}
	p := New(weather, &fakeRisks{}, WithStore(store))

	text, err := p.Predict(context.Background(), beachRequest())
	require.NoError(t, err)

	assert.Contains(t, text, "WEATHER SUITABILITY ANALYSIS")
	assert.Contains(t, text, "Melbourne, AU")
	assert.Contains(t, text, "Beach Day")
	assert.Contains(t, text, "2026-01-10")
	assert.NotContains(t, text, "HISTORICAL RISK", "no risk section without trained models")

	require.Len(t, store.reports, 1)
	assert.Equal(t, "Melbourne", store.reports[0].City)
	assert.Equal(t, "Beach Day", store.reports[0].Activity)
	assert.Equal(t, 3, store.reports[0].Days)
	assert.NotEmpty(t, store.reports[0].Rating)
}

func TestPredictGeocodeMiss(t *testing.T) {
	weather := &fakeWeather{place: nil, samples: calmSamples(1)}
	p := New(weather, &fakeRisks{})

	_, err := p.Predict(context.Background(), beachRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `could not find location "Melbourne"`)
}

func TestPredictCoordinatesSurviveReverseGeocodeFailure(t *testing.T) {
	weather := &fakeWeather{reverseErr: errors.New("geo down"), samples: calmSamples(1)}
	p := New(weather, &fakeRisks{})

	req := beachRequest()
	req.City = ""
	req.HasCoords = true
	req.Latitude = -37.81
	req.Longitude = 144.96

	text, err := p.Predict(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, text, "-37.81, 144.96")
	assert.Zero(t, weather.geocodeCalls.Load(), "no forward geocode with explicit coordinates")
}

func TestPredictForecastErrorAborts(t *testing.T) {
	weather := &fakeWeather{place: melbourne(), forecastErr: errors.New("provider down")}
	p := New(weather, &fakeRisks{})

	_, err := p.Predict(context.Background(), beachRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch forecast")
}

func TestPredictTimeout(t *testing.T) {
	weather := &fakeWeather{place: melbourne(), blockForecast: true}
	p := New(weather, &fakeRisks{}, WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := p.Predict(context.Background(), beachRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPredictPanicRecovered(t *testing.T) {
	weather := &fakeWeather{place: melbourne(), samples: calmSamples(1)}
	p := New(weather, &panickyRisks{})

	_, err := p.Predict(context.Background(), beachRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prediction panicked")
	assert.Contains(t, err.Error(), "goroutine", "stack trace attached")
}

type panickyRisks struct{}

func (*panickyRisks) Ready() bool { return true }
func (*panickyRisks) Train(context.Context, float64, float64) (bool, error) {
	return false, nil
}
func (*panickyRisks) Risks([]float64) map[string]float64 { panic("boom") }

func TestPredictTrainsLazilyOnce(t *testing.T) {
	weather := &fakeWeather{place: melbourne(), samples: calmSamples(2)}
	risks := &fakeRisks{trainErr: errors.New("climate provider down")}
	p := New(weather, risks)

	for i := 0; i < 3; i++ {
		_, err := p.Predict(context.Background(), beachRequest())
		require.NoError(t, err, "training failure degrades, never aborts")
	}
	assert.Equal(t, int32(1), risks.trainCalls.Load(), "training attempted at most once per process")
}

func TestPredictSkipsTrainingWhenReady(t *testing.T) {
	weather := &fakeWeather{place: melbourne(), samples: calmSamples(1)}
	risks := &fakeRisks{ready: true, risks: map[string]float64{"hot": 0.9}}
	p := New(weather, risks)

	text, err := p.Predict(context.Background(), beachRequest())
	require.NoError(t, err)
	assert.Zero(t, risks.trainCalls.Load())
	assert.Contains(t, text, "HISTORICAL RISK")
	assert.Contains(t, text, "extreme heat (90%)")
}

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(_ context.Context, text string) string {
	return text + "\n📝 SUMMARY: Great beach weather.\n"
}

func TestPredictAppendsSummary(t *testing.T) {
	weather := &fakeWeather{place: melbourne(), samples: calmSamples(1)}
	p := New(weather, &fakeRisks{}, WithSummarizer(fakeSummarizer{}))

	text, err := p.Predict(context.Background(), beachRequest())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(text), "Great beach weather."), text)
}

func TestPredictEmptyForecast(t *testing.T) {
	weather := &fakeWeather{place: melbourne()}
	p := New(weather, &fakeRisks{})

	_, err := p.Predict(context.Background(), beachRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("no forecast data for %s", "Melbourne"))
}
