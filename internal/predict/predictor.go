// Package predict orchestrates a suitability prediction: resolve the
// place, fetch and roll up the forecast, score it, and render the
// report, with the classifier risks folded in when models exist.
package predict

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/lox/outdoorcast/internal/activity"
	"github.com/lox/outdoorcast/internal/forecast"
	"github.com/lox/outdoorcast/internal/metrics"
	"github.com/lox/outdoorcast/internal/models"
	"github.com/lox/outdoorcast/internal/report"
	"github.com/lox/outdoorcast/internal/train"
)

const defaultTimeout = 30 * time.Second

// WeatherSource is the forecast-provider surface the predictor needs.
type WeatherSource interface {
	Geocode(ctx context.Context, city, country string) (*models.Place, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (*models.Place, error)
	FetchForecast(ctx context.Context, lat, lon float64) ([]models.ForecastSample, error)
}

// RiskModel is the trained-classifier surface the predictor needs.
type RiskModel interface {
	Ready() bool
	Train(ctx context.Context, lat, lon float64) (bool, error)
	Risks(features []float64) map[string]float64
}

// ReportStore persists rendered reports. A nil store disables history.
type ReportStore interface {
	InsertReport(models.ReportRecord) (int64, error)
}

// Summarizer optionally appends a model-written summary to a report.
type Summarizer interface {
	Summarize(ctx context.Context, reportText string) string
}

// Request describes one prediction. Either City (with optional Country)
// or explicit coordinates identify the place; coordinates win when both
// are set.
type Request struct {
	City      string
	Country   string
	Latitude  float64
	Longitude float64
	HasCoords bool

	Date     string // YYYY-MM-DD, informational
	Duration int    // days, 1-5
	Activity activity.Selection
}

type Predictor struct {
	weather    WeatherSource
	risks      RiskModel
	store      ReportStore
	summarizer Summarizer
	timeout    time.Duration

	trainOnce sync.Once
}

type Option func(*Predictor)

// WithStore enables report history.
func WithStore(s ReportStore) Option {
	return func(p *Predictor) { p.store = s }
}

// WithSummarizer enables the optional LLM summary.
func WithSummarizer(s Summarizer) Option {
	return func(p *Predictor) { p.summarizer = s }
}

// WithTimeout overrides the per-prediction deadline.
func WithTimeout(d time.Duration) Option {
	return func(p *Predictor) { p.timeout = d }
}

func New(weather WeatherSource, risks RiskModel, opts ...Option) *Predictor {
	p := &Predictor{
		weather: weather,
		risks:   risks,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type outcome struct {
	text string
	err  error
}

// Predict runs one prediction under the predictor's deadline. The work
// runs on its own goroutine and delivers exactly once on a buffered
// channel; hitting the deadline cancels the worker's outbound calls and
// the abandoned goroutine exits on its own.
func (p *Predictor) Predict(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("prediction panicked: %v\n%s", r, debug.Stack())}
			}
		}()
		text, err := p.run(ctx, req)
		ch <- outcome{text: text, err: err}
	}()

	select {
	case out := <-ch:
		metrics.PredictionDuration.Observe(time.Since(start).Seconds())
		if out.err != nil {
			metrics.PredictionsTotal.WithLabelValues("error").Inc()
			return "", out.err
		}
		metrics.PredictionsTotal.WithLabelValues("ok").Inc()
		return out.text, nil
	case <-ctx.Done():
		metrics.PredictionDuration.Observe(time.Since(start).Seconds())
		metrics.PredictionsTotal.WithLabelValues("timeout").Inc()
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("prediction timed out after %s", p.timeout)
		}
		return "", fmt.Errorf("prediction cancelled: %w", ctx.Err())
	}
}

func (p *Predictor) run(ctx context.Context, req Request) (string, error) {
	place, err := p.resolvePlace(ctx, req)
	if err != nil {
		return "", err
	}

	p.ensureTrained(ctx, place.Latitude, place.Longitude)

	samples, err := p.weather.FetchForecast(ctx, place.Latitude, place.Longitude)
	if err != nil {
		return "", fmt.Errorf("fetch forecast: %w", err)
	}
	if len(samples) == 0 {
		return "", fmt.Errorf("no forecast data for %s", place.Name)
	}

	duration := req.Duration
	if duration < 1 {
		duration = 1
	}
	days := forecast.Aggregate(samples, duration)

	profile := req.Activity.Resolve()
	res := report.Render(report.Input{
		Place:     *place,
		Profile:   profile,
		StartDate: req.Date,
		Duration:  duration,
		Days:      days,
		Risks:     p.dayRisks(days),
	})

	text := res.Text
	if p.summarizer != nil {
		text = p.summarizer.Summarize(ctx, text)
	}

	p.saveReport(place, profile, req, duration, res)
	return text, nil
}

func (p *Predictor) resolvePlace(ctx context.Context, req Request) (*models.Place, error) {
	if req.HasCoords {
		place, err := p.weather.ReverseGeocode(ctx, req.Latitude, req.Longitude)
		if err != nil || place == nil {
			if err != nil {
				log.Printf("predict: reverse geocode (%.4f, %.4f): %v", req.Latitude, req.Longitude, err)
			}
			// A missing place name never blocks a coordinate prediction.
			return &models.Place{
				Name:      fmt.Sprintf("%.2f, %.2f", req.Latitude, req.Longitude),
				Latitude:  req.Latitude,
				Longitude: req.Longitude,
			}, nil
		}
		place.Latitude = req.Latitude
		place.Longitude = req.Longitude
		return place, nil
	}

	place, err := p.weather.Geocode(ctx, req.City, req.Country)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", req.City, err)
	}
	if place == nil {
		return nil, fmt.Errorf("could not find location %q", req.City)
	}
	return place, nil
}

// ensureTrained lazily trains the classifiers at most once per process
// when no cached models loaded. Training failure degrades the report to
// rule-based scoring only.
func (p *Predictor) ensureTrained(ctx context.Context, lat, lon float64) {
	if p.risks == nil || p.risks.Ready() {
		return
	}
	p.trainOnce.Do(func() {
		log.Printf("predict: no cached models, training for (%.2f, %.2f)", lat, lon)
		ok, err := p.risks.Train(ctx, lat, lon)
		if err != nil {
			log.Printf("predict: training failed: %v", err)
			return
		}
		if !ok {
			log.Printf("predict: training produced no usable models")
		}
	})
}

// dayRisks asks the classifiers about each forecast day, expressed as
// the daily climate record the models were trained on. Summary winds are
// km/h while climate winds are m/s.
func (p *Predictor) dayRisks(days []models.DaySummary) []map[string]float64 {
	if p.risks == nil || !p.risks.Ready() {
		return nil
	}

	out := make([]map[string]float64, len(days))
	for i, day := range days {
		date, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			continue
		}
		out[i] = p.risks.Risks(train.Features(models.ClimateDay{
			Date:     date,
			TempMean: day.TempMean,
			TempMax:  day.TempMax,
			TempMin:  day.TempMin,
			Precip:   day.Precip,
			WindMean: day.WindMean / 3.6,
			WindMax:  day.GustMax / 3.6,
			Humidity: day.HumidityMean,
		}))
	}
	return out
}

func (p *Predictor) saveReport(place *models.Place, profile activity.Profile, req Request, duration int, res report.Result) {
	if p.store == nil {
		return
	}
	_, err := p.store.InsertReport(models.ReportRecord{
		City:         place.Name,
		Country:      place.Country,
		Latitude:     place.Latitude,
		Longitude:    place.Longitude,
		Activity:     profile.Name,
		StartDate:    req.Date,
		Days:         duration,
		OverallScore: res.OverallScore,
		Rating:       res.Rating.Label,
		Report:       res.Text,
	})
	if err != nil {
		log.Printf("predict: save report: %v", err)
	}
}
