package train

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/lox/outdoorcast/internal/metrics"
	"github.com/lox/outdoorcast/internal/models"
)

const (
	// lookbackYears is the historical training window: five calendar
	// years ending the previous one.
	lookbackYears = 5

	// minSamples is the fewest clean daily records worth training on.
	minSamples = 100

	// Categories with a positive-class ratio outside these bounds carry
	// no usable signal and are skipped.
	minPositiveRatio = 0.01
	maxPositiveRatio = 0.99

	testFraction = 0.2
	splitSeed    = 42
)

// ClimateSource supplies historical daily climate records.
type ClimateSource interface {
	FetchDaily(ctx context.Context, lat, lon float64, startYear, endYear int) ([]models.ClimateDay, error)
}

// RunRecorder persists per-category training diagnostics. Optional.
type RunRecorder interface {
	RecordTrainingRun(run models.TrainingRun) error
}

// Trainer fits and caches the five adverse-condition classifiers for a
// geographic region. Models load from the on-disk cache when present;
// training only fills the gaps.
type Trainer struct {
	source   ClimateSource
	modelDir string
	clock    clockwork.Clock
	recorder RunRecorder

	mu     sync.Mutex
	models map[string]*CategoryModel
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithClock injects the clock used for lookback-window arithmetic.
func WithClock(c clockwork.Clock) Option {
	return func(t *Trainer) { t.clock = c }
}

// WithRecorder wires training-run diagnostics into a store.
func WithRecorder(r RunRecorder) Option {
	return func(t *Trainer) { t.recorder = r }
}

func New(source ClimateSource, modelDir string, opts ...Option) *Trainer {
	t := &Trainer{
		source:   source,
		modelDir: modelDir,
		clock:    clockwork.NewRealClock(),
		models:   make(map[string]*CategoryModel),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// LoadCached pulls any previously persisted category models off disk.
// Returns the number of categories now available.
func (t *Trainer) LoadCached() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, cat := range Categories {
		if _, ok := t.models[cat]; ok {
			continue
		}
		m, err := loadModel(t.modelDir, cat)
		if err != nil {
			continue
		}
		t.models[cat] = m
		log.Printf("trainer: loaded cached %s model", cat)
	}
	return len(t.models)
}

// Ready reports whether at least one category model is available.
func (t *Trainer) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.models) > 0
}

// Model returns the fitted model for a category, if present.
func (t *Trainer) Model(category string) (*CategoryModel, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.models[category]
	return m, ok
}

// Window returns the training lookback as an inclusive year range: five
// calendar years ending the previous one.
func (t *Trainer) Window() (startYear, endYear int) {
	endYear = t.clock.Now().Year() - 1
	return endYear - lookbackYears + 1, endYear
}

// Train fetches the historical series for the coordinate and fits every
// category that is neither cached nor signal-starved. Returns true when
// at least one category model is available afterwards; insufficient data
// is a false result, not an error, so callers can degrade to rule-based
// scoring.
func (t *Trainer) Train(ctx context.Context, lat, lon float64) (bool, error) {
	if t.LoadCached() == len(Categories) {
		log.Printf("trainer: all %d category models cached, skipping fetch", len(Categories))
		return true, nil
	}

	startYear, endYear := t.Window()
	log.Printf("trainer: fetching %d-%d climate history for (%.2f, %.2f)", startYear, endYear, lat, lon)

	days, err := t.source.FetchDaily(ctx, lat, lon, startYear, endYear)
	if err != nil {
		return t.Ready(), fmt.Errorf("fetch climate history: %w", err)
	}
	if len(days) < minSamples {
		log.Printf("trainer: only %d clean samples (<%d), using rule-based predictions", len(days), minSamples)
		return t.Ready(), nil
	}

	log.Printf("trainer: processing %d days of historical data", len(days))
	X, labels := Matrix(days)
	region := fmt.Sprintf("%.2f,%.2f", lat, lon)

	for _, cat := range Categories {
		if _, ok := t.Model(cat); ok {
			continue // cached copy wins
		}
		t.trainCategory(region, cat, X, labels[cat])
	}

	return t.Ready(), nil
}

func (t *Trainer) trainCategory(region, category string, X [][]float64, y []int) {
	run := models.TrainingRun{
		Region:   region,
		Category: category,
		Samples:  len(y),
	}

	positives := 0
	for _, label := range y {
		positives += label
	}
	run.PositiveRatio = float64(positives) / float64(len(y))

	if run.PositiveRatio < minPositiveRatio || run.PositiveRatio > maxPositiveRatio {
		run.SkippedReason = sql.NullString{String: "class imbalance", Valid: true}
		t.record(run)
		metrics.TrainingsTotal.WithLabelValues(category, "skipped").Inc()
		log.Printf("trainer: skipping %s (positive ratio %.3f)", category, run.PositiveRatio)
		return
	}

	trainIdx, testIdx := stratifiedSplit(y, testFraction, splitSeed)

	trainX := selectRows(X, trainIdx)
	scaler := FitScaler(trainX)

	forest := Fit(scaler.Transform(trainX), selectLabels(y, trainIdx), DefaultConfig())

	accuracy := forest.Accuracy(scaler.Transform(selectRows(X, testIdx)), selectLabels(y, testIdx))
	run.Accuracy = sql.NullFloat64{Float64: accuracy, Valid: true}
	log.Printf("trainer: %s model accuracy %.1f%%", category, accuracy*100)

	m := &CategoryModel{Forest: forest, Scaler: scaler}
	if err := saveModel(t.modelDir, category, m); err != nil {
		log.Printf("trainer: persist %s: %v", category, err)
		metrics.TrainingsTotal.WithLabelValues(category, "error").Inc()
		t.record(run)
		return
	}

	t.mu.Lock()
	t.models[category] = m
	t.mu.Unlock()

	run.Trained = true
	t.record(run)
	metrics.TrainingsTotal.WithLabelValues(category, "trained").Inc()
}

func (t *Trainer) record(run models.TrainingRun) {
	if t.recorder == nil {
		return
	}
	if err := t.recorder.RecordTrainingRun(run); err != nil {
		log.Printf("trainer: record run: %v", err)
	}
}

// Risks scores one day's raw (unscaled) feature vector against every
// available category model, returning positive-class probabilities.
func (t *Trainer) Risks(features []float64) map[string]float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.models) == 0 {
		return nil
	}
	risks := make(map[string]float64, len(t.models))
	for cat, m := range t.models {
		risks[cat] = m.Forest.Proba(m.Scaler.TransformRow(features))
	}
	return risks
}

// stratifiedSplit partitions indices into train/test preserving class
// proportions, with a seeded shuffle for reproducibility.
func stratifiedSplit(y []int, testFraction float64, seed int64) (trainIdx, testIdx []int) {
	var pos, neg []int
	for i, label := range y {
		if label == 1 {
			pos = append(pos, i)
		} else {
			neg = append(neg, i)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	for _, class := range [][]int{pos, neg} {
		class := class
		rng.Shuffle(len(class), func(i, j int) { class[i], class[j] = class[j], class[i] })
		nTest := int(float64(len(class)) * testFraction)
		testIdx = append(testIdx, class[:nTest]...)
		trainIdx = append(trainIdx, class[nTest:]...)
	}

	return trainIdx, testIdx
}

func selectRows(X [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = X[j]
	}
	return out
}

func selectLabels(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
