// Package train fits the per-category adverse-condition classifiers
// from historical daily climate records.
package train

import (
	"math"

	"github.com/lox/outdoorcast/internal/models"
	"github.com/lox/outdoorcast/internal/score"
)

// Categories are the adverse-condition classifiers, one independent
// binary model each.
var Categories = []string{"hot", "cold", "windy", "wet", "uncomfortable"}

// FeatureCount is the width of the engineered feature vector.
const FeatureCount = 15

// Features derives the engineered columns for one climate day: the raw
// fields, calendar features with cyclical encodings, the intra-day
// temperature range, and the apparent-temperature values.
func Features(d models.ClimateDay) []float64 {
	month := float64(d.Date.Month())
	dayOfYear := float64(d.Date.YearDay())
	season := float64((int(d.Date.Month())%12 + 3) / 3)

	return []float64{
		d.TempMean,
		d.TempMax,
		d.TempMin,
		d.WindMean,
		d.WindMax,
		d.Humidity,
		month,
		season,
		math.Sin(2 * math.Pi * month / 12),
		math.Cos(2 * math.Pi * month / 12),
		math.Sin(2 * math.Pi * dayOfYear / 365),
		math.Cos(2 * math.Pi * dayOfYear / 365),
		d.TempMax - d.TempMin,
		score.HeatIndex(d.TempMean, d.Humidity),
		score.WindChill(d.TempMean, d.WindMean*3.6),
	}
}

// Label derives the binary label for one category. POWER winds are m/s;
// the windy threshold is expressed in km/h.
func Label(d models.ClimateDay, category string) int {
	switch category {
	case "hot":
		if d.TempMax > 35 {
			return 1
		}
	case "cold":
		if d.TempMin < 0 {
			return 1
		}
	case "windy":
		if d.WindMax*3.6 > 40 {
			return 1
		}
	case "wet":
		if d.Precip > 10 {
			return 1
		}
	case "uncomfortable":
		hi := score.HeatIndex(d.TempMean, d.Humidity)
		wc := score.WindChill(d.TempMean, d.WindMean*3.6)
		if hi > 32 || wc < 0 {
			return 1
		}
	}
	return 0
}

// Matrix builds the feature matrix and per-category label vectors for a
// series of climate days.
func Matrix(days []models.ClimateDay) ([][]float64, map[string][]int) {
	X := make([][]float64, len(days))
	labels := make(map[string][]int, len(Categories))
	for _, cat := range Categories {
		labels[cat] = make([]int, len(days))
	}

	for i, d := range days {
		X[i] = Features(d)
		for _, cat := range Categories {
			labels[cat][i] = Label(d, cat)
		}
	}

	return X, labels
}
