// Package score computes 0-100 weather suitability scores for outdoor
// activities from daily forecast rollups.
package score

import (
	"fmt"

	"github.com/lox/outdoorcast/internal/activity"
	"github.com/lox/outdoorcast/internal/models"
)

// Component decay rates and weights. Fixed design constants.
const (
	tempPenaltyPerDegree = 5
	windPenaltyPerKmh    = 3
	rainPenaltyPerMm     = 10

	tempWeight = 0.5
	windWeight = 0.25
	rainWeight = 0.25
)

// Breakdown carries the per-component scores alongside the combined
// suitability value.
type Breakdown struct {
	Temperature float64
	Wind        float64
	Rain        float64
	Combined    float64
}

// Suitability scores one day against an activity profile. Each component
// is 100 inside its bound and decays linearly outside, floored at 0; the
// combined score weights temperature twice as heavily as wind or rain.
func Suitability(day models.DaySummary, profile activity.Profile) Breakdown {
	var b Breakdown

	switch {
	case day.TempMean >= profile.IdealTempMin && day.TempMean <= profile.IdealTempMax:
		b.Temperature = 100
	case day.TempMean < profile.IdealTempMin:
		b.Temperature = max(0, 100-(profile.IdealTempMin-day.TempMean)*tempPenaltyPerDegree)
	default:
		b.Temperature = max(0, 100-(day.TempMean-profile.IdealTempMax)*tempPenaltyPerDegree)
	}

	b.Wind = 100
	if day.WindMean > profile.MaxWind {
		b.Wind = max(0, 100-(day.WindMean-profile.MaxWind)*windPenaltyPerKmh)
	}

	b.Rain = 100
	if day.Precip > profile.MaxRain {
		b.Rain = max(0, 100-(day.Precip-profile.MaxRain)*rainPenaltyPerMm)
	}

	b.Combined = b.Temperature*tempWeight + b.Wind*windWeight + b.Rain*rainWeight
	return b
}

// Rating is the four-level band a score falls in.
type Rating struct {
	Label string
	Icon  string
	Color string
}

var (
	RatingExcellent = Rating{Label: "EXCELLENT", Icon: "✅", Color: "#2E7D32"}
	RatingGood      = Rating{Label: "GOOD", Icon: "👍", Color: "#558B2F"}
	RatingFair      = Rating{Label: "FAIR", Icon: "⚠️", Color: "#F57C00"}
	RatingPoor      = Rating{Label: "POOR", Icon: "❌", Color: "#D32F2F"}
)

// RatingFor maps a score to its band. Boundaries are inclusive at 80, 60
// and 40.
func RatingFor(score float64) Rating {
	switch {
	case score >= 80:
		return RatingExcellent
	case score >= 60:
		return RatingGood
	case score >= 40:
		return RatingFair
	default:
		return RatingPoor
	}
}

// Concerns flags worst-case risks for a day using the extreme values
// (max temp, min temp, peak gust, total precip) rather than the means
// the score uses. The hot check takes precedence over the cold check.
func Concerns(day models.DaySummary, profile activity.Profile) []string {
	var concerns []string

	if day.TempMax > profile.IdealTempMax {
		concerns = append(concerns, fmt.Sprintf("May be too hot (>%.0f°C)", profile.IdealTempMax))
	} else if day.TempMin < profile.IdealTempMin {
		concerns = append(concerns, fmt.Sprintf("May be too cold (<%.0f°C)", profile.IdealTempMin))
	}

	if day.GustMax > profile.MaxWind {
		concerns = append(concerns, fmt.Sprintf("High winds expected (>%.0f km/h)", profile.MaxWind))
	}

	if day.Precip > profile.MaxRain {
		concerns = append(concerns, fmt.Sprintf("Heavy rain expected (>%.0f mm)", profile.MaxRain))
	}

	return concerns
}
