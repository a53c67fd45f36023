// Package forecast rolls 3-hour forecast samples up into per-day
// summaries suitable for scoring.
package forecast

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/lox/outdoorcast/internal/models"
)

// samplesPerDay is the number of 3-hour steps in one day of feed data.
const samplesPerDay = 8

// Aggregate groups samples by local calendar day and reduces each group
// to a DaySummary: mean temperature and wind, extremes from the
// per-sample extremes, summed precipitation. At most days*8 samples are
// consumed. The first sample's description represents the day.
func Aggregate(samples []models.ForecastSample, days int) []models.DaySummary {
	if days > 0 && len(samples) > days*samplesPerDay {
		samples = samples[:days*samplesPerDay]
	}

	groups := make(map[string][]models.ForecastSample)
	for _, s := range samples {
		key := s.Time.Format("2006-01-02")
		groups[key] = append(groups[key], s)
	}

	dates := make([]string, 0, len(groups))
	for date := range groups {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	summaries := make([]models.DaySummary, 0, len(dates))
	for _, date := range dates {
		summaries = append(summaries, summarize(date, groups[date]))
	}
	return summaries
}

func summarize(date string, samples []models.ForecastSample) models.DaySummary {
	day := models.DaySummary{
		Date:        date,
		TempMax:     samples[0].TempMax,
		TempMin:     samples[0].TempMin,
		Description: samples[0].Description,
		Samples:     len(samples),
	}

	temps := make([]float64, len(samples))
	winds := make([]float64, len(samples))
	humidities := make([]float64, len(samples))

	for i, s := range samples {
		temps[i] = s.Temp
		winds[i] = s.WindSpeed
		humidities[i] = s.Humidity

		if s.TempMax > day.TempMax {
			day.TempMax = s.TempMax
		}
		if s.TempMin < day.TempMin {
			day.TempMin = s.TempMin
		}
		gust := s.WindGust
		if gust == 0 {
			gust = s.WindSpeed
		}
		if gust > day.GustMax {
			day.GustMax = gust
		}
		day.Precip += s.Precip
	}

	day.TempMean = stat.Mean(temps, nil)
	day.WindMean = stat.Mean(winds, nil)
	day.HumidityMean = stat.Mean(humidities, nil)

	return day
}
