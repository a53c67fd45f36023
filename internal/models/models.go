package models

import (
	"database/sql"
	"time"
)

// ClimateDay is one daily historical record from NASA POWER, after
// missing-value filtering. Wind speeds are m/s as delivered by the API.
type ClimateDay struct {
	Date     time.Time
	TempMean float64 // T2M
	TempMax  float64 // T2M_MAX
	TempMin  float64 // T2M_MIN
	Precip   float64 // PRECTOTCORR, mm/day
	WindMean float64 // WS10M
	WindMax  float64 // WS10M_MAX
	Humidity float64 // RH2M, percent
}

// ForecastSample is a single 3-hour step from the forecast feed,
// converted to metric with winds in km/h.
type ForecastSample struct {
	Time        time.Time // city-local
	Temp        float64
	TempMax     float64
	TempMin     float64
	WindSpeed   float64
	WindGust    float64
	Humidity    float64
	Precip      float64 // rain + snow accumulation for the 3h window, mm
	Description string
	Main        string
}

// DaySummary rolls 3-hour samples up to one local calendar day.
type DaySummary struct {
	Date         string // YYYY-MM-DD
	TempMean     float64
	TempMax      float64 // max of per-sample maxes
	TempMin      float64 // min of per-sample mins
	WindMean     float64
	GustMax      float64
	HumidityMean float64
	Precip       float64 // summed accumulation
	Description  string
	Samples      int
}

// Place is a geocoding result.
type Place struct {
	Name      string
	Country   string
	State     string
	Latitude  float64
	Longitude float64
}

// TrainingRun records one category's training attempt for diagnostics.
type TrainingRun struct {
	ID            int64
	Region        string
	Category      string
	Samples       int
	PositiveRatio float64
	Accuracy      sql.NullFloat64
	SkippedReason sql.NullString
	Trained       bool
	CreatedAt     time.Time
}

// ReportRecord is a stored prediction report.
type ReportRecord struct {
	ID           int64
	City         string
	Country      string
	Latitude     float64
	Longitude    float64
	Activity     string
	StartDate    string
	Days         int
	OverallScore float64
	Rating       string
	Report       string
	CreatedAt    time.Time
}
