// Package store persists climate history, training diagnostics, and
// prediction reports in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lox/outdoorcast/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// RegionKey buckets a coordinate for climate caching. Two decimals is
// roughly a 1km cell, well inside the climate API's spatial resolution.
func RegionKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}

// UpsertClimateDays stores a fetched historical series for a region.
func (s *Store) UpsertClimateDays(region string, days []models.ClimateDay) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO climate_days (region, date, temp_mean, temp_max, temp_min, precip, wind_mean, wind_max, humidity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(region, date) DO UPDATE SET
			temp_mean = excluded.temp_mean,
			temp_max = excluded.temp_max,
			temp_min = excluded.temp_min,
			precip = excluded.precip,
			wind_mean = excluded.wind_mean,
			wind_max = excluded.wind_max,
			humidity = excluded.humidity
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, d := range days {
		if _, err := stmt.Exec(region, d.Date.Format("2006-01-02"), d.TempMean, d.TempMax, d.TempMin, d.Precip, d.WindMean, d.WindMax, d.Humidity); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert climate day %s: %w", d.Date.Format("2006-01-02"), err)
		}
	}

	return tx.Commit()
}

// GetClimateDays returns the cached series for a region across an
// inclusive year range, sorted by date.
func (s *Store) GetClimateDays(region string, startYear, endYear int) ([]models.ClimateDay, error) {
	rows, err := s.db.Query(`
		SELECT date, temp_mean, temp_max, temp_min, precip, wind_mean, wind_max, humidity
		FROM climate_days
		WHERE region = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, region, fmt.Sprintf("%d-01-01", startYear), fmt.Sprintf("%d-12-31", endYear))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []models.ClimateDay
	for rows.Next() {
		var d models.ClimateDay
		var date string
		if err := rows.Scan(&date, &d.TempMean, &d.TempMax, &d.TempMin, &d.Precip, &d.WindMean, &d.WindMax, &d.Humidity); err != nil {
			return nil, err
		}
		d.Date, err = time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("parse cached date %q: %w", date, err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// RecordClimateFetch marks a year range as fully fetched for a region.
func (s *Store) RecordClimateFetch(region string, startYear, endYear, recordCount int) error {
	_, err := s.db.Exec(`
		INSERT INTO climate_fetches (region, start_year, end_year, record_count, fetched_at)
		VALUES (?, ?, ?, ?, ?)
	`, region, startYear, endYear, recordCount, time.Now().UTC())
	return err
}

// HasClimateFetch reports whether a prior fetch covers the year range.
func (s *Store) HasClimateFetch(region string, startYear, endYear int) (bool, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM climate_fetches
		WHERE region = ? AND start_year <= ? AND end_year >= ?
	`, region, startYear, endYear).Scan(&count)
	return count > 0, err
}

// RecordTrainingRun stores one category's training diagnostics.
func (s *Store) RecordTrainingRun(run models.TrainingRun) error {
	_, err := s.db.Exec(`
		INSERT INTO training_runs (region, category, samples, positive_ratio, accuracy, skipped_reason, trained)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.Region, run.Category, run.Samples, run.PositiveRatio, run.Accuracy, run.SkippedReason, run.Trained)
	return err
}

// GetTrainingRuns returns a region's training history, newest first.
func (s *Store) GetTrainingRuns(region string) ([]models.TrainingRun, error) {
	rows, err := s.db.Query(`
		SELECT id, region, category, samples, positive_ratio, accuracy, skipped_reason, trained, created_at
		FROM training_runs
		WHERE region = ?
		ORDER BY id DESC
	`, region)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.TrainingRun
	for rows.Next() {
		var r models.TrainingRun
		if err := rows.Scan(&r.ID, &r.Region, &r.Category, &r.Samples, &r.PositiveRatio, &r.Accuracy, &r.SkippedReason, &r.Trained, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// InsertReport stores a rendered prediction report.
func (s *Store) InsertReport(r models.ReportRecord) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO reports (city, country, latitude, longitude, activity, start_date, days, overall_score, rating, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.City, r.Country, r.Latitude, r.Longitude, r.Activity, r.StartDate, r.Days, r.OverallScore, r.Rating, r.Report)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetRecentReports returns the latest stored reports.
func (s *Store) GetRecentReports(limit int) ([]models.ReportRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, city, country, latitude, longitude, activity, start_date, days, overall_score, rating, report, created_at
		FROM reports
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.ReportRecord
	for rows.Next() {
		var r models.ReportRecord
		if err := rows.Scan(&r.ID, &r.City, &r.Country, &r.Latitude, &r.Longitude, &r.Activity, &r.StartDate, &r.Days, &r.OverallScore, &r.Rating, &r.Report, &r.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
