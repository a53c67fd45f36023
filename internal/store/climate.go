package store

import (
	"context"
	"fmt"
	"log"

	"github.com/lox/outdoorcast/internal/models"
)

// ClimateFetcher is the upstream historical-climate source.
type ClimateFetcher interface {
	FetchDaily(ctx context.Context, lat, lon float64, startYear, endYear int) ([]models.ClimateDay, error)
}

// CachedClimate serves historical series from the local store when a
// prior fetch covers the requested window, deferring to the upstream
// provider otherwise. Cached series never expire.
type CachedClimate struct {
	store  *Store
	source ClimateFetcher
}

func NewCachedClimate(store *Store, source ClimateFetcher) *CachedClimate {
	return &CachedClimate{store: store, source: source}
}

func (c *CachedClimate) FetchDaily(ctx context.Context, lat, lon float64, startYear, endYear int) ([]models.ClimateDay, error) {
	region := RegionKey(lat, lon)

	covered, err := c.store.HasClimateFetch(region, startYear, endYear)
	if err != nil {
		return nil, fmt.Errorf("check climate cache: %w", err)
	}
	if covered {
		days, err := c.store.GetClimateDays(region, startYear, endYear)
		if err != nil {
			return nil, fmt.Errorf("read climate cache: %w", err)
		}
		log.Printf("store: serving %d cached climate days for %s", len(days), region)
		return days, nil
	}

	days, err := c.source.FetchDaily(ctx, lat, lon, startYear, endYear)
	if err != nil {
		return nil, err
	}

	if err := c.store.UpsertClimateDays(region, days); err != nil {
		// Cache failure is not fatal; the fetched data still serves.
		log.Printf("store: cache climate days for %s: %v", region, err)
		return days, nil
	}
	if err := c.store.RecordClimateFetch(region, startYear, endYear, len(days)); err != nil {
		log.Printf("store: record climate fetch for %s: %v", region, err)
	}

	return days, nil
}
