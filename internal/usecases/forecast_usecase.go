// Package usecases contains the application's business logic
package usecases

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/abelzeko/weather-report/internal/entities"
	"github.com/abelzeko/weather-report/internal/repository"
)

// ForecastSource produces the raw daily records for a city
type ForecastSource interface {
	FetchDailyForecasts(ctx context.Context, city string) ([]entities.DailyForecast, error)
}

// ForecastUseCase runs the fetch, extract and aggregate pipeline and keeps
// results in a repository when one is configured
type ForecastUseCase struct {
	source   ForecastSource
	repo     repository.ForecastRepository
	cacheTTL time.Duration
	now      func() time.Time
}

// NewForecastUseCase creates a new forecast use case. repo may be nil, in
// which case every request goes to the source.
func NewForecastUseCase(source ForecastSource, repo repository.ForecastRepository, cacheTTL time.Duration) *ForecastUseCase {
	return &ForecastUseCase{
		source:   source,
		repo:     repo,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// FetchForecast runs the live pipeline for city; any failure aborts the whole run
func (uc *ForecastUseCase) FetchForecast(ctx context.Context, city string) (*entities.Forecast, error) {
	records, err := uc.source.FetchDailyForecasts(ctx, city)
	if err != nil {
		return nil, err
	}

	table, stats, err := Aggregate(records)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate forecast for %s: %w", city, err)
	}
	log.Printf("Aggregated %d forecast days for %s", len(table.Rows), city)

	return &entities.Forecast{
		Table:     table,
		Stats:     stats,
		FetchedAt: uc.now(),
	}, nil
}

// GetForecast serves a stored forecast while it is younger than the cache TTL,
// otherwise fetches a fresh one and stores it
func (uc *ForecastUseCase) GetForecast(ctx context.Context, city string) (*entities.Forecast, error) {
	city = strings.ToLower(strings.TrimSpace(city))
	if uc.repo != nil {
		table, fetchedAt, err := uc.repo.GetForecastByCity(city)
		if err != nil {
			log.Printf("Warning: failed to read stored forecast for %s: %v", city, err)
		} else if len(table.Rows) > 0 && uc.now().Sub(fetchedAt) < uc.cacheTTL {
			stats, err := ComputeStatistics(table)
			if err == nil {
				log.Printf("Using stored forecast for %s (fetched at %s)", city, fetchedAt.Format(time.RFC3339))
				return &entities.Forecast{Table: table, Stats: stats, FetchedAt: fetchedAt}, nil
			}
		}
	}

	forecast, err := uc.FetchForecast(ctx, city)
	if err != nil {
		return nil, err
	}
	uc.save(forecast)
	return forecast, nil
}

// RefreshForecasts fetches and stores the forecast of each city. A failing
// city is logged and skipped; an error is returned only when every city fails.
func (uc *ForecastUseCase) RefreshForecasts(ctx context.Context, cities []string) error {
	log.Printf("Starting forecast refresh for %d cities...", len(cities))
	if len(cities) == 0 {
		return errors.New("no cities configured")
	}

	var errs []error
	for _, city := range cities {
		forecast, err := uc.FetchForecast(ctx, city)
		if err != nil {
			log.Printf("Warning: failed to refresh forecast for %s: %v", city, err)
			errs = append(errs, fmt.Errorf("%s: %w", city, err))
			continue
		}
		uc.save(forecast)
	}

	if len(errs) == len(cities) {
		return fmt.Errorf("failed to refresh any forecast: %w", errors.Join(errs...))
	}
	log.Printf("Forecast refresh finished: %d ok, %d failed", len(cities)-len(errs), len(errs))
	return nil
}

// GetAvailableCities returns every city with a stored forecast
func (uc *ForecastUseCase) GetAvailableCities() ([]string, error) {
	log.Println("Retrieving list of available cities")
	if uc.repo == nil {
		return nil, nil
	}
	return uc.repo.GetCities()
}

// GetLastUpdateTime returns the time of the latest stored fetch
func (uc *ForecastUseCase) GetLastUpdateTime() (time.Time, error) {
	if uc.repo == nil {
		return time.Time{}, nil
	}
	return uc.repo.GetLastUpdateTime()
}

func (uc *ForecastUseCase) save(forecast *entities.Forecast) {
	if uc.repo == nil {
		return
	}
	if err := uc.repo.SaveForecast(forecast.Table, forecast.FetchedAt); err != nil {
		log.Printf("Warning: failed to store forecast for %s: %v", forecast.Table.City, err)
	}
}
