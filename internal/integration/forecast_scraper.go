package integration

import (
	"context"
	"log"

	"github.com/abelzeko/weather-report/internal/entities"
)

// ForecastScraper fetches a city's forecast page and extracts its daily records
type ForecastScraper struct {
	baseURL   string
	fetcher   PageFetcher
	extractor *ForecastExtractor
}

// NewForecastScraper creates a scraper for the site at baseURL.
// An empty baseURL means DefaultBaseURL and a nil fetcher means an HTTPFetcher
// with DefaultTimeout.
func NewForecastScraper(baseURL string, fetcher PageFetcher, extractor *ForecastExtractor) *ForecastScraper {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if fetcher == nil {
		fetcher = NewHTTPFetcher(DefaultTimeout)
	}
	if extractor == nil {
		extractor = NewForecastExtractor(nil)
	}
	return &ForecastScraper{
		baseURL:   baseURL,
		fetcher:   fetcher,
		extractor: extractor,
	}
}

// FetchDailyForecasts retrieves the raw daily records for city
func (s *ForecastScraper) FetchDailyForecasts(ctx context.Context, city string) ([]entities.DailyForecast, error) {
	url, err := ForecastURL(s.baseURL, city)
	if err != nil {
		return nil, err
	}
	slug, _ := NormalizeCity(city)

	log.Printf("Fetching forecast for %s", slug)
	markup, err := s.fetcher.FetchPage(ctx, url)
	if err != nil {
		return nil, err
	}

	return s.extractor.Extract(markup, slug)
}
