package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abelzeko/weather-report/internal/entities"
	"github.com/abelzeko/weather-report/internal/integration"
	"github.com/abelzeko/weather-report/internal/repository"
	"github.com/abelzeko/weather-report/internal/usecases"
)

// londonPage is a trimmed copy of the gismeteo 10-day widget with the days out of order
const londonPage = `
<!DOCTYPE html>
<html>
<head><title>Погода в Лондоне на 10 дней</title></head>
<body>
<div class="widget widget-weather-parameters">
    <div class="widget-row widget-row-days">
        <span class="unit" data-day="2024-01-17">Ср</span>
        <span class="unit" data-day="2024-01-15">Пн</span>
        <span class="unit" data-day="2024-01-16">Вт</span>
        <span class="unit" data-day="2024-01-18">Чт</span>
        <span class="unit" data-day="2024-01-19">Пт</span>
        <span class="unit" data-day="2024-01-20">Сб</span>
        <span class="unit" data-day="2024-01-21">Вс</span>
        <span class="unit" data-day="2024-01-22">Пн</span>
    </div>
    <div class="widget-row widget-row-temperature">
        <div class="unit"><span class="value">+5°</span></div>
        <div class="unit"><span class="value">−3°</span></div>
        <div class="unit"><span class="value">0°</span></div>
        <div class="unit"><span class="value">+2°</span></div>
        <div class="unit"><span class="value">−1°</span></div>
        <div class="unit"><span class="value">+4°</span></div>
        <div class="unit"><span class="value">+1°</span></div>
        <div class="unit"><span class="value">+9°</span></div>
    </div>
    <div class="widget-row widget-row-precipitation">
        <div class="unit"><span class="unit_value">0 мм</span></div>
        <div class="unit"><span class="unit_value">0 мм</span></div>
        <div class="unit"><span class="unit_value">2 мм</span></div>
        <div class="unit"><span class="unit_value">5,5 мм</span></div>
        <div class="unit"><span class="unit_value">0 мм</span></div>
        <div class="unit"><span class="unit_value">0 мм</span></div>
    </div>
</div>
</body>
</html>`

// mockHTMLServer serves html for the given city's forecast path and 404 for everything else
func mockHTMLServer(city, html string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != fmt.Sprintf("/weather-%s/10-days/", city) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, html)
	}))
}

func newTestUseCase(baseURL string, repo repository.ForecastRepository) *usecases.ForecastUseCase {
	scraper := integration.NewForecastScraper(baseURL, integration.NewHTTPFetcher(2*time.Second), integration.NewForecastExtractor(integration.GismeteoSchema{}))
	return usecases.NewForecastUseCase(scraper, repo, time.Hour)
}

// TestEndToEndWithMock runs the whole pipeline against a mock forecast page
func TestEndToEndWithMock(t *testing.T) {
	server := mockHTMLServer("london", londonPage)
	defer server.Close()

	forecast, err := newTestUseCase(server.URL, nil).FetchForecast(context.Background(), "london")
	if err != nil {
		t.Fatalf("FetchForecast failed: %v", err)
	}

	if len(forecast.Table.Rows) != 7 {
		t.Fatalf("Expected 7 rows, got %d", len(forecast.Table.Rows))
	}
	for i := 1; i < len(forecast.Table.Rows); i++ {
		if !forecast.Table.Rows[i-1].Day.Before(forecast.Table.Rows[i].Day) {
			t.Errorf("Rows not sorted at %d", i)
		}
	}

	// Seventh precipitation cell is missing and defaults to 0 мм
	want := entities.SummaryStatistics{
		MeanTemperature:   1.1,
		MinTemperature:    -3,
		MaxTemperature:    5,
		MeanPrecipitation: 1.1,
		PrecipitationDays: 2,
	}
	if forecast.Stats != want {
		t.Errorf("Expected stats %+v, got %+v", want, forecast.Stats)
	}

	report := usecases.FormatReport(forecast.Table, forecast.Stats)
	if !strings.Contains(report, "Дата: 15.01.2024\nТемпература: −3°\nОсадки: 0 мм\n") {
		t.Errorf("Report does not start with the earliest day:\n%s", report)
	}
	if strings.Contains(report, "22.01.2024") {
		t.Error("Report contains an eighth day")
	}
}

// TestUnknownCityWithMock checks that a missing page surfaces as a FetchError
func TestUnknownCityWithMock(t *testing.T) {
	server := mockHTMLServer("london", londonPage)
	defer server.Close()

	_, err := newTestUseCase(server.URL, nil).FetchForecast(context.Background(), "atlantis")
	if err == nil {
		t.Fatal("Expected an error for an unknown city")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected 404 in error, got %v", err)
	}
}

// TestDatabaseIntegration refreshes forecasts into a temporary database
func TestDatabaseIntegration(t *testing.T) {
	server := mockHTMLServer("london", londonPage)
	defer server.Close()

	dbPath := filepath.Join(t.TempDir(), "test-forecast.db")
	repo, err := repository.NewSQLiteForecastRepository(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize repository: %v", err)
	}
	defer repo.Close()

	useCase := newTestUseCase(server.URL, repo)
	if err := useCase.RefreshForecasts(context.Background(), []string{"london", "atlantis"}); err != nil {
		t.Fatalf("RefreshForecasts failed: %v", err)
	}

	cities, err := repo.GetCities()
	if err != nil {
		t.Fatalf("Failed to get cities: %v", err)
	}
	if len(cities) != 1 || cities[0] != "london" {
		t.Errorf("Expected only london to be stored, got %v", cities)
	}

	table, fetchedAt, err := repo.GetForecastByCity("london")
	if err != nil {
		t.Fatalf("Failed to read stored forecast: %v", err)
	}
	if len(table.Rows) != 7 {
		t.Errorf("Expected 7 stored rows, got %d", len(table.Rows))
	}
	if fetchedAt.IsZero() {
		t.Error("Stored forecast has zero fetch time")
	}
}

// TestFetchForecastLive hits the real site
func TestFetchForecastLive(t *testing.T) {
	if os.Getenv("CI") == "true" || testing.Short() {
		t.Skip("Skipping network test")
	}

	forecast, err := newTestUseCase("", nil).FetchForecast(context.Background(), "moscow")
	if err != nil {
		// Don't fail the test if it's just a temporary network issue or a layout change
		t.Logf("Warning: Failed to fetch live forecast: %v", err)
		t.Skip("Skipping test due to network issues - this is not a code bug")
		return
	}

	t.Logf("Fetched %d days for moscow", len(forecast.Table.Rows))
	if len(forecast.Table.Rows) == 0 || len(forecast.Table.Rows) > 7 {
		t.Errorf("Expected 1-7 rows, got %d", len(forecast.Table.Rows))
	}
}
