package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/abelzeko/weather-report/internal/config"
	"github.com/abelzeko/weather-report/internal/integration"
	"github.com/abelzeko/weather-report/internal/usecases"
)

// promptCity asks for a city slug on stdin
func promptCity() (string, error) {
	fmt.Print("Введите свой город, на английском и маленькими буквами: ")
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read city: %w", err)
		}
		return "", fmt.Errorf("no city given")
	}
	return scanner.Text(), nil
}

func main() {
	// The report goes to stdout, so keep logs on stderr
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	city, err := promptCity()
	if err != nil {
		log.Fatalf("%v", err)
	}

	scraper := integration.NewForecastScraper(
		cfg.BaseURL,
		integration.NewHTTPFetcher(cfg.HTTPTimeout),
		integration.NewForecastExtractor(integration.GismeteoSchema{}),
	)
	useCase := usecases.NewForecastUseCase(scraper, nil, 0)

	forecast, err := useCase.FetchForecast(context.Background(), city)
	if err != nil {
		log.Fatalf("Failed to build forecast: %v", err)
	}

	if err := usecases.PrintReport(os.Stdout, forecast.Table, forecast.Stats); err != nil {
		log.Fatalf("Failed to print report: %v", err)
	}
}
