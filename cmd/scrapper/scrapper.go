package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/abelzeko/weather-report/internal/config"
	"github.com/abelzeko/weather-report/internal/integration"
	"github.com/abelzeko/weather-report/internal/repository"
	"github.com/abelzeko/weather-report/internal/usecases"
	"github.com/robfig/cron/v3"
)

func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Starting Weather Forecast Scraper...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	repo, err := repository.NewSQLiteForecastRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}
	defer repo.Close()

	// Space out requests when a tick walks several cities
	fetcher := integration.NewRateLimitedFetcher(integration.NewHTTPFetcher(cfg.HTTPTimeout), cfg.FetchRPS, 1)
	scraper := integration.NewForecastScraper(cfg.BaseURL, fetcher, integration.NewForecastExtractor(integration.GismeteoSchema{}))
	useCase := usecases.NewForecastUseCase(scraper, repo, cfg.CacheTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := useCase.RefreshForecasts(ctx, cfg.Cities); err != nil {
		log.Printf("Initial forecast refresh failed: %v", err)
	}

	c := cron.New()
	_, err = c.AddFunc(cfg.Schedule, func() {
		if err := useCase.RefreshForecasts(ctx, cfg.Cities); err != nil {
			log.Printf("Scheduled forecast refresh failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to set up cron job: %v", err)
	}

	log.Printf("Scraper has been scheduled with '%s' for %d cities", cfg.Schedule, len(cfg.Cities))
	c.Start()

	<-ctx.Done()
	log.Println("Shutting down scraper...")
	<-c.Stop().Done()
}
