package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/abelzeko/weather-report/internal/api"
	"github.com/abelzeko/weather-report/internal/config"
	"github.com/abelzeko/weather-report/internal/integration"
	"github.com/abelzeko/weather-report/internal/integration/openai"
	"github.com/abelzeko/weather-report/internal/repository"
	"github.com/abelzeko/weather-report/internal/usecases"
)

func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Starting Weather Bot...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	// Free-text questions are optional
	var resolver openai.CityResolver
	if cfg.OpenAIAPIKey != "" {
		resolver, err = openai.NewOpenAIService(cfg.OpenAIAPIKey)
		if err != nil {
			log.Fatalf("Failed to initialize OpenAI service: %v", err)
		}
	} else {
		log.Println("OPENAI_API_KEY is not set, free-text queries are disabled")
	}

	repo, err := repository.NewSQLiteForecastRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}
	defer repo.Close()

	scraper := integration.NewForecastScraper(
		cfg.BaseURL,
		integration.NewHTTPFetcher(cfg.HTTPTimeout),
		integration.NewForecastExtractor(integration.GismeteoSchema{}),
	)
	useCase := usecases.NewForecastUseCase(scraper, repo, cfg.CacheTTL)

	telegramBot, err := api.NewTelegramBot(cfg.TelegramToken, useCase, resolver)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telegramBot.Start(ctx)
}
