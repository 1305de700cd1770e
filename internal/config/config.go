// Package config loads runtime settings from the environment
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by the report CLI, the scrapper and the bot
type Config struct {
	BaseURL       string
	HTTPTimeout   time.Duration
	DBPath        string
	Cities        []string
	Schedule      string
	CacheTTL      time.Duration
	FetchRPS      float64
	TelegramToken string
	OpenAIAPIKey  string
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		BaseURL:     "https://www.gismeteo.ru",
		HTTPTimeout: 10 * time.Second,
		DBPath:      "data/forecast.db",
		Cities:      []string{"moscow", "london"},
		Schedule:    "0 * * * *",
		CacheTTL:    time.Hour,
		FetchRPS:    0.5,
	}
}

// Load reads a .env file from the working directory if one exists and then
// overlays environment variables on the defaults
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using getenv for lookups
func FromEnv(getenv func(string) string) (Config, error) {
	c := Default()

	if v := getenv("FORECAST_BASE_URL"); v != "" {
		c.BaseURL = strings.TrimRight(v, "/")
	}
	if v := getenv("FORECAST_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := getenv("FORECAST_SCHEDULE"); v != "" {
		c.Schedule = v
	}
	if v := getenv("FORECAST_CITIES"); v != "" {
		c.Cities = splitList(v)
	}

	var err error
	if v := getenv("FORECAST_HTTP_TIMEOUT"); v != "" {
		if c.HTTPTimeout, err = time.ParseDuration(v); err != nil {
			return Config{}, fmt.Errorf("invalid FORECAST_HTTP_TIMEOUT: %w", err)
		}
	}
	if v := getenv("FORECAST_CACHE_TTL"); v != "" {
		if c.CacheTTL, err = time.ParseDuration(v); err != nil {
			return Config{}, fmt.Errorf("invalid FORECAST_CACHE_TTL: %w", err)
		}
	}
	if v := getenv("FORECAST_FETCH_RPS"); v != "" {
		if c.FetchRPS, err = strconv.ParseFloat(v, 64); err != nil {
			return Config{}, fmt.Errorf("invalid FORECAST_FETCH_RPS: %w", err)
		}
	}

	c.TelegramToken = getenv("TELEGRAM_BOT_TOKEN")
	c.OpenAIAPIKey = getenv("OPENAI_API_KEY")

	return c, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
