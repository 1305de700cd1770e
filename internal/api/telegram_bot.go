// Package api provides handlers for external APIs and interfaces
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/abelzeko/weather-report/internal/integration"
	"github.com/abelzeko/weather-report/internal/integration/openai"
	"github.com/abelzeko/weather-report/internal/usecases"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = "Available commands:\n" +
	"/start - Start the bot\n" +
	"/cities - Show cities with a stored forecast\n" +
	"/forecast [city] - Show the 7-day forecast for a city\n" +
	"/help - Show this help message"

// TelegramBot handles interactions with the Telegram API
type TelegramBot struct {
	bot      *tgbotapi.BotAPI
	useCase  *usecases.ForecastUseCase
	resolver openai.CityResolver
}

// NewTelegramBot creates a new Telegram bot handler. resolver may be nil, in
// which case free-text messages get the help text.
func NewTelegramBot(botToken string, useCase *usecases.ForecastUseCase, resolver openai.CityResolver) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &TelegramBot{
		bot:      bot,
		useCase:  useCase,
		resolver: resolver,
	}, nil
}

// Start begins listening for and handling Telegram messages until ctx is done
func (t *TelegramBot) Start(ctx context.Context) {
	log.Printf("Authorized on Telegram account %s", t.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	log.Println("Bot is now listening for messages...")

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			log.Println("Bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}

			log.Printf("Received message from %s (ID: %d): %s",
				update.Message.From.UserName,
				update.Message.From.ID,
				update.Message.Text)

			t.handleMessage(ctx, update)
		}
	}
}

// handleMessage processes a Telegram message update
func (t *TelegramBot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")

	if update.Message.IsCommand() {
		msg.Text = t.replyToCommand(ctx, update.Message.Command(), update.Message.CommandArguments())
	} else {
		msg.Text = t.replyToText(ctx, update.Message.Text)
	}

	log.Printf("Sending response to user %s", update.Message.From.UserName)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// replyToCommand builds the answer to /start, /help, /cities and /forecast
func (t *TelegramBot) replyToCommand(ctx context.Context, command, args string) string {
	switch command {
	case "start":
		return "Welcome to the Weather Bot! Use /forecast [city] to get a 7-day forecast or /help for more information."
	case "help":
		return helpText
	case "cities":
		return t.citiesReply()
	case "forecast":
		return t.forecastReply(ctx, args)
	default:
		log.Printf("Received unknown command /%s", command)
		return "Unknown command. Use /help to see available commands."
	}
}

// citiesReply lists the cities with a stored forecast
func (t *TelegramBot) citiesReply() string {
	cities, err := t.useCase.GetAvailableCities()
	if err != nil {
		log.Printf("Error fetching cities: %v", err)
		return "Error fetching the list of cities. Please try again later."
	}
	if len(cities) == 0 {
		return "No stored forecasts yet. Use /forecast [city] to fetch one."
	}

	var text strings.Builder
	text.WriteString("Available cities:\n\n")
	for _, city := range cities {
		text.WriteString("• " + city + "\n")
	}
	text.WriteString("\nUse /forecast [city] to get detailed information.")

	if lastUpdate, err := t.useCase.GetLastUpdateTime(); err == nil && !lastUpdate.IsZero() {
		text.WriteString(fmt.Sprintf("\n\n🕒 Last update: %s", lastUpdate.Format("2006-01-02 15:04:05")))
	}
	return text.String()
}

// forecastReply runs the forecast for city and renders it as a report
func (t *TelegramBot) forecastReply(ctx context.Context, city string) string {
	city = strings.TrimSpace(city)
	if city == "" {
		return "Please specify a city. Example: /forecast moscow"
	}

	forecast, err := t.useCase.GetForecast(ctx, city)
	if err != nil {
		log.Printf("Error getting forecast for %s: %v", city, err)
		return errorReply(city, err)
	}

	return usecases.FormatReport(forecast.Table, forecast.Stats) +
		fmt.Sprintf("\n🕒 Fetched: %s", forecast.FetchedAt.Format(time.DateTime))
}

// replyToText handles messages that are not commands
func (t *TelegramBot) replyToText(ctx context.Context, text string) string {
	if t.resolver == nil {
		return "I don't understand. Use /help to see available commands."
	}

	cities, err := t.useCase.GetAvailableCities()
	if err != nil {
		log.Printf("Error fetching cities: %v", err)
	}

	resp, err := t.resolver.ResolveCity(ctx, text, cities)
	if err != nil {
		log.Printf("Error interpreting user query via OpenAI: %v", err)
		return "Sorry, I'm having trouble understanding right now. Please try again later or use /help."
	}
	log.Printf("Agent response: Command='%s', City='%s', Message='%s'",
		resp.CommandName, resp.CitySlug, resp.UserMessage)

	switch resp.CommandName {
	case openai.CommandGetForecastByCity:
		if resp.CitySlug == "" {
			return resp.UserMessage
		}
		reply := t.forecastReply(ctx, resp.CitySlug)
		if resp.UserMessage != "" {
			reply = resp.UserMessage + "\n\n" + reply
		}
		return reply
	case openai.CommandGeneralQuery:
		return resp.UserMessage
	default:
		log.Printf("Agent returned unexpected command: %s", resp.CommandName)
		return "I'm not sure how to respond to that. You can use /help for commands."
	}
}

// errorReply tells network failures apart from pages that could not be read
func errorReply(city string, err error) string {
	var fetchErr *integration.FetchError
	var parseErr *usecases.ParseError
	switch {
	case errors.Is(err, integration.ErrInvalidCity):
		return fmt.Sprintf("'%s' is not a valid city name. Use latin letters, e.g. /forecast moscow", city)
	case errors.As(err, &fetchErr) && fetchErr.StatusCode == 404:
		return fmt.Sprintf("No forecast page found for '%s'. Check the city name.", city)
	case errors.As(err, &fetchErr):
		return "Error fetching the forecast. Please try again later."
	case errors.Is(err, usecases.ErrNoForecastData):
		return fmt.Sprintf("No forecast data found for '%s'. Check the city name.", city)
	case errors.As(err, &parseErr):
		return fmt.Sprintf("The forecast page for '%s' could not be read.", city)
	default:
		return "Error fetching the forecast. Please try again later."
	}
}
