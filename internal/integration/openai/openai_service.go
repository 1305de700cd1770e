package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Commands the agent can return
const (
	CommandGetForecastByCity = "GetForecastByCity"
	CommandGeneralQuery      = "GeneralQuery"
)

// CityResponse defines the structured output from the OpenAI agent.
type CityResponse struct {
	CommandName string `json:"command_name" jsonschema_description:"The command to execute, e.g., GetForecastByCity or GeneralQuery"`
	CitySlug    string `json:"city_slug" jsonschema_description:"The city name transliterated to lowercase latin letters as used in forecast URLs, e.g. moscow or sankt-peterburg"`
	UserMessage string `json:"user_message" jsonschema_description:"A message to show back to the user in their original language"`
}

// CityResolver turns a free-text message into a forecast request.
type CityResolver interface {
	ResolveCity(ctx context.Context, userMessage string, knownCities []string) (*CityResponse, error)
}

// openAIServiceImpl implements the CityResolver interface.
type openAIServiceImpl struct {
	client openai.Client
	schema interface{}
}

// GenerateSchema generates a JSON schema for a given type.
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}

// NewOpenAIService creates a CityResolver backed by the OpenAI chat API.
func NewOpenAIService(apiKey string) (CityResolver, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is not set")
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &openAIServiceImpl{
		client: client,
		schema: GenerateSchema[CityResponse](),
	}, nil
}

// ResolveCity sends a message to the OpenAI agent and returns the structured response.
func (s *openAIServiceImpl) ResolveCity(ctx context.Context, userMessage string, knownCities []string) (*CityResponse, error) {
	systemPrompt := fmt.Sprintf(`You are a weather forecast bot. Users ask about the weather in a city in Russian or English.

Cities that already have a stored forecast: %s

Behavior:
1. If the user wants the forecast for a specific city:
   - command_name = "GetForecastByCity"
   - city_slug: the city written in lowercase latin letters with hyphens instead of spaces, the way gismeteo.ru writes it in URLs (e.g. "moscow", "london", "nizhny-novgorod"). Prefer a slug from the list above when it matches.
   - user_message: a one-line confirmation in the user's language.
2. Otherwise (greetings, small talk):
   - command_name = "GeneralQuery"
   - city_slug = ""
   - user_message: a short reply in the user's language that explains the bot only knows weather forecasts.

Output **strictly** in JSON.`, strings.Join(knownCities, ", "))

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "city_response",
		Description: openai.String("Structured response containing command, city slug, and user message"),
		Schema:      s.schema,
		Strict:      openai.Bool(true),
	}

	respFormat := openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
	}

	chat, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userMessage),
		},
		ResponseFormat: respFormat,
		Model:          openai.ChatModelGPT4o,
	})
	if err != nil {
		return nil, fmt.Errorf("error calling OpenAI API: %w", err)
	}

	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return nil, errors.New("received empty response from OpenAI")
	}

	return parseCityResponse(chat.Choices[0].Message.Content)
}

func parseCityResponse(content string) (*CityResponse, error) {
	var resp CityResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		log.Printf("Failed to unmarshal OpenAI response: %s\nRaw response: %s", err, content)
		return nil, fmt.Errorf("error unmarshalling OpenAI response: %w", err)
	}
	resp.CitySlug = strings.ToLower(strings.TrimSpace(resp.CitySlug))
	return &resp, nil
}
