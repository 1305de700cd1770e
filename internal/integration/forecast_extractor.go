package integration

import (
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/abelzeko/weather-report/internal/entities"
)

// MaxForecastDays is the number of days kept from the 10-day page
const MaxForecastDays = 7

// DefaultPrecipitation is used when the page has no precipitation cell for a day
const DefaultPrecipitation = "0 мм"

// RawDay is one day's worth of unparsed values pulled out of a page
type RawDay struct {
	Date          string
	Temperature   string
	Precipitation string
}

// MarkupSchema isolates the knowledge of a particular site's page layout
type MarkupSchema interface {
	ExtractRawForecast(doc *goquery.Document) []RawDay
}

// GismeteoSchema reads the widget rows of a gismeteo 10-day forecast page.
//
// Day labels, temperatures and precipitation live in three separate rows and
// are matched up by position. A missing precipitation cell becomes
// DefaultPrecipitation while a missing temperature cell is left empty, so a
// short temperature row fails later at parse time instead of being guessed.
type GismeteoSchema struct{}

const (
	gismeteoDaySelector           = "div.widget-row.widget-row-days > span.unit"
	gismeteoTemperatureSelector   = "div.widget-row.widget-row-temperature > div.unit > span.value"
	gismeteoPrecipitationSelector = "div.widget-row.widget-row-precipitation > div.unit > span.unit_value"
)

// ExtractRawForecast returns one RawDay per day label in document order
func (GismeteoSchema) ExtractRawForecast(doc *goquery.Document) []RawDay {
	days := doc.Find(gismeteoDaySelector)
	temps := doc.Find(gismeteoTemperatureSelector)
	precips := doc.Find(gismeteoPrecipitationSelector)

	log.Printf("Found %d day labels, %d temperatures, %d precipitation values",
		days.Length(), temps.Length(), precips.Length())
	if temps.Length() < days.Length() {
		log.Printf("Warning: temperature row is shorter than day row (%d < %d)", temps.Length(), days.Length())
	}

	raw := make([]RawDay, 0, days.Length())
	days.Each(func(i int, day *goquery.Selection) {
		rd := RawDay{
			Date:          strings.TrimSpace(day.AttrOr("data-day", "")),
			Precipitation: DefaultPrecipitation,
		}
		if i < temps.Length() {
			rd.Temperature = strings.TrimSpace(temps.Eq(i).Text())
		}
		if i < precips.Length() {
			rd.Precipitation = strings.TrimSpace(precips.Eq(i).Text())
		}
		raw = append(raw, rd)
	})
	return raw
}

// ForecastExtractor turns page markup into DailyForecast records
type ForecastExtractor struct {
	schema  MarkupSchema
	maxDays int
}

// NewForecastExtractor creates an extractor; a nil schema means GismeteoSchema
func NewForecastExtractor(schema MarkupSchema) *ForecastExtractor {
	if schema == nil {
		schema = GismeteoSchema{}
	}
	return &ForecastExtractor{
		schema:  schema,
		maxDays: MaxForecastDays,
	}
}

// Extract returns up to MaxForecastDays records for city. A page that does
// not match the schema yields no records and no error.
func (e *ForecastExtractor) Extract(markup, city string) ([]entities.DailyForecast, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		log.Printf("Error parsing HTML: %v", err)
		return nil, fmt.Errorf("failed to parse the webpage: %w", err)
	}

	raw := e.schema.ExtractRawForecast(doc)
	n := min(e.maxDays, len(raw))

	forecasts := make([]entities.DailyForecast, 0, n)
	for _, rd := range raw[:n] {
		forecasts = append(forecasts, entities.DailyForecast{
			City:          city,
			Date:          rd.Date,
			Temperature:   rd.Temperature,
			Precipitation: rd.Precipitation,
		})
	}

	log.Printf("Extracted %d forecast days for %s", len(forecasts), city)
	return forecasts, nil
}
