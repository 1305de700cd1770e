package usecases

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/abelzeko/weather-report/internal/entities"
)

// ErrNoForecastData is returned when there is nothing to aggregate
var ErrNoForecastData = errors.New("no forecast data to aggregate")

// ParseError reports a forecast field that could not be normalized
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("parse error: %v", e.Err)
	}
	return fmt.Sprintf("failed to parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Accepted layouts for the page's data-day attribute
var dayLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDay parses a raw day label into a calendar date
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dayLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, &ParseError{Field: "date", Value: s, Err: lastErr}
}

// ParseTemperature converts a value like "−3°" into degrees Celsius
func ParseTemperature(s string) (int, error) {
	v := strings.ReplaceAll(s, "−", "-")
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "°"))
	t, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ParseError{Field: "temperature", Value: s, Err: err}
	}
	return t, nil
}

// ParsePrecipitation converts a value like "2 мм" into millimetres
func ParsePrecipitation(s string) (float64, error) {
	v := strings.TrimSuffix(strings.TrimSpace(s), "мм")
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
	p, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &ParseError{Field: "precipitation", Value: s, Err: err}
	}
	return p, nil
}

// NormalizeForecasts parses every record and sorts the result by day.
// Any unparsable record fails the whole table.
func NormalizeForecasts(records []entities.DailyForecast) (entities.ForecastTable, error) {
	if len(records) == 0 {
		return entities.ForecastTable{}, &ParseError{Err: ErrNoForecastData}
	}

	table := entities.ForecastTable{
		City: records[0].City,
		Rows: make([]entities.ForecastRow, 0, len(records)),
	}
	for _, rec := range records {
		day, err := ParseDay(rec.Date)
		if err != nil {
			return entities.ForecastTable{}, err
		}
		temp, err := ParseTemperature(rec.Temperature)
		if err != nil {
			return entities.ForecastTable{}, err
		}
		precip, err := ParsePrecipitation(rec.Precipitation)
		if err != nil {
			return entities.ForecastTable{}, err
		}
		table.Rows = append(table.Rows, entities.ForecastRow{
			DailyForecast:   rec,
			Day:             day,
			TemperatureC:    temp,
			PrecipitationMM: precip,
		})
	}

	sort.SliceStable(table.Rows, func(i, j int) bool {
		return table.Rows[i].Day.Before(table.Rows[j].Day)
	})
	return table, nil
}

// ComputeStatistics derives the summary for a non-empty table
func ComputeStatistics(table entities.ForecastTable) (entities.SummaryStatistics, error) {
	if len(table.Rows) == 0 {
		return entities.SummaryStatistics{}, &ParseError{Err: ErrNoForecastData}
	}

	stats := entities.SummaryStatistics{
		MinTemperature: table.Rows[0].TemperatureC,
		MaxTemperature: table.Rows[0].TemperatureC,
	}
	var tempSum, precipSum float64
	for _, row := range table.Rows {
		tempSum += float64(row.TemperatureC)
		precipSum += row.PrecipitationMM
		stats.MinTemperature = min(stats.MinTemperature, row.TemperatureC)
		stats.MaxTemperature = max(stats.MaxTemperature, row.TemperatureC)
		if row.PrecipitationMM > 0 {
			stats.PrecipitationDays++
		}
	}

	n := float64(len(table.Rows))
	stats.MeanTemperature = roundOneDecimal(tempSum / n)
	stats.MeanPrecipitation = roundOneDecimal(precipSum / n)
	return stats, nil
}

// Aggregate normalizes records into a sorted table and computes its statistics
func Aggregate(records []entities.DailyForecast) (entities.ForecastTable, entities.SummaryStatistics, error) {
	table, err := NormalizeForecasts(records)
	if err != nil {
		return entities.ForecastTable{}, entities.SummaryStatistics{}, err
	}
	stats, err := ComputeStatistics(table)
	if err != nil {
		return entities.ForecastTable{}, entities.SummaryStatistics{}, err
	}
	return table, stats, nil
}

// roundOneDecimal rounds half away from zero and never returns negative zero
func roundOneDecimal(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		return 0
	}
	return r
}
