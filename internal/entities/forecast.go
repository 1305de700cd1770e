// Package entities contains the core domain objects for the weather-report application
package entities

import (
	"time"
)

// DailyForecast is one forecast day as it appears on the source page
type DailyForecast struct {
	City          string
	Date          string // Raw day label, e.g. 2024-01-15
	Temperature   string // Raw temperature, e.g. −3°
	Precipitation string // Raw precipitation, e.g. 2 мм
}

// ForecastRow is a DailyForecast with its fields parsed into typed values
type ForecastRow struct {
	DailyForecast
	Day             time.Time
	TemperatureC    int
	PrecipitationMM float64
}

// ForecastTable holds the normalized rows for a single city, sorted by day
type ForecastTable struct {
	City string
	Rows []ForecastRow
}

// SummaryStatistics are the aggregates computed over a ForecastTable
type SummaryStatistics struct {
	MeanTemperature   float64 // °C, one decimal
	MinTemperature    int
	MaxTemperature    int
	MeanPrecipitation float64 // mm, one decimal
	PrecipitationDays int
}

// Forecast bundles a table with its statistics and the time it was fetched
type Forecast struct {
	Table     ForecastTable
	Stats     SummaryStatistics
	FetchedAt time.Time
}
