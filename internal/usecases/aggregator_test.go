package usecases

import (
	"errors"
	"fmt"
	"testing"

	"github.com/abelzeko/weather-report/internal/entities"
)

func weekOfRecords(city string, dates, temps, precips []string) []entities.DailyForecast {
	records := make([]entities.DailyForecast, len(dates))
	for i := range dates {
		records[i] = entities.DailyForecast{
			City:          city,
			Date:          dates[i],
			Temperature:   temps[i],
			Precipitation: precips[i],
		}
	}
	return records
}

func TestParseTemperature(t *testing.T) {
	tests := map[string]int{
		"−3°":   -3,
		"5°":    5,
		"+5°":   5,
		"0°":    0,
		" -12°": -12,
		"7":     7,
	}
	for in, want := range tests {
		got, err := ParseTemperature(in)
		if err != nil {
			t.Errorf("ParseTemperature(%q) failed: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseTemperature(%q) = %d, want %d", in, got, want)
		}
		again, _ := ParseTemperature(in)
		if again != got {
			t.Errorf("ParseTemperature(%q) not stable: %d then %d", in, got, again)
		}
	}

	for _, bad := range []string{"", "°", "warm", "3.5°"} {
		_, err := ParseTemperature(bad)
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("ParseTemperature(%q): expected ParseError, got %v", bad, err)
		}
	}
}

func TestParsePrecipitation(t *testing.T) {
	tests := map[string]float64{
		"2 мм":   2.0,
		"0 мм":   0.0,
		"5,5 мм": 5.5,
		"1.2мм":  1.2,
		"3":      3.0,
	}
	for in, want := range tests {
		got, err := ParsePrecipitation(in)
		if err != nil {
			t.Errorf("ParsePrecipitation(%q) failed: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParsePrecipitation(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParsePrecipitation("много"); err == nil {
		t.Error("Expected error for non-numeric precipitation")
	}
}

func TestParseDay(t *testing.T) {
	for _, in := range []string{"2024-01-15", "2024-01-15T00:00:00", "2024-01-15 00:00:00", "2024-01-15T00:00:00Z"} {
		day, err := ParseDay(in)
		if err != nil {
			t.Errorf("ParseDay(%q) failed: %v", in, err)
			continue
		}
		if day.Format("02.01.2006") != "15.01.2024" {
			t.Errorf("ParseDay(%q) = %s", in, day)
		}
	}
	if _, err := ParseDay("понедельник"); err == nil {
		t.Error("Expected error for a day name without a date")
	}
}

func TestAggregateStatistics(t *testing.T) {
	dates := []string{"2024-01-15", "2024-01-16", "2024-01-17", "2024-01-18", "2024-01-19", "2024-01-20", "2024-01-21"}
	temps := []string{"−3°", "0°", "5°", "2°", "−1°", "4°", "1°"}
	precips := []string{"0 мм", "2 мм", "0 мм", "5.5 мм", "0 мм", "0 мм", "1 мм"}

	table, stats, err := Aggregate(weekOfRecords("london", dates, temps, precips))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if len(table.Rows) != 7 {
		t.Fatalf("Expected 7 rows, got %d", len(table.Rows))
	}
	if table.City != "london" {
		t.Errorf("Expected city london, got %s", table.City)
	}
	if stats.MeanTemperature != 1.1 {
		t.Errorf("Expected mean temperature 1.1, got %v", stats.MeanTemperature)
	}
	if stats.MinTemperature != -3 {
		t.Errorf("Expected min temperature -3, got %d", stats.MinTemperature)
	}
	if stats.MaxTemperature != 5 {
		t.Errorf("Expected max temperature 5, got %d", stats.MaxTemperature)
	}
	if stats.MeanPrecipitation != 1.2 {
		t.Errorf("Expected mean precipitation 1.2, got %v", stats.MeanPrecipitation)
	}
	if stats.PrecipitationDays != 3 {
		t.Errorf("Expected 3 days with precipitation, got %d", stats.PrecipitationDays)
	}
}

func TestAggregateSortsByDate(t *testing.T) {
	dates := []string{"2024-01-20", "2024-01-15", "2024-01-18", "2024-01-16", "2024-01-21", "2024-01-17", "2024-01-19"}
	temps := make([]string, len(dates))
	precips := make([]string, len(dates))
	for i := range dates {
		temps[i] = fmt.Sprintf("%d°", i)
		precips[i] = "0 мм"
	}

	table, _, err := Aggregate(weekOfRecords("moscow", dates, temps, precips))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	for i := 1; i < len(table.Rows); i++ {
		if !table.Rows[i-1].Day.Before(table.Rows[i].Day) {
			t.Errorf("Rows not strictly ascending at %d: %s then %s", i, table.Rows[i-1].Day, table.Rows[i].Day)
		}
	}
	// Raw values travel with their day
	if table.Rows[0].Date != "2024-01-15" || table.Rows[0].Temperature != "1°" {
		t.Errorf("Unexpected first row: %+v", table.Rows[0])
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	_, _, err := Aggregate(nil)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected ParseError, got %v", err)
	}
	if !errors.Is(err, ErrNoForecastData) {
		t.Errorf("Expected ErrNoForecastData, got %v", err)
	}
}

func TestAggregateRejectsMalformedRow(t *testing.T) {
	dates := []string{"2024-01-15", "2024-01-16"}
	temps := []string{"1°", ""}
	precips := []string{"0 мм", "0 мм"}

	_, _, err := Aggregate(weekOfRecords("kazan", dates, temps, precips))

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected ParseError, got %v", err)
	}
	if parseErr.Field != "temperature" {
		t.Errorf("Expected temperature field in error, got %q", parseErr.Field)
	}
}

func TestComputeStatisticsNoNegativeZero(t *testing.T) {
	table, _, err := Aggregate(weekOfRecords("oslo",
		[]string{"2024-01-15", "2024-01-16"},
		[]string{"−1°", "1°"},
		[]string{"0 мм", "0 мм"}))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	stats, err := ComputeStatistics(table)
	if err != nil {
		t.Fatalf("ComputeStatistics failed: %v", err)
	}
	if got := fmt.Sprintf("%.1f", stats.MeanTemperature); got != "0.0" {
		t.Errorf("Expected 0.0, got %s", got)
	}
	if stats.PrecipitationDays != 0 {
		t.Errorf("Expected no precipitation days, got %d", stats.PrecipitationDays)
	}
}
