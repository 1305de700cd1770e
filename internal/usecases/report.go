package usecases

import (
	"fmt"
	"io"
	"strings"

	"github.com/abelzeko/weather-report/internal/entities"
)

// FormatReport renders the table and statistics as console text
func FormatReport(table entities.ForecastTable, stats entities.SummaryStatistics) string {
	var result strings.Builder
	result.WriteString("=== Прогноз погоды на неделю ===\n\n")

	for _, row := range table.Rows {
		result.WriteString(fmt.Sprintf("Дата: %s\n", row.Day.Format("02.01.2006")))
		result.WriteString(fmt.Sprintf("Температура: %s\n", row.Temperature))
		result.WriteString(fmt.Sprintf("Осадки: %s\n", row.Precipitation))
	}

	result.WriteString("\n=== Статистика за период ===\n\n")
	result.WriteString(fmt.Sprintf("Средняя температура (°C): %.1f\n", stats.MeanTemperature))
	result.WriteString(fmt.Sprintf("Минимальная температура (°C): %d\n", stats.MinTemperature))
	result.WriteString(fmt.Sprintf("Максимальная температура (°C): %d\n", stats.MaxTemperature))
	result.WriteString(fmt.Sprintf("Среднее количество осадков (мм): %.1f\n", stats.MeanPrecipitation))
	result.WriteString(fmt.Sprintf("Дней с осадками: %d\n", stats.PrecipitationDays))

	return result.String()
}

// PrintReport writes the formatted report to w
func PrintReport(w io.Writer, table entities.ForecastTable, stats entities.SummaryStatistics) error {
	_, err := io.WriteString(w, FormatReport(table, stats))
	return err
}
