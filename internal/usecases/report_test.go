package usecases

import (
	"bytes"
	"testing"
)

func TestFormatReport(t *testing.T) {
	table, stats, err := Aggregate(weekOfRecords("london",
		[]string{"2024-01-16", "2024-01-15"},
		[]string{"5°", "−3°"},
		[]string{"0 мм", "2 мм"}))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	want := "=== Прогноз погоды на неделю ===\n\n" +
		"Дата: 15.01.2024\n" +
		"Температура: −3°\n" +
		"Осадки: 2 мм\n" +
		"Дата: 16.01.2024\n" +
		"Температура: 5°\n" +
		"Осадки: 0 мм\n" +
		"\n=== Статистика за период ===\n\n" +
		"Средняя температура (°C): 1.0\n" +
		"Минимальная температура (°C): -3\n" +
		"Максимальная температура (°C): 5\n" +
		"Среднее количество осадков (мм): 1.0\n" +
		"Дней с осадками: 1\n"

	if got := FormatReport(table, stats); got != want {
		t.Errorf("Unexpected report:\n%s\nwant:\n%s", got, want)
	}

	var buf bytes.Buffer
	if err := PrintReport(&buf, table, stats); err != nil {
		t.Fatalf("PrintReport failed: %v", err)
	}
	if buf.String() != want {
		t.Errorf("PrintReport output differs from FormatReport")
	}
}
