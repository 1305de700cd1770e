// Package repository provides data access implementations
package repository

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abelzeko/weather-report/internal/entities"
	_ "github.com/mattn/go-sqlite3"
)

// ForecastRepository defines the interface for forecast persistence operations
type ForecastRepository interface {
	SaveForecast(table entities.ForecastTable, fetchedAt time.Time) error
	GetForecastByCity(city string) (entities.ForecastTable, time.Time, error)
	GetCities() ([]string, error)
	GetLastUpdateTime() (time.Time, error)
	Close() error
}

// SQLiteForecastRepository implements ForecastRepository using SQLite
type SQLiteForecastRepository struct {
	db     *sql.DB
	DBPath string
}

// NewSQLiteForecastRepository creates and initializes a new SQLite repository
func NewSQLiteForecastRepository(dbPath string) (*SQLiteForecastRepository, error) {
	if dbPath == "" {
		dbPath = filepath.Join("data", "forecast.db")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	log.Printf("Opening database at %s", dbPath)
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS forecast_days (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		city TEXT NOT NULL,
		day TEXT NOT NULL,
		raw_date TEXT,
		temperature TEXT,
		precipitation TEXT,
		temperature_c INTEGER NOT NULL,
		precipitation_mm REAL NOT NULL,
		fetched_at TEXT NOT NULL,
		UNIQUE(city, day)
	);
	CREATE INDEX IF NOT EXISTS idx_city ON forecast_days(city);
	CREATE INDEX IF NOT EXISTS idx_fetched_at ON forecast_days(fetched_at);`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteForecastRepository{
		db:     db,
		DBPath: dbPath,
	}, nil
}

// Close closes the database connection
func (r *SQLiteForecastRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveForecast stores every row of the table, replacing rows already stored for the same city and day
func (r *SQLiteForecastRepository) SaveForecast(table entities.ForecastTable, fetchedAt time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO forecast_days(city, day, raw_date, temperature, precipitation, temperature_c, precipitation_mm, fetched_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(city, day) DO UPDATE SET
		raw_date=excluded.raw_date,
		temperature=excluded.temperature,
		precipitation=excluded.precipitation,
		temperature_c=excluded.temperature_c,
		precipitation_mm=excluded.precipitation_mm,
		fetched_at=excluded.fetched_at
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	city := strings.ToLower(table.City)
	stamp := fetchedAt.UTC().Format(time.RFC3339)
	for _, row := range table.Rows {
		_, err := stmt.Exec(
			city,
			row.Day.Format("2006-01-02"),
			row.Date,
			row.Temperature,
			row.Precipitation,
			row.TemperatureC,
			row.PrecipitationMM,
			stamp,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert forecast for %s on %s: %w", city, row.Day.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Successfully saved %d forecast days for %s", len(table.Rows), city)
	return nil
}

// GetForecastByCity returns the rows stored by the most recent fetch for city,
// ordered by day, together with that fetch time. A city with no rows yields an
// empty table and a zero time.
func (r *SQLiteForecastRepository) GetForecastByCity(city string) (entities.ForecastTable, time.Time, error) {
	city = strings.ToLower(city)
	query := `
		SELECT day, raw_date, temperature, precipitation, temperature_c, precipitation_mm, fetched_at
		FROM forecast_days
		WHERE city = ? AND fetched_at = (
			SELECT MAX(fetched_at) FROM forecast_days WHERE city = ?
		)
		ORDER BY day`

	rows, err := r.db.Query(query, city, city)
	if err != nil {
		return entities.ForecastTable{}, time.Time{}, fmt.Errorf("failed to query forecast for %s: %w", city, err)
	}
	defer rows.Close()

	table := entities.ForecastTable{City: city}
	var fetchedAt time.Time
	for rows.Next() {
		var (
			row          entities.ForecastRow
			day, fetched string
		)
		if err := rows.Scan(
			&day,
			&row.Date,
			&row.Temperature,
			&row.Precipitation,
			&row.TemperatureC,
			&row.PrecipitationMM,
			&fetched,
		); err != nil {
			return entities.ForecastTable{}, time.Time{}, fmt.Errorf("failed to scan row: %w", err)
		}
		row.City = city
		if row.Day, err = time.Parse("2006-01-02", day); err != nil {
			return entities.ForecastTable{}, time.Time{}, fmt.Errorf("failed to parse stored day '%s': %w", day, err)
		}
		if fetchedAt, err = time.Parse(time.RFC3339, fetched); err != nil {
			return entities.ForecastTable{}, time.Time{}, fmt.Errorf("failed to parse stored timestamp '%s': %w", fetched, err)
		}
		table.Rows = append(table.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return entities.ForecastTable{}, time.Time{}, fmt.Errorf("error during row iteration: %w", err)
	}

	return table, fetchedAt, nil
}

// GetCities returns every city with stored forecasts
func (r *SQLiteForecastRepository) GetCities() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT city FROM forecast_days ORDER BY city`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	var cities []string
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		cities = append(cities, city)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return cities, nil
}

// GetLastUpdateTime returns the most recent fetch time in the database
func (r *SQLiteForecastRepository) GetLastUpdateTime() (time.Time, error) {
	var stamp sql.NullString
	if err := r.db.QueryRow("SELECT MAX(fetched_at) FROM forecast_days").Scan(&stamp); err != nil {
		return time.Time{}, fmt.Errorf("failed to get last update time: %w", err)
	}

	if !stamp.Valid || stamp.String == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339, stamp.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp '%s': %w", stamp.String, err)
	}
	return t, nil
}
