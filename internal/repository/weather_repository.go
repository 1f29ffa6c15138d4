package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/fantasy-edge/internal/database"
	"github.com/yourusername/fantasy-edge/internal/models"
)

// PostgresWeatherRepository implements WeatherRepository for PostgreSQL
type PostgresWeatherRepository struct {
	db *database.DB
}

// NewPostgresWeatherRepository creates a new weather repository
func NewPostgresWeatherRepository(db *database.DB) WeatherRepository {
	return &PostgresWeatherRepository{db: db}
}

// Upsert inserts or refreshes the venue conditions for a game. One report per
// game; a fresher fetch replaces the previous one.
func (r *PostgresWeatherRepository) Upsert(ctx context.Context, report *models.WeatherReport) error {
	query := `
		INSERT INTO weather_reports (game_id, temperature, wind_speed, humidity, condition, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id) DO UPDATE SET
			temperature = EXCLUDED.temperature,
			wind_speed = EXCLUDED.wind_speed,
			humidity = EXCLUDED.humidity,
			condition = EXCLUDED.condition,
			fetched_at = EXCLUDED.fetched_at
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		report.GameID, report.Temperature, report.WindSpeed, report.Humidity, report.Condition, report.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert weather report: %w", err)
	}

	return nil
}

// GetByGameID retrieves the venue conditions for a game
func (r *PostgresWeatherRepository) GetByGameID(ctx context.Context, gameID uuid.UUID) (*models.WeatherReport, error) {
	query := `
		SELECT game_id, temperature, wind_speed, humidity, condition, fetched_at
		FROM weather_reports WHERE game_id = $1
	`

	report := &models.WeatherReport{}
	err := r.db.GetPool().QueryRow(ctx, query, gameID).Scan(
		&report.GameID, &report.Temperature, &report.WindSpeed, &report.Humidity, &report.Condition, &report.FetchedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weather report: %w", err)
	}

	return report, nil
}
