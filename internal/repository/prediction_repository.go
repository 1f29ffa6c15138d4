package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/fantasy-edge/internal/database"
	"github.com/yourusername/fantasy-edge/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction audit repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// Record appends an ensemble prediction to the audit log. The per-model
// breakdown and data quality are stored as JSONB so the serving schema can
// evolve without migrations.
func (r *PostgresPredictionRepository) Record(ctx context.Context, result *models.PredictionResult) error {
	breakdown, err := json.Marshal(result.PerModelBreakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal model breakdown: %w", err)
	}
	quality, err := json.Marshal(result.DataQuality)
	if err != nil {
		return fmt.Errorf("failed to marshal data quality: %w", err)
	}
	factors, err := json.Marshal(result.TopFactors)
	if err != nil {
		return fmt.Errorf("failed to marshal top factors: %w", err)
	}

	query := `
		INSERT INTO predictions (matchup_id, home_win_probability, away_win_probability, winner, confidence,
		                         model_breakdown, top_factors, data_quality, model_version, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		result.MatchupID, result.HomeWinProbability, result.AwayWinProbability, result.Winner, result.Confidence,
		breakdown, factors, quality, result.ModelVersion, result.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record prediction: %w", err)
	}

	return nil
}

// GetByMatchupID retrieves all recorded predictions for a matchup, newest first
func (r *PostgresPredictionRepository) GetByMatchupID(ctx context.Context, matchupID uuid.UUID) ([]*models.PredictionResult, error) {
	query := `
		SELECT matchup_id, home_win_probability, away_win_probability, winner, confidence,
		       model_breakdown, top_factors, data_quality, model_version, generated_at
		FROM predictions
		WHERE matchup_id = $1
		ORDER BY generated_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, matchupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions by matchup: %w", err)
	}
	defer rows.Close()

	return scanPredictions(rows)
}

// GetByDateRange retrieves predictions generated within the given window
func (r *PostgresPredictionRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.PredictionResult, error) {
	query := `
		SELECT matchup_id, home_win_probability, away_win_probability, winner, confidence,
		       model_breakdown, top_factors, data_quality, model_version, generated_at
		FROM predictions
		WHERE generated_at >= $1 AND generated_at <= $2
		ORDER BY generated_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions by date range: %w", err)
	}
	defer rows.Close()

	return scanPredictions(rows)
}

func scanPredictions(rows pgx.Rows) ([]*models.PredictionResult, error) {
	var results []*models.PredictionResult
	for rows.Next() {
		result := &models.PredictionResult{}
		var breakdown, factors, quality []byte
		err := rows.Scan(
			&result.MatchupID, &result.HomeWinProbability, &result.AwayWinProbability, &result.Winner,
			&result.Confidence, &breakdown, &factors, &quality, &result.ModelVersion, &result.GeneratedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		if err := json.Unmarshal(breakdown, &result.PerModelBreakdown); err != nil {
			return nil, fmt.Errorf("failed to decode model breakdown: %w", err)
		}
		if err := json.Unmarshal(factors, &result.TopFactors); err != nil {
			return nil, fmt.Errorf("failed to decode top factors: %w", err)
		}
		if err := json.Unmarshal(quality, &result.DataQuality); err != nil {
			return nil, fmt.Errorf("failed to decode data quality: %w", err)
		}
		results = append(results, result)
	}

	return results, rows.Err()
}
