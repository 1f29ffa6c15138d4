package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/fantasy-edge/internal/database"
	"github.com/yourusername/fantasy-edge/internal/models"
)

// PostgresInjuryRepository implements InjuryRepository for PostgreSQL
type PostgresInjuryRepository struct {
	db *database.DB
}

// NewPostgresInjuryRepository creates a new injury repository
func NewPostgresInjuryRepository(db *database.DB) InjuryRepository {
	return &PostgresInjuryRepository{db: db}
}

// Create inserts a new injury report
func (r *PostgresInjuryRepository) Create(ctx context.Context, report *models.InjuryReport) error {
	query := `
		INSERT INTO injury_reports (id, player_id, team_id, status, reported_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		report.ID, report.PlayerID, report.TeamID, report.Status, report.ReportedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create injury report: %w", err)
	}

	return nil
}

// GetActiveByTeam retrieves each player's most recent designation reported at
// or before asOf. One row per player keeps retractions effective: a later
// "probable" report supersedes an earlier "out".
func (r *PostgresInjuryRepository) GetActiveByTeam(ctx context.Context, teamID uuid.UUID, asOf time.Time) ([]*models.InjuryReport, error) {
	query := `
		SELECT DISTINCT ON (player_id) id, player_id, team_id, status, reported_at
		FROM injury_reports
		WHERE team_id = $1 AND reported_at <= $2
		ORDER BY player_id, reported_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, teamID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query injury reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.InjuryReport
	for rows.Next() {
		report := &models.InjuryReport{}
		err := rows.Scan(&report.ID, &report.PlayerID, &report.TeamID, &report.Status, &report.ReportedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan injury report: %w", err)
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}
