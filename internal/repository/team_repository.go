package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/fantasy-edge/internal/database"
	"github.com/yourusername/fantasy-edge/internal/models"
)

// PostgresTeamRepository implements TeamRepository for PostgreSQL
type PostgresTeamRepository struct {
	db *database.DB
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *database.DB) TeamRepository {
	return &PostgresTeamRepository{db: db}
}

// Create inserts a new team
func (r *PostgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, sport_key, name, abbrev, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		team.ID, team.SportKey, team.Name, team.Abbrev, team.Latitude, team.Longitude,
	)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	return nil
}

// GetByID retrieves a team by ID
func (r *PostgresTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	query := `
		SELECT id, sport_key, name, abbrev, latitude, longitude, created_at
		FROM teams WHERE id = $1
	`

	team := &models.Team{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&team.ID, &team.SportKey, &team.Name, &team.Abbrev, &team.Latitude, &team.Longitude, &team.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

// GetBySport retrieves all teams in a league ordered by name
func (r *PostgresTeamRepository) GetBySport(ctx context.Context, sportKey string) ([]*models.Team, error) {
	query := `
		SELECT id, sport_key, name, abbrev, latitude, longitude, created_at
		FROM teams
		WHERE sport_key = $1
		ORDER BY name ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, sportKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams by sport: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{}
		err := rows.Scan(
			&team.ID, &team.SportKey, &team.Name, &team.Abbrev, &team.Latitude, &team.Longitude, &team.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}
