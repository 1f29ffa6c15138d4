package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/fantasy-edge/internal/database"
	"github.com/yourusername/fantasy-edge/internal/models"
)

const gameColumns = `id, sport_key, season, home_team_id, away_team_id, start_time,
	       home_score, away_score, playoff, venue, created_at`

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

// Create inserts a new game
func (r *PostgresGameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (id, sport_key, season, home_team_id, away_team_id, start_time, home_score, away_score, playoff, venue)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		game.ID, game.SportKey, game.Season, game.HomeTeamID, game.AwayTeamID,
		game.StartTime, game.HomeScore, game.AwayScore, game.Playoff, game.Venue,
	)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	return nil
}

// GetByID retrieves a game by ID
func (r *PostgresGameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	query := fmt.Sprintf(`SELECT %s FROM games WHERE id = $1`, gameColumns)

	game := &models.Game{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&game.ID, &game.SportKey, &game.Season, &game.HomeTeamID, &game.AwayTeamID,
		&game.StartTime, &game.HomeScore, &game.AwayScore, &game.Playoff, &game.Venue, &game.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// GetByDateRange retrieves games starting within the given window, ordered by start time
func (r *PostgresGameRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Game, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM games
		WHERE start_time >= $1 AND start_time <= $2
		ORDER BY start_time ASC
	`, gameColumns)

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query games by date range: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// GetCompletedBySport retrieves completed games for a sport starting before the
// given time, ordered oldest first. This is the training corpus query.
func (r *PostgresGameRepository) GetCompletedBySport(ctx context.Context, sportKey string, before time.Time) ([]*models.Game, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM games
		WHERE sport_key = $1 AND start_time < $2 AND home_score IS NOT NULL AND away_score IS NOT NULL
		ORDER BY start_time ASC
	`, gameColumns)

	rows, err := r.db.GetPool().Query(ctx, query, sportKey, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed games: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// GetByTeam retrieves completed games involving a team before the given time,
// ordered oldest first
func (r *PostgresGameRepository) GetByTeam(ctx context.Context, teamID uuid.UUID, before time.Time) ([]*models.Game, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM games
		WHERE (home_team_id = $1 OR away_team_id = $1)
		  AND start_time < $2 AND home_score IS NOT NULL AND away_score IS NOT NULL
		ORDER BY start_time ASC
	`, gameColumns)

	rows, err := r.db.GetPool().Query(ctx, query, teamID, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query games by team: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// GetUpcoming retrieves unplayed games ordered by start time
func (r *PostgresGameRepository) GetUpcoming(ctx context.Context, limit int) ([]*models.Game, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM games
		WHERE home_score IS NULL AND start_time > NOW()
		ORDER BY start_time ASC
		LIMIT $1
	`, gameColumns)

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming games: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// RecordFinalScore writes the final score for a completed game
func (r *PostgresGameRepository) RecordFinalScore(ctx context.Context, id uuid.UUID, homeScore, awayScore int) error {
	query := `UPDATE games SET home_score = $2, away_score = $3 WHERE id = $1`

	tag, err := r.db.GetPool().Exec(ctx, query, id, homeScore, awayScore)
	if err != nil {
		return fmt.Errorf("failed to record final score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func scanGames(rows pgx.Rows) ([]*models.Game, error) {
	var games []*models.Game
	for rows.Next() {
		game := &models.Game{}
		err := rows.Scan(
			&game.ID, &game.SportKey, &game.Season, &game.HomeTeamID, &game.AwayTeamID,
			&game.StartTime, &game.HomeScore, &game.AwayScore, &game.Playoff, &game.Venue, &game.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}
