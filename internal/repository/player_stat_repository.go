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

// PostgresPlayerStatRepository implements PlayerStatRepository for PostgreSQL
type PostgresPlayerStatRepository struct {
	db *database.DB
}

// NewPostgresPlayerStatRepository creates a new player stat repository
func NewPostgresPlayerStatRepository(db *database.DB) PlayerStatRepository {
	return &PostgresPlayerStatRepository{db: db}
}

// Insert inserts a single box-score line
func (r *PostgresPlayerStatRepository) Insert(ctx context.Context, stat *models.PlayerGameStat) error {
	query := `
		INSERT INTO player_game_stats (id, player_id, team_id, game_id, game_date, points, rebounds, assists, turnovers, minutes, fantasy_points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		stat.ID, stat.PlayerID, stat.TeamID, stat.GameID, stat.GameDate,
		stat.Points, stat.Rebounds, stat.Assists, stat.Turnovers, stat.Minutes, stat.FantasyPoints,
	)
	if err != nil {
		return fmt.Errorf("failed to insert player stat: %w", err)
	}

	return nil
}

// InsertBatch inserts multiple box-score lines using high-performance batch insert
func (r *PostgresPlayerStatRepository) InsertBatch(ctx context.Context, stats []*models.PlayerGameStat) error {
	if len(stats) == 0 {
		return nil
	}

	// Use COPY for high-performance bulk insert
	columns := []string{"id", "player_id", "team_id", "game_id", "game_date", "points", "rebounds", "assists", "turnovers", "minutes", "fantasy_points"}

	copyFromSource := make([][]interface{}, len(stats))
	for i, s := range stats {
		copyFromSource[i] = []interface{}{
			s.ID, s.PlayerID, s.TeamID, s.GameID, s.GameDate,
			s.Points, s.Rebounds, s.Assists, s.Turnovers, s.Minutes, s.FantasyPoints,
		}
	}

	count, err := r.db.GetPool().CopyFrom(ctx, pgx.Identifier{"player_game_stats"}, columns, pgx.CopyFromRows(copyFromSource))
	if err != nil {
		return fmt.Errorf("failed to batch insert player stats: %w", err)
	}

	if count != int64(len(stats)) {
		return fmt.Errorf("inserted %d rows, expected %d", count, len(stats))
	}

	return nil
}

// GetByTeam retrieves box-score lines for a team's players before the given time,
// ordered oldest first
func (r *PostgresPlayerStatRepository) GetByTeam(ctx context.Context, teamID uuid.UUID, before time.Time) ([]*models.PlayerGameStat, error) {
	query := `
		SELECT id, player_id, team_id, game_id, game_date, points, rebounds, assists, turnovers, minutes, fantasy_points
		FROM player_game_stats
		WHERE team_id = $1 AND game_date < $2
		ORDER BY game_date ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, teamID, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query player stats by team: %w", err)
	}
	defer rows.Close()

	return scanPlayerStats(rows)
}

// GetByGameID retrieves all box-score lines recorded for a game
func (r *PostgresPlayerStatRepository) GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*models.PlayerGameStat, error) {
	query := `
		SELECT id, player_id, team_id, game_id, game_date, points, rebounds, assists, turnovers, minutes, fantasy_points
		FROM player_game_stats
		WHERE game_id = $1
		ORDER BY points DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query player stats by game: %w", err)
	}
	defer rows.Close()

	return scanPlayerStats(rows)
}

func scanPlayerStats(rows pgx.Rows) ([]*models.PlayerGameStat, error) {
	var stats []*models.PlayerGameStat
	for rows.Next() {
		stat := &models.PlayerGameStat{}
		err := rows.Scan(
			&stat.ID, &stat.PlayerID, &stat.TeamID, &stat.GameID, &stat.GameDate,
			&stat.Points, &stat.Rebounds, &stat.Assists, &stat.Turnovers, &stat.Minutes, &stat.FantasyPoints,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player stat: %w", err)
		}
		stats = append(stats, stat)
	}

	return stats, rows.Err()
}
