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

// PostgresOddsRepository implements OddsRepository for PostgreSQL
type PostgresOddsRepository struct {
	db *database.DB
}

// NewPostgresOddsRepository creates a new odds repository
func NewPostgresOddsRepository(db *database.DB) OddsRepository {
	return &PostgresOddsRepository{db: db}
}

// Insert inserts a single market quote
func (r *PostgresOddsRepository) Insert(ctx context.Context, quote *models.OddsQuote) error {
	query := `
		INSERT INTO odds_quotes (time, game_id, sportsbook, home_moneyline, away_moneyline, spread, total, over_price, under_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		quote.Time, quote.GameID, quote.Sportsbook, quote.HomeMoneyline, quote.AwayMoneyline,
		quote.Spread, quote.Total, quote.OverPrice, quote.UnderPrice,
	)
	if err != nil {
		return fmt.Errorf("failed to insert odds quote: %w", err)
	}

	return nil
}

// InsertBatch inserts multiple market quotes using high-performance batch insert
func (r *PostgresOddsRepository) InsertBatch(ctx context.Context, quotes []*models.OddsQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	// Use COPY for high-performance bulk insert
	columns := []string{"time", "game_id", "sportsbook", "home_moneyline", "away_moneyline", "spread", "total", "over_price", "under_price"}

	copyFromSource := make([][]interface{}, len(quotes))
	for i, q := range quotes {
		copyFromSource[i] = []interface{}{
			q.Time, q.GameID, q.Sportsbook, q.HomeMoneyline, q.AwayMoneyline,
			q.Spread, q.Total, q.OverPrice, q.UnderPrice,
		}
	}

	count, err := r.db.GetPool().CopyFrom(ctx, pgx.Identifier{"odds_quotes"}, columns, pgx.CopyFromRows(copyFromSource))
	if err != nil {
		return fmt.Errorf("failed to batch insert odds quotes: %w", err)
	}

	if count != int64(len(quotes)) {
		return fmt.Errorf("inserted %d rows, expected %d", count, len(quotes))
	}

	return nil
}

// GetByGameID retrieves market quotes for a game within a time range, ordered
// oldest first
func (r *PostgresOddsRepository) GetByGameID(ctx context.Context, gameID uuid.UUID, start, end time.Time) ([]*models.OddsQuote, error) {
	query := `
		SELECT time, game_id, sportsbook, home_moneyline, away_moneyline, spread, total, over_price, under_price
		FROM odds_quotes
		WHERE game_id = $1 AND time >= $2 AND time <= $3
		ORDER BY time ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, gameID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query odds by game: %w", err)
	}
	defer rows.Close()

	var quotes []*models.OddsQuote
	for rows.Next() {
		quote := &models.OddsQuote{}
		err := rows.Scan(
			&quote.Time, &quote.GameID, &quote.Sportsbook, &quote.HomeMoneyline, &quote.AwayMoneyline,
			&quote.Spread, &quote.Total, &quote.OverPrice, &quote.UnderPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan odds quote: %w", err)
		}
		quotes = append(quotes, quote)
	}

	return quotes, rows.Err()
}

// GetLatest retrieves the most recent market quote for a game
func (r *PostgresOddsRepository) GetLatest(ctx context.Context, gameID uuid.UUID) (*models.OddsQuote, error) {
	query := `
		SELECT time, game_id, sportsbook, home_moneyline, away_moneyline, spread, total, over_price, under_price
		FROM odds_quotes
		WHERE game_id = $1
		ORDER BY time DESC
		LIMIT 1
	`

	quote := &models.OddsQuote{}
	err := r.db.GetPool().QueryRow(ctx, query, gameID).Scan(
		&quote.Time, &quote.GameID, &quote.Sportsbook, &quote.HomeMoneyline, &quote.AwayMoneyline,
		&quote.Spread, &quote.Total, &quote.OverPrice, &quote.UnderPrice,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest odds quote: %w", err)
	}

	return quote, nil
}
