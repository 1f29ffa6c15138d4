package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/fantasy-edge/internal/models"
)

// GameRepository defines the interface for matchup data access
type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Game, error)
	GetCompletedBySport(ctx context.Context, sportKey string, before time.Time) ([]*models.Game, error)
	GetByTeam(ctx context.Context, teamID uuid.UUID, before time.Time) ([]*models.Game, error)
	GetUpcoming(ctx context.Context, limit int) ([]*models.Game, error)
	RecordFinalScore(ctx context.Context, id uuid.UUID, homeScore, awayScore int) error
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetBySport(ctx context.Context, sportKey string) ([]*models.Team, error)
}

// PlayerStatRepository defines the interface for box-score data access
type PlayerStatRepository interface {
	Insert(ctx context.Context, stat *models.PlayerGameStat) error
	InsertBatch(ctx context.Context, stats []*models.PlayerGameStat) error
	GetByTeam(ctx context.Context, teamID uuid.UUID, before time.Time) ([]*models.PlayerGameStat, error)
	GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*models.PlayerGameStat, error)
}

// InjuryRepository defines the interface for injury report data access
type InjuryRepository interface {
	Create(ctx context.Context, report *models.InjuryReport) error
	GetActiveByTeam(ctx context.Context, teamID uuid.UUID, asOf time.Time) ([]*models.InjuryReport, error)
}

// OddsRepository defines the interface for market quote data access
type OddsRepository interface {
	Insert(ctx context.Context, quote *models.OddsQuote) error
	InsertBatch(ctx context.Context, quotes []*models.OddsQuote) error
	GetByGameID(ctx context.Context, gameID uuid.UUID, start, end time.Time) ([]*models.OddsQuote, error)
	GetLatest(ctx context.Context, gameID uuid.UUID) (*models.OddsQuote, error)
}

// WeatherRepository defines the interface for venue condition data access
type WeatherRepository interface {
	Upsert(ctx context.Context, report *models.WeatherReport) error
	GetByGameID(ctx context.Context, gameID uuid.UUID) (*models.WeatherReport, error)
}

// ArtifactRepository defines the interface for the trained model registry
type ArtifactRepository interface {
	Register(ctx context.Context, meta *models.ArtifactMetadata, path string) error
	GetByVersion(ctx context.Context, modelType, version string) (*models.ArtifactMetadata, error)
	GetLatestByType(ctx context.Context, modelType string) (*models.ArtifactMetadata, error)
	MarkStale(ctx context.Context, modelType, version string) error
}

// PredictionRepository defines the interface for the prediction audit log
type PredictionRepository interface {
	Record(ctx context.Context, result *models.PredictionResult) error
	GetByMatchupID(ctx context.Context, matchupID uuid.UUID) ([]*models.PredictionResult, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.PredictionResult, error)
}
