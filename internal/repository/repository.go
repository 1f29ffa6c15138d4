package repository

import (
	"fmt"

	"github.com/yourusername/fantasy-edge/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Game       GameRepository
	Team       TeamRepository
	PlayerStat PlayerStatRepository
	Injury     InjuryRepository
	Odds       OddsRepository
	Weather    WeatherRepository
	Artifact   ArtifactRepository
	Prediction PredictionRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Game:       NewPostgresGameRepository(db),
		Team:       NewPostgresTeamRepository(db),
		PlayerStat: NewPostgresPlayerStatRepository(db),
		Injury:     NewPostgresInjuryRepository(db),
		Odds:       NewPostgresOddsRepository(db),
		Weather:    NewPostgresWeatherRepository(db),
		Artifact:   NewPostgresArtifactRepository(db),
		Prediction: NewPostgresPredictionRepository(db),
	}, nil
}
