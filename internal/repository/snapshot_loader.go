package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/fantasy-edge/internal/features"
	"github.com/yourusername/fantasy-edge/internal/models"
)

// SnapshotLoader assembles an in-memory historical view for one matchup from
// the persistence layer. Serving builds one snapshot per prediction request;
// the feature extractors then apply their own as-of filtering on top.
type SnapshotLoader struct {
	games   GameRepository
	teams   TeamRepository
	stats   PlayerStatRepository
	injury  InjuryRepository
	odds    OddsRepository
	weather WeatherRepository
}

// NewSnapshotLoader creates a snapshot loader over the given repositories
func NewSnapshotLoader(repos *Repositories) *SnapshotLoader {
	return &SnapshotLoader{
		games:   repos.Game,
		teams:   repos.Team,
		stats:   repos.PlayerStat,
		injury:  repos.Injury,
		odds:    repos.Odds,
		weather: repos.Weather,
	}
}

// Load gathers both teams' history, market quotes and venue conditions for a
// matchup and builds an immutable snapshot as of the given time
func (l *SnapshotLoader) Load(ctx context.Context, game *models.Game, asOf time.Time) (*features.MemorySnapshot, error) {
	homeGames, err := l.games.GetByTeam(ctx, game.HomeTeamID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load home team games: %w", err)
	}
	awayGames, err := l.games.GetByTeam(ctx, game.AwayTeamID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load away team games: %w", err)
	}

	// Head-to-head meetings appear in both team histories; dedupe by ID.
	seen := make(map[uuid.UUID]bool, len(homeGames))
	games := make([]*models.Game, 0, len(homeGames)+len(awayGames))
	for _, g := range append(homeGames, awayGames...) {
		if seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		games = append(games, g)
	}

	homeStats, err := l.stats.GetByTeam(ctx, game.HomeTeamID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load home player stats: %w", err)
	}
	awayStats, err := l.stats.GetByTeam(ctx, game.AwayTeamID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load away player stats: %w", err)
	}
	stats := append(homeStats, awayStats...)

	homeInjuries, err := l.injury.GetActiveByTeam(ctx, game.HomeTeamID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load home injury reports: %w", err)
	}
	awayInjuries, err := l.injury.GetActiveByTeam(ctx, game.AwayTeamID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load away injury reports: %w", err)
	}
	injuries := append(homeInjuries, awayInjuries...)

	quotes, err := l.odds.GetByGameID(ctx, game.ID, time.Time{}, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load odds history: %w", err)
	}

	var weather []*models.WeatherReport
	report, err := l.weather.GetByGameID(ctx, game.ID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to load weather report: %w", err)
	}
	if report != nil {
		weather = append(weather, report)
	}

	var teams []*models.Team
	homeTeam, err := l.teams.GetByID(ctx, game.HomeTeamID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to load home team: %w", err)
	}
	awayTeam, err := l.teams.GetByID(ctx, game.AwayTeamID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to load away team: %w", err)
	}
	if homeTeam != nil {
		teams = append(teams, homeTeam)
	}
	if awayTeam != nil {
		teams = append(teams, awayTeam)
	}

	return features.NewMemorySnapshot(games, stats, injuries, quotes, weather, teams), nil
}
