package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/fantasy-edge/internal/models"
)

type fakeGameRepo struct {
	GameRepository
	byTeam map[uuid.UUID][]*models.Game
}

func (f *fakeGameRepo) GetByTeam(_ context.Context, teamID uuid.UUID, _ time.Time) ([]*models.Game, error) {
	return f.byTeam[teamID], nil
}

type fakeTeamRepo struct {
	TeamRepository
	teams map[uuid.UUID]*models.Team
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Team, error) {
	if t, ok := f.teams[id]; ok {
		return t, nil
	}
	return nil, models.ErrNotFound
}

type fakeStatRepo struct {
	PlayerStatRepository
	byTeam map[uuid.UUID][]*models.PlayerGameStat
}

func (f *fakeStatRepo) GetByTeam(_ context.Context, teamID uuid.UUID, _ time.Time) ([]*models.PlayerGameStat, error) {
	return f.byTeam[teamID], nil
}

type fakeInjuryRepo struct {
	InjuryRepository
	byTeam map[uuid.UUID][]*models.InjuryReport
}

func (f *fakeInjuryRepo) GetActiveByTeam(_ context.Context, teamID uuid.UUID, _ time.Time) ([]*models.InjuryReport, error) {
	return f.byTeam[teamID], nil
}

type fakeOddsRepo struct {
	OddsRepository
	byGame map[uuid.UUID][]*models.OddsQuote
}

func (f *fakeOddsRepo) GetByGameID(_ context.Context, gameID uuid.UUID, _, _ time.Time) ([]*models.OddsQuote, error) {
	return f.byGame[gameID], nil
}

type fakeWeatherRepo struct {
	WeatherRepository
	byGame map[uuid.UUID]*models.WeatherReport
}

func (f *fakeWeatherRepo) GetByGameID(_ context.Context, gameID uuid.UUID) (*models.WeatherReport, error) {
	if w, ok := f.byGame[gameID]; ok {
		return w, nil
	}
	return nil, models.ErrNotFound
}

func TestSnapshotLoaderBuildsMatchupView(t *testing.T) {
	home, away := uuid.New(), uuid.New()
	asOf := time.Date(2024, 1, 15, 19, 0, 0, 0, time.UTC)

	score := func(h, a int) (*int, *int) { return &h, &a }
	h1, a1 := score(102, 95)
	meeting := &models.Game{
		ID: uuid.New(), SportKey: "basketball_nba", HomeTeamID: home, AwayTeamID: away,
		StartTime: asOf.AddDate(0, -1, 0), HomeScore: h1, AwayScore: a1,
	}
	h2, a2 := score(88, 91)
	awayOnly := &models.Game{
		ID: uuid.New(), SportKey: "basketball_nba", HomeTeamID: away, AwayTeamID: uuid.New(),
		StartTime: asOf.AddDate(0, 0, -10), HomeScore: h2, AwayScore: a2,
	}

	matchup := &models.Game{
		ID: uuid.New(), SportKey: "basketball_nba",
		HomeTeamID: home, AwayTeamID: away, StartTime: asOf,
	}

	ml := -120.0
	repos := &Repositories{
		Game: &fakeGameRepo{byTeam: map[uuid.UUID][]*models.Game{
			home: {meeting},
			away: {meeting, awayOnly},
		}},
		Team: &fakeTeamRepo{teams: map[uuid.UUID]*models.Team{
			home: {ID: home, Name: "Home"},
		}},
		PlayerStat: &fakeStatRepo{byTeam: map[uuid.UUID][]*models.PlayerGameStat{
			home: {{ID: uuid.New(), TeamID: home, GameID: meeting.ID, GameDate: meeting.StartTime, Points: 25}},
		}},
		Injury: &fakeInjuryRepo{byTeam: map[uuid.UUID][]*models.InjuryReport{
			away: {{ID: uuid.New(), TeamID: away, Status: "out", ReportedAt: asOf.AddDate(0, 0, -1)}},
		}},
		Odds: &fakeOddsRepo{byGame: map[uuid.UUID][]*models.OddsQuote{
			matchup.ID: {{Time: asOf.Add(-time.Hour), GameID: matchup.ID, HomeMoneyline: &ml}},
		}},
		Weather: &fakeWeatherRepo{byGame: map[uuid.UUID]*models.WeatherReport{}},
	}

	loader := NewSnapshotLoader(repos)
	snap, err := loader.Load(context.Background(), matchup, asOf)
	require.NoError(t, err)

	// The shared meeting is deduped, not double counted.
	assert.Len(t, snap.GamesBefore(home, asOf), 1)
	assert.Len(t, snap.GamesBefore(away, asOf), 2)
	assert.Len(t, snap.HeadToHeadBefore(home, away, asOf), 1)

	assert.Len(t, snap.PlayerStatsBefore(home, asOf), 1)
	assert.Len(t, snap.Injuries(away, asOf), 1)
	assert.Len(t, snap.OddsHistory(matchup.ID, asOf), 1)

	assert.Nil(t, snap.Weather(matchup.ID))
	assert.NotNil(t, snap.Team(home))
	assert.Nil(t, snap.Team(away))
}

func TestSnapshotLoaderIncludesWeatherWhenPresent(t *testing.T) {
	home, away := uuid.New(), uuid.New()
	matchup := &models.Game{ID: uuid.New(), HomeTeamID: home, AwayTeamID: away, StartTime: time.Now()}

	repos := &Repositories{
		Game:       &fakeGameRepo{byTeam: map[uuid.UUID][]*models.Game{}},
		Team:       &fakeTeamRepo{teams: map[uuid.UUID]*models.Team{}},
		PlayerStat: &fakeStatRepo{byTeam: map[uuid.UUID][]*models.PlayerGameStat{}},
		Injury:     &fakeInjuryRepo{byTeam: map[uuid.UUID][]*models.InjuryReport{}},
		Odds:       &fakeOddsRepo{byGame: map[uuid.UUID][]*models.OddsQuote{}},
		Weather: &fakeWeatherRepo{byGame: map[uuid.UUID]*models.WeatherReport{
			matchup.ID: {GameID: matchup.ID, Temperature: 28, WindSpeed: 18, Condition: "snow"},
		}},
	}

	snap, err := NewSnapshotLoader(repos).Load(context.Background(), matchup, time.Now())
	require.NoError(t, err)

	report := snap.Weather(matchup.ID)
	require.NotNil(t, report)
	assert.Equal(t, "snow", report.Condition)
}
