package features

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/fantasy-edge/internal/models"
)

func TestSituationalDefaultsWithoutWeather(t *testing.T) {
	homeID := uuid.New()
	awayID := uuid.New()
	game := finishedGame(homeID, awayID, time.Date(2024, 1, 14, 18, 0, 0, 0, time.UTC), 0, 0)
	game.HomeScore = nil
	game.AwayScore = nil

	snapshot := NewMemorySnapshot(nil, nil, nil, nil, nil, nil)
	extractor := NewSituationalFeatureExtractor(snapshot, testLogger())

	vec, weatherAvailable := extractor.Extract(game, nil, nil)
	require.Len(t, vec, SituationalFeatureCount)
	assert.False(t, weatherAvailable)
	assert.InDelta(t, defaultTemperature/100, vec[0], 1e-9)
	assert.InDelta(t, defaultWindSpeed/30, vec[1], 1e-9)
	assert.Equal(t, 0.0, vec[3], "no aggregates means no rest differential")
	// No coordinates, no travel
	assert.Zero(t, vec[4])
	assert.Equal(t, 0.0, vec[5], "regular season")
	assert.Equal(t, 0.0, vec[6], "a Sunday")
	assert.InDelta(t, 1.0/12, vec[7], 1e-9)
}

func TestSituationalUsesWeatherReport(t *testing.T) {
	homeID := uuid.New()
	awayID := uuid.New()
	game := finishedGame(homeID, awayID, time.Date(2024, 1, 14, 18, 0, 0, 0, time.UTC), 0, 0)

	report := &models.WeatherReport{
		GameID:      game.ID,
		Temperature: 30,
		WindSpeed:   20,
		Condition:   "snow",
	}
	snapshot := NewMemorySnapshot([]*models.Game{game}, nil, nil, nil, []*models.WeatherReport{report}, nil)
	extractor := NewSituationalFeatureExtractor(snapshot, testLogger())

	vec, weatherAvailable := extractor.Extract(game, nil, nil)
	require.True(t, weatherAvailable)
	assert.InDelta(t, 0.30, vec[0], 1e-9)
	assert.InDelta(t, 20.0/30.0, vec[1], 1e-9)
	// Cold and windy should read as harsher than the neutral default
	neutral := weatherSeverity(defaultTemperature, defaultWindSpeed)
	assert.Greater(t, vec[2], neutral)
}

func TestSituationalTravelDistance(t *testing.T) {
	homeID := uuid.New()
	awayID := uuid.New()
	game := finishedGame(homeID, awayID, time.Date(2024, 1, 14, 18, 0, 0, 0, time.UTC), 0, 0)

	teams := []*models.Team{
		{ID: homeID, SportKey: "nba", Name: "Green Bay", Latitude: 44.5013, Longitude: -88.0622},
		{ID: awayID, SportKey: "nba", Name: "Miami", Latitude: 25.7781, Longitude: -80.1930},
	}
	snapshot := NewMemorySnapshot([]*models.Game{game}, nil, nil, nil, nil, teams)
	extractor := NewSituationalFeatureExtractor(snapshot, testLogger())

	vec, _ := extractor.Extract(game, nil, nil)
	// Green Bay to Miami is roughly 1,400 miles
	assert.Greater(t, vec[4], 0.4)
	assert.Less(t, vec[4], 0.6)
}

func TestSequenceWindowOrderAndPadding(t *testing.T) {
	teamA := uuid.New()
	teamB := uuid.New()
	asOf := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	// Three games: A loses the first two, wins the most recent.
	games := []*models.Game{
		finishedGame(teamA, teamB, asOf.AddDate(0, 0, -3), 90, 100),
		finishedGame(teamB, teamA, asOf.AddDate(0, 0, -2), 100, 90),
		finishedGame(teamA, teamB, asOf.AddDate(0, 0, -1), 100, 90),
	}
	snapshot := NewMemorySnapshot(games, nil, nil, nil, nil, nil)
	extractor := NewSequenceWindowExtractor(snapshot)

	vec := extractor.Extract(teamA, teamB, asOf)
	require.Len(t, vec, SequenceFeatureCount)

	home := vec[:10]
	away := vec[10:]
	// Seven pad slots, then loss, loss, win with the newest result last.
	for i := 0; i < 7; i++ {
		assert.Equal(t, 0.5, home[i])
	}
	assert.Equal(t, []float64{0, 0, 1}, home[7:])
	assert.Equal(t, []float64{1, 1, 0}, away[7:])
}
