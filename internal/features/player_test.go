package features

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/fantasy-edge/internal/models"
)

func statLine(playerID, teamID uuid.UUID, date time.Time, fantasy, points, minutes float64) *models.PlayerGameStat {
	return &models.PlayerGameStat{
		ID:            uuid.New(),
		PlayerID:      playerID,
		TeamID:        teamID,
		GameID:        uuid.New(),
		GameDate:      date,
		Points:        points,
		Minutes:       minutes,
		FantasyPoints: fantasy,
	}
}

func TestPlayerFeaturesZeroWithoutHistory(t *testing.T) {
	snapshot := NewMemorySnapshot(nil, nil, nil, nil, nil, nil)
	extractor := NewPlayerFeatureExtractor(snapshot, testLogger())

	vec := extractor.Extract(uuid.New(), uuid.New(), time.Now())

	require.Len(t, vec, PlayerFeatureCount)
	assert.Equal(t, 0.0, vec[0], "no box scores means no top scorer")
	assert.Equal(t, 0.0, vec[8], "no star to be active")
}

func TestPlayerFeaturesRankByFantasyProduction(t *testing.T) {
	teamA := uuid.New()
	teamB := uuid.New()
	star := uuid.New()
	role := uuid.New()
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	stats := []*models.PlayerGameStat{
		statLine(role, teamA, asOf.AddDate(0, 0, -2), 15, 8, 20),
		statLine(star, teamA, asOf.AddDate(0, 0, -2), 45, 30, 36),
		statLine(role, teamA, asOf.AddDate(0, 0, -1), 15, 8, 20),
		statLine(star, teamA, asOf.AddDate(0, 0, -1), 45, 30, 36),
	}
	snapshot := NewMemorySnapshot(nil, stats, nil, nil, nil, nil)
	extractor := NewPlayerFeatureExtractor(snapshot, testLogger())

	vec := extractor.Extract(teamA, teamB, asOf)

	require.Len(t, vec, PlayerFeatureCount)
	assert.InDelta(t, 45.0/playerFantasyScale, vec[0], 1e-9, "star ranks first")
	assert.InDelta(t, 15.0/playerFantasyScale, vec[1], 1e-9)
	assert.Equal(t, 1.0, vec[8], "star is active with no injury report")
	assert.InDelta(t, 30.0/playerPointsScale, vec[6], 1e-9, "star scoring average")
}

func TestPlayerFeaturesCountRuledOutInjuries(t *testing.T) {
	teamA := uuid.New()
	star := uuid.New()
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	stats := []*models.PlayerGameStat{
		statLine(star, teamA, asOf.AddDate(0, 0, -1), 45, 30, 36),
	}
	injuries := []*models.InjuryReport{
		{ID: uuid.New(), PlayerID: star, TeamID: teamA, Status: "out", ReportedAt: asOf.Add(-time.Hour)},
		{ID: uuid.New(), PlayerID: uuid.New(), TeamID: teamA, Status: "questionable", ReportedAt: asOf.Add(-time.Hour)},
	}
	snapshot := NewMemorySnapshot(nil, stats, injuries, nil, nil, nil)
	extractor := NewPlayerFeatureExtractor(snapshot, testLogger())

	vec := extractor.Extract(teamA, uuid.New(), asOf)

	assert.Equal(t, 0.0, vec[8], "star ruled out")
	assert.InDelta(t, 2.0/5, vec[9], 1e-9, "both reports count toward injury load")
	assert.InDelta(t, 1.0/5, vec[10], 1e-9, "only the out designation rules a player out")
}

func TestPlayerFeaturesIgnoreFutureInjuryReports(t *testing.T) {
	teamA := uuid.New()
	star := uuid.New()
	asOf := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	stats := []*models.PlayerGameStat{
		statLine(star, teamA, asOf.AddDate(0, 0, -1), 45, 30, 36),
	}
	injuries := []*models.InjuryReport{
		{ID: uuid.New(), PlayerID: star, TeamID: teamA, Status: "out", ReportedAt: asOf.Add(time.Hour)},
	}
	snapshot := NewMemorySnapshot(nil, stats, injuries, nil, nil, nil)
	extractor := NewPlayerFeatureExtractor(snapshot, testLogger())

	vec := extractor.Extract(teamA, uuid.New(), asOf)

	assert.Equal(t, 1.0, vec[8], "a report filed after the as-of date is invisible")
	assert.Equal(t, 0.0, vec[9])
}
