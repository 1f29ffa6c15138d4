package features

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fantasy-edge/internal/models"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// finishedGame builds a completed matchup with the given scores
func finishedGame(homeID, awayID uuid.UUID, start time.Time, homeScore, awayScore int) *models.Game {
	return &models.Game{
		ID:         uuid.New(),
		SportKey:   "nba",
		Season:     2024,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		StartTime:  start,
		HomeScore:  intPtr(homeScore),
		AwayScore:  intPtr(awayScore),
	}
}

// buildSeason alternates home court between two teams, with teamA winning
// aWins of the total games. Games start a day apart ending the day before
// asOf.
func buildSeason(teamA, teamB uuid.UUID, asOf time.Time, total, aWins int) []*models.Game {
	games := make([]*models.Game, 0, total)
	for i := 0; i < total; i++ {
		start := asOf.AddDate(0, 0, -(total - i))
		home, away := teamA, teamB
		if i%2 == 1 {
			home, away = teamB, teamA
		}
		aScore, bScore := 100, 95
		if i >= aWins {
			aScore, bScore = 95, 100
		}
		if home == teamA {
			games = append(games, finishedGame(home, away, start, aScore, bScore))
		} else {
			games = append(games, finishedGame(home, away, start, bScore, aScore))
		}
	}
	return games
}
