package training

import (
	"context"
	"io"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/fantasy-edge/internal/features"
	"github.com/yourusername/fantasy-edge/internal/logger"
	"github.com/yourusername/fantasy-edge/internal/models"
)

func testTrainingLogger() *logger.TrainingLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logger.NewTrainingLogger(l)
}

// makeLeague simulates a season between rated teams. Stronger teams win more
// often and home court adds a realistic edge, so the raw home label rate is
// skewed above one half.
func makeLeague(teams, rounds int, seed int64) []*models.Game {
	rng := rand.New(rand.NewSource(seed))
	ids := make([]uuid.UUID, teams)
	skill := make([]float64, teams)
	for i := range ids {
		ids[i] = uuid.New()
		skill[i] = rng.Float64()
	}

	start := time.Date(2023, 10, 1, 19, 0, 0, 0, time.UTC)
	games := make([]*models.Game, 0, teams*rounds)
	day := 0
	for r := 0; r < rounds; r++ {
		for i := 0; i < teams; i++ {
			for j := 0; j < teams; j++ {
				if i == j {
					continue
				}
				day++
				pHome := 0.55 + 0.3*(skill[i]-skill[j])
				homeScore, awayScore := 95, 100
				if rng.Float64() < pHome {
					homeScore, awayScore = 105, 98
				}
				games = append(games, &models.Game{
					ID:         uuid.New(),
					SportKey:   "nba",
					Season:     2023,
					HomeTeamID: ids[i],
					AwayTeamID: ids[j],
					StartTime:  start.Add(time.Duration(day) * 6 * time.Hour),
					HomeScore:  &homeScore,
					AwayScore:  &awayScore,
				})
			}
		}
	}
	return games
}

func leagueBuilder(t *testing.T, games []*models.Game) *DatasetBuilder {
	t.Helper()
	snapshot := features.NewMemorySnapshot(games, nil, nil, nil, nil, nil)
	l := logrus.New()
	l.SetOutput(io.Discard)
	assembler := features.NewAssembler(snapshot, features.SnapshotQuoteSource{Snapshot: snapshot}, nil, 5, logrus.NewEntry(l))
	return NewDatasetBuilder(assembler, 5, 42, testTrainingLogger())
}

func TestBuildBalancesLabelsWithinTolerance(t *testing.T) {
	games := makeLeague(6, 10, 7)
	builder := leagueBuilder(t, games)

	ds, err := builder.Build(context.Background(), games, models.ModelSequence, 0.7, 0.15)
	require.NoError(t, err)
	require.Greater(t, ds.Total(), 100)

	home := 0.0
	total := 0.0
	for _, part := range []struct{ y []float64 }{
		{ds.Train.Y}, {ds.Validation.Y}, {ds.Test.Y},
	} {
		for _, y := range part.y {
			home += y
			total++
		}
	}
	rate := home / total
	assert.LessOrEqual(t, math.Abs(rate-0.5), balanceTolerance, "labels balance to 50/50")
}

func TestBuildSplitsChronologically(t *testing.T) {
	games := makeLeague(6, 8, 11)
	builder := leagueBuilder(t, games)

	ds, err := builder.Build(context.Background(), games, models.ModelNeuralNet, 0.7, 0.15)
	require.NoError(t, err)
	require.False(t, ds.Train.Empty())
	require.False(t, ds.Validation.Empty())
	require.False(t, ds.Test.Empty())

	// Rough 70/15/15 partition
	total := float64(ds.Total())
	assert.InDelta(t, 0.70, float64(ds.Train.Len())/total, 0.02)
	assert.InDelta(t, 0.15, float64(ds.Validation.Len())/total, 0.02)

	width, err := features.VariantLength(models.ModelNeuralNet)
	require.NoError(t, err)
	assert.Len(t, ds.Train.X[0], width)
}

func TestBuildDropsThinHistoryGames(t *testing.T) {
	games := makeLeague(6, 6, 3)
	builder := leagueBuilder(t, games)

	ds, err := builder.Build(context.Background(), games, models.ModelSequence, 0.7, 0.15)
	require.NoError(t, err)

	// Every team's first games lack the 5-game minimum, so samples must be
	// strictly fewer than finished games even before balancing
	assert.Less(t, ds.Total(), len(games))
}

func TestBuildAppliesDifferenceTransform(t *testing.T) {
	games := makeLeague(6, 8, 5)
	builder := leagueBuilder(t, games)

	ds, err := builder.Build(context.Background(), games, models.ModelRandomForest, 0.7, 0.15)
	require.NoError(t, err)
	require.False(t, ds.Train.Empty())

	// Slot 1 is the away half of the win-rate pair, zeroed by the fold
	for _, row := range ds.Train.X {
		assert.Equal(t, 0.0, row[1])
		assert.Equal(t, 0.0, row[3])
	}
}

func TestBalancePreservesChronologicalOrder(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	samples := make([]*models.TrainingSample, 0, 100)
	for i := 0; i < 100; i++ {
		label := models.LabelAwayWin
		if i%10 < 7 { // 70% home skew
			label = models.LabelHomeWin
		}
		samples = append(samples, &models.TrainingSample{
			GameID:   uuid.New(),
			GameDate: base.AddDate(0, 0, i),
			Features: []float64{float64(i)},
			Label:    label,
		})
	}

	balanced := balance(samples, rand.New(rand.NewSource(1)))
	assert.InDelta(t, 0.5, homeLabelRate(balanced), balanceTolerance)
	assert.Equal(t, 60, len(balanced), "majority undersampled to the minority count")

	for i := 1; i < len(balanced); i++ {
		assert.False(t, balanced[i].GameDate.Before(balanced[i-1].GameDate), "order survives balancing")
	}
}
