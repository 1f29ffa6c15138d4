package ensemble

import (
	"context"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/fantasy-edge/internal/config"
	"github.com/yourusername/fantasy-edge/internal/features"
	"github.com/yourusername/fantasy-edge/internal/models"
	"github.com/yourusername/fantasy-edge/internal/predictor"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func testConfig() config.EnsembleConfig {
	return config.EnsembleConfig{
		PerModelTimeoutMS:  1000,
		NoPlayMargin:       0.03,
		DisagreementSpread: 0.15,
		CacheTTLSeconds:    60,
		CacheMaxSize:       100,
	}
}

// trainingRows builds samples in the differenced representation the combiner
// feeds the models: the label follows the sign of the win-rate advantage in
// slot 0.
func trainingRows(width, n int, seed int64) (train, validation predictor.Dataset) {
	rng := rand.New(rand.NewSource(seed))
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, width)
		for j := range row {
			row[j] = rng.Float64() * 0.2
		}
		row[0] = rng.Float64()*2 - 1
		x[i] = row
		if row[0] > 0 {
			y[i] = models.LabelHomeWin
		} else {
			y[i] = models.LabelAwayWin
		}
	}
	cut := n * 8 / 10
	return predictor.Dataset{X: x[:cut], Y: y[:cut]}, predictor.Dataset{X: x[cut:], Y: y[cut:]}
}

// buildManager trains and activates every requested family on synthetic data
func buildManager(t *testing.T, families []string) *predictor.Manager {
	t.Helper()
	m := predictor.NewManager(testLogger())
	for _, family := range families {
		width, err := features.VariantLength(family)
		require.NoError(t, err)

		p, err := predictor.New(family, width, 0.0001, 42)
		require.NoError(t, err)

		train, validation := trainingRows(width, 500, 7)
		require.NoError(t, p.Train(context.Background(), train, validation))

		artifact, err := predictor.BuildArtifact(p, "v20240301-000000", 0.9, 0.5, train.Len())
		require.NoError(t, err)
		require.NoError(t, m.Activate(artifact))
	}
	return m
}

// matchupFeatures builds a GameFeatures record with the given win rates and
// every other slot neutral. Odds are synthetic, mirroring a dead feed.
func matchupFeatures(homeWinRate, awayWinRate float64) *features.GameFeatures {
	team := make([]float64, features.TeamFeatureCount)
	for i := range team {
		team[i] = 0.5
	}
	team[0] = homeWinRate
	team[1] = awayWinRate
	team[29] = 1 // home court indicator

	situational := make([]float64, features.SituationalFeatureCount)
	sequence := make([]float64, features.SequenceFeatureCount)
	for i := range sequence {
		sequence[i] = 0.5
	}

	return &features.GameFeatures{
		GameID:        uuid.New(),
		SchemaVersion: features.SchemaVersion,
		Groups: map[string][]float64{
			features.GroupTeam:        team,
			features.GroupPlayer:      make([]float64, features.PlayerFeatureCount),
			features.GroupOdds:        features.SyntheticOddsVector(),
			features.GroupSituational: situational,
			features.GroupSequence:    sequence,
		},
		Quality: models.DataQuality{
			OddsAvailable:    false,
			HomeHistoryDepth: 20,
			AwayHistoryDepth: 20,
			SyntheticGroups:  []string{features.GroupOdds},
		},
		AsOf: time.Now(),
	}
}

func TestPredictFavorsStrongerHomeTeam(t *testing.T) {
	m := buildManager(t, models.ModelFamilies)
	c := NewCombiner(m, testConfig(), nil, testLogger())

	// Dominant home side with the odds feed down
	result, err := c.Predict(context.Background(), matchupFeatures(0.70, 0.40))
	require.NoError(t, err)

	assert.Greater(t, result.HomeWinProbability, 0.5)
	assert.InDelta(t, 1.0, result.HomeWinProbability+result.AwayWinProbability, 1e-9)
	assert.Equal(t, models.WinnerHome, result.Winner)
	assert.False(t, result.DataQuality.OddsAvailable)
	assert.NotEmpty(t, result.ModelVersion)

	require.Len(t, result.PerModelBreakdown, len(models.ModelFamilies))
	weightSum := 0.0
	for _, b := range result.PerModelBreakdown {
		assert.True(t, b.Responded, b.ModelType)
		weightSum += b.Weight
	}
	assert.InDelta(t, 1.0, weightSum, 1e-9)
}

func TestPredictRenormalizesWithMissingModel(t *testing.T) {
	m := buildManager(t, models.ModelFamilies)
	m.Deactivate(models.ModelGradientBoosted)

	c := NewCombiner(m, testConfig(), nil, testLogger())
	result, err := c.Predict(context.Background(), matchupFeatures(0.70, 0.40))
	require.NoError(t, err)

	require.Len(t, result.PerModelBreakdown, 3)
	weightSum := 0.0
	for _, b := range result.PerModelBreakdown {
		weightSum += b.Weight
	}
	assert.InDelta(t, 1.0, weightSum, 1e-9, "remaining weights renormalize to one")
}

func TestPredictErrorsWithNoModels(t *testing.T) {
	m := predictor.NewManager(testLogger())
	c := NewCombiner(m, testConfig(), nil, testLogger())

	_, err := c.Predict(context.Background(), matchupFeatures(0.6, 0.4))
	assert.ErrorIs(t, err, models.ErrNoModelsAvailable)
}

func TestPredictDeclaresNoPlayNearCoinFlip(t *testing.T) {
	m := buildManager(t, models.ModelFamilies)
	cfg := testConfig()
	cfg.NoPlayMargin = 0.25
	cfg.DisagreementSpread = 0 // any disagreement qualifies

	c := NewCombiner(m, cfg, nil, testLogger())

	// Evenly matched teams land near 0.5
	result, err := c.Predict(context.Background(), matchupFeatures(0.50, 0.50))
	require.NoError(t, err)
	assert.Equal(t, models.WinnerNoPlay, result.Winner)
}

func TestPredictIsDeterministicAndCached(t *testing.T) {
	m := buildManager(t, []string{models.ModelSequence})
	cache := NewPredictionCache(time.Minute, 10)
	c := NewCombiner(m, testConfig(), cache, testLogger())

	gf := matchupFeatures(0.65, 0.45)
	first, err := c.Predict(context.Background(), gf)
	require.NoError(t, err)
	second, err := c.Predict(context.Background(), gf)
	require.NoError(t, err)

	assert.Same(t, first, second, "second call hits the cache")

	hits, misses, _ := cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestConfidenceDiscounts(t *testing.T) {
	c := NewCombiner(nil, testConfig(), nil, testLogger())

	clean := &features.GameFeatures{Quality: models.DataQuality{OddsAvailable: true}}
	assert.InDelta(t, 0.5, c.confidence(0.75, clean, 4, 4), 1e-9)

	synthetic := &features.GameFeatures{Quality: models.DataQuality{SyntheticGroups: []string{features.GroupOdds}}}
	assert.InDelta(t, 0.5*syntheticPenalty, c.confidence(0.75, synthetic, 4, 4), 1e-9)

	assert.InDelta(t, 0.25, c.confidence(0.75, clean, 2, 4), 1e-9, "half the models halves the confidence")
}

func TestTopFactorsNameTheLargestAdvantages(t *testing.T) {
	c := NewCombiner(nil, testConfig(), nil, testLogger())

	factors := c.topFactors(matchupFeatures(0.90, 0.20))
	require.NotEmpty(t, factors)
	assert.LessOrEqual(t, len(factors), 3)
	assert.Contains(t, factors[0], "win rate advantage")
	assert.Contains(t, factors[0], "home")
}

func TestSpread(t *testing.T) {
	assert.Equal(t, 0.0, spread(nil))
	assert.InDelta(t, 0.3, spread(map[string]float64{"a": 0.4, "b": 0.7, "c": 0.5}), 1e-9)
}
