package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/fantasy-edge/internal/models"
)

func TestDifferenceVectorFoldsTeamPairs(t *testing.T) {
	length, err := VariantLength(models.ModelNeuralNet)
	require.NoError(t, err)

	vec := make([]float64, length)
	vec[0] = 0.7 // home win rate
	vec[1] = 0.4 // away win rate
	vec[2] = 0.6
	vec[3] = 0.8
	vec[29] = 1.0 // home court indicator, not a pair

	out := DifferenceVector(vec, models.ModelNeuralNet)

	assert.InDelta(t, 0.3, out[0], 1e-9)
	assert.Equal(t, 0.0, out[1], "away slot of a folded pair is zeroed")
	assert.InDelta(t, -0.2, out[2], 1e-9)
	assert.Equal(t, 0.0, out[3])
	assert.Equal(t, 1.0, out[29], "unpaired slots pass through")

	// The input is never mutated
	assert.Equal(t, 0.4, vec[1])
}

func TestDifferenceVectorPassesSequenceThrough(t *testing.T) {
	length, err := VariantLength(models.ModelSequence)
	require.NoError(t, err)

	vec := make([]float64, length)
	for i := range vec {
		vec[i] = float64(i) / float64(length)
	}

	out := DifferenceVector(vec, models.ModelSequence)
	assert.Equal(t, vec, out)
}

func TestDifferenceFactorsAreNamed(t *testing.T) {
	length, err := VariantLength(models.ModelRandomForest)
	require.NoError(t, err)

	vec := make([]float64, length)
	vec[0], vec[1] = 0.9, 0.2

	factors := DifferenceFactors(DifferenceVector(vec, models.ModelRandomForest), models.ModelRandomForest)
	require.Len(t, factors, len(teamDifferencePairs))
	assert.Equal(t, "win rate advantage", factors[0].Name)
	assert.InDelta(t, 0.7, factors[0].Value, 1e-9)

	assert.Empty(t, DifferenceFactors(vec, models.ModelSequence))
}
