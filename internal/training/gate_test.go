package training

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/fantasy-edge/internal/models"
	"github.com/yourusername/fantasy-edge/internal/predictor"
)

// constantPredictor always returns the same probability
type constantPredictor struct {
	prob float64
}

func (c constantPredictor) ModelType() string { return models.ModelRandomForest }
func (c constantPredictor) FeatureCount() int { return 1 }
func (c constantPredictor) Train(context.Context, predictor.Dataset, predictor.Dataset) error {
	return nil
}
func (c constantPredictor) Predict([]float64) (float64, error)   { return c.prob, nil }
func (c constantPredictor) Parameters() (json.RawMessage, error) { return nil, nil }
func (c constantPredictor) SetParameters(json.RawMessage) error  { return nil }

func evenDataset(n int) predictor.Dataset {
	d := predictor.Dataset{X: make([][]float64, n), Y: make([]float64, n)}
	for i := 0; i < n; i++ {
		d.X[i] = []float64{float64(i)}
		if i%2 == 0 {
			d.Y[i] = models.LabelHomeWin
		}
	}
	return d
}

func TestBiasGateRejectsAlwaysHomeModel(t *testing.T) {
	gate := NewBiasGate(0.45, 0.55)

	eval, err := Evaluate(constantPredictor{prob: 0.9}, evenDataset(200))
	require.NoError(t, err)
	assert.Equal(t, 1.0, eval.HomePredictionRate)
	assert.Equal(t, 0.5, eval.Accuracy, "an always-home model is a coin flip on balanced data")

	err = gate.Check(eval)
	assert.ErrorIs(t, err, models.ErrBiasGateFailed)
}

func TestBiasGateAcceptsBalancedPredictions(t *testing.T) {
	gate := NewBiasGate(0.45, 0.55)
	assert.NoError(t, gate.Check(Evaluation{HomePredictionRate: 0.50, Samples: 500}))
	assert.NoError(t, gate.Check(Evaluation{HomePredictionRate: 0.45, Samples: 500}))
	assert.NoError(t, gate.Check(Evaluation{HomePredictionRate: 0.55, Samples: 500}))

	assert.Error(t, gate.Check(Evaluation{HomePredictionRate: 0.449, Samples: 500}))
	assert.Error(t, gate.Check(Evaluation{HomePredictionRate: 0.551, Samples: 500}))
}

func TestNewBiasGateDefaultsOnInvalidWindow(t *testing.T) {
	gate := NewBiasGate(0.6, 0.4)
	assert.Equal(t, 0.45, gate.Low)
	assert.Equal(t, 0.55, gate.High)
}

func TestEvaluateRejectsEmptyDataset(t *testing.T) {
	_, err := Evaluate(constantPredictor{prob: 0.5}, predictor.Dataset{})
	assert.ErrorIs(t, err, models.ErrDataInsufficient)
}
