// Package predictor implements the four base model families behind the
// ensemble: a feed-forward neural net, a random forest, a gradient boosted
// tree model and a recency-window logistic model. Every family trains against
// chronological datasets and serializes its parameters into versioned
// artifacts.
package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/yourusername/fantasy-edge/internal/models"
)

// Dataset is a labeled feature matrix. Rows stay in chronological order so
// splits never shuffle future games into the past.
type Dataset struct {
	X [][]float64
	Y []float64
}

// Len returns the number of samples
func (d Dataset) Len() int { return len(d.X) }

// Empty reports whether the dataset has no samples
func (d Dataset) Empty() bool { return len(d.X) == 0 }

// Predictor is one trainable base model. Train fits against the training
// rows using the validation rows for early stopping; Predict returns the
// home-win probability for one feature vector.
type Predictor interface {
	ModelType() string
	FeatureCount() int
	Train(ctx context.Context, train, validation Dataset) error
	Predict(features []float64) (float64, error)
	Parameters() (json.RawMessage, error)
	SetParameters(raw json.RawMessage) error
}

// New constructs an untrained predictor for a model family with the given
// input width and training seed.
func New(modelType string, featureCount int, l2 float64, seed int64) (Predictor, error) {
	switch modelType {
	case models.ModelNeuralNet:
		return NewNeuralNet(featureCount, l2, seed), nil
	case models.ModelRandomForest:
		return NewRandomForest(featureCount, seed), nil
	case models.ModelGradientBoosted:
		return NewGradientBoosted(featureCount, l2, seed), nil
	case models.ModelSequence:
		return NewSequenceModel(featureCount, l2), nil
	default:
		return nil, fmt.Errorf("%w: unknown model type %q", models.ErrSchemaMismatch, modelType)
	}
}

func sigmoid(z float64) float64 {
	if z < -40 {
		return 0
	}
	if z > 40 {
		return 1
	}
	return 1 / (1 + math.Exp(-z))
}

// clampProb keeps probabilities away from the exact 0 and 1 the log loss
// cannot tolerate
func clampProb(p float64) float64 {
	const eps = 1e-7
	return math.Min(1-eps, math.Max(eps, p))
}

// logLoss returns the mean binary cross entropy of predictions against labels
func logLoss(preds, labels []float64) float64 {
	if len(preds) == 0 {
		return 0
	}
	total := 0.0
	for i, p := range preds {
		p = clampProb(p)
		if labels[i] >= 0.5 {
			total -= math.Log(p)
		} else {
			total -= math.Log(1 - p)
		}
	}
	return total / float64(len(preds))
}

// accuracy returns the fraction of predictions on the right side of 0.5
func accuracy(preds, labels []float64) float64 {
	if len(preds) == 0 {
		return 0
	}
	correct := 0
	for i, p := range preds {
		if (p >= 0.5) == (labels[i] >= 0.5) {
			correct++
		}
	}
	return float64(correct) / float64(len(preds))
}

// checkDataset validates shapes before training
func checkDataset(d Dataset, featureCount int) error {
	if len(d.X) != len(d.Y) {
		return fmt.Errorf("%w: %d feature rows but %d labels", models.ErrDataInsufficient, len(d.X), len(d.Y))
	}
	for i, row := range d.X {
		if len(row) != featureCount {
			return fmt.Errorf("%w: row %d has %d features, model expects %d",
				models.ErrSchemaMismatch, i, len(row), featureCount)
		}
	}
	return nil
}
