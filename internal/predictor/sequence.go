package predictor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yourusername/fantasy-edge/internal/models"
)

// Sequence model defaults
const (
	seqEpochs       = 500
	seqLearningRate = 0.05
	seqPatience     = 20
)

// SequenceModel is a logistic regression over the recency window. It is the
// cheapest family in the ensemble and the only one reading the game-by-game
// result sequence instead of the aggregated snapshot.
type SequenceModel struct {
	featureCount int
	l2           float64

	scaler  standardScaler
	weights []float64
	bias    float64
	trained bool
}

// NewSequenceModel creates an untrained sequence model for the given input
// width
func NewSequenceModel(featureCount int, l2 float64) *SequenceModel {
	return &SequenceModel{featureCount: featureCount, l2: l2}
}

// ModelType returns the model family identifier
func (s *SequenceModel) ModelType() string { return models.ModelSequence }

// FeatureCount returns the input width
func (s *SequenceModel) FeatureCount() int { return s.featureCount }

// Train fits the logistic weights by full-batch gradient descent with L2,
// stopping early when validation loss plateaus.
func (s *SequenceModel) Train(ctx context.Context, train, validation Dataset) error {
	if err := checkDataset(train, s.featureCount); err != nil {
		return err
	}
	if err := checkDataset(validation, s.featureCount); err != nil {
		return err
	}
	if train.Empty() {
		return fmt.Errorf("%w: empty training set", models.ErrDataInsufficient)
	}

	s.scaler = standardScaler{}
	s.scaler.fit(train.X)
	trainX := s.scaler.transformAll(train.X)
	valX := s.scaler.transformAll(validation.X)

	s.weights = make([]float64, s.featureCount)
	s.bias = 0

	n := float64(len(trainX))
	grad := make([]float64, s.featureCount)

	bestLoss := 0.0
	bestSet := false
	bestWeights := make([]float64, s.featureCount)
	bestBias := 0.0
	patience := seqPatience

	for epoch := 0; epoch < seqEpochs; epoch++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0
		for i, row := range trainX {
			p := s.scoreRow(row)
			d := p - train.Y[i]
			for j, v := range row {
				grad[j] += d * v
			}
			gradBias += d
		}
		for j := range s.weights {
			s.weights[j] -= seqLearningRate * (grad[j]/n + s.l2*s.weights[j])
		}
		s.bias -= seqLearningRate * gradBias / n

		if validation.Empty() {
			continue
		}
		preds := make([]float64, len(valX))
		for i, row := range valX {
			preds[i] = s.scoreRow(row)
		}
		loss := logLoss(preds, validation.Y)
		if !bestSet || loss < bestLoss-1e-7 {
			bestLoss = loss
			bestSet = true
			copy(bestWeights, s.weights)
			bestBias = s.bias
			patience = seqPatience
		} else {
			patience--
			if patience <= 0 {
				break
			}
		}
	}

	if bestSet {
		copy(s.weights, bestWeights)
		s.bias = bestBias
	}
	s.trained = true
	return nil
}

func (s *SequenceModel) scoreRow(row []float64) float64 {
	z := s.bias
	for j, v := range row {
		z += s.weights[j] * v
	}
	return sigmoid(z)
}

// Predict returns the home-win probability for one raw feature vector
func (s *SequenceModel) Predict(features []float64) (float64, error) {
	if !s.trained {
		return 0, fmt.Errorf("%w: sequence model has no parameters", models.ErrModelLoad)
	}
	if len(features) != s.featureCount {
		return 0, fmt.Errorf("%w: got %d features, expected %d", models.ErrSchemaMismatch, len(features), s.featureCount)
	}
	return s.scoreRow(s.scaler.transform(features)), nil
}

// seqParameters is the serialized form of a trained sequence model
type seqParameters struct {
	FeatureCount int            `json:"feature_count"`
	L2           float64        `json:"l2"`
	Scaler       standardScaler `json:"scaler"`
	Weights      []float64      `json:"weights"`
	Bias         float64        `json:"bias"`
}

// Parameters serializes the trained sequence model
func (s *SequenceModel) Parameters() (json.RawMessage, error) {
	if !s.trained {
		return nil, fmt.Errorf("%w: sequence model is untrained", models.ErrModelLoad)
	}
	return json.Marshal(seqParameters{
		FeatureCount: s.featureCount,
		L2:           s.l2,
		Scaler:       s.scaler,
		Weights:      s.weights,
		Bias:         s.bias,
	})
}

// SetParameters restores a trained sequence model from its serialized form
func (s *SequenceModel) SetParameters(raw json.RawMessage) error {
	var p seqParameters
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("%w: %v", models.ErrModelLoad, err)
	}
	if p.FeatureCount != s.featureCount {
		return fmt.Errorf("%w: artifact trained on %d features, model expects %d",
			models.ErrSchemaMismatch, p.FeatureCount, s.featureCount)
	}
	if len(p.Weights) != s.featureCount {
		return fmt.Errorf("%w: artifact holds %d weights, model expects %d",
			models.ErrModelLoad, len(p.Weights), s.featureCount)
	}
	s.l2 = p.L2
	s.scaler = p.Scaler
	s.weights = p.Weights
	s.bias = p.Bias
	s.trained = true
	return nil
}
