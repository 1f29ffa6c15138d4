package training

import (
	"fmt"

	"github.com/yourusername/fantasy-edge/internal/models"
	"github.com/yourusername/fantasy-edge/internal/predictor"
)

// BiasGate is the mandatory post-training check: the trained model's
// home-prediction rate on held-out games must sit inside the window, or the
// artifact is rejected and the run retries with stronger regularization.
type BiasGate struct {
	Low  float64
	High float64
}

// NewBiasGate creates a gate with the given window, defaulting to
// [0.45, 0.55] when the bounds are unset or inverted.
func NewBiasGate(low, high float64) BiasGate {
	if low <= 0 || high <= 0 || low >= high {
		return BiasGate{Low: 0.45, High: 0.55}
	}
	return BiasGate{Low: low, High: high}
}

// Evaluation holds held-out metrics for one trained model
type Evaluation struct {
	Accuracy           float64
	HomePredictionRate float64
	Samples            int
}

// Evaluate scores a trained predictor against a held-out dataset
func Evaluate(p predictor.Predictor, d predictor.Dataset) (Evaluation, error) {
	if d.Empty() {
		return Evaluation{}, fmt.Errorf("%w: empty evaluation set", models.ErrDataInsufficient)
	}

	correct := 0
	homePicks := 0
	for i, row := range d.X {
		prob, err := p.Predict(row)
		if err != nil {
			return Evaluation{}, err
		}
		pickHome := prob >= 0.5
		if pickHome {
			homePicks++
		}
		if pickHome == (d.Y[i] >= 0.5) {
			correct++
		}
	}

	n := float64(d.Len())
	return Evaluation{
		Accuracy:           float64(correct) / n,
		HomePredictionRate: float64(homePicks) / n,
		Samples:            d.Len(),
	}, nil
}

// Check rejects an evaluation whose home-prediction rate falls outside the
// gate window.
func (g BiasGate) Check(eval Evaluation) error {
	if eval.HomePredictionRate < g.Low || eval.HomePredictionRate > g.High {
		return fmt.Errorf("%w: home prediction rate %.4f outside [%.2f, %.2f]",
			models.ErrBiasGateFailed, eval.HomePredictionRate, g.Low, g.High)
	}
	return nil
}
