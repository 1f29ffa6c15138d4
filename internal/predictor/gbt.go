package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"

	"github.com/yourusername/fantasy-edge/internal/models"
)

// Boosting defaults
const (
	gbtRounds    = 150
	gbtMaxDepth  = 3
	gbtMinLeaf   = 10
	gbtShrinkage = 0.1
	gbtPatience  = 10
)

// GradientBoosted is a boosted ensemble of shallow regression trees fit on
// the logistic loss gradient. Each round adds a shrunken correction to the
// running log-odds; boosting stops early when validation loss degrades.
type GradientBoosted struct {
	featureCount int
	l2           float64
	seed         int64

	baseScore float64 // initial log-odds
	trees     []*decisionTree
}

// NewGradientBoosted creates an untrained boosted model for the given input
// width. l2 shrinks leaf corrections toward zero on retrain escalation.
func NewGradientBoosted(featureCount int, l2 float64, seed int64) *GradientBoosted {
	return &GradientBoosted{featureCount: featureCount, l2: l2, seed: seed}
}

// ModelType returns the model family identifier
func (g *GradientBoosted) ModelType() string { return models.ModelGradientBoosted }

// FeatureCount returns the input width
func (g *GradientBoosted) FeatureCount() int { return g.featureCount }

// Train boosts rounds of residual trees, keeping the round count with the
// best validation loss.
func (g *GradientBoosted) Train(ctx context.Context, train, validation Dataset) error {
	if err := checkDataset(train, g.featureCount); err != nil {
		return err
	}
	if err := checkDataset(validation, g.featureCount); err != nil {
		return err
	}
	if train.Empty() {
		return fmt.Errorf("%w: empty training set", models.ErrDataInsufficient)
	}

	rng := rand.New(rand.NewSource(g.seed))
	params := treeParams{maxDepth: gbtMaxDepth, minLeaf: gbtMinLeaf}

	n := train.Len()
	pos := 0.0
	for _, y := range train.Y {
		pos += y
	}
	base := clampProb(pos / float64(n))
	g.baseScore = math.Log(base / (1 - base))
	g.trees = nil

	rawScores := make([]float64, n)
	for i := range rawScores {
		rawScores[i] = g.baseScore
	}
	valScores := make([]float64, validation.Len())
	for i := range valScores {
		valScores[i] = g.baseScore
	}

	indexes := make([]int, n)
	for i := range indexes {
		indexes[i] = i
	}
	residuals := make([]float64, n)

	// Larger L2 damps each correction, the retrain escalation lever
	step := gbtShrinkage / (1 + g.l2)

	bestLoss := math.Inf(1)
	bestRounds := 0
	patience := gbtPatience

	for round := 0; round < gbtRounds; round++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for i := range residuals {
			residuals[i] = train.Y[i] - sigmoid(rawScores[i])
		}

		t := buildTree(train.X, residuals, indexes, params, rng)
		g.trees = append(g.trees, t)

		for i := range rawScores {
			rawScores[i] += step * t.predict(train.X[i])
		}

		if validation.Empty() {
			continue
		}
		preds := make([]float64, validation.Len())
		for i := range valScores {
			valScores[i] += step * t.predict(validation.X[i])
			preds[i] = sigmoid(valScores[i])
		}
		loss := logLoss(preds, validation.Y)
		if loss < bestLoss-1e-6 {
			bestLoss = loss
			bestRounds = len(g.trees)
			patience = gbtPatience
		} else {
			patience--
			if patience <= 0 {
				break
			}
		}
	}

	if bestRounds > 0 {
		g.trees = g.trees[:bestRounds]
	}
	return nil
}

// Predict returns the home-win probability for one raw feature vector
func (g *GradientBoosted) Predict(features []float64) (float64, error) {
	if len(g.trees) == 0 {
		return 0, fmt.Errorf("%w: boosted model has no trees", models.ErrModelLoad)
	}
	if len(features) != g.featureCount {
		return 0, fmt.Errorf("%w: got %d features, expected %d", models.ErrSchemaMismatch, len(features), g.featureCount)
	}
	step := gbtShrinkage / (1 + g.l2)
	score := g.baseScore
	for _, t := range g.trees {
		score += step * t.predict(features)
	}
	return sigmoid(score), nil
}

// gbtParameters is the serialized form of a trained boosted model
type gbtParameters struct {
	FeatureCount int             `json:"feature_count"`
	L2           float64         `json:"l2"`
	Seed         int64           `json:"seed"`
	BaseScore    float64         `json:"base_score"`
	Trees        []*decisionTree `json:"trees"`
}

// Parameters serializes the trained boosted model
func (g *GradientBoosted) Parameters() (json.RawMessage, error) {
	if len(g.trees) == 0 {
		return nil, fmt.Errorf("%w: boosted model is untrained", models.ErrModelLoad)
	}
	return json.Marshal(gbtParameters{
		FeatureCount: g.featureCount,
		L2:           g.l2,
		Seed:         g.seed,
		BaseScore:    g.baseScore,
		Trees:        g.trees,
	})
}

// SetParameters restores a trained boosted model from its serialized form
func (g *GradientBoosted) SetParameters(raw json.RawMessage) error {
	var p gbtParameters
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("%w: %v", models.ErrModelLoad, err)
	}
	if p.FeatureCount != g.featureCount {
		return fmt.Errorf("%w: artifact trained on %d features, model expects %d",
			models.ErrSchemaMismatch, p.FeatureCount, g.featureCount)
	}
	if len(p.Trees) == 0 {
		return fmt.Errorf("%w: artifact holds no trees", models.ErrModelLoad)
	}
	g.l2 = p.L2
	g.seed = p.Seed
	g.baseScore = p.BaseScore
	g.trees = p.Trees
	return nil
}
