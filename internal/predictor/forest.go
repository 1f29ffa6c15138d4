package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"

	"github.com/yourusername/fantasy-edge/internal/models"
)

// Forest defaults
const (
	rfTrees    = 100
	rfMaxDepth = 8
	rfMinLeaf  = 5
)

// RandomForest is a bagged ensemble of decision trees. Each tree fits a
// bootstrap resample of the training rows over a sqrt-sized random feature
// subset; the prediction is the mean leaf probability across trees.
type RandomForest struct {
	featureCount int
	seed         int64
	trees        []*decisionTree
}

// NewRandomForest creates an untrained forest for the given input width
func NewRandomForest(featureCount int, seed int64) *RandomForest {
	return &RandomForest{featureCount: featureCount, seed: seed}
}

// ModelType returns the model family identifier
func (f *RandomForest) ModelType() string { return models.ModelRandomForest }

// FeatureCount returns the input width
func (f *RandomForest) FeatureCount() int { return f.featureCount }

// Train grows the forest. The validation set plays no role in fitting; tree
// count and depth are fixed.
func (f *RandomForest) Train(ctx context.Context, train, _ Dataset) error {
	if err := checkDataset(train, f.featureCount); err != nil {
		return err
	}
	if train.Empty() {
		return fmt.Errorf("%w: empty training set", models.ErrDataInsufficient)
	}

	rng := rand.New(rand.NewSource(f.seed))
	params := treeParams{
		maxDepth:    rfMaxDepth,
		minLeaf:     rfMinLeaf,
		maxFeatures: int(math.Ceil(math.Sqrt(float64(f.featureCount)))),
	}

	n := train.Len()
	f.trees = make([]*decisionTree, 0, rfTrees)
	for i := 0; i < rfTrees; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		bootstrap := make([]int, n)
		for j := range bootstrap {
			bootstrap[j] = rng.Intn(n)
		}
		f.trees = append(f.trees, buildTree(train.X, train.Y, bootstrap, params, rng))
	}
	return nil
}

// Predict averages leaf probabilities across the forest
func (f *RandomForest) Predict(features []float64) (float64, error) {
	if len(f.trees) == 0 {
		return 0, fmt.Errorf("%w: random forest has no trees", models.ErrModelLoad)
	}
	if len(features) != f.featureCount {
		return 0, fmt.Errorf("%w: got %d features, expected %d", models.ErrSchemaMismatch, len(features), f.featureCount)
	}
	sum := 0.0
	for _, t := range f.trees {
		sum += t.predict(features)
	}
	return clampProb(sum / float64(len(f.trees))), nil
}

// rfParameters is the serialized form of a trained forest
type rfParameters struct {
	FeatureCount int             `json:"feature_count"`
	Seed         int64           `json:"seed"`
	Trees        []*decisionTree `json:"trees"`
}

// Parameters serializes the trained forest
func (f *RandomForest) Parameters() (json.RawMessage, error) {
	if len(f.trees) == 0 {
		return nil, fmt.Errorf("%w: random forest is untrained", models.ErrModelLoad)
	}
	return json.Marshal(rfParameters{FeatureCount: f.featureCount, Seed: f.seed, Trees: f.trees})
}

// SetParameters restores a trained forest from its serialized form
func (f *RandomForest) SetParameters(raw json.RawMessage) error {
	var p rfParameters
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("%w: %v", models.ErrModelLoad, err)
	}
	if p.FeatureCount != f.featureCount {
		return fmt.Errorf("%w: artifact trained on %d features, model expects %d",
			models.ErrSchemaMismatch, p.FeatureCount, f.featureCount)
	}
	if len(p.Trees) == 0 {
		return fmt.Errorf("%w: artifact holds no trees", models.ErrModelLoad)
	}
	f.seed = p.Seed
	f.trees = p.Trees
	return nil
}
