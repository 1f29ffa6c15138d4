package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/yourusername/fantasy-edge/internal/models"
)

// Network shape and training defaults
const (
	nnHidden1        = 64
	nnHidden2        = 32
	nnEpochs         = 200
	nnLearningRate   = 0.01
	nnMomentum       = 0.9
	nnDropoutKeep    = 0.8
	nnPatience       = 15
	nnMinImprovement = 1e-5
)

// NeuralNet is a feed-forward binary classifier with two ReLU hidden layers
// and a sigmoid output, trained by SGD with momentum. Inputs are standardized
// with moments fitted on the training rows; inverted dropout regularizes the
// hidden layers during training only.
type NeuralNet struct {
	featureCount int
	l2           float64
	seed         int64

	scaler     standardScaler
	w1, w2, w3 *mat.Dense
	b1, b2     *mat.VecDense
	b3         float64

	trained bool
}

// NewNeuralNet creates an untrained network for the given input width
func NewNeuralNet(featureCount int, l2 float64, seed int64) *NeuralNet {
	return &NeuralNet{featureCount: featureCount, l2: l2, seed: seed}
}

// ModelType returns the model family identifier
func (n *NeuralNet) ModelType() string { return models.ModelNeuralNet }

// FeatureCount returns the input width
func (n *NeuralNet) FeatureCount() int { return n.featureCount }

func (n *NeuralNet) initWeights(rng *rand.Rand) {
	he := func(rows, cols, fanIn int) *mat.Dense {
		scale := math.Sqrt(2 / float64(fanIn))
		data := make([]float64, rows*cols)
		for i := range data {
			data[i] = rng.NormFloat64() * scale
		}
		return mat.NewDense(rows, cols, data)
	}
	n.w1 = he(nnHidden1, n.featureCount, n.featureCount)
	n.w2 = he(nnHidden2, nnHidden1, nnHidden1)
	n.w3 = he(1, nnHidden2, nnHidden2)
	n.b1 = mat.NewVecDense(nnHidden1, nil)
	n.b2 = mat.NewVecDense(nnHidden2, nil)
	n.b3 = 0
}

// forward runs one standardized sample through the network. Dropout masks are
// applied only when rng is non-nil.
func (n *NeuralNet) forward(x *mat.VecDense, rng *rand.Rand) (z1, a1, z2, a2 *mat.VecDense, m1, m2 []float64, p float64) {
	z1 = mat.NewVecDense(nnHidden1, nil)
	z1.MulVec(n.w1, x)
	z1.AddVec(z1, n.b1)

	a1 = mat.NewVecDense(nnHidden1, nil)
	m1 = dropoutMask(nnHidden1, rng)
	for i := 0; i < nnHidden1; i++ {
		v := math.Max(0, z1.AtVec(i))
		if m1 != nil {
			v *= m1[i]
		}
		a1.SetVec(i, v)
	}

	z2 = mat.NewVecDense(nnHidden2, nil)
	z2.MulVec(n.w2, a1)
	z2.AddVec(z2, n.b2)

	a2 = mat.NewVecDense(nnHidden2, nil)
	m2 = dropoutMask(nnHidden2, rng)
	for i := 0; i < nnHidden2; i++ {
		v := math.Max(0, z2.AtVec(i))
		if m2 != nil {
			v *= m2[i]
		}
		a2.SetVec(i, v)
	}

	z3 := mat.Dot(n.w3.RowView(0), a2) + n.b3
	return z1, a1, z2, a2, m1, m2, sigmoid(z3)
}

// dropoutMask returns an inverted-dropout mask, or nil at inference
func dropoutMask(size int, rng *rand.Rand) []float64 {
	if rng == nil {
		return nil
	}
	mask := make([]float64, size)
	for i := range mask {
		if rng.Float64() < nnDropoutKeep {
			mask[i] = 1 / nnDropoutKeep
		}
	}
	return mask
}

// Train fits the network with SGD and momentum, stopping early when the
// validation loss stops improving and restoring the best checkpoint.
func (n *NeuralNet) Train(ctx context.Context, train, validation Dataset) error {
	if err := checkDataset(train, n.featureCount); err != nil {
		return err
	}
	if err := checkDataset(validation, n.featureCount); err != nil {
		return err
	}
	if train.Empty() {
		return fmt.Errorf("%w: empty training set", models.ErrDataInsufficient)
	}

	rng := rand.New(rand.NewSource(n.seed))
	n.scaler = standardScaler{}
	n.scaler.fit(train.X)
	trainX := n.scaler.transformAll(train.X)
	valX := n.scaler.transformAll(validation.X)

	n.initWeights(rng)

	vw1 := mat.NewDense(nnHidden1, n.featureCount, nil)
	vw2 := mat.NewDense(nnHidden2, nnHidden1, nil)
	vw3 := mat.NewDense(1, nnHidden2, nil)
	vb1 := mat.NewVecDense(nnHidden1, nil)
	vb2 := mat.NewVecDense(nnHidden2, nil)
	vb3 := 0.0

	order := make([]int, len(trainX))
	for i := range order {
		order[i] = i
	}

	bestLoss := math.Inf(1)
	patience := nnPatience
	var best nnCheckpoint

	for epoch := 0; epoch < nnEpochs; epoch++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		for _, idx := range order {
			x := mat.NewVecDense(n.featureCount, trainX[idx])
			y := train.Y[idx]
			z1, a1, z2, a2, m1, m2, p := n.forward(x, rng)

			// Output delta for sigmoid with cross entropy
			d3 := p - y

			d2 := mat.NewVecDense(nnHidden2, nil)
			for i := 0; i < nnHidden2; i++ {
				g := n.w3.At(0, i) * d3
				if z2.AtVec(i) <= 0 {
					g = 0
				}
				if m2 != nil {
					g *= m2[i]
				}
				d2.SetVec(i, g)
			}

			d1 := mat.NewVecDense(nnHidden1, nil)
			for i := 0; i < nnHidden1; i++ {
				g := 0.0
				for j := 0; j < nnHidden2; j++ {
					g += n.w2.At(j, i) * d2.AtVec(j)
				}
				if z1.AtVec(i) <= 0 {
					g = 0
				}
				if m1 != nil {
					g *= m1[i]
				}
				d1.SetVec(i, g)
			}

			n.step(x, a1, a2, d1, d2, d3, vw1, vw2, vw3, vb1, vb2, &vb3)
		}

		valPreds := n.predictAll(valX)
		loss := logLoss(valPreds, validation.Y)
		if !validation.Empty() && loss < bestLoss-nnMinImprovement {
			bestLoss = loss
			patience = nnPatience
			best = n.checkpoint()
		} else if !validation.Empty() {
			patience--
			if patience <= 0 {
				break
			}
		}
	}

	if best.W1 != nil {
		n.restore(best)
	}
	n.trained = true
	return nil
}

// step applies one momentum SGD update with L2 weight decay
func (n *NeuralNet) step(x, a1, a2, d1, d2 *mat.VecDense, d3 float64, vw1, vw2, vw3 *mat.Dense, vb1, vb2 *mat.VecDense, vb3 *float64) {
	update := func(w, v *mat.Dense, delta, act *mat.VecDense) {
		rows, cols := w.Dims()
		for i := 0; i < rows; i++ {
			di := delta.AtVec(i)
			for j := 0; j < cols; j++ {
				grad := di*act.AtVec(j) + n.l2*w.At(i, j)
				nv := nnMomentum*v.At(i, j) - nnLearningRate*grad
				v.Set(i, j, nv)
				w.Set(i, j, w.At(i, j)+nv)
			}
		}
	}
	updateBias := func(b, v, delta *mat.VecDense) {
		for i := 0; i < b.Len(); i++ {
			nv := nnMomentum*v.AtVec(i) - nnLearningRate*delta.AtVec(i)
			v.SetVec(i, nv)
			b.SetVec(i, b.AtVec(i)+nv)
		}
	}

	update(n.w1, vw1, d1, x)
	update(n.w2, vw2, d2, a1)
	updateBias(n.b1, vb1, d1)
	updateBias(n.b2, vb2, d2)

	for j := 0; j < nnHidden2; j++ {
		grad := d3*a2.AtVec(j) + n.l2*n.w3.At(0, j)
		nv := nnMomentum*vw3.At(0, j) - nnLearningRate*grad
		vw3.Set(0, j, nv)
		n.w3.Set(0, j, n.w3.At(0, j)+nv)
	}
	*vb3 = nnMomentum**vb3 - nnLearningRate*d3
	n.b3 += *vb3
}

func (n *NeuralNet) predictAll(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		x := mat.NewVecDense(n.featureCount, row)
		_, _, _, _, _, _, p := n.forward(x, nil)
		out[i] = p
	}
	return out
}

// Predict returns the home-win probability for one raw feature vector
func (n *NeuralNet) Predict(features []float64) (float64, error) {
	if !n.trained {
		return 0, fmt.Errorf("%w: neural net has no parameters", models.ErrModelLoad)
	}
	if len(features) != n.featureCount {
		return 0, fmt.Errorf("%w: got %d features, expected %d", models.ErrSchemaMismatch, len(features), n.featureCount)
	}
	row := n.scaler.transform(features)
	x := mat.NewVecDense(n.featureCount, row)
	_, _, _, _, _, _, p := n.forward(x, nil)
	return p, nil
}

// nnCheckpoint is a deep copy of the network parameters
type nnCheckpoint struct {
	W1, W2, W3 [][]float64
	B1, B2     []float64
	B3         float64
}

func (n *NeuralNet) checkpoint() nnCheckpoint {
	return nnCheckpoint{
		W1: denseToSlices(n.w1),
		W2: denseToSlices(n.w2),
		W3: denseToSlices(n.w3),
		B1: vecToSlice(n.b1),
		B2: vecToSlice(n.b2),
		B3: n.b3,
	}
}

func (n *NeuralNet) restore(c nnCheckpoint) {
	n.w1 = slicesToDense(c.W1)
	n.w2 = slicesToDense(c.W2)
	n.w3 = slicesToDense(c.W3)
	n.b1 = mat.NewVecDense(len(c.B1), append([]float64(nil), c.B1...))
	n.b2 = mat.NewVecDense(len(c.B2), append([]float64(nil), c.B2...))
	n.b3 = c.B3
}

// nnParameters is the serialized form of a trained network
type nnParameters struct {
	FeatureCount int            `json:"feature_count"`
	L2           float64        `json:"l2"`
	Seed         int64          `json:"seed"`
	Scaler       standardScaler `json:"scaler"`
	W1           [][]float64    `json:"w1"`
	W2           [][]float64    `json:"w2"`
	W3           [][]float64    `json:"w3"`
	B1           []float64      `json:"b1"`
	B2           []float64      `json:"b2"`
	B3           float64        `json:"b3"`
}

// Parameters serializes the trained network
func (n *NeuralNet) Parameters() (json.RawMessage, error) {
	if !n.trained {
		return nil, fmt.Errorf("%w: neural net is untrained", models.ErrModelLoad)
	}
	return json.Marshal(nnParameters{
		FeatureCount: n.featureCount,
		L2:           n.l2,
		Seed:         n.seed,
		Scaler:       n.scaler,
		W1:           denseToSlices(n.w1),
		W2:           denseToSlices(n.w2),
		W3:           denseToSlices(n.w3),
		B1:           vecToSlice(n.b1),
		B2:           vecToSlice(n.b2),
		B3:           n.b3,
	})
}

// SetParameters restores a trained network from its serialized form
func (n *NeuralNet) SetParameters(raw json.RawMessage) error {
	var p nnParameters
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("%w: %v", models.ErrModelLoad, err)
	}
	if p.FeatureCount != n.featureCount {
		return fmt.Errorf("%w: artifact trained on %d features, model expects %d",
			models.ErrSchemaMismatch, p.FeatureCount, n.featureCount)
	}
	n.l2 = p.L2
	n.seed = p.Seed
	n.scaler = p.Scaler
	n.restore(nnCheckpoint{W1: p.W1, W2: p.W2, W3: p.W3, B1: p.B1, B2: p.B2, B3: p.B3})
	n.trained = true
	return nil
}

func denseToSlices(m *mat.Dense) [][]float64 {
	rows, cols := m.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

func slicesToDense(rows [][]float64) *mat.Dense {
	r := len(rows)
	c := len(rows[0])
	out := mat.NewDense(r, c, nil)
	for i, row := range rows {
		for j, v := range row {
			out.Set(i, j, v)
		}
	}
	return out
}

func vecToSlice(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
