package predictor

import (
	"math/rand"
	"sort"
)

// treeNode is one node of a serialized binary decision tree. Leaves carry the
// prediction value and -1 child indexes.
type treeNode struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Value     float64 `json:"v"`
}

// decisionTree is a regression tree stored as a flat node array, which keeps
// artifacts compact and loading allocation-free.
type decisionTree struct {
	Nodes []treeNode `json:"nodes"`
}

// predict walks the tree for one feature vector
func (t *decisionTree) predict(x []float64) float64 {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.Left < 0 {
			return node.Value
		}
		if x[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

// treeParams controls tree growth
type treeParams struct {
	maxDepth    int
	minLeaf     int
	maxFeatures int // candidate features per split, 0 means all
}

// buildTree fits a variance-reducing regression tree on the indexed rows.
// With 0/1 targets the leaf means are class probabilities, so the same
// builder serves both the forest and the boosted residual fits.
func buildTree(x [][]float64, y []float64, indexes []int, params treeParams, rng *rand.Rand) *decisionTree {
	t := &decisionTree{}
	t.grow(x, y, indexes, 0, params, rng)
	return t
}

func (t *decisionTree) grow(x [][]float64, y []float64, indexes []int, depth int, params treeParams, rng *rand.Rand) int {
	nodeIdx := len(t.Nodes)
	t.Nodes = append(t.Nodes, treeNode{Left: -1, Right: -1, Value: meanAt(y, indexes)})

	if depth >= params.maxDepth || len(indexes) < 2*params.minLeaf {
		return nodeIdx
	}

	feature, threshold, ok := bestSplit(x, y, indexes, params, rng)
	if !ok {
		return nodeIdx
	}

	left := make([]int, 0, len(indexes))
	right := make([]int, 0, len(indexes))
	for _, i := range indexes {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < params.minLeaf || len(right) < params.minLeaf {
		return nodeIdx
	}

	t.Nodes[nodeIdx].Feature = feature
	t.Nodes[nodeIdx].Threshold = threshold
	t.Nodes[nodeIdx].Left = t.grow(x, y, left, depth+1, params, rng)
	t.Nodes[nodeIdx].Right = t.grow(x, y, right, depth+1, params, rng)
	return nodeIdx
}

// bestSplit scans candidate features for the threshold with the largest
// variance reduction
func bestSplit(x [][]float64, y []float64, indexes []int, params treeParams, rng *rand.Rand) (int, float64, bool) {
	featureCount := len(x[indexes[0]])
	candidates := candidateFeatures(featureCount, params.maxFeatures, rng)

	bestFeature := -1
	bestThreshold := 0.0
	bestScore := 0.0

	total, totalSq := sums(y, indexes)
	n := float64(len(indexes))
	baseSSE := totalSq - total*total/n

	sorted := make([]int, len(indexes))
	for _, f := range candidates {
		copy(sorted, indexes)
		sort.Slice(sorted, func(a, b int) bool { return x[sorted[a]][f] < x[sorted[b]][f] })

		leftSum, leftSq := 0.0, 0.0
		for pos := 0; pos < len(sorted)-1; pos++ {
			yi := y[sorted[pos]]
			leftSum += yi
			leftSq += yi * yi

			cur, next := x[sorted[pos]][f], x[sorted[pos+1]][f]
			if cur == next {
				continue
			}
			leftN := float64(pos + 1)
			rightN := n - leftN
			if int(leftN) < params.minLeaf || int(rightN) < params.minLeaf {
				continue
			}

			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/leftN) + (rightSq - rightSum*rightSum/rightN)
			gain := baseSSE - sse
			if gain > bestScore {
				bestScore = gain
				bestFeature = f
				bestThreshold = (cur + next) / 2
			}
		}
	}

	if bestFeature < 0 || bestScore <= 1e-12 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

// candidateFeatures samples a feature subset without replacement, or returns
// every feature when max is 0
func candidateFeatures(featureCount, max int, rng *rand.Rand) []int {
	all := make([]int, featureCount)
	for i := range all {
		all[i] = i
	}
	if max <= 0 || max >= featureCount || rng == nil {
		return all
	}
	rng.Shuffle(featureCount, func(i, j int) { all[i], all[j] = all[j], all[i] })
	subset := all[:max]
	sort.Ints(subset)
	return subset
}

func meanAt(y []float64, indexes []int) float64 {
	if len(indexes) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range indexes {
		sum += y[i]
	}
	return sum / float64(len(indexes))
}

func sums(y []float64, indexes []int) (sum, sumSq float64) {
	for _, i := range indexes {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	return sum, sumSq
}
