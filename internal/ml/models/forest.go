package models

import (
	"math"
	"math/rand"
	"sort"
)

// ForestName is the artifact name of the random forest model.
const ForestName = "random_forest"

// TreeNode is one node of a fitted decision tree. Leaves carry the
// majority class of the training rows that reached them.
type TreeNode struct {
	Leaf       bool      `json:"leaf" mapstructure:"leaf"`
	Prediction float64   `json:"prediction" mapstructure:"prediction"`
	Feature    int       `json:"feature" mapstructure:"feature"`
	Threshold  float64   `json:"threshold" mapstructure:"threshold"`
	Left       *TreeNode `json:"left,omitempty" mapstructure:"left"`
	Right      *TreeNode `json:"right,omitempty" mapstructure:"right"`
}

// RandomForest is a bagged ensemble of depth-limited CART trees split on
// Gini impurity. The forest votes hard class labels; it exposes no
// calibrated probability, so PredictProbability adapts the raw vote to
// the score contract by returning the winning class as a float.
type RandomForest struct {
	// Fitted reports whether the model has been trained.
	Fitted bool `json:"fitted" mapstructure:"fitted"`

	// NumTrees is the number of bootstrap trees.
	NumTrees int `json:"num_trees" mapstructure:"num_trees"`

	// MaxDepth limits tree depth.
	MaxDepth int `json:"max_depth" mapstructure:"max_depth"`

	// MinLeafSize is the smallest row count a node may split.
	MinLeafSize int `json:"min_leaf_size" mapstructure:"min_leaf_size"`

	// Seed drives bootstrap sampling and feature subsets, making
	// training reproducible.
	Seed int64 `json:"seed" mapstructure:"seed"`

	// NumFeatures is the fitted input dimension.
	NumFeatures int `json:"num_features" mapstructure:"num_features"`

	// Trees are the fitted tree roots.
	Trees []*TreeNode `json:"trees" mapstructure:"trees"`
}

// NewRandomForest returns an untrained forest with default
// hyperparameters.
func NewRandomForest() *RandomForest {
	return &RandomForest{
		NumTrees:    25,
		MaxDepth:    6,
		MinLeafSize: 2,
		Seed:        42,
	}
}

// Name returns the artifact name.
func (m *RandomForest) Name() string {
	return ForestName
}

// Fit trains the forest on rows X with binary labels y (0 or 1).
func (m *RandomForest) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return ErrEmptyTrainingSet
	}
	if len(X) != len(y) {
		return ErrLabelMismatch
	}

	dim := len(X[0])
	for _, row := range X {
		if len(row) != dim {
			return ErrDimensionMismatch
		}
	}

	rng := rand.New(rand.NewSource(m.Seed))
	featuresPerSplit := int(math.Ceil(math.Sqrt(float64(dim))))

	trees := make([]*TreeNode, 0, m.NumTrees)
	for t := 0; t < m.NumTrees; t++ {
		// Bootstrap sample with replacement.
		idx := make([]int, len(X))
		for i := range idx {
			idx[i] = rng.Intn(len(X))
		}
		trees = append(trees, m.buildTree(X, y, idx, 0, featuresPerSplit, rng))
	}

	m.NumFeatures = dim
	m.Trees = trees
	m.Fitted = true
	return nil
}

// Predict returns the majority class vote of the forest (0 or 1).
func (m *RandomForest) Predict(x []float64) (float64, error) {
	if !m.Fitted || len(m.Trees) == 0 {
		return 0, ErrNotFitted
	}
	if len(x) != m.NumFeatures {
		return 0, ErrDimensionMismatch
	}

	votes := 0.0
	for _, root := range m.Trees {
		votes += classify(root, x)
	}
	if votes*2 >= float64(len(m.Trees)) {
		return 1, nil
	}
	return 0, nil
}

// PredictProbability adapts the raw class vote to the probability-score
// contract: the forest contributes 0 or 1, not a calibrated probability.
func (m *RandomForest) PredictProbability(x []float64) (float64, error) {
	return m.Predict(x)
}

func classify(n *TreeNode, x []float64) float64 {
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Prediction
}

func (m *RandomForest) buildTree(X [][]float64, y []float64, idx []int, depth, featuresPerSplit int, rng *rand.Rand) *TreeNode {
	positives := 0
	for _, i := range idx {
		if y[i] == 1 {
			positives++
		}
	}

	majority := 0.0
	if positives*2 >= len(idx) {
		majority = 1
	}

	pure := positives == 0 || positives == len(idx)
	if pure || depth >= m.MaxDepth || len(idx) <= m.MinLeafSize {
		return &TreeNode{Leaf: true, Prediction: majority}
	}

	feature, threshold, ok := m.bestSplit(X, y, idx, featuresPerSplit, rng)
	if !ok {
		return &TreeNode{Leaf: true, Prediction: majority}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &TreeNode{Leaf: true, Prediction: majority}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      m.buildTree(X, y, left, depth+1, featuresPerSplit, rng),
		Right:     m.buildTree(X, y, right, depth+1, featuresPerSplit, rng),
	}
}

// bestSplit searches a random feature subset for the split with the
// lowest weighted Gini impurity. Candidate thresholds are midpoints
// between consecutive distinct values.
func (m *RandomForest) bestSplit(X [][]float64, y []float64, idx []int, featuresPerSplit int, rng *rand.Rand) (int, float64, bool) {
	dim := len(X[idx[0]])
	features := rng.Perm(dim)
	if featuresPerSplit < dim {
		features = features[:featuresPerSplit]
	}

	bestGini := math.Inf(1)
	bestFeature := -1
	bestThreshold := 0.0

	sorted := make([]int, len(idx))
	for _, feature := range features {
		copy(sorted, idx)
		f := feature
		sort.Slice(sorted, func(a, b int) bool {
			return X[sorted[a]][f] < X[sorted[b]][f]
		})

		// Prefix counts of positive labels over the sorted order.
		leftTotal, leftPos := 0, 0
		totalPos := 0
		for _, i := range sorted {
			if y[i] == 1 {
				totalPos++
			}
		}

		for pos := 0; pos < len(sorted)-1; pos++ {
			i := sorted[pos]
			leftTotal++
			if y[i] == 1 {
				leftPos++
			}

			cur, next := X[i][f], X[sorted[pos+1]][f]
			if cur == next {
				continue
			}

			rightTotal := len(sorted) - leftTotal
			rightPos := totalPos - leftPos
			g := weightedGini(leftPos, leftTotal, rightPos, rightTotal)
			if g < bestGini {
				bestGini = g
				bestFeature = f
				bestThreshold = (cur + next) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func weightedGini(leftPos, leftTotal, rightPos, rightTotal int) float64 {
	total := float64(leftTotal + rightTotal)
	return float64(leftTotal)/total*gini(leftPos, leftTotal) +
		float64(rightTotal)/total*gini(rightPos, rightTotal)
}

func gini(pos, total int) float64 {
	if total == 0 {
		return 0
	}
	p := float64(pos) / float64(total)
	return 2 * p * (1 - p)
}
