// Package models contains the classifiers the ensemble predictor is built
// from. Each model fits on plain float64 matrices and serializes to JSON,
// so artifacts survive restarts without any native dependencies.
package models

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// LogisticName is the artifact name of the logistic regression model.
const LogisticName = "logistic_regression"

// Fitting errors shared by the model implementations.
var (
	ErrNotFitted         = errors.New("model is not fitted")
	ErrEmptyTrainingSet  = errors.New("training set is empty")
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
	ErrLabelMismatch     = errors.New("labels do not match training rows")
)

// LogisticRegression is a binary classifier fitted with stochastic
// gradient descent on the log loss. Deterministic: weights start at zero
// and rows are visited in order, so the same data yields the same model.
type LogisticRegression struct {
	// Fitted reports whether the model has been trained.
	Fitted bool `json:"fitted" mapstructure:"fitted"`

	// Bias is the intercept term.
	Bias float64 `json:"bias" mapstructure:"bias"`

	// Weights are the per-feature coefficients.
	Weights []float64 `json:"weights" mapstructure:"weights"`

	// Epochs is the number of passes over the training set.
	Epochs int `json:"epochs" mapstructure:"epochs"`

	// LearningRate is the SGD step size.
	LearningRate float64 `json:"learning_rate" mapstructure:"learning_rate"`
}

// NewLogisticRegression returns an untrained model with default
// hyperparameters suitable for standardized inputs.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		Epochs:       200,
		LearningRate: 0.1,
	}
}

// Name returns the artifact name.
func (m *LogisticRegression) Name() string {
	return LogisticName
}

// Fit trains the model on rows X with binary labels y (0 or 1).
func (m *LogisticRegression) Fit(X [][]float64, y []float64) error {
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

	weights := make([]float64, dim)
	bias := 0.0

	for epoch := 0; epoch < m.Epochs; epoch++ {
		for i, row := range X {
			p := sigmoid(bias + floats.Dot(weights, row))
			grad := p - y[i]
			bias -= m.LearningRate * grad
			floats.AddScaled(weights, -m.LearningRate*grad, row)
		}
	}

	m.Bias = bias
	m.Weights = weights
	m.Fitted = true
	return nil
}

// PredictProbability returns the probability of the positive
// (dropout) class.
func (m *LogisticRegression) PredictProbability(x []float64) (float64, error) {
	if !m.Fitted {
		return 0, ErrNotFitted
	}
	if len(x) != len(m.Weights) {
		return 0, ErrDimensionMismatch
	}
	return sigmoid(m.Bias + floats.Dot(m.Weights, x)), nil
}

// Predict returns the hard class label (0 or 1).
func (m *LogisticRegression) Predict(x []float64) (float64, error) {
	p, err := m.PredictProbability(x)
	if err != nil {
		return 0, err
	}
	if p >= 0.5 {
		return 1, nil
	}
	return 0, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
