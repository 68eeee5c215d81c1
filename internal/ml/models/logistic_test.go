package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separableData is a linearly separable toy set: the first feature alone
// decides the class.
func separableData() ([][]float64, []float64) {
	X := [][]float64{
		{-2, 0.1}, {-1.5, -0.3}, {-1, 0.2}, {-0.5, -0.1},
		{0.5, 0.3}, {1, -0.2}, {1.5, 0.1}, {2, -0.3},
	}
	y := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	return X, y
}

func TestLogisticRegressionLearnsSeparableData(t *testing.T) {
	X, y := separableData()

	m := NewLogisticRegression()
	require.NoError(t, m.Fit(X, y))
	assert.True(t, m.Fitted)

	for i, row := range X {
		pred, err := m.Predict(row)
		require.NoError(t, err)
		assert.Equal(t, y[i], pred, "row %d", i)
	}

	p, err := m.PredictProbability([]float64{3, 0})
	require.NoError(t, err)
	assert.Greater(t, p, 0.5)

	p, err = m.PredictProbability([]float64{-3, 0})
	require.NoError(t, err)
	assert.Less(t, p, 0.5)
}

func TestLogisticRegressionIsDeterministic(t *testing.T) {
	X, y := separableData()

	m1 := NewLogisticRegression()
	m2 := NewLogisticRegression()
	require.NoError(t, m1.Fit(X, y))
	require.NoError(t, m2.Fit(X, y))

	assert.Equal(t, m1.Bias, m2.Bias)
	assert.Equal(t, m1.Weights, m2.Weights)
}

func TestLogisticRegressionRejectsBadInput(t *testing.T) {
	m := NewLogisticRegression()

	assert.ErrorIs(t, m.Fit(nil, nil), ErrEmptyTrainingSet)
	assert.ErrorIs(t, m.Fit([][]float64{{1}}, []float64{1, 0}), ErrLabelMismatch)
	assert.ErrorIs(t, m.Fit([][]float64{{1, 2}, {3}}, []float64{1, 0}), ErrDimensionMismatch)

	_, err := m.PredictProbability([]float64{1})
	assert.ErrorIs(t, err, ErrNotFitted)

	require.NoError(t, m.Fit([][]float64{{1, 2}, {-1, -2}}, []float64{1, 0}))
	_, err = m.PredictProbability([]float64{1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
