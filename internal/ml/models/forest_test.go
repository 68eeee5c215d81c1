package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomForestLearnsSeparableData(t *testing.T) {
	X, y := separableData()

	m := NewRandomForest()
	require.NoError(t, m.Fit(X, y))
	assert.True(t, m.Fitted)
	assert.Len(t, m.Trees, m.NumTrees)

	for i, row := range X {
		pred, err := m.Predict(row)
		require.NoError(t, err)
		assert.Equal(t, y[i], pred, "row %d", i)
	}
}

func TestRandomForestProbabilityIsHardVote(t *testing.T) {
	X, y := separableData()

	m := NewRandomForest()
	require.NoError(t, m.Fit(X, y))

	p, err := m.PredictProbability([]float64{2, 0})
	require.NoError(t, err)
	assert.Contains(t, []float64{0, 1}, p)
}

func TestRandomForestIsDeterministic(t *testing.T) {
	X, y := separableData()

	m1 := NewRandomForest()
	m2 := NewRandomForest()
	require.NoError(t, m1.Fit(X, y))
	require.NoError(t, m2.Fit(X, y))

	for i, row := range X {
		p1, err := m1.Predict(row)
		require.NoError(t, err)
		p2, err := m2.Predict(row)
		require.NoError(t, err)
		assert.Equal(t, p1, p2, "row %d", i)
	}
}

func TestRandomForestRejectsBadInput(t *testing.T) {
	m := NewRandomForest()

	assert.ErrorIs(t, m.Fit(nil, nil), ErrEmptyTrainingSet)
	assert.ErrorIs(t, m.Fit([][]float64{{1}}, []float64{1, 0}), ErrLabelMismatch)

	_, err := m.Predict([]float64{1})
	assert.ErrorIs(t, err, ErrNotFitted)

	require.NoError(t, m.Fit([][]float64{{1, 2}, {-1, -2}, {1, 1}, {-2, -1}}, []float64{1, 0, 1, 0}))
	_, err = m.Predict([]float64{1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
