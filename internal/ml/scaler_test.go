package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalerFitAndTransform(t *testing.T) {
	X := [][]float64{
		{10, 100},
		{20, 100},
		{30, 100},
	}

	sc := NewStandardScaler()
	require.NoError(t, sc.Fit(X))

	assert.True(t, sc.Fitted)
	assert.InDelta(t, 20.0, sc.Mean[0], 1e-9)

	out, err := sc.Transform([]float64{20, 100})
	require.NoError(t, err)

	// Mean row maps to the origin.
	assert.InDelta(t, 0.0, out[0], 1e-9)
	assert.InDelta(t, 0.0, out[1], 1e-9)
}

func TestScalerZeroVarianceColumnPassesThrough(t *testing.T) {
	X := [][]float64{
		{1, 5},
		{2, 5},
		{3, 5},
	}

	sc := NewStandardScaler()
	require.NoError(t, sc.Fit(X))

	// Constant column keeps std 1 so values shift but never divide by zero.
	assert.Equal(t, 1.0, sc.Std[1])

	out, err := sc.Transform([]float64{2, 7})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, out[1], 1e-9)
}

func TestScalerRejectsBadInput(t *testing.T) {
	sc := NewStandardScaler()

	assert.ErrorIs(t, sc.Fit(nil), ErrEmptyMatrix)
	assert.ErrorIs(t, sc.Fit([][]float64{{1, 2}, {3}}), ErrRaggedMatrix)

	_, err := sc.Transform([]float64{1})
	assert.ErrorIs(t, err, ErrScalerNotFitted)

	require.NoError(t, sc.Fit([][]float64{{1, 2}, {3, 4}}))
	_, err = sc.Transform([]float64{1})
	assert.ErrorIs(t, err, ErrScalerDimension)
}
