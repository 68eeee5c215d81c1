package ml

import (
	"errors"

	"github.com/montanaflynn/stats"
)

// Scaler errors.
var (
	ErrScalerNotFitted   = errors.New("scaler is not fitted")
	ErrScalerDimension   = errors.New("scaler dimension mismatch")
	ErrEmptyMatrix       = errors.New("empty feature matrix")
	ErrRaggedMatrix      = errors.New("rows have inconsistent dimensions")
)

// StandardScaler standardizes features to zero mean and unit variance,
// column by column. Columns with zero variance pass through unscaled.
// Fit on the training split only; Transform is read-only and safe for
// concurrent use once fitted.
type StandardScaler struct {
	Fitted bool      `json:"fitted" mapstructure:"fitted"`
	Mean   []float64 `json:"mean" mapstructure:"mean"`
	Std    []float64 `json:"std" mapstructure:"std"`
}

// NewStandardScaler returns an unfitted scaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit computes per-column mean and population standard deviation.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return ErrEmptyMatrix
	}

	dim := len(X[0])
	column := make([]float64, len(X))
	mean := make([]float64, dim)
	std := make([]float64, dim)

	for j := 0; j < dim; j++ {
		for i, row := range X {
			if len(row) != dim {
				return ErrRaggedMatrix
			}
			column[i] = row[j]
		}

		m, err := stats.Mean(column)
		if err != nil {
			return err
		}
		sd, err := stats.StandardDeviationPopulation(column)
		if err != nil {
			return err
		}
		if sd == 0 {
			sd = 1
		}
		mean[j] = m
		std[j] = sd
	}

	s.Mean = mean
	s.Std = std
	s.Fitted = true
	return nil
}

// Transform standardizes one row. Returns an error when the scaler is
// unfitted or the dimension does not match; callers fall back to the
// unscaled row in that case.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if !s.Fitted {
		return nil, ErrScalerNotFitted
	}
	if len(x) != len(s.Mean) {
		return nil, ErrScalerDimension
	}

	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}

// TransformAll standardizes a whole matrix.
func (s *StandardScaler) TransformAll(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, row := range X {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}
