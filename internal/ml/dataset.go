package ml

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/gocarina/gocsv"
)

const (
	// TestSetFraction is the held-out share of the dataset used for
	// evaluation.
	TestSetFraction = 0.2

	// TrainTestSeed fixes the split shuffle so training runs are
	// reproducible.
	TrainTestSeed = 42
)

// Sample is one labeled training example. The CSV column names match
// risk.ModelFeatureNames plus the dropped_out label, so exported
// institutional datasets load directly.
type Sample struct {
	AttendancePercentage float64 `csv:"attendance_percentage"`
	AverageScore         float64 `csv:"average_score"`
	ScoreStd             float64 `csv:"score_std"`
	FailedExams          float64 `csv:"failed_exams"`
	OverdueFeesRatio     float64 `csv:"overdue_fees_ratio"`
	DaysEnrolled         float64 `csv:"days_enrolled"`
	DroppedOut           int     `csv:"dropped_out"`
}

// Row returns the feature values in the fixed model input order.
func (s Sample) Row() []float64 {
	return []float64{
		s.AttendancePercentage,
		s.AverageScore,
		s.ScoreStd,
		s.FailedExams,
		s.OverdueFeesRatio,
		s.DaysEnrolled,
	}
}

// Dataset is a labeled feature matrix for training.
type Dataset struct {
	X [][]float64
	Y []float64
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{}
}

// Add appends one labeled row.
func (d *Dataset) Add(row []float64, label float64) {
	d.X = append(d.X, row)
	d.Y = append(d.Y, label)
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.X)
}

// Empty reports whether the dataset has no rows.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.X) == 0
}

// Split shuffles the rows with the given seed and carves off the test
// fraction. With very small datasets the test split may be empty; the
// trainer then evaluates on the training rows.
func (d *Dataset) Split(testFraction float64, seed int64) (train, test *Dataset) {
	rng := rand.New(rand.NewSource(seed))
	order := rng.Perm(d.Len())

	testN := int(float64(d.Len()) * testFraction)
	train = NewDataset()
	test = NewDataset()

	for pos, i := range order {
		if pos < testN {
			test.Add(d.X[i], d.Y[i])
		} else {
			train.Add(d.X[i], d.Y[i])
		}
	}
	return train, test
}

// FromSamples builds a dataset from labeled samples.
func FromSamples(samples []*Sample) *Dataset {
	d := NewDataset()
	for _, s := range samples {
		label := 0.0
		if s.DroppedOut != 0 {
			label = 1
		}
		d.Add(s.Row(), label)
	}
	return d
}

// LoadCSVDataset reads a labeled dataset from a CSV file with a header
// row matching the Sample column names.
func LoadCSVDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var samples []*Sample
	if err := gocsv.UnmarshalFile(f, &samples); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return FromSamples(samples), nil
}
