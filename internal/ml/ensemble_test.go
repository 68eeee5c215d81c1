package ml

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusignal/student-risk-hub/internal/domain/risk"
	"github.com/edusignal/student-risk-hub/internal/ml/models"
	"github.com/edusignal/student-risk-hub/pkg/logger"
)

type stubModel struct {
	name  string
	score float64
	err   error
}

func (s stubModel) Name() string { return s.name }

func (s stubModel) PredictProbability([]float64) (float64, error) {
	return s.score, s.err
}

func testFeatures() risk.FeatureVector {
	return risk.FeatureVector{
		AttendancePercentage: 55,
		AverageScore:         48,
		ScoreStd:             10,
		FailedExams:          2,
		OverdueFeesRatio:     0.5,
		DaysEnrolled:         300,
	}
}

func newTestEnsemble(t *testing.T) *Ensemble {
	t.Helper()
	return NewEnsemble(NewArtifactStore(t.TempDir()), logger.Discard())
}

func TestEnsemblePredictWithoutModelsReturnsNeutralPrior(t *testing.T) {
	e := newTestEnsemble(t)

	pred := e.Predict(testFeatures())

	assert.Equal(t, risk.NeutralPrior(), pred)
}

func TestEnsemblePredictIsolatesFailingModel(t *testing.T) {
	e := newTestEnsemble(t)
	e.models = map[string]Model{
		"good":   stubModel{name: "good", score: 0.9},
		"broken": stubModel{name: "broken", err: errors.New("boom")},
	}

	pred := e.Predict(testFeatures())

	// Broken model contributes a neutral 0.5 score and no confidence.
	assert.InDelta(t, 0.7, pred.DropoutProbability, 1e-9)
	assert.InDelta(t, ModelConfidence/2, pred.Confidence, 1e-9)
	assert.Equal(t, 0.9, pred.ModelScores["good"])
	assert.Equal(t, 0.5, pred.ModelScores["broken"])
}

func TestEnsemblePredictClampsOutOfRangeScores(t *testing.T) {
	e := newTestEnsemble(t)
	e.models = map[string]Model{
		"hot":  stubModel{name: "hot", score: 1.7},
		"cold": stubModel{name: "cold", score: -0.4},
	}

	pred := e.Predict(testFeatures())

	assert.Equal(t, 1.0, pred.ModelScores["hot"])
	assert.Equal(t, 0.0, pred.ModelScores["cold"])
	assert.InDelta(t, 0.5, pred.DropoutProbability, 1e-9)
}

func TestEnsembleTrainEmptyDatasetIsNoOp(t *testing.T) {
	dir := t.TempDir()
	e := NewEnsemble(NewArtifactStore(dir), logger.Discard())

	accuracies, err := e.Train(NewDataset())

	require.NoError(t, err)
	assert.Empty(t, accuracies)
	assert.Zero(t, e.ModelCount())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no artifacts should be written")
}

// trainingDataset builds a clearly separable cohort: low attendance and
// low scores dropped out, the rest graduated.
func trainingDataset() *Dataset {
	ds := NewDataset()
	for i := 0; i < 10; i++ {
		jitter := float64(i)
		ds.Add([]float64{40 + jitter, 35 + jitter, 12, 3, 0.8, 200 + jitter}, 1)
		ds.Add([]float64{90 - jitter, 82 - jitter, 4, 0, 0.0, 400 - jitter}, 0)
	}
	return ds
}

func TestEnsembleTrainPersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	e := NewEnsemble(NewArtifactStore(dir), logger.Discard())

	accuracies, err := e.Train(trainingDataset())
	require.NoError(t, err)

	require.Contains(t, accuracies, models.LogisticName)
	require.Contains(t, accuracies, models.ForestName)
	for name, acc := range accuracies {
		assert.GreaterOrEqual(t, acc, 0.0, name)
		assert.LessOrEqual(t, acc, 1.0, name)
	}
	assert.Equal(t, 2, e.ModelCount())

	pred := e.Predict(testFeatures())

	// A fresh ensemble over the same artifact dir serves identical
	// predictions after a restart.
	reloaded := NewEnsemble(NewArtifactStore(dir), logger.Discard())
	reloaded.LoadArtifacts()
	require.Equal(t, 2, reloaded.ModelCount())

	pred2 := reloaded.Predict(testFeatures())
	assert.InDelta(t, pred.DropoutProbability, pred2.DropoutProbability, 1e-9)
	assert.Equal(t, pred.ModelScores, pred2.ModelScores)
}

func TestEnsembleTrainSeparatesRiskLevels(t *testing.T) {
	e := newTestEnsemble(t)
	_, err := e.Train(trainingDataset())
	require.NoError(t, err)

	atRisk := e.Predict(risk.FeatureVector{
		AttendancePercentage: 42, AverageScore: 36, ScoreStd: 12,
		FailedExams: 3, OverdueFeesRatio: 0.8, DaysEnrolled: 205,
	})
	healthy := e.Predict(risk.FeatureVector{
		AttendancePercentage: 88, AverageScore: 80, ScoreStd: 4,
		FailedExams: 0, OverdueFeesRatio: 0, DaysEnrolled: 395,
	})

	assert.Greater(t, atRisk.DropoutProbability, healthy.DropoutProbability)
}
