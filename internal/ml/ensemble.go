package ml

import (
	"errors"
	"math"
	"sync"

	"github.com/edusignal/student-risk-hub/internal/domain/risk"
	"github.com/edusignal/student-risk-hub/internal/ml/models"
	"github.com/edusignal/student-risk-hub/pkg/logger"
)

// ModelConfidence is the fixed confidence a model contributes when its
// prediction succeeds. Failed models contribute 0.
const ModelConfidence = 0.8

// ErrNoModelsTrained is returned when every candidate model failed to
// fit during training.
var ErrNoModelsTrained = errors.New("ml: no models could be trained")

// Ensemble combines independently fitted classifiers into one dropout
// prediction. Models and scaler are loaded once and treated as
// read-only during prediction; Train swaps the whole set atomically
// under the write lock, so concurrent Predict calls are safe.
type Ensemble struct {
	mu     sync.RWMutex
	models map[string]Model
	scaler *StandardScaler

	store *ArtifactStore
	log   *logger.Logger
}

// NewEnsemble creates an ensemble backed by the given artifact store.
// Call LoadArtifacts to pick up persisted models; a fresh deployment
// with no artifacts serves the neutral prior until trained.
func NewEnsemble(store *ArtifactStore, log *logger.Logger) *Ensemble {
	return &Ensemble{
		models: make(map[string]Model),
		store:  store,
		log:    log,
	}
}

// LoadArtifacts loads whatever scaler and model artifacts are present.
// Absence of any subset is not an error; corrupt artifacts are logged
// and skipped.
func (e *Ensemble) LoadArtifacts() {
	scaler, err := e.store.LoadScaler()
	if err != nil {
		e.log.Warn("failed to load scaler artifact, predictions will use raw features",
			logger.Err(err))
	}

	loaded, failed := e.store.LoadModels()
	for name, loadErr := range failed {
		e.log.Warn("failed to load model artifact",
			logger.String("model", name), logger.Err(loadErr))
	}

	e.mu.Lock()
	e.scaler = scaler
	e.models = loaded
	e.mu.Unlock()

	e.log.Info("model artifacts loaded",
		logger.Int("models", len(loaded)),
		logger.Bool("scaler", scaler != nil),
		logger.String("dir", e.store.Dir()))
}

// ModelCount returns the number of loaded models.
func (e *Ensemble) ModelCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.models)
}

// Predict produces the ensemble dropout prediction for one feature
// vector. It never fails: per-model errors contribute a neutral
// 0.5-score / 0-confidence entry, and with no models loaded the
// neutral prior is returned.
func (e *Ensemble) Predict(f risk.FeatureVector) risk.MLPrediction {
	row := f.ModelRow()

	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.models) == 0 {
		return risk.NeutralPrior()
	}

	input := row
	if e.scaler != nil {
		scaled, err := e.scaler.Transform(row)
		if err == nil {
			input = scaled
		} else {
			e.log.Debug("feature scaling failed, using unscaled features", logger.Err(err))
		}
	}

	scores := make(map[string]float64, len(e.models))
	var scoreSum, confSum float64

	for name, m := range e.models {
		score, err := m.PredictProbability(input)
		if err != nil || math.IsNaN(score) {
			e.log.Warn("model prediction failed, substituting neutral score",
				logger.String("model", name), logger.Err(err))
			scores[name] = 0.5
			scoreSum += 0.5
			continue
		}

		score = clamp01(score)
		scores[name] = score
		scoreSum += score
		confSum += ModelConfidence
	}

	n := float64(len(e.models))
	return risk.MLPrediction{
		DropoutProbability: scoreSum / n,
		Confidence:         confSum / n,
		ModelScores:        scores,
	}
}

// Train fits the candidate models on the dataset, evaluates each on the
// held-out split, persists the fitted artifacts, and swaps them into
// the serving set. Returns held-out accuracy per model.
//
// An empty dataset is a no-op: nothing is trained and existing
// artifacts are left untouched. A model type that fails to fit is
// skipped without touching its previously persisted artifact.
func (e *Ensemble) Train(ds *Dataset) (map[string]float64, error) {
	accuracies := make(map[string]float64)

	if ds.Empty() {
		e.log.Warn("training dataset is empty, skipping training")
		return accuracies, nil
	}

	train, test := ds.Split(TestSetFraction, TrainTestSeed)

	scaler := NewStandardScaler()
	if err := scaler.Fit(train.X); err != nil {
		return nil, err
	}
	trainX, err := scaler.TransformAll(train.X)
	if err != nil {
		return nil, err
	}
	testX, err := scaler.TransformAll(test.X)
	if err != nil {
		return nil, err
	}

	candidates := []TrainableModel{
		models.NewLogisticRegression(),
		models.NewRandomForest(),
	}

	fitted := make(map[string]Model)
	for _, m := range candidates {
		if err := m.Fit(trainX, train.Y); err != nil {
			e.log.Error("model training failed, keeping previous artifact",
				logger.String("model", m.Name()), logger.Err(err))
			continue
		}

		acc := evaluateAccuracy(m, testX, test.Y, trainX, train.Y)
		accuracies[m.Name()] = acc
		fitted[m.Name()] = m

		e.log.Info("model trained",
			logger.String("model", m.Name()),
			logger.Float64("accuracy", acc),
			logger.Int("train_rows", train.Len()),
			logger.Int("test_rows", test.Len()))
	}

	if len(fitted) == 0 {
		return accuracies, ErrNoModelsTrained
	}

	// Persist only after successful fits so a failed run cannot corrupt
	// what is already on disk.
	if err := e.store.SaveScaler(scaler); err != nil {
		return accuracies, err
	}
	for _, m := range fitted {
		if err := e.store.SaveModel(m); err != nil {
			return accuracies, err
		}
	}

	e.mu.Lock()
	e.scaler = scaler
	e.models = fitted
	e.mu.Unlock()

	return accuracies, nil
}

// evaluateAccuracy computes classification accuracy on the held-out
// rows, falling back to the training rows when the dataset was too
// small to carve out a test split.
func evaluateAccuracy(m TrainableModel, testX [][]float64, testY []float64, trainX [][]float64, trainY []float64) float64 {
	X, y := testX, testY
	if len(X) == 0 {
		X, y = trainX, trainY
	}
	if len(X) == 0 {
		return 0
	}

	correct := 0
	for i, row := range X {
		pred, err := m.Predict(row)
		if err == nil && pred == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
