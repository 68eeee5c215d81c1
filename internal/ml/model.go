// Package ml implements the ensemble dropout predictor: the model
// contract, the feature scaler, the training pipeline, and JSON artifact
// persistence. Prediction degrades gracefully - per-model failures are
// isolated and a missing model set falls back to the neutral prior.
package ml

// Model is the single capability the ensemble requires of a classifier.
// Each concrete model adapts its native output to this contract at the
// boundary (a logistic regression returns a real probability, a voting
// forest returns its raw class as a float), so the ensemble loop never
// branches on model type.
type Model interface {
	// Name returns the stable artifact name of the model.
	Name() string

	// PredictProbability returns a dropout score in [0,1] for one
	// feature row.
	PredictProbability(x []float64) (float64, error)
}

// TrainableModel is a Model that can be fitted and evaluated. The
// training pipeline works against this; the serving path only needs
// Model.
type TrainableModel interface {
	Model

	// Fit trains the model on rows X with binary labels y.
	Fit(X [][]float64, y []float64) error

	// Predict returns the hard class label (0 or 1) for one row.
	Predict(x []float64) (float64, error)
}
