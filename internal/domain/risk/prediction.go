package risk

// Probability boundaries for deriving a risk level from the ensemble
// output. The lower boundary is exclusive, the upper inclusive:
// p < 0.3 green, 0.3 <= p < 0.6 yellow, p >= 0.6 red.
const (
	probabilityYellowMin = 0.3
	probabilityRedMin    = 0.6
)

// NeutralPrior is the prediction used when no model is available:
// an even-odds probability with zero confidence. It is a defined
// degraded state, not an error.
func NeutralPrior() MLPrediction {
	return MLPrediction{
		DropoutProbability: 0.5,
		Confidence:         0.0,
	}
}

// MLPrediction is the ensemble output for one student.
type MLPrediction struct {
	// DropoutProbability - averaged dropout probability, in [0,1].
	DropoutProbability float64 `json:"dropout_probability"`

	// Confidence - averaged per-model confidence, in [0,1].
	// Each successful model contributes 0.8, each failed one 0.0.
	Confidence float64 `json:"confidence"`

	// ModelScores - raw per-model scores, keyed by model name.
	// Empty when no models are loaded.
	ModelScores map[string]float64 `json:"model_predictions,omitempty"`
}

// RiskLevel derives the ordinal risk level from the dropout probability.
func (p MLPrediction) RiskLevel() Level {
	switch {
	case p.DropoutProbability < probabilityYellowMin:
		return LevelGreen
	case p.DropoutProbability < probabilityRedMin:
		return LevelYellow
	default:
		return LevelRed
	}
}
