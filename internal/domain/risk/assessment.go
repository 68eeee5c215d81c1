package risk

import (
	"errors"
	"time"
)

// Domain errors.
var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrInvalidAssessment  = errors.New("invalid assessment")
)

// Assessment is the immutable result of one risk assessment run for one
// student. The orchestrator creates a fresh one on every invocation and
// never mutates a prior result; re-assessing the same student on the same
// day replaces the stored record (the one-per-day policy enforced by the
// repository).
type Assessment struct {
	// ID - internal unique identifier (UUID in string form).
	ID string `json:"id"`

	// StudentID - the assessed student.
	StudentID string `json:"student_id"`

	// AssessmentDate - the calendar date the assessment was computed for.
	AssessmentDate time.Time `json:"assessment_date"`

	// Features - the extracted feature vector.
	Features FeatureVector `json:"features"`

	// RuleProfile - the rule-based classification.
	RuleProfile RuleRiskProfile `json:"rule_based_risk"`

	// Prediction - the ensemble prediction.
	Prediction MLPrediction `json:"ml_prediction"`

	// MLRiskLevel - risk level derived from the dropout probability.
	MLRiskLevel Level `json:"ml_risk_level"`

	// Recommendations - ordered action list.
	Recommendations []string `json:"recommendations"`

	// CreatedAt - record creation time.
	CreatedAt time.Time `json:"created_at"`
}

// NewAssessmentParams bundles the component outputs an assessment is
// assembled from.
type NewAssessmentParams struct {
	ID              string
	StudentID       string
	AssessmentDate  time.Time
	Features        FeatureVector
	RuleProfile     RuleRiskProfile
	Prediction      MLPrediction
	Recommendations []string
}

// NewAssessment assembles an assessment result.
func NewAssessment(params NewAssessmentParams) (*Assessment, error) {
	if params.ID == "" {
		return nil, errors.New("assessment id is required")
	}
	if params.StudentID == "" {
		return nil, errors.New("assessment student id is required")
	}
	if params.AssessmentDate.IsZero() {
		return nil, errors.New("assessment date is required")
	}

	recs := params.Recommendations
	if recs == nil {
		recs = []string{}
	}

	return &Assessment{
		ID:              params.ID,
		StudentID:       params.StudentID,
		AssessmentDate:  params.AssessmentDate,
		Features:        params.Features,
		RuleProfile:     params.RuleProfile,
		Prediction:      params.Prediction,
		MLRiskLevel:     params.Prediction.RiskLevel(),
		Recommendations: recs,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// OverallRisk returns the rule-based overall level.
func (a *Assessment) OverallRisk() Level {
	return a.RuleProfile.Overall
}
