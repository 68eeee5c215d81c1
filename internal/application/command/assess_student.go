// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/edusignal/student-risk-hub/internal/domain/academic"
	"github.com/edusignal/student-risk-hub/internal/domain/risk"
	"github.com/edusignal/student-risk-hub/internal/domain/shared"
	"github.com/edusignal/student-risk-hub/internal/domain/student"
	"github.com/edusignal/student-risk-hub/pkg/logger"
	"github.com/edusignal/student-risk-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSESS STUDENT COMMAND
// Runs the full risk pipeline for one student: extract features, classify
// against rule thresholds, ask the ML ensemble for a dropout probability,
// generate recommendations, and persist the assessment for today.
// ══════════════════════════════════════════════════════════════════════════════

// DropoutPredictor produces an ML dropout prediction for a feature
// vector. It must never fail; degraded model states are reflected in
// the prediction's confidence instead.
type DropoutPredictor interface {
	Predict(f risk.FeatureVector) risk.MLPrediction
}

// AssessmentCache keeps the latest assessment per student hot for the
// read side. All methods are best-effort from the command's point of
/// view: cache failures are logged, never propagated.
type AssessmentCache interface {
	SetLatest(ctx context.Context, a *risk.Assessment) error
	InvalidateSummary(ctx context.Context) error
}

// AssessStudentCommand contains the data to assess one student.
type AssessStudentCommand struct {
	// StudentID is the internal ID of the student.
	StudentID string

	// AssessedBy identifies who triggered the assessment (user ID or
	// "scheduler"). Stored for audit.
	AssessedBy string
}

// Validate validates the command.
func (c AssessStudentCommand) Validate() error {
	if c.StudentID == "" {
		return errors.New("assess_student: student_id is required")
	}
	return nil
}

// AssessStudentResult contains the result of an assessment run.
type AssessStudentResult struct {
	// Assessment is the persisted assessment. Re-running on the same
	// day replaces the stored record for that date.
	Assessment *risk.Assessment
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// AssessStudentHandler handles the AssessStudentCommand.
type AssessStudentHandler struct {
	studentRepo    student.Repository
	historyRepo    academic.HistoryRepository
	assessmentRepo risk.Repository
	predictor      DropoutPredictor
	cache          AssessmentCache

	thresholds risk.Thresholds
	now        func() time.Time
	log        *logger.Logger
}

// NewAssessStudentHandler creates the handler. cache may be nil when
// Redis is disabled.
func NewAssessStudentHandler(
	studentRepo student.Repository,
	historyRepo academic.HistoryRepository,
	assessmentRepo risk.Repository,
	predictor DropoutPredictor,
	cache AssessmentCache,
	thresholds risk.Thresholds,
	log *logger.Logger,
) *AssessStudentHandler {
	return &AssessStudentHandler{
		studentRepo:    studentRepo,
		historyRepo:    historyRepo,
		assessmentRepo: assessmentRepo,
		predictor:      predictor,
		cache:          cache,
		thresholds:     thresholds,
		now:            time.Now,
		log:            log,
	}
}

// WithClock overrides the time source. Used in tests.
func (h *AssessStudentHandler) WithClock(now func() time.Time) *AssessStudentHandler {
	h.now = now
	return h
}

// Handle runs the assessment pipeline and persists the result.
func (h *AssessStudentHandler) Handle(ctx context.Context, cmd AssessStudentCommand) (*AssessStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.NewDomainError("risk", "assess_student", shared.ErrInvalidInput, err.Error())
	}

	s, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, err
	}

	assessment, err := h.evaluate(ctx, s)
	if err != nil {
		return nil, err
	}

	if err := h.assessmentRepo.Save(ctx, assessment); err != nil {
		return nil, err
	}

	h.refreshCache(ctx, assessment)

	h.log.Info("student assessed",
		logger.StudentID(s.ID),
		logger.AssessmentID(assessment.ID),
		logger.RiskLevel(assessment.OverallRisk().String()),
		logger.Float64("dropout_probability", assessment.Prediction.DropoutProbability))

	return &AssessStudentResult{Assessment: assessment}, nil
}

// evaluate computes an assessment without persisting it. Shared with
// the batch handler so both paths classify identically.
func (h *AssessStudentHandler) evaluate(ctx context.Context, s *student.Student) (*risk.Assessment, error) {
	attendance, err := h.historyRepo.AttendanceByStudent(ctx, s.ID)
	if err != nil {
		return nil, shared.WrapError("academic", "AttendanceByStudent", shared.ErrMissingData, "failed to load attendance history", err)
	}
	scores, err := h.historyRepo.ExamScoresByStudent(ctx, s.ID)
	if err != nil {
		return nil, shared.WrapError("academic", "ExamScoresByStudent", shared.ErrMissingData, "failed to load exam history", err)
	}
	fees, err := h.historyRepo.FeesByStudent(ctx, s.ID)
	if err != nil {
		return nil, shared.WrapError("academic", "FeesByStudent", shared.ErrMissingData, "failed to load fee history", err)
	}

	now := h.now()
	features := risk.ExtractFeatures(s, attendance, scores, fees, now)
	profile := risk.Classify(features, h.thresholds)
	prediction := h.predictor.Predict(features)
	recommendations := risk.Recommend(features, profile, prediction)

	return risk.NewAssessment(risk.NewAssessmentParams{
		ID:              uuid.NewString(),
		StudentID:       s.ID,
		AssessmentDate:  timeutil.StartOfDay(now),
		Features:        features,
		RuleProfile:     profile,
		Prediction:      prediction,
		Recommendations: recommendations,
	})
}

// refreshCache is best-effort; a cold or broken cache only costs reads.
func (h *AssessStudentHandler) refreshCache(ctx context.Context, a *risk.Assessment) {
	if h.cache == nil {
		return
	}
	if err := h.cache.SetLatest(ctx, a); err != nil {
		h.log.Warn("failed to cache latest assessment",
			logger.StudentID(a.StudentID), logger.Err(err))
	}
	if err := h.cache.InvalidateSummary(ctx); err != nil {
		h.log.Warn("failed to invalidate summary cache", logger.Err(err))
	}
}
