package command

import (
	"context"
	"errors"
	"time"

	"github.com/edusignal/student-risk-hub/internal/domain/risk"
	"github.com/edusignal/student-risk-hub/internal/domain/shared"
	"github.com/edusignal/student-risk-hub/internal/domain/student"
	"github.com/edusignal/student-risk-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSESS BATCH COMMAND
// Assesses many students in one run. Evaluation is best-effort: one
// student's bad data never blocks the rest. All successfully computed
// assessments are persisted in a single transaction, so readers never
// observe a half-written batch.
// ══════════════════════════════════════════════════════════════════════════════

// AssessBatchCommand contains the data for a batch assessment run.
type AssessBatchCommand struct {
	// StudentIDs lists the students to assess. Ignored when All is set.
	StudentIDs []string

	// All assesses every active student.
	All bool

	// AssessedBy identifies who triggered the run.
	AssessedBy string
}

// Validate validates the command.
func (c AssessBatchCommand) Validate() error {
	if !c.All && len(c.StudentIDs) == 0 {
		return errors.New("assess_batch: student_ids or all is required")
	}
	return nil
}

// BatchFailure records why one student could not be assessed.
type BatchFailure struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

// AssessBatchResult contains the outcome of a batch run.
type AssessBatchResult struct {
	// Requested is the number of students in scope.
	Requested int `json:"requested"`

	// Assessed is the number of assessments persisted.
	Assessed int `json:"assessed"`

	// Failures lists students whose evaluation failed.
	Failures []BatchFailure `json:"failures,omitempty"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"-"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// AssessBatchHandler handles the AssessBatchCommand.
type AssessBatchHandler struct {
	studentRepo    student.Repository
	assessmentRepo risk.Repository
	assess         *AssessStudentHandler
	log            *logger.Logger
}

// NewAssessBatchHandler creates the handler. It reuses the single
// student handler's pipeline so both paths classify identically.
func NewAssessBatchHandler(
	studentRepo student.Repository,
	assessmentRepo risk.Repository,
	assess *AssessStudentHandler,
	log *logger.Logger,
) *AssessBatchHandler {
	return &AssessBatchHandler{
		studentRepo:    studentRepo,
		assessmentRepo: assessmentRepo,
		assess:         assess,
		log:            log,
	}
}

// Handle evaluates every student in scope, then persists the computed
// assessments in one transaction.
func (h *AssessBatchHandler) Handle(ctx context.Context, cmd AssessBatchCommand) (*AssessBatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.NewDomainError("risk", "assess_batch", shared.ErrInvalidInput, err.Error())
	}

	start := time.Now()

	students, missing, err := h.resolveStudents(ctx, cmd)
	if err != nil {
		return nil, err
	}

	result := &AssessBatchResult{
		Requested: len(students) + len(missing),
		Failures:  missing,
	}
	assessments := make([]*risk.Assessment, 0, len(students))

	for _, s := range students {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		a, err := h.assess.evaluate(ctx, s)
		if err != nil {
			result.Failures = append(result.Failures, BatchFailure{
				StudentID: s.ID,
				Reason:    err.Error(),
			})
			h.log.Warn("batch assessment skipped student",
				logger.StudentID(s.ID), logger.Err(err))
			continue
		}
		assessments = append(assessments, a)
	}

	if len(assessments) > 0 {
		if err := h.assessmentRepo.SaveBatch(ctx, assessments); err != nil {
			return nil, err
		}
		for _, a := range assessments {
			h.assess.refreshCache(ctx, a)
		}
	}

	result.Assessed = len(assessments)
	result.Duration = time.Since(start)

	h.log.Info("batch assessment finished",
		logger.Int("requested", result.Requested),
		logger.Int("assessed", result.Assessed),
		logger.Int("failed", len(result.Failures)),
		logger.Latency(result.Duration))

	return result, nil
}

func (h *AssessBatchHandler) resolveStudents(ctx context.Context, cmd AssessBatchCommand) ([]*student.Student, []BatchFailure, error) {
	if cmd.All {
		students, err := h.studentRepo.ListActive(ctx, student.ListOptions{})
		return students, nil, err
	}

	students := make([]*student.Student, 0, len(cmd.StudentIDs))
	var missing []BatchFailure

	for _, id := range cmd.StudentIDs {
		s, err := h.studentRepo.GetByID(ctx, id)
		if err != nil {
			if shared.IsNotFound(err) {
				// Unknown IDs surface as failures, not a run abort.
				missing = append(missing, BatchFailure{StudentID: id, Reason: err.Error()})
				continue
			}
			return nil, nil, err
		}
		students = append(students, s)
	}
	return students, missing, nil
}
