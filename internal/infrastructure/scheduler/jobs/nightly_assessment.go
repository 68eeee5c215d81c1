// Package jobs contains implementations of scheduled jobs for the
// Student Risk Hub.
package jobs

import (
	"context"
	"fmt"

	"github.com/edusignal/student-risk-hub/internal/application/command"
	"github.com/edusignal/student-risk-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// NIGHTLY ASSESSMENT JOB
// ══════════════════════════════════════════════════════════════════════════════

// NightlyAssessmentJob re-assesses every active student once per day so
// dashboards open each morning with fresh risk levels. Per-student
// failures are tolerated; the job only fails when the whole batch does.
type NightlyAssessmentJob struct {
	handler *command.AssessBatchHandler
	log     *logger.Logger
}

// NewNightlyAssessmentJob creates a new nightly assessment job.
func NewNightlyAssessmentJob(handler *command.AssessBatchHandler, log *logger.Logger) *NightlyAssessmentJob {
	if log == nil {
		log = logger.Discard()
	}
	return &NightlyAssessmentJob{handler: handler, log: log}
}

// Name returns the job name.
func (j *NightlyAssessmentJob) Name() string {
	return "nightly_assessment"
}

// Description returns a human-readable description.
func (j *NightlyAssessmentJob) Description() string {
	return "Re-assesses dropout risk for all active students"
}

// Run executes the batch assessment.
func (j *NightlyAssessmentJob) Run(ctx context.Context) error {
	result, err := j.handler.Handle(ctx, command.AssessBatchCommand{
		All:        true,
		AssessedBy: "scheduler",
	})
	if err != nil {
		return fmt.Errorf("nightly assessment: %w", err)
	}

	for _, f := range result.Failures {
		j.log.Warn("student skipped during nightly assessment",
			logger.StudentID(f.StudentID),
			logger.String("reason", f.Reason))
	}

	j.log.Info("nightly assessment finished",
		logger.Int("requested", result.Requested),
		logger.Int("assessed", result.Assessed),
		logger.Int("failed", len(result.Failures)),
		logger.Duration("duration", result.Duration))

	return nil
}
