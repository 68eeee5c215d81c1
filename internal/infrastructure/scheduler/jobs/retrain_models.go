package jobs

import (
	"context"
	"fmt"

	"github.com/edusignal/student-risk-hub/internal/application/command"
	"github.com/edusignal/student-risk-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RETRAIN MODELS JOB
// ══════════════════════════════════════════════════════════════════════════════

// RetrainModelsJob periodically retrains the dropout ensemble on the
// accumulated graduation and dropout outcomes. When no labeled outcomes
// exist yet the run is a no-op, not a failure.
type RetrainModelsJob struct {
	handler  *command.TrainModelsHandler
	seedPath string
	log      *logger.Logger
}

// NewRetrainModelsJob creates a new retrain job. seedPath optionally
// points at a CSV of historical outcomes merged into every run.
func NewRetrainModelsJob(handler *command.TrainModelsHandler, seedPath string, log *logger.Logger) *RetrainModelsJob {
	if log == nil {
		log = logger.Discard()
	}
	return &RetrainModelsJob{handler: handler, seedPath: seedPath, log: log}
}

// Name returns the job name.
func (j *RetrainModelsJob) Name() string {
	return "retrain_models"
}

// Description returns a human-readable description.
func (j *RetrainModelsJob) Description() string {
	return "Retrains the dropout prediction ensemble on recorded outcomes"
}

// Run executes the training.
func (j *RetrainModelsJob) Run(ctx context.Context) error {
	result, err := j.handler.Handle(ctx, command.TrainModelsCommand{
		SeedDatasetPath: j.seedPath,
		RequestedBy:     "scheduler",
	})
	if err != nil {
		return fmt.Errorf("retrain models: %w", err)
	}

	if result.Skipped {
		j.log.Info("model retraining skipped, no labeled outcomes yet")
		return nil
	}

	fields := []logger.Field{
		logger.Int("samples", result.Samples),
		logger.Duration("duration", result.Duration),
	}
	for name, acc := range result.Accuracies {
		fields = append(fields, logger.Float64(name+"_accuracy", acc))
	}
	j.log.Info("model retraining finished", fields...)

	return nil
}
