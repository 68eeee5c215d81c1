package command

import (
	"context"
	"fmt"
	"time"

	"github.com/edusignal/student-risk-hub/internal/domain/academic"
	"github.com/edusignal/student-risk-hub/internal/domain/risk"
	"github.com/edusignal/student-risk-hub/internal/domain/shared"
	"github.com/edusignal/student-risk-hub/internal/domain/student"
	"github.com/edusignal/student-risk-hub/internal/ml"
	"github.com/edusignal/student-risk-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRAIN MODELS COMMAND
// Builds a labeled dataset from students with known outcomes (graduated
// or dropped out), optionally merges a CSV seed dataset, and retrains
// the ensemble. Fitted artifacts replace the previous ones atomically;
// a failed run leaves the serving models untouched.
// ══════════════════════════════════════════════════════════════════════════════

// ModelTrainer retrains the ensemble on a labeled dataset and returns
// held-out accuracy per model.
type ModelTrainer interface {
	Train(ds *ml.Dataset) (map[string]float64, error)
}

// TrainModelsCommand contains the data for a training run.
type TrainModelsCommand struct {
	// SeedDatasetPath optionally points at a CSV of labeled examples
	// merged with the database-derived rows.
	SeedDatasetPath string

	// RequestedBy identifies who triggered the run.
	RequestedBy string
}

// Validate validates the command.
func (c TrainModelsCommand) Validate() error {
	return nil
}

// TrainModelsResult contains the outcome of a training run.
type TrainModelsResult struct {
	// Samples is the number of labeled rows used.
	Samples int `json:"samples"`

	// Accuracies maps model name to held-out accuracy.
	Accuracies map[string]float64 `json:"accuracies"`

	// Skipped reports that no labeled data was available and the run
	// was a no-op.
	Skipped bool `json:"skipped"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"-"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// TrainModelsHandler handles the TrainModelsCommand.
type TrainModelsHandler struct {
	studentRepo student.Repository
	historyRepo academic.HistoryRepository
	trainer     ModelTrainer

	minRows int
	now     func() time.Time
	log     *logger.Logger
}

// NewTrainModelsHandler creates the handler. minRows guards against
// fitting on a handful of outcomes; runs below it fail loudly instead
// of producing a useless model.
func NewTrainModelsHandler(
	studentRepo student.Repository,
	historyRepo academic.HistoryRepository,
	trainer ModelTrainer,
	minRows int,
	log *logger.Logger,
) *TrainModelsHandler {
	return &TrainModelsHandler{
		studentRepo: studentRepo,
		historyRepo: historyRepo,
		trainer:     trainer,
		minRows:     minRows,
		now:         time.Now,
		log:         log,
	}
}

// WithClock overrides the time source. Used in tests.
func (h *TrainModelsHandler) WithClock(now func() time.Time) *TrainModelsHandler {
	h.now = now
	return h
}

// Handle builds the dataset and retrains the ensemble.
func (h *TrainModelsHandler) Handle(ctx context.Context, cmd TrainModelsCommand) (*TrainModelsResult, error) {
	start := time.Now()

	ds, err := h.buildDataset(ctx, cmd.SeedDatasetPath)
	if err != nil {
		return nil, err
	}

	if ds.Empty() {
		h.log.Warn("no labeled outcomes available, skipping training")
		return &TrainModelsResult{Skipped: true, Accuracies: map[string]float64{}}, nil
	}

	if ds.Len() < h.minRows {
		return nil, shared.NewDomainError("ml", "train_models", shared.ErrTrainingDataEmpty,
			fmt.Sprintf("need at least %d labeled outcomes, have %d", h.minRows, ds.Len()))
	}

	accuracies, err := h.trainer.Train(ds)
	if err != nil {
		return nil, shared.WrapError("ml", "train_models", shared.ErrModelUnavailable, "training run failed", err)
	}

	result := &TrainModelsResult{
		Samples:    ds.Len(),
		Accuracies: accuracies,
		Duration:   time.Since(start),
	}

	h.log.Info("models retrained",
		logger.Int("samples", result.Samples),
		logger.Int("models", len(accuracies)),
		logger.Latency(result.Duration))

	return result, nil
}

// buildDataset collects one labeled row per student with a terminal
// status. Students whose history cannot be loaded are skipped; a
// training run should survive individual bad records.
func (h *TrainModelsHandler) buildDataset(ctx context.Context, seedPath string) (*ml.Dataset, error) {
	ds := ml.NewDataset()

	if seedPath != "" {
		seeded, err := ml.LoadCSVDataset(seedPath)
		if err != nil {
			return nil, shared.WrapError("ml", "load_seed_dataset", shared.ErrInvalidInput, "failed to load seed dataset", err)
		}
		for i, row := range seeded.X {
			ds.Add(row, seeded.Y[i])
		}
	}

	students, err := h.studentRepo.ListTerminal(ctx)
	if err != nil {
		return nil, err
	}

	now := h.now()
	for _, s := range students {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attendance, err := h.historyRepo.AttendanceByStudent(ctx, s.ID)
		if err != nil {
			h.log.Warn("skipping student in training set", logger.StudentID(s.ID), logger.Err(err))
			continue
		}
		scores, err := h.historyRepo.ExamScoresByStudent(ctx, s.ID)
		if err != nil {
			h.log.Warn("skipping student in training set", logger.StudentID(s.ID), logger.Err(err))
			continue
		}
		fees, err := h.historyRepo.FeesByStudent(ctx, s.ID)
		if err != nil {
			h.log.Warn("skipping student in training set", logger.StudentID(s.ID), logger.Err(err))
			continue
		}

		features := risk.ExtractFeatures(s, attendance, scores, fees, now)

		label := 0.0
		if s.Status == student.StatusDroppedOut {
			label = 1
		}
		ds.Add(features.ModelRow(), label)
	}

	return ds, nil
}
