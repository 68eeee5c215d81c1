package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusignal/student-risk-hub/internal/domain/academic"
	"github.com/edusignal/student-risk-hub/internal/domain/shared"
	"github.com/edusignal/student-risk-hub/internal/domain/student"
	"github.com/edusignal/student-risk-hub/pkg/logger"
)

func terminalStudent(id string, status student.Status) *student.Student {
	s := activeStudent(id, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC))
	s.Status = status
	return s
}

func TestTrainModelsNoOutcomesIsNoOp(t *testing.T) {
	students := newFakeStudentRepo()
	trainer := &fakeTrainer{}
	h := NewTrainModelsHandler(students, newFakeHistoryRepo(), trainer, 10, logger.Discard())

	result, err := h.Handle(context.Background(), TrainModelsCommand{})
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Zero(t, trainer.calls)
}

func TestTrainModelsRejectsTinyDataset(t *testing.T) {
	students := newFakeStudentRepo()
	students.terminal = []*student.Student{
		terminalStudent("stu-1", student.StatusDroppedOut),
		terminalStudent("stu-2", student.StatusGraduated),
	}

	trainer := &fakeTrainer{}
	h := NewTrainModelsHandler(students, newFakeHistoryRepo(), trainer, 10, logger.Discard())

	_, err := h.Handle(context.Background(), TrainModelsCommand{})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrTrainingDataEmpty)
	assert.Zero(t, trainer.calls)
}

func TestTrainModelsLabelsOutcomes(t *testing.T) {
	students := newFakeStudentRepo()
	history := newFakeHistoryRepo()

	var dropped, graduated int
	for i := 0; i < 6; i++ {
		id := string(rune('a' + i))
		status := student.StatusGraduated
		if i%2 == 0 {
			status = student.StatusDroppedOut
			dropped++
		} else {
			graduated++
		}
		students.terminal = append(students.terminal, terminalStudent(id, status))
		history.attendance[id] = []academic.AttendanceRecord{{StudentID: id, Present: i%2 != 0}}
	}

	trainer := &fakeTrainer{accuracies: map[string]float64{"logistic_regression": 0.8}}
	h := NewTrainModelsHandler(students, history, trainer, 5, logger.Discard())

	result, err := h.Handle(context.Background(), TrainModelsCommand{})
	require.NoError(t, err)

	assert.Equal(t, 6, result.Samples)
	assert.Equal(t, map[string]float64{"logistic_regression": 0.8}, result.Accuracies)

	require.NotNil(t, trainer.dataset)
	require.Equal(t, 6, trainer.dataset.Len())

	var ones, zeros int
	for _, y := range trainer.dataset.Y {
		if y == 1 {
			ones++
		} else {
			zeros++
		}
	}
	assert.Equal(t, dropped, ones)
	assert.Equal(t, graduated, zeros)
}

func TestTrainModelsSkipsBrokenHistories(t *testing.T) {
	students := newFakeStudentRepo()
	history := newFakeHistoryRepo()

	for i := 0; i < 6; i++ {
		id := string(rune('a' + i))
		students.terminal = append(students.terminal, terminalStudent(id, student.StatusDroppedOut))
	}
	history.failFor["a"] = assert.AnError

	trainer := &fakeTrainer{accuracies: map[string]float64{}}
	h := NewTrainModelsHandler(students, history, trainer, 5, logger.Discard())

	result, err := h.Handle(context.Background(), TrainModelsCommand{})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Samples)
}

func TestTrainModelsTrainerFailurePropagates(t *testing.T) {
	students := newFakeStudentRepo()
	for i := 0; i < 5; i++ {
		students.terminal = append(students.terminal, terminalStudent(string(rune('a'+i)), student.StatusDroppedOut))
	}

	trainer := &fakeTrainer{err: assert.AnError}
	h := NewTrainModelsHandler(students, newFakeHistoryRepo(), trainer, 5, logger.Discard())

	_, err := h.Handle(context.Background(), TrainModelsCommand{})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrModelUnavailable)
}
