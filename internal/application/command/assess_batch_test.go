package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusignal/student-risk-hub/internal/domain/shared"
	"github.com/edusignal/student-risk-hub/pkg/logger"
)

func TestAssessBatchIsolatesFailures(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s1 := activeStudent("stu-1", now.AddDate(0, -3, 0))
	s2 := activeStudent("stu-2", now.AddDate(0, -3, 0))
	s3 := activeStudent("stu-3", now.AddDate(0, -3, 0))

	students := newFakeStudentRepo(s1, s2, s3)
	history := newFakeHistoryRepo()
	history.failFor["stu-2"] = assert.AnError

	assessments := &fakeAssessmentRepo{}
	assess := newAssessHandler(students, history, assessments, neutralPredictor{}, nil)
	assess.WithClock(func() time.Time { return now })

	h := NewAssessBatchHandler(students, assessments, assess, logger.Discard())

	result, err := h.Handle(context.Background(), AssessBatchCommand{
		StudentIDs: []string{"stu-1", "stu-2", "stu-3"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 2, result.Assessed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "stu-2", result.Failures[0].StudentID)

	// The surviving assessments land in one transactional batch.
	require.Len(t, assessments.batches, 1)
	assert.Len(t, assessments.batches[0], 2)
}

func TestAssessBatchUnknownStudentBecomesFailure(t *testing.T) {
	s1 := activeStudent("stu-1", time.Time{})
	students := newFakeStudentRepo(s1)

	assessments := &fakeAssessmentRepo{}
	assess := newAssessHandler(students, newFakeHistoryRepo(), assessments, neutralPredictor{}, nil)
	h := NewAssessBatchHandler(students, assessments, assess, logger.Discard())

	result, err := h.Handle(context.Background(), AssessBatchCommand{
		StudentIDs: []string{"stu-1", "ghost"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Requested)
	assert.Equal(t, 1, result.Assessed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "ghost", result.Failures[0].StudentID)
}

func TestAssessBatchAllAssessesActiveStudents(t *testing.T) {
	s1 := activeStudent("stu-1", time.Time{})
	s2 := activeStudent("stu-2", time.Time{})
	students := newFakeStudentRepo(s1, s2)

	assessments := &fakeAssessmentRepo{}
	assess := newAssessHandler(students, newFakeHistoryRepo(), assessments, neutralPredictor{}, nil)
	h := NewAssessBatchHandler(students, assessments, assess, logger.Discard())

	result, err := h.Handle(context.Background(), AssessBatchCommand{All: true})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Assessed)
	assert.Empty(t, result.Failures)
}

func TestAssessBatchValidation(t *testing.T) {
	students := newFakeStudentRepo()
	assessments := &fakeAssessmentRepo{}
	assess := newAssessHandler(students, newFakeHistoryRepo(), assessments, neutralPredictor{}, nil)
	h := NewAssessBatchHandler(students, assessments, assess, logger.Discard())

	_, err := h.Handle(context.Background(), AssessBatchCommand{})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestAssessBatchPersistenceFailureAbortsRun(t *testing.T) {
	s1 := activeStudent("stu-1", time.Time{})
	students := newFakeStudentRepo(s1)

	assessments := &fakeAssessmentRepo{saveErr: shared.ErrPersistenceFailure}
	assess := newAssessHandler(students, newFakeHistoryRepo(), assessments, neutralPredictor{}, nil)
	h := NewAssessBatchHandler(students, assessments, assess, logger.Discard())

	_, err := h.Handle(context.Background(), AssessBatchCommand{StudentIDs: []string{"stu-1"}})
	require.Error(t, err)
	assert.True(t, shared.IsPersistence(err))
}
