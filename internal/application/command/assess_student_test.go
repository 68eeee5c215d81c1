package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusignal/student-risk-hub/internal/domain/academic"
	"github.com/edusignal/student-risk-hub/internal/domain/risk"
	"github.com/edusignal/student-risk-hub/internal/domain/shared"
	"github.com/edusignal/student-risk-hub/pkg/logger"
	"github.com/edusignal/student-risk-hub/pkg/timeutil"
)

func newAssessHandler(
	students *fakeStudentRepo,
	history *fakeHistoryRepo,
	assessments *fakeAssessmentRepo,
	predictor DropoutPredictor,
	cache AssessmentCache,
) *AssessStudentHandler {
	return NewAssessStudentHandler(
		students, history, assessments, predictor, cache,
		risk.DefaultThresholds(), logger.Discard(),
	)
}

func TestAssessStudentHealthyStudentComesOutGreen(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	s := activeStudent("stu-1", now.AddDate(0, -6, 0))

	history := newFakeHistoryRepo()
	for i := 0; i < 10; i++ {
		history.attendance["stu-1"] = append(history.attendance["stu-1"], academic.AttendanceRecord{
			StudentID: "stu-1",
			Present:   i != 0, // 90%
		})
	}
	history.scores["stu-1"] = []academic.ExamScoreRecord{
		{StudentID: "stu-1", MarksObtained: 85, TotalMarks: 100},
		{StudentID: "stu-1", MarksObtained: 78, TotalMarks: 100},
	}
	history.fees["stu-1"] = []academic.FeeRecord{
		{StudentID: "stu-1", Status: academic.FeeStatusPaid},
	}

	assessments := &fakeAssessmentRepo{}
	cache := newFakeCache()
	h := newAssessHandler(newFakeStudentRepo(s), history, assessments, neutralPredictor{}, cache)
	h.WithClock(func() time.Time { return now })

	result, err := h.Handle(context.Background(), AssessStudentCommand{StudentID: "stu-1"})
	require.NoError(t, err)
	require.NotNil(t, result.Assessment)

	a := result.Assessment
	assert.Equal(t, risk.LevelGreen, a.OverallRisk())
	assert.Equal(t, risk.LevelGreen, a.RuleProfile.Attendance)
	assert.Equal(t, risk.LevelGreen, a.RuleProfile.Academic)
	assert.Equal(t, risk.LevelGreen, a.RuleProfile.Financial)

	// No trained models: neutral prior, no ML-driven recommendations.
	assert.Equal(t, 0.5, a.Prediction.DropoutProbability)
	assert.Equal(t, 0.0, a.Prediction.Confidence)
	assert.Empty(t, a.Recommendations)

	// Assessment date is normalized to the UTC day.
	assert.Equal(t, timeutil.StartOfDay(now), a.AssessmentDate)

	require.Len(t, assessments.saved, 1)
	assert.Same(t, a, cache.latest["stu-1"])
	assert.Equal(t, 1, cache.invalidated)
}

func TestAssessStudentStrugglingStudentComesOutRed(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s := activeStudent("stu-2", now.AddDate(-1, 0, 0))

	history := newFakeHistoryRepo()
	for i := 0; i < 10; i++ {
		history.attendance["stu-2"] = append(history.attendance["stu-2"], academic.AttendanceRecord{
			StudentID: "stu-2",
			Present:   i < 5, // 50%
		})
	}
	history.scores["stu-2"] = []academic.ExamScoreRecord{
		{StudentID: "stu-2", MarksObtained: 30, TotalMarks: 100},
		{StudentID: "stu-2", MarksObtained: 25, TotalMarks: 100},
	}
	history.fees["stu-2"] = []academic.FeeRecord{
		{StudentID: "stu-2", Status: academic.FeeStatusOverdue, Overdue: true},
	}

	predictor := &stubPredictor{prediction: risk.MLPrediction{
		DropoutProbability: 0.82,
		Confidence:         0.8,
		ModelScores:        map[string]float64{"logistic_regression": 0.82},
	}}

	assessments := &fakeAssessmentRepo{}
	h := newAssessHandler(newFakeStudentRepo(s), history, assessments, predictor, nil)
	h.WithClock(func() time.Time { return now })

	result, err := h.Handle(context.Background(), AssessStudentCommand{StudentID: "stu-2"})
	require.NoError(t, err)

	a := result.Assessment
	assert.Equal(t, risk.LevelRed, a.OverallRisk())
	assert.Equal(t, risk.LevelRed, a.MLRiskLevel)
	assert.NotEmpty(t, a.Recommendations)
	assert.Contains(t, a.Recommendations, risk.RecAttendanceImmediate)
}

func TestAssessStudentUnknownStudent(t *testing.T) {
	h := newAssessHandler(newFakeStudentRepo(), newFakeHistoryRepo(), &fakeAssessmentRepo{}, neutralPredictor{}, nil)

	_, err := h.Handle(context.Background(), AssessStudentCommand{StudentID: "nope"})
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

func TestAssessStudentValidation(t *testing.T) {
	h := newAssessHandler(newFakeStudentRepo(), newFakeHistoryRepo(), &fakeAssessmentRepo{}, neutralPredictor{}, nil)

	_, err := h.Handle(context.Background(), AssessStudentCommand{})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestAssessStudentHistoryFailureIsMissingData(t *testing.T) {
	s := activeStudent("stu-3", time.Time{})
	history := newFakeHistoryRepo()
	history.failFor["stu-3"] = assert.AnError

	h := newAssessHandler(newFakeStudentRepo(s), history, &fakeAssessmentRepo{}, neutralPredictor{}, nil)

	_, err := h.Handle(context.Background(), AssessStudentCommand{StudentID: "stu-3"})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrMissingData)
}

func TestAssessStudentCacheFailureDoesNotFailCommand(t *testing.T) {
	s := activeStudent("stu-4", time.Time{})
	cache := newFakeCache()
	cache.setErr = assert.AnError

	assessments := &fakeAssessmentRepo{}
	h := newAssessHandler(newFakeStudentRepo(s), newFakeHistoryRepo(), assessments, neutralPredictor{}, cache)

	_, err := h.Handle(context.Background(), AssessStudentCommand{StudentID: "stu-4"})
	require.NoError(t, err)
	require.Len(t, assessments.saved, 1)
}
