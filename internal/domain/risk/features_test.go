package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/edusignal/student-risk-hub/internal/domain/academic"
	"github.com/edusignal/student-risk-hub/internal/domain/student"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testStudent(enrolled time.Time) *student.Student {
	return &student.Student{
		ID:             "stu-1",
		FirstName:      "Aruzhan",
		LastName:       "Bekova",
		Status:         student.StatusActive,
		EnrollmentDate: enrolled,
	}
}

func attendanceRecords(present, absent int) []academic.AttendanceRecord {
	recs := make([]academic.AttendanceRecord, 0, present+absent)
	for i := 0; i < present; i++ {
		recs = append(recs, academic.AttendanceRecord{StudentID: "stu-1", Present: true})
	}
	for i := 0; i < absent; i++ {
		recs = append(recs, academic.AttendanceRecord{StudentID: "stu-1", Present: false})
	}
	return recs
}

func examScores(percentages ...float64) []academic.ExamScoreRecord {
	recs := make([]academic.ExamScoreRecord, 0, len(percentages))
	for _, p := range percentages {
		recs = append(recs, academic.ExamScoreRecord{
			StudentID:     "stu-1",
			MarksObtained: p,
			TotalMarks:    100,
		})
	}
	return recs
}

func feeRecords(overdue, paid int) []academic.FeeRecord {
	recs := make([]academic.FeeRecord, 0, overdue+paid)
	for i := 0; i < overdue; i++ {
		recs = append(recs, academic.FeeRecord{StudentID: "stu-1", Overdue: true})
	}
	for i := 0; i < paid; i++ {
		recs = append(recs, academic.FeeRecord{StudentID: "stu-1", Status: academic.FeeStatusPaid})
	}
	return recs
}

func TestExtractFeatures_EmptyHistory(t *testing.T) {
	f := ExtractFeatures(testStudent(time.Time{}), nil, nil, nil, testNow)

	assert.Zero(t, f.AttendancePercentage)
	assert.Zero(t, f.TotalSessions)
	assert.Zero(t, f.AverageScore)
	assert.Zero(t, f.ScoreStd)
	assert.Zero(t, f.FailedExams)
	assert.Zero(t, f.TotalExams)
	assert.Zero(t, f.OverdueFeesCount)
	assert.Zero(t, f.TotalFees)
	assert.Zero(t, f.OverdueFeesRatio)
	assert.Zero(t, f.DaysEnrolled)
}

func TestExtractFeatures_Attendance(t *testing.T) {
	f := ExtractFeatures(testStudent(time.Time{}), attendanceRecords(8, 2), nil, nil, testNow)

	assert.InDelta(t, 80.0, f.AttendancePercentage, 1e-9)
	assert.Equal(t, 10.0, f.TotalSessions)
	assert.GreaterOrEqual(t, f.AttendancePercentage, 0.0)
	assert.LessOrEqual(t, f.AttendancePercentage, 100.0)
}

func TestExtractFeatures_ExamScores(t *testing.T) {
	f := ExtractFeatures(testStudent(time.Time{}), nil, examScores(80, 60, 30, 50), nil, testNow)

	assert.InDelta(t, 55.0, f.AverageScore, 1e-9)
	// Population std of {80, 60, 30, 50}.
	assert.InDelta(t, 18.027756377319946, f.ScoreStd, 1e-9)
	assert.Equal(t, 1.0, f.FailedExams) // only 30 is below 40
	assert.Equal(t, 4.0, f.TotalExams)
}

func TestExtractFeatures_FailedExamBoundary(t *testing.T) {
	// Exactly 40 is not a failure; strictly below is.
	f := ExtractFeatures(testStudent(time.Time{}), nil, examScores(40, 39.9), nil, testNow)
	assert.Equal(t, 1.0, f.FailedExams)
}

func TestExtractFeatures_Fees(t *testing.T) {
	f := ExtractFeatures(testStudent(time.Time{}), nil, nil, feeRecords(3, 7), testNow)

	assert.Equal(t, 3.0, f.OverdueFeesCount)
	assert.Equal(t, 10.0, f.TotalFees)
	assert.InDelta(t, 0.3, f.OverdueFeesRatio, 1e-9)
	assert.GreaterOrEqual(t, f.OverdueFeesRatio, 0.0)
	assert.LessOrEqual(t, f.OverdueFeesRatio, 1.0)
}

func TestExtractFeatures_DaysEnrolled(t *testing.T) {
	enrolled := testNow.AddDate(0, 0, -120)
	f := ExtractFeatures(testStudent(enrolled), nil, nil, nil, testNow)
	assert.Equal(t, 120.0, f.DaysEnrolled)

	// Unknown enrollment date defaults to 0.
	f = ExtractFeatures(testStudent(time.Time{}), nil, nil, nil, testNow)
	assert.Zero(t, f.DaysEnrolled)
}

func TestExtractFeatures_ZeroTotalMarks(t *testing.T) {
	recs := []academic.ExamScoreRecord{{StudentID: "stu-1", MarksObtained: 50, TotalMarks: 0}}
	f := ExtractFeatures(testStudent(time.Time{}), nil, recs, nil, testNow)

	assert.Zero(t, f.AverageScore)
	assert.Equal(t, 1.0, f.FailedExams)
	assert.Equal(t, 1.0, f.TotalExams)
}

func TestModelRow_FixedOrder(t *testing.T) {
	f := FeatureVector{
		AttendancePercentage: 80,
		TotalSessions:        10,
		AverageScore:         70,
		ScoreStd:             5,
		FailedExams:          1,
		TotalExams:           4,
		OverdueFeesCount:     2,
		TotalFees:            8,
		OverdueFeesRatio:     0.25,
		DaysEnrolled:         200,
	}

	row := f.ModelRow()
	assert.Equal(t, []float64{80, 70, 5, 1, 0.25, 200}, row)
	assert.Len(t, row, len(ModelFeatureNames))
}
