package risk

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/edusignal/student-risk-hub/internal/domain/academic"
	"github.com/edusignal/student-risk-hub/internal/domain/student"
)

// FailingScoreThreshold is the exam percentage below which an exam
// counts as failed.
const FailingScoreThreshold = 40.0

// FeatureVector is the fixed-shape numeric summary of a student's
// attendance, academic and financial history. Missing underlying data
// yields zero values, never absent fields.
//
// Invariants: AttendancePercentage is in [0,100] and OverdueFeesRatio
// is in [0,1].
type FeatureVector struct {
	// AttendancePercentage - share of sessions attended, 0-100.
	AttendancePercentage float64 `json:"attendance_percentage"`

	// TotalSessions - number of attendance records.
	TotalSessions float64 `json:"total_sessions"`

	// AverageScore - mean exam percentage, 0 with no exams.
	AverageScore float64 `json:"average_score"`

	// ScoreStd - population standard deviation of exam percentages.
	ScoreStd float64 `json:"score_std"`

	// FailedExams - count of exam percentages below FailingScoreThreshold.
	FailedExams float64 `json:"failed_exams"`

	// TotalExams - number of exam score records.
	TotalExams float64 `json:"total_exams"`

	// OverdueFeesCount - number of overdue fee records.
	OverdueFeesCount float64 `json:"overdue_fees_count"`

	// TotalFees - number of fee records.
	TotalFees float64 `json:"total_fees"`

	// OverdueFeesRatio - overdue fees / total fees, 0-1.
	OverdueFeesRatio float64 `json:"overdue_fees_ratio"`

	// DaysEnrolled - days since enrollment, 0 when the date is unknown.
	DaysEnrolled float64 `json:"days_enrolled"`
}

// ModelFeatureNames is the fixed input order the ensemble models were
// fitted with. Changing it invalidates persisted artifacts.
var ModelFeatureNames = []string{
	"attendance_percentage",
	"average_score",
	"score_std",
	"failed_exams",
	"overdue_fees_ratio",
	"days_enrolled",
}

// ModelRow returns the feature values in the fixed model input order,
// substituting 0 for any NaN or infinite value.
func (f FeatureVector) ModelRow() []float64 {
	row := []float64{
		f.AttendancePercentage,
		f.AverageScore,
		f.ScoreStd,
		f.FailedExams,
		f.OverdueFeesRatio,
		f.DaysEnrolled,
	}
	for i, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			row[i] = 0
		}
	}
	return row
}

// ExtractFeatures reduces a student's raw history to a feature vector.
// It is a total function: empty or missing collections produce the
// documented zero-defaults and it never returns an error.
func ExtractFeatures(
	s *student.Student,
	attendance []academic.AttendanceRecord,
	examScores []academic.ExamScoreRecord,
	fees []academic.FeeRecord,
	now time.Time,
) FeatureVector {
	var f FeatureVector

	// Attendance features.
	if total := len(attendance); total > 0 {
		present := 0
		for _, rec := range attendance {
			if rec.Present {
				present++
			}
		}
		f.AttendancePercentage = float64(present) / float64(total) * 100
		f.TotalSessions = float64(total)
	}

	// Academic features.
	if len(examScores) > 0 {
		percentages := make([]float64, 0, len(examScores))
		failed := 0
		for _, rec := range examScores {
			p := rec.Percentage()
			percentages = append(percentages, p)
			if p < FailingScoreThreshold {
				failed++
			}
		}
		// stats errors only on empty input, which is excluded here.
		mean, err := stats.Mean(percentages)
		if err == nil {
			f.AverageScore = mean
		}
		std, err := stats.StandardDeviationPopulation(percentages)
		if err == nil {
			f.ScoreStd = std
		}
		f.FailedExams = float64(failed)
		f.TotalExams = float64(len(percentages))
	}

	// Financial features.
	if total := len(fees); total > 0 {
		overdue := 0
		for _, rec := range fees {
			if rec.Overdue {
				overdue++
			}
		}
		f.OverdueFeesCount = float64(overdue)
		f.TotalFees = float64(total)
		f.OverdueFeesRatio = float64(overdue) / float64(total)
	}

	// Temporal features.
	if s != nil && s.HasEnrollmentDate() {
		days := int(now.Sub(s.EnrollmentDate).Hours() / 24)
		if days > 0 {
			f.DaysEnrolled = float64(days)
		}
	}

	return f
}
