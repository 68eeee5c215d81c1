// Package academic contains the raw history records the risk engine consumes:
// attendance, exam scores, and fees. These are read-only inputs supplied by
// the persistence layer; the feature extractor reduces them to numbers.
package academic

import (
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE
// ══════════════════════════════════════════════════════════════════════════════

// AttendanceRecord is a single class session entry for a student.
type AttendanceRecord struct {
	// ID - internal unique identifier.
	ID string

	// StudentID - owning student.
	StudentID string

	// Date - the session date.
	Date time.Time

	// Subject - the subject of the session.
	Subject string

	// Present - whether the student attended.
	Present bool

	// Remarks - optional free-form note.
	Remarks string
}

// ══════════════════════════════════════════════════════════════════════════════
// EXAMS
// ══════════════════════════════════════════════════════════════════════════════

// ExamType categorizes exams.
type ExamType string

const (
	ExamTypeMidterm    ExamType = "midterm"
	ExamTypeFinal      ExamType = "final"
	ExamTypeQuiz       ExamType = "quiz"
	ExamTypeAssignment ExamType = "assignment"
	ExamTypeProject    ExamType = "project"
)

// ExamScoreRecord is one student's result on one exam.
type ExamScoreRecord struct {
	// ID - internal unique identifier.
	ID string

	// StudentID - owning student.
	StudentID string

	// ExamName - human-readable exam name.
	ExamName string

	// ExamType - category of the exam.
	ExamType ExamType

	// Subject - the subject examined.
	Subject string

	// ExamDate - when the exam took place.
	ExamDate time.Time

	// MarksObtained - points scored by the student.
	MarksObtained float64

	// TotalMarks - maximum points for the exam.
	TotalMarks float64
}

// Percentage returns the score as a percentage of total marks.
// Returns 0 when total marks is not positive.
func (e ExamScoreRecord) Percentage() float64 {
	if e.TotalMarks <= 0 {
		return 0
	}
	return e.MarksObtained / e.TotalMarks * 100
}

// ══════════════════════════════════════════════════════════════════════════════
// FEES
// ══════════════════════════════════════════════════════════════════════════════

// FeeStatus describes the payment state of a fee record.
type FeeStatus string

const (
	FeeStatusPaid    FeeStatus = "paid"
	FeeStatusPartial FeeStatus = "partial"
	FeeStatusUnpaid  FeeStatus = "unpaid"
	FeeStatusOverdue FeeStatus = "overdue"
)

// FeeRecord is a single fee obligation for a student.
type FeeRecord struct {
	// ID - internal unique identifier.
	ID string

	// StudentID - owning student.
	StudentID string

	// FeeType - e.g. "tuition", "library", "sports".
	FeeType string

	// AmountDue - the billed amount.
	AmountDue float64

	// AmountPaid - the amount paid so far.
	AmountPaid float64

	// DueDate - payment deadline.
	DueDate time.Time

	// Status - current payment state.
	Status FeeStatus

	// Overdue - whether the fee is past due and unpaid.
	// Maintained by the billing importer when records are loaded.
	Overdue bool
}

// Balance returns the outstanding amount.
func (f FeeRecord) Balance() float64 {
	return f.AmountDue - f.AmountPaid
}
