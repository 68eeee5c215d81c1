package academic

import (
	"context"
)

// HistoryRepository supplies the raw per-student history the feature
// extractor consumes. All three lists may be empty; the extractor treats
// missing data as documented zero-defaults, never as an error.
type HistoryRepository interface {
	// AttendanceByStudent returns all attendance records for a student.
	AttendanceByStudent(ctx context.Context, studentID string) ([]AttendanceRecord, error)

	// ExamScoresByStudent returns all exam score records for a student.
	ExamScoresByStudent(ctx context.Context, studentID string) ([]ExamScoreRecord, error)

	// FeesByStudent returns all fee records for a student.
	FeesByStudent(ctx context.Context, studentID string) ([]FeeRecord, error)
}

// Recorder ingests history records from the institution's registers.
// Implementations validate ownership (the student must exist) via
// foreign keys, not application checks.
type Recorder interface {
	// RecordAttendance stores one attendance record.
	RecordAttendance(ctx context.Context, rec AttendanceRecord) error

	// RecordExamScore stores one exam score record.
	RecordExamScore(ctx context.Context, rec ExamScoreRecord) error

	// RecordFee stores one fee record.
	RecordFee(ctx context.Context, rec FeeRecord) error
}
