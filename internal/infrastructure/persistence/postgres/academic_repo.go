package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/edusignal/student-risk-hub/internal/domain/academic"
	"github.com/edusignal/student-risk-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACADEMIC HISTORY REPOSITORY IMPLEMENTATION
// Read side feeds the feature extractor; write side ingests records
// from the institution's registers.
// ══════════════════════════════════════════════════════════════════════════════

// AcademicRepository implements academic.HistoryRepository and
// academic.Recorder for PostgreSQL.
type AcademicRepository struct {
	conn *Connection
}

// NewAcademicRepository creates a new AcademicRepository.
func NewAcademicRepository(conn *Connection) *AcademicRepository {
	return &AcademicRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// AttendanceByStudent returns all attendance records for a student.
func (r *AcademicRepository) AttendanceByStudent(ctx context.Context, studentID string) ([]academic.AttendanceRecord, error) {
	query := `
		SELECT id, student_id, date, subject, present, remarks
		FROM attendance_records
		WHERE student_id = $1
		ORDER BY date
	`

	rows, err := r.conn.Query(ctx, query, studentID)
	if err != nil {
		return nil, shared.WrapError("academic", "AttendanceByStudent", shared.ErrPersistenceFailure, "failed to query attendance", err)
	}
	defer rows.Close()

	var records []academic.AttendanceRecord
	for rows.Next() {
		var rec academic.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.Date, &rec.Subject, &rec.Present, &rec.Remarks); err != nil {
			return nil, shared.WrapError("academic", "AttendanceByStudent", shared.ErrPersistenceFailure, "failed to scan attendance record", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ExamScoresByStudent returns all exam score records for a student.
func (r *AcademicRepository) ExamScoresByStudent(ctx context.Context, studentID string) ([]academic.ExamScoreRecord, error) {
	query := `
		SELECT id, student_id, exam_name, exam_type, subject, exam_date, marks_obtained, total_marks
		FROM exam_scores
		WHERE student_id = $1
		ORDER BY exam_date
	`

	rows, err := r.conn.Query(ctx, query, studentID)
	if err != nil {
		return nil, shared.WrapError("academic", "ExamScoresByStudent", shared.ErrPersistenceFailure, "failed to query exam scores", err)
	}
	defer rows.Close()

	var records []academic.ExamScoreRecord
	for rows.Next() {
		var (
			rec      academic.ExamScoreRecord
			examType string
			examDate *time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.ExamName, &examType, &rec.Subject, &examDate, &rec.MarksObtained, &rec.TotalMarks); err != nil {
			return nil, shared.WrapError("academic", "ExamScoresByStudent", shared.ErrPersistenceFailure, "failed to scan exam score", err)
		}
		rec.ExamType = academic.ExamType(examType)
		if examDate != nil {
			rec.ExamDate = *examDate
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FeesByStudent returns all fee records for a student.
func (r *AcademicRepository) FeesByStudent(ctx context.Context, studentID string) ([]academic.FeeRecord, error) {
	query := `
		SELECT id, student_id, fee_type, amount_due, amount_paid, due_date, status, overdue
		FROM fee_records
		WHERE student_id = $1
		ORDER BY due_date
	`

	rows, err := r.conn.Query(ctx, query, studentID)
	if err != nil {
		return nil, shared.WrapError("academic", "FeesByStudent", shared.ErrPersistenceFailure, "failed to query fees", err)
	}
	defer rows.Close()

	var records []academic.FeeRecord
	for rows.Next() {
		var (
			rec     academic.FeeRecord
			status  string
			dueDate *time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.FeeType, &rec.AmountDue, &rec.AmountPaid, &dueDate, &status, &rec.Overdue); err != nil {
			return nil, shared.WrapError("academic", "FeesByStudent", shared.ErrPersistenceFailure, "failed to scan fee record", err)
		}
		rec.Status = academic.FeeStatus(status)
		if dueDate != nil {
			rec.DueDate = *dueDate
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Writes
// ─────────────────────────────────────────────────────────────────────────────

// RecordAttendance stores one attendance record.
func (r *AcademicRepository) RecordAttendance(ctx context.Context, rec academic.AttendanceRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	query := `
		INSERT INTO attendance_records (id, student_id, date, subject, present, remarks)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.conn.Exec(ctx, query, rec.ID, rec.StudentID, rec.Date, rec.Subject, rec.Present, rec.Remarks)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrStudentNotFound
		}
		return shared.WrapError("academic", "RecordAttendance", shared.ErrPersistenceFailure, "failed to insert attendance record", err)
	}
	return nil
}

// RecordExamScore stores one exam score record.
func (r *AcademicRepository) RecordExamScore(ctx context.Context, rec academic.ExamScoreRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	query := `
		INSERT INTO exam_scores (id, student_id, exam_name, exam_type, subject, exam_date, marks_obtained, total_marks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.conn.Exec(ctx, query,
		rec.ID, rec.StudentID, rec.ExamName, string(rec.ExamType), rec.Subject,
		nullableTime(rec.ExamDate), rec.MarksObtained, rec.TotalMarks)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrStudentNotFound
		}
		return shared.WrapError("academic", "RecordExamScore", shared.ErrPersistenceFailure, "failed to insert exam score", err)
	}
	return nil
}

// RecordFee stores one fee record.
func (r *AcademicRepository) RecordFee(ctx context.Context, rec academic.FeeRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	query := `
		INSERT INTO fee_records (id, student_id, fee_type, amount_due, amount_paid, due_date, status, overdue)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.conn.Exec(ctx, query,
		rec.ID, rec.StudentID, rec.FeeType, rec.AmountDue, rec.AmountPaid,
		nullableTime(rec.DueDate), string(rec.Status), rec.Overdue)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrStudentNotFound
		}
		return shared.WrapError("academic", "RecordFee", shared.ErrPersistenceFailure, "failed to insert fee record", err)
	}
	return nil
}
