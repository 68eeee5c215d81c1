package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edusignal/student-risk-hub/internal/domain/shared"
	"github.com/edusignal/student-risk-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// studentColumns is the canonical column list used by every SELECT.
const studentColumns = `
	id, admission_number, first_name, last_name, email,
	class_name, section, academic_year, guardian_name, guardian_phone,
	enrollment_date, status, mentor_id, created_at, updated_at
`

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new student.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	query := `
		INSERT INTO students (
			id, admission_number, first_name, last_name, email,
			class_name, section, academic_year, guardian_name, guardian_phone,
			enrollment_date, status, mentor_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		s.AdmissionNumber.String(),
		s.FirstName,
		s.LastName,
		s.Email,
		s.ClassName,
		s.Section,
		s.AcademicYear,
		s.GuardianName,
		s.GuardianPhone,
		nullableTime(s.EnrollmentDate),
		string(s.Status),
		nullableString(s.MentorID),
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrStudentAlreadyExists
		}
		return shared.WrapError("student", "Create", shared.ErrPersistenceFailure, "failed to create student", err)
	}

	return nil
}

// GetByID returns a student by internal ID.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanStudent(row)
}

// GetByAdmissionNumber returns a student by admission number.
func (r *StudentRepository) GetByAdmissionNumber(ctx context.Context, number student.AdmissionNumber) (*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE admission_number = $1`

	row := r.conn.QueryRow(ctx, query, number.String())
	return r.scanStudent(row)
}

// Update updates a student.
func (r *StudentRepository) Update(ctx context.Context, s *student.Student) error {
	query := `
		UPDATE students SET
			admission_number = $2,
			first_name = $3,
			last_name = $4,
			email = $5,
			class_name = $6,
			section = $7,
			academic_year = $8,
			guardian_name = $9,
			guardian_phone = $10,
			enrollment_date = $11,
			status = $12,
			mentor_id = $13,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.conn.Exec(ctx, query,
		s.ID,
		s.AdmissionNumber.String(),
		s.FirstName,
		s.LastName,
		s.Email,
		s.ClassName,
		s.Section,
		s.AcademicYear,
		s.GuardianName,
		s.GuardianPhone,
		nullableTime(s.EnrollmentDate),
		string(s.Status),
		nullableString(s.MentorID),
	)
	if err != nil {
		return shared.WrapError("student", "Update", shared.ErrPersistenceFailure, "failed to update student", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// List Operations
// ─────────────────────────────────────────────────────────────────────────────

// ListActive returns all currently enrolled students.
func (r *StudentRepository) ListActive(ctx context.Context, opts student.ListOptions) ([]*student.Student, error) {
	return r.ListByStatus(ctx, student.StatusActive, opts)
}

// ListByStatus returns students with the given status.
func (r *StudentRepository) ListByStatus(ctx context.Context, status student.Status, opts student.ListOptions) ([]*student.Student, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + studentColumns + ` FROM students WHERE status = $1 ORDER BY admission_number`)

	args := []interface{}{string(status)}
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := r.conn.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, shared.WrapError("student", "ListByStatus", shared.ErrPersistenceFailure, "failed to list students", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// ListTerminal returns students with a known final outcome. These are
// the labeled examples the ensemble trains on.
func (r *StudentRepository) ListTerminal(ctx context.Context) ([]*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE status IN ('graduated', 'dropped_out') ORDER BY admission_number`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapError("student", "ListTerminal", shared.ErrPersistenceFailure, "failed to list terminal students", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// Count returns the total number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM students`).Scan(&count)
	if err != nil {
		return 0, shared.WrapError("student", "Count", shared.ErrPersistenceFailure, "failed to count students", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func (r *StudentRepository) scanStudent(row pgx.Row) (*student.Student, error) {
	var (
		s              student.Student
		admission      string
		status         string
		enrollmentDate *time.Time
		mentorID       *string
	)

	err := row.Scan(
		&s.ID,
		&admission,
		&s.FirstName,
		&s.LastName,
		&s.Email,
		&s.ClassName,
		&s.Section,
		&s.AcademicYear,
		&s.GuardianName,
		&s.GuardianPhone,
		&enrollmentDate,
		&status,
		&mentorID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, shared.WrapError("student", "Scan", shared.ErrPersistenceFailure, "failed to scan student", err)
	}

	s.AdmissionNumber = student.AdmissionNumber(admission)
	s.Status = student.Status(status)
	if enrollmentDate != nil {
		s.EnrollmentDate = *enrollmentDate
	}
	if mentorID != nil {
		s.MentorID = *mentorID
	}

	return &s, nil
}

func (r *StudentRepository) scanStudents(rows pgx.Rows) ([]*student.Student, error) {
	var students []*student.Student
	for rows.Next() {
		s, err := r.scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// nullableTime maps a zero time to SQL NULL.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// nullableString maps an empty string to SQL NULL.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
