// Package student contains the student domain model.
// This is core business data - there are no external dependencies here.
package student

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// AdmissionNumber is the institution-assigned student identifier
// (as printed on the student card, distinct from the internal UUID).
type AdmissionNumber string

// IsValid checks that the admission number is plausible.
func (a AdmissionNumber) IsValid() bool {
	s := string(a)
	return len(s) >= 2 && len(s) <= 30 && !strings.ContainsAny(s, " \t\n\r")
}

// String returns the string representation.
func (a AdmissionNumber) String() string {
	return string(a)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Status describes where the student stands in the program.
type Status string

const (
	// StatusActive - the student is enrolled and attending.
	StatusActive Status = "active"
	// StatusGraduated - the student completed the program.
	StatusGraduated Status = "graduated"
	// StatusDroppedOut - the student left before completing the program.
	StatusDroppedOut Status = "dropped_out"
	// StatusSuspended - the student is temporarily suspended.
	StatusSuspended Status = "suspended"
)

// IsValid checks that the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusGraduated, StatusDroppedOut, StatusSuspended:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for statuses with a known final outcome.
// Terminal students are the labeled examples the ensemble trains on.
func (s Status) IsTerminal() bool {
	return s == StatusGraduated || s == StatusDroppedOut
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student is the central entity the risk engine assesses.
type Student struct {
	// ID - internal unique identifier (UUID in string form).
	ID string

	// AdmissionNumber - institution-assigned identifier.
	AdmissionNumber AdmissionNumber

	// FirstName and LastName of the student.
	FirstName string
	LastName  string

	// Email - contact email (may be empty).
	Email string

	// ClassName - class/grade the student belongs to (e.g. "10").
	ClassName string

	// Section - section within the class (e.g. "B", may be empty).
	Section string

	// AcademicYear - e.g. "2025-2026".
	AcademicYear string

	// EnrollmentDate - when the student joined. A zero value means the
	// enrollment date is unknown; days_enrolled then defaults to 0.
	EnrollmentDate time.Time

	// Status - current standing in the program.
	Status Status

	// GuardianName and GuardianPhone for interventions involving parents.
	GuardianName  string
	GuardianPhone string

	// MentorID - assigned mentor (staff user ID, may be empty).
	MentorID string

	// CreatedAt - record creation time.
	CreatedAt time.Time

	// UpdatedAt - last modification time.
	UpdatedAt time.Time
}

// Domain errors.
var (
	ErrInvalidAdmissionNumber = errors.New("invalid admission number: must be 2-30 chars without whitespace")
	ErrInvalidName            = errors.New("invalid name: must be 1-100 chars")
	ErrInvalidStatus          = errors.New("invalid student status")
	ErrStudentNotFound        = errors.New("student not found")
	ErrStudentAlreadyExists   = errors.New("student already exists")
)

// NewStudentParams contains the parameters for creating a new student.
type NewStudentParams struct {
	ID              string
	AdmissionNumber AdmissionNumber
	FirstName       string
	LastName        string
	Email           string
	ClassName       string
	AcademicYear    string
	EnrollmentDate  time.Time
}

// NewStudent creates a new student with field validation.
func NewStudent(params NewStudentParams) (*Student, error) {
	if params.ID == "" {
		return nil, errors.New("student id is required")
	}

	if !params.AdmissionNumber.IsValid() {
		return nil, ErrInvalidAdmissionNumber
	}

	firstName := strings.TrimSpace(params.FirstName)
	lastName := strings.TrimSpace(params.LastName)
	if len(firstName) == 0 || len(firstName) > 100 || len(lastName) > 100 {
		return nil, ErrInvalidName
	}

	now := time.Now().UTC()

	return &Student{
		ID:              params.ID,
		AdmissionNumber: params.AdmissionNumber,
		FirstName:       firstName,
		LastName:        lastName,
		Email:           strings.TrimSpace(params.Email),
		ClassName:       params.ClassName,
		AcademicYear:    params.AcademicYear,
		EnrollmentDate:  params.EnrollmentDate,
		Status:          StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// FullName returns the display name of the student.
func (s *Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// IsActive returns true if the student is currently enrolled.
func (s *Student) IsActive() bool {
	return s.Status == StatusActive
}

// HasEnrollmentDate reports whether the enrollment date is known.
func (s *Student) HasEnrollmentDate() bool {
	return !s.EnrollmentDate.IsZero()
}

// MarkDroppedOut records that the student left the program.
func (s *Student) MarkDroppedOut() error {
	if s.Status.IsTerminal() {
		return ErrInvalidStatus
	}
	s.Status = StatusDroppedOut
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkGraduated records that the student completed the program.
func (s *Student) MarkGraduated() error {
	if s.Status.IsTerminal() {
		return ErrInvalidStatus
	}
	s.Status = StatusGraduated
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Suspend temporarily suspends the student.
func (s *Student) Suspend() error {
	if s.Status != StatusActive {
		return ErrInvalidStatus
	}
	s.Status = StatusSuspended
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Reinstate returns a suspended student to active status.
func (s *Student) Reinstate() error {
	if s.Status != StatusSuspended {
		return errors.New("can only reinstate suspended students")
	}
	s.Status = StatusActive
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// AssignMentor links a staff mentor to the student.
func (s *Student) AssignMentor(mentorID string) {
	s.MentorID = mentorID
	s.UpdatedAt = time.Now().UTC()
}

// String returns a short representation for logging.
func (s *Student) String() string {
	return fmt.Sprintf("Student{ID: %s, Admission: %s, Name: %s, Status: %s}",
		s.ID, s.AdmissionNumber, s.FullName(), s.Status)
}
