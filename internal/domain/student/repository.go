package student

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// The contract for student storage. Implementations live in
// infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// ListOptions controls pagination for list operations.
type ListOptions struct {
	// Limit is the maximum number of records to return (0 = no limit).
	Limit int

	// Offset is the number of records to skip.
	Offset int
}

// Repository defines storage operations for students.
type Repository interface {
	// Create creates a new student.
	// Returns ErrStudentAlreadyExists if the admission number is taken.
	Create(ctx context.Context, student *Student) error

	// GetByID returns a student by internal ID.
	// Returns ErrStudentNotFound if the student does not exist.
	GetByID(ctx context.Context, id string) (*Student, error)

	// GetByAdmissionNumber returns a student by admission number.
	// Returns ErrStudentNotFound if the student does not exist.
	GetByAdmissionNumber(ctx context.Context, number AdmissionNumber) (*Student, error)

	// Update updates a student.
	// Returns ErrStudentNotFound if the student does not exist.
	Update(ctx context.Context, student *Student) error

	// ListActive returns all currently enrolled students.
	// Batch assessment iterates over this set.
	ListActive(ctx context.Context, opts ListOptions) ([]*Student, error)

	// ListByStatus returns students with the given status.
	ListByStatus(ctx context.Context, status Status, opts ListOptions) ([]*Student, error)

	// ListTerminal returns students with a known final outcome
	// (graduated or dropped out). These are the labeled training examples.
	ListTerminal(ctx context.Context) ([]*Student, error)

	// Count returns the total number of students.
	Count(ctx context.Context) (int, error)
}
