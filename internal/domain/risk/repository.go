package risk

import (
	"context"
	"time"
)

// ListFilter narrows assessment list queries.
type ListFilter struct {
	// StudentID restricts results to one student (empty = all).
	StudentID string

	// OverallLevel restricts results to a rule-based overall level
	// (nil = all levels).
	OverallLevel *Level

	// From/To restrict the assessment date range (zero = unbounded).
	From time.Time
	To   time.Time

	// Limit is the maximum number of records (0 = repository default).
	Limit int

	// Offset is the number of records to skip.
	Offset int
}

// Summary holds aggregate counts for dashboards.
type Summary struct {
	// Total is the number of students with a current assessment.
	Total int `json:"total"`

	// Counts of current assessments by rule-based overall level.
	Green  int `json:"green"`
	Yellow int `json:"yellow"`
	Red    int `json:"red"`

	// AverageDropoutProbability over current assessments.
	AverageDropoutProbability float64 `json:"average_dropout_probability"`
}

// Repository defines storage operations for assessments.
//
// Implementations own the "at most one assessment per student per day"
// policy: Save replaces any assessment already stored for the same
// student and date. SaveBatch is transactional: either every assessment
// in the batch is committed or none are.
type Repository interface {
	// Save upserts one assessment.
	Save(ctx context.Context, a *Assessment) error

	// SaveBatch upserts all assessments in a single transaction.
	SaveBatch(ctx context.Context, batch []*Assessment) error

	// GetByID returns an assessment by ID.
	// Returns ErrAssessmentNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*Assessment, error)

	// LatestByStudent returns the most recent assessment for a student.
	// Returns ErrAssessmentNotFound if the student has none.
	LatestByStudent(ctx context.Context, studentID string) (*Assessment, error)

	// List returns assessments matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Assessment, error)

	// Summary returns aggregate counts over each student's latest
	// assessment.
	Summary(ctx context.Context) (Summary, error)

	// Delete removes an assessment by ID.
	// Returns ErrAssessmentNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}
