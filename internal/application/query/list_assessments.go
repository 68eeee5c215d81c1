package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edusignal/student-risk-hub/internal/domain/risk"
	"github.com/edusignal/student-risk-hub/internal/domain/shared"
	"github.com/edusignal/student-risk-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST ASSESSMENTS QUERY
// Lists persisted assessments with optional filters on student, risk
// level, and date range. Supports pagination. Always reads Postgres;
// history browsing does not go through the cache.
// ══════════════════════════════════════════════════════════════════════════════

// ListAssessmentsQuery contains the query parameters.
type ListAssessmentsQuery struct {
	// StudentID filters by student (empty = all students).
	StudentID string

	// Level filters by overall risk level ("green", "yellow", "red";
	// empty = all levels).
	Level string

	// From and To bound the assessment date (zero values = unbounded).
	From time.Time
	To   time.Time

	// Limit is the page size (default 50, maximum 200).
	Limit int

	// Offset is the pagination offset.
	Offset int
}

// Validate validates and normalizes the query.
func (q *ListAssessmentsQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = 50
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
	if q.Offset < 0 {
		return errors.New("offset cannot be negative")
	}
	if q.Level != "" {
		if _, err := risk.ParseLevel(q.Level); err != nil {
			return fmt.Errorf("invalid level %q", q.Level)
		}
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return errors.New("to must not precede from")
	}
	return nil
}

// ListAssessmentsResult contains the result page.
type ListAssessmentsResult struct {
	Assessments []*risk.Assessment `json:"assessments"`
	Count       int                `json:"count"`
	Limit       int                `json:"limit"`
	Offset      int                `json:"offset"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ListAssessmentsHandler handles the ListAssessmentsQuery.
type ListAssessmentsHandler struct {
	assessmentRepo risk.Repository
	log            *logger.Logger
}

// NewListAssessmentsHandler creates the handler.
func NewListAssessmentsHandler(assessmentRepo risk.Repository, log *logger.Logger) *ListAssessmentsHandler {
	return &ListAssessmentsHandler{assessmentRepo: assessmentRepo, log: log}
}

// Handle returns one page of assessments matching the filters.
func (h *ListAssessmentsHandler) Handle(ctx context.Context, q ListAssessmentsQuery) (*ListAssessmentsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.NewDomainError("risk", "list_assessments", shared.ErrInvalidInput, err.Error())
	}

	filter := risk.ListFilter{
		StudentID: q.StudentID,
		From:      q.From,
		To:        q.To,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
	if q.Level != "" {
		level, _ := risk.ParseLevel(q.Level)
		filter.OverallLevel = &level
	}

	assessments, err := h.assessmentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ListAssessmentsResult{
		Assessments: assessments,
		Count:       len(assessments),
		Limit:       q.Limit,
		Offset:      q.Offset,
	}, nil
}
