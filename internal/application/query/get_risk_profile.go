// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"errors"
	"time"

	"github.com/edusignal/student-risk-hub/internal/domain/risk"
	"github.com/edusignal/student-risk-hub/internal/domain/shared"
	"github.com/edusignal/student-risk-hub/internal/domain/student"
	"github.com/edusignal/student-risk-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RISK PROFILE QUERY
// Returns a student's latest risk assessment together with basic
// student info. Reads go through the Redis cache first and fall back
// to Postgres on a miss or cache failure.
// ══════════════════════════════════════════════════════════════════════════════

// AssessmentReadCache is the read side of the assessment cache. A miss
// is (nil, nil); errors are treated as misses by the handlers.
type AssessmentReadCache interface {
	GetLatest(ctx context.Context, studentID string) (*risk.Assessment, error)
	GetSummary(ctx context.Context) (*risk.Summary, error)
	SetSummary(ctx context.Context, s *risk.Summary) error
}

// GetRiskProfileQuery contains the query parameters.
type GetRiskProfileQuery struct {
	// StudentID is the internal ID of the student.
	StudentID string
}

// Validate validates the query.
func (q GetRiskProfileQuery) Validate() error {
	if q.StudentID == "" {
		return errors.New("get_risk_profile: student_id is required")
	}
	return nil
}

// RiskProfileDTO is the student-facing risk profile.
type RiskProfileDTO struct {
	StudentID       string           `json:"student_id"`
	FullName        string           `json:"full_name"`
	AdmissionNumber string           `json:"admission_number"`
	Status          string           `json:"status"`

	// Assessment is the latest persisted assessment, nil when the
	// student has never been assessed.
	Assessment *risk.Assessment `json:"assessment,omitempty"`

	// FromCache reports whether the assessment came from Redis.
	FromCache bool `json:"-"`

	GeneratedAt time.Time `json:"generated_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetRiskProfileHandler handles the GetRiskProfileQuery.
type GetRiskProfileHandler struct {
	studentRepo    student.Repository
	assessmentRepo risk.Repository
	cache          AssessmentReadCache
	log            *logger.Logger
}

// NewGetRiskProfileHandler creates the handler. cache may be nil.
func NewGetRiskProfileHandler(
	studentRepo student.Repository,
	assessmentRepo risk.Repository,
	cache AssessmentReadCache,
	log *logger.Logger,
) *GetRiskProfileHandler {
	return &GetRiskProfileHandler{
		studentRepo:    studentRepo,
		assessmentRepo: assessmentRepo,
		cache:          cache,
		log:            log,
	}
}

// Handle returns the student's latest risk profile.
func (h *GetRiskProfileHandler) Handle(ctx context.Context, q GetRiskProfileQuery) (*RiskProfileDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.NewDomainError("risk", "get_risk_profile", shared.ErrInvalidInput, err.Error())
	}

	s, err := h.studentRepo.GetByID(ctx, q.StudentID)
	if err != nil {
		return nil, err
	}

	dto := &RiskProfileDTO{
		StudentID:       s.ID,
		FullName:        s.FullName(),
		AdmissionNumber: s.AdmissionNumber.String(),
		Status:          string(s.Status),
		GeneratedAt:     time.Now().UTC(),
	}

	if h.cache != nil {
		cached, err := h.cache.GetLatest(ctx, s.ID)
		if err != nil {
			h.log.Debug("assessment cache read failed", logger.StudentID(s.ID), logger.Err(err))
		} else if cached != nil {
			dto.Assessment = cached
			dto.FromCache = true
			return dto, nil
		}
	}

	latest, err := h.assessmentRepo.LatestByStudent(ctx, s.ID)
	if err != nil {
		if shared.IsNotFound(err) {
			return dto, nil
		}
		return nil, err
	}

	dto.Assessment = latest
	return dto, nil
}
