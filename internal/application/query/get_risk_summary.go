package query

import (
	"context"
	"time"

	"github.com/edusignal/student-risk-hub/internal/domain/risk"
	"github.com/edusignal/student-risk-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RISK SUMMARY QUERY
// Aggregates the latest assessment of every student into cohort-level
// counts. Cache-aside: the summary is served from Redis when present
// and recomputed from Postgres otherwise.
// ══════════════════════════════════════════════════════════════════════════════

// GetRiskSummaryQuery contains the query parameters.
type GetRiskSummaryQuery struct{}

// RiskSummaryDTO is the cohort-level risk distribution.
type RiskSummaryDTO struct {
	Total  int `json:"total_students"`
	Green  int `json:"green"`
	Yellow int `json:"yellow"`
	Red    int `json:"red"`

	// AverageDropoutProbability is the mean ML probability across the
	// latest assessments.
	AverageDropoutProbability float64 `json:"average_dropout_probability"`

	// AtRisk is the yellow + red count.
	AtRisk int `json:"at_risk"`

	FromCache   bool      `json:"-"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetRiskSummaryHandler handles the GetRiskSummaryQuery.
type GetRiskSummaryHandler struct {
	assessmentRepo risk.Repository
	cache          AssessmentReadCache
	log            *logger.Logger
}

// NewGetRiskSummaryHandler creates the handler. cache may be nil.
func NewGetRiskSummaryHandler(assessmentRepo risk.Repository, cache AssessmentReadCache, log *logger.Logger) *GetRiskSummaryHandler {
	return &GetRiskSummaryHandler{
		assessmentRepo: assessmentRepo,
		cache:          cache,
		log:            log,
	}
}

// Handle returns the cohort risk summary.
func (h *GetRiskSummaryHandler) Handle(ctx context.Context, _ GetRiskSummaryQuery) (*RiskSummaryDTO, error) {
	if h.cache != nil {
		cached, err := h.cache.GetSummary(ctx)
		if err != nil {
			h.log.Debug("summary cache read failed", logger.Err(err))
		} else if cached != nil {
			return toSummaryDTO(cached, true), nil
		}
	}

	summary, err := h.assessmentRepo.Summary(ctx)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.SetSummary(ctx, &summary); err != nil {
			h.log.Debug("summary cache write failed", logger.Err(err))
		}
	}

	return toSummaryDTO(&summary, false), nil
}

func toSummaryDTO(s *risk.Summary, fromCache bool) *RiskSummaryDTO {
	return &RiskSummaryDTO{
		Total:                     s.Total,
		Green:                     s.Green,
		Yellow:                    s.Yellow,
		Red:                       s.Red,
		AverageDropoutProbability: s.AverageDropoutProbability,
		AtRisk:                    s.Yellow + s.Red,
		FromCache:                 fromCache,
		GeneratedAt:               time.Now().UTC(),
	}
}
