package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusignal/student-risk-hub/internal/domain/risk"
	"github.com/edusignal/student-risk-hub/internal/domain/shared"
	"github.com/edusignal/student-risk-hub/internal/domain/student"
	"github.com/edusignal/student-risk-hub/pkg/logger"
)

type stubStudentRepo struct {
	students map[string]*student.Student
}

func (r *stubStudentRepo) Create(context.Context, *student.Student) error { return nil }
func (r *stubStudentRepo) Update(context.Context, *student.Student) error { return nil }
func (r *stubStudentRepo) Count(context.Context) (int, error)             { return len(r.students), nil }

func (r *stubStudentRepo) GetByID(_ context.Context, id string) (*student.Student, error) {
	if s, ok := r.students[id]; ok {
		return s, nil
	}
	return nil, shared.ErrStudentNotFound
}

func (r *stubStudentRepo) GetByAdmissionNumber(context.Context, student.AdmissionNumber) (*student.Student, error) {
	return nil, shared.ErrStudentNotFound
}

func (r *stubStudentRepo) ListActive(context.Context, student.ListOptions) ([]*student.Student, error) {
	return nil, nil
}

func (r *stubStudentRepo) ListByStatus(context.Context, student.Status, student.ListOptions) ([]*student.Student, error) {
	return nil, nil
}

func (r *stubStudentRepo) ListTerminal(context.Context) ([]*student.Student, error) {
	return nil, nil
}

type stubAssessmentRepo struct {
	latest      map[string]*risk.Assessment
	list        []*risk.Assessment
	lastFilter  risk.ListFilter
	summary     risk.Summary
	summaryHits int
}

func (r *stubAssessmentRepo) Save(context.Context, *risk.Assessment) error        { return nil }
func (r *stubAssessmentRepo) SaveBatch(context.Context, []*risk.Assessment) error { return nil }
func (r *stubAssessmentRepo) Delete(context.Context, string) error                { return nil }

func (r *stubAssessmentRepo) GetByID(_ context.Context, id string) (*risk.Assessment, error) {
	return nil, shared.ErrAssessmentNotFound
}

func (r *stubAssessmentRepo) LatestByStudent(_ context.Context, studentID string) (*risk.Assessment, error) {
	if a, ok := r.latest[studentID]; ok {
		return a, nil
	}
	return nil, shared.ErrAssessmentNotFound
}

func (r *stubAssessmentRepo) List(_ context.Context, filter risk.ListFilter) ([]*risk.Assessment, error) {
	r.lastFilter = filter
	return r.list, nil
}

func (r *stubAssessmentRepo) Summary(context.Context) (risk.Summary, error) {
	r.summaryHits++
	return r.summary, nil
}

type stubReadCache struct {
	latest    map[string]*risk.Assessment
	summary   *risk.Summary
	setCalls  int
	readErr   error
}

func (c *stubReadCache) GetLatest(_ context.Context, studentID string) (*risk.Assessment, error) {
	if c.readErr != nil {
		return nil, c.readErr
	}
	return c.latest[studentID], nil
}

func (c *stubReadCache) GetSummary(context.Context) (*risk.Summary, error) {
	if c.readErr != nil {
		return nil, c.readErr
	}
	return c.summary, nil
}

func (c *stubReadCache) SetSummary(_ context.Context, s *risk.Summary) error {
	c.setCalls++
	c.summary = s
	return nil
}

func sampleAssessment(studentID string) *risk.Assessment {
	return &risk.Assessment{
		ID:             "a-" + studentID,
		StudentID:      studentID,
		AssessmentDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		RuleProfile:    risk.RuleRiskProfile{Overall: risk.LevelYellow},
	}
}

func TestGetRiskProfileServedFromCache(t *testing.T) {
	s := &student.Student{ID: "stu-1", AdmissionNumber: "ADM-1", FirstName: "Aruzhan", LastName: "Seitova", Status: student.StatusActive}
	cached := sampleAssessment("stu-1")

	h := NewGetRiskProfileHandler(
		&stubStudentRepo{students: map[string]*student.Student{"stu-1": s}},
		&stubAssessmentRepo{},
		&stubReadCache{latest: map[string]*risk.Assessment{"stu-1": cached}},
		logger.Discard(),
	)

	dto, err := h.Handle(context.Background(), GetRiskProfileQuery{StudentID: "stu-1"})
	require.NoError(t, err)
	assert.True(t, dto.FromCache)
	assert.Same(t, cached, dto.Assessment)
	assert.Equal(t, "Aruzhan Seitova", dto.FullName)
}

func TestGetRiskProfileFallsBackToRepository(t *testing.T) {
	s := &student.Student{ID: "stu-1", AdmissionNumber: "ADM-1", Status: student.StatusActive}
	stored := sampleAssessment("stu-1")

	h := NewGetRiskProfileHandler(
		&stubStudentRepo{students: map[string]*student.Student{"stu-1": s}},
		&stubAssessmentRepo{latest: map[string]*risk.Assessment{"stu-1": stored}},
		&stubReadCache{readErr: assert.AnError},
		logger.Discard(),
	)

	dto, err := h.Handle(context.Background(), GetRiskProfileQuery{StudentID: "stu-1"})
	require.NoError(t, err)
	assert.False(t, dto.FromCache)
	assert.Same(t, stored, dto.Assessment)
}

func TestGetRiskProfileNeverAssessed(t *testing.T) {
	s := &student.Student{ID: "stu-1", AdmissionNumber: "ADM-1", Status: student.StatusActive}

	h := NewGetRiskProfileHandler(
		&stubStudentRepo{students: map[string]*student.Student{"stu-1": s}},
		&stubAssessmentRepo{},
		nil,
		logger.Discard(),
	)

	dto, err := h.Handle(context.Background(), GetRiskProfileQuery{StudentID: "stu-1"})
	require.NoError(t, err)
	assert.Nil(t, dto.Assessment)
}

func TestGetRiskProfileUnknownStudent(t *testing.T) {
	h := NewGetRiskProfileHandler(&stubStudentRepo{}, &stubAssessmentRepo{}, nil, logger.Discard())

	_, err := h.Handle(context.Background(), GetRiskProfileQuery{StudentID: "ghost"})
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

func TestGetRiskSummaryCacheAside(t *testing.T) {
	repo := &stubAssessmentRepo{summary: risk.Summary{Total: 10, Green: 6, Yellow: 3, Red: 1, AverageDropoutProbability: 0.31}}
	cache := &stubReadCache{}
	h := NewGetRiskSummaryHandler(repo, cache, logger.Discard())

	// Miss: compute from Postgres and populate the cache.
	dto, err := h.Handle(context.Background(), GetRiskSummaryQuery{})
	require.NoError(t, err)
	assert.False(t, dto.FromCache)
	assert.Equal(t, 10, dto.Total)
	assert.Equal(t, 4, dto.AtRisk)
	assert.Equal(t, 1, repo.summaryHits)
	assert.Equal(t, 1, cache.setCalls)

	// Hit: served from the cache without touching Postgres again.
	dto, err = h.Handle(context.Background(), GetRiskSummaryQuery{})
	require.NoError(t, err)
	assert.True(t, dto.FromCache)
	assert.Equal(t, 1, repo.summaryHits)
}

func TestListAssessmentsFilterMapping(t *testing.T) {
	repo := &stubAssessmentRepo{list: []*risk.Assessment{sampleAssessment("stu-1")}}
	h := NewListAssessmentsHandler(repo, logger.Discard())

	result, err := h.Handle(context.Background(), ListAssessmentsQuery{
		StudentID: "stu-1",
		Level:     "yellow",
		Limit:     25,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Count)
	assert.Equal(t, "stu-1", repo.lastFilter.StudentID)
	require.NotNil(t, repo.lastFilter.OverallLevel)
	assert.Equal(t, risk.LevelYellow, *repo.lastFilter.OverallLevel)
	assert.Equal(t, 25, repo.lastFilter.Limit)
}

func TestListAssessmentsValidation(t *testing.T) {
	h := NewListAssessmentsHandler(&stubAssessmentRepo{}, logger.Discard())

	cases := []ListAssessmentsQuery{
		{Limit: -1},
		{Offset: -5},
		{Level: "purple"},
		{From: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), To: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, q := range cases {
		_, err := h.Handle(context.Background(), q)
		assert.Error(t, err)
	}
}

func TestListAssessmentsDefaultsAndCap(t *testing.T) {
	repo := &stubAssessmentRepo{}
	h := NewListAssessmentsHandler(repo, logger.Discard())

	_, err := h.Handle(context.Background(), ListAssessmentsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 50, repo.lastFilter.Limit)

	_, err = h.Handle(context.Background(), ListAssessmentsQuery{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 200, repo.lastFilter.Limit)
}
