package command

import (
	"context"
	"time"

	"github.com/edusignal/student-risk-hub/internal/domain/academic"
	"github.com/edusignal/student-risk-hub/internal/domain/risk"
	"github.com/edusignal/student-risk-hub/internal/domain/shared"
	"github.com/edusignal/student-risk-hub/internal/domain/student"
	"github.com/edusignal/student-risk-hub/internal/ml"
)

// In-memory fakes shared by the command handler tests.

type fakeStudentRepo struct {
	students map[string]*student.Student
	terminal []*student.Student
	listErr  error
}

func newFakeStudentRepo(students ...*student.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: make(map[string]*student.Student)}
	for _, s := range students {
		repo.students[s.ID] = s
	}
	return repo
}

func (r *fakeStudentRepo) Create(_ context.Context, s *student.Student) error {
	if _, ok := r.students[s.ID]; ok {
		return shared.ErrStudentAlreadyExists
	}
	r.students[s.ID] = s
	return nil
}

func (r *fakeStudentRepo) GetByID(_ context.Context, id string) (*student.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return s, nil
}

func (r *fakeStudentRepo) GetByAdmissionNumber(_ context.Context, number student.AdmissionNumber) (*student.Student, error) {
	for _, s := range r.students {
		if s.AdmissionNumber == number {
			return s, nil
		}
	}
	return nil, shared.ErrStudentNotFound
}

func (r *fakeStudentRepo) Update(_ context.Context, s *student.Student) error {
	if _, ok := r.students[s.ID]; !ok {
		return shared.ErrStudentNotFound
	}
	r.students[s.ID] = s
	return nil
}

func (r *fakeStudentRepo) ListActive(_ context.Context, _ student.ListOptions) ([]*student.Student, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*student.Student
	for _, s := range r.students {
		if s.Status == student.StatusActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeStudentRepo) ListByStatus(_ context.Context, status student.Status, _ student.ListOptions) ([]*student.Student, error) {
	var out []*student.Student
	for _, s := range r.students {
		if s.Status == status {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeStudentRepo) ListTerminal(_ context.Context) ([]*student.Student, error) {
	return r.terminal, nil
}

func (r *fakeStudentRepo) Count(_ context.Context) (int, error) {
	return len(r.students), nil
}

type fakeHistoryRepo struct {
	attendance map[string][]academic.AttendanceRecord
	scores     map[string][]academic.ExamScoreRecord
	fees       map[string][]academic.FeeRecord

	// failFor forces a load error for specific student IDs.
	failFor map[string]error
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{
		attendance: make(map[string][]academic.AttendanceRecord),
		scores:     make(map[string][]academic.ExamScoreRecord),
		fees:       make(map[string][]academic.FeeRecord),
		failFor:    make(map[string]error),
	}
}

func (r *fakeHistoryRepo) AttendanceByStudent(_ context.Context, studentID string) ([]academic.AttendanceRecord, error) {
	if err := r.failFor[studentID]; err != nil {
		return nil, err
	}
	return r.attendance[studentID], nil
}

func (r *fakeHistoryRepo) ExamScoresByStudent(_ context.Context, studentID string) ([]academic.ExamScoreRecord, error) {
	if err := r.failFor[studentID]; err != nil {
		return nil, err
	}
	return r.scores[studentID], nil
}

func (r *fakeHistoryRepo) FeesByStudent(_ context.Context, studentID string) ([]academic.FeeRecord, error) {
	if err := r.failFor[studentID]; err != nil {
		return nil, err
	}
	return r.fees[studentID], nil
}

type fakeAssessmentRepo struct {
	saved   []*risk.Assessment
	batches [][]*risk.Assessment
	saveErr error
}

func (r *fakeAssessmentRepo) Save(_ context.Context, a *risk.Assessment) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, a)
	return nil
}

func (r *fakeAssessmentRepo) SaveBatch(_ context.Context, batch []*risk.Assessment) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.batches = append(r.batches, batch)
	r.saved = append(r.saved, batch...)
	return nil
}

func (r *fakeAssessmentRepo) GetByID(_ context.Context, id string) (*risk.Assessment, error) {
	for _, a := range r.saved {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, shared.ErrAssessmentNotFound
}

func (r *fakeAssessmentRepo) LatestByStudent(_ context.Context, studentID string) (*risk.Assessment, error) {
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].StudentID == studentID {
			return r.saved[i], nil
		}
	}
	return nil, shared.ErrAssessmentNotFound
}

func (r *fakeAssessmentRepo) List(_ context.Context, _ risk.ListFilter) ([]*risk.Assessment, error) {
	return r.saved, nil
}

func (r *fakeAssessmentRepo) Summary(_ context.Context) (risk.Summary, error) {
	return risk.Summary{Total: len(r.saved)}, nil
}

func (r *fakeAssessmentRepo) Delete(_ context.Context, _ string) error {
	return nil
}

// stubPredictor returns a fixed prediction.
type stubPredictor struct {
	prediction risk.MLPrediction
}

func (p *stubPredictor) Predict(_ risk.FeatureVector) risk.MLPrediction {
	return p.prediction
}

// neutralPredictor mimics an ensemble with no trained models.
type neutralPredictor struct{}

func (neutralPredictor) Predict(_ risk.FeatureVector) risk.MLPrediction {
	return risk.NeutralPrior()
}

type fakeCache struct {
	latest      map[string]*risk.Assessment
	invalidated int
	setErr      error
}

func newFakeCache() *fakeCache {
	return &fakeCache{latest: make(map[string]*risk.Assessment)}
}

func (c *fakeCache) SetLatest(_ context.Context, a *risk.Assessment) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.latest[a.StudentID] = a
	return nil
}

func (c *fakeCache) InvalidateSummary(_ context.Context) error {
	c.invalidated++
	return nil
}

type fakeTrainer struct {
	dataset    *ml.Dataset
	accuracies map[string]float64
	err        error
	calls      int
}

func (t *fakeTrainer) Train(ds *ml.Dataset) (map[string]float64, error) {
	t.calls++
	t.dataset = ds
	if t.err != nil {
		return nil, t.err
	}
	return t.accuracies, nil
}

// activeStudent builds a valid enrolled student for tests.
func activeStudent(id string, enrolled time.Time) *student.Student {
	return &student.Student{
		ID:              id,
		AdmissionNumber: student.AdmissionNumber("ADM-" + id),
		FirstName:       "Test",
		LastName:        "Student",
		Status:          student.StatusActive,
		EnrollmentDate:  enrolled,
	}
}
