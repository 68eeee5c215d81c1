package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edusignal/student-risk-hub/internal/application/command"
	"github.com/edusignal/student-risk-hub/internal/application/query"
	"github.com/edusignal/student-risk-hub/internal/domain/academic"
	"github.com/edusignal/student-risk-hub/internal/domain/student"
	"github.com/edusignal/student-risk-hub/pkg/logger"
	"github.com/edusignal/student-risk-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":    "Student Risk Hub API",
		"version": "v1",
		"endpoints": map[string]string{
			"health":       "/health",
			"risk_profile": "/api/v1/students/{id}/risk",
			"assessments":  "/api/v1/assessments",
			"summary":      "/api/v1/assessments/summary",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"uptime": s.Uptime().String(),
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDTO struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// handleLogin handles POST /api/v1/auth/login.
// It verifies credentials; clients keep using Basic auth afterwards.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.deps.UserRepo == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "user accounts not configured")
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	u, err := s.deps.UserRepo.GetByEmail(r.Context(), req.Email)
	if err != nil || !u.Active || u.CheckPassword(req.Password) != nil {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, userDTO{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     string(u.Role),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type createStudentRequest struct {
	AdmissionNumber string `json:"admission_number"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	ClassName       string `json:"class_name"`
	Section         string `json:"section"`
	AcademicYear    string `json:"academic_year"`
	EnrollmentDate  string `json:"enrollment_date,omitempty"` // YYYY-MM-DD
	GuardianName    string `json:"guardian_name,omitempty"`
	GuardianPhone   string `json:"guardian_phone,omitempty"`
}

// handleCreateStudent handles POST /api/v1/students.
func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	var enrolled time.Time
	if req.EnrollmentDate != "" {
		var err error
		enrolled, err = timeutil.ParseDate(req.EnrollmentDate)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "enrollment_date must be YYYY-MM-DD")
			return
		}
	}

	st, err := student.NewStudent(student.NewStudentParams{
		ID:              uuid.NewString(),
		AdmissionNumber: student.AdmissionNumber(req.AdmissionNumber),
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		ClassName:       req.ClassName,
		AcademicYear:    req.AcademicYear,
		EnrollmentDate:  enrolled,
	})
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	st.Section = req.Section
	st.GuardianName = req.GuardianName
	st.GuardianPhone = req.GuardianPhone

	if err := s.deps.StudentRepo.Create(r.Context(), st); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, st)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// handleSetStudentStatus handles POST /api/v1/students/{id}/status.
// Terminal transitions (graduated, dropped_out) become the labeled
// outcomes later training runs learn from.
func (s *Server) handleSetStudentStatus(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")

	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	st, err := s.deps.StudentRepo.GetByID(r.Context(), studentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	switch student.Status(strings.ToLower(req.Status)) {
	case student.StatusGraduated:
		err = st.MarkGraduated()
	case student.StatusDroppedOut:
		err = st.MarkDroppedOut()
	case student.StatusSuspended:
		err = st.Suspend()
	case student.StatusActive:
		err = st.Reinstate()
	default:
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "unknown status")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusConflict, "invalid_transition", err.Error())
		return
	}

	if err := s.deps.StudentRepo.Update(r.Context(), st); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, st)
}

// handleGetRiskProfile handles GET /api/v1/students/{id}/risk.
func (s *Server) handleGetRiskProfile(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetRiskProfileHandler.Handle(r.Context(), query.GetRiskProfileQuery{
		StudentID: r.PathValue("id"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// HISTORY INGESTION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type attendanceRequest struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Subject string `json:"subject,omitempty"`
	Present bool   `json:"present"`
	Remarks string `json:"remarks,omitempty"`
}

// handleRecordAttendance handles POST /api/v1/students/{id}/attendance.
func (s *Server) handleRecordAttendance(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
		return
	}

	rec := academic.AttendanceRecord{
		StudentID: r.PathValue("id"),
		Date:      date,
		Subject:   req.Subject,
		Present:   req.Present,
		Remarks:   req.Remarks,
	}
	if err := s.deps.Recorder.RecordAttendance(r.Context(), rec); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

type examScoreRequest struct {
	ExamName      string  `json:"exam_name"`
	ExamType      string  `json:"exam_type"`
	Subject       string  `json:"subject,omitempty"`
	ExamDate      string  `json:"exam_date,omitempty"` // YYYY-MM-DD
	MarksObtained float64 `json:"marks_obtained"`
	TotalMarks    float64 `json:"total_marks"`
}

// handleRecordExamScore handles POST /api/v1/students/{id}/exams.
func (s *Server) handleRecordExamScore(w http.ResponseWriter, r *http.Request) {
	var req examScoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	if req.TotalMarks <= 0 || req.MarksObtained < 0 || req.MarksObtained > req.TotalMarks {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "marks out of range")
		return
	}

	var examDate time.Time
	if req.ExamDate != "" {
		var err error
		examDate, err = timeutil.ParseDate(req.ExamDate)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "exam_date must be YYYY-MM-DD")
			return
		}
	}

	rec := academic.ExamScoreRecord{
		StudentID:     r.PathValue("id"),
		ExamName:      req.ExamName,
		ExamType:      academic.ExamType(req.ExamType),
		Subject:       req.Subject,
		ExamDate:      examDate,
		MarksObtained: req.MarksObtained,
		TotalMarks:    req.TotalMarks,
	}
	if err := s.deps.Recorder.RecordExamScore(r.Context(), rec); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

type feeRequest struct {
	FeeType    string  `json:"fee_type"`
	AmountDue  float64 `json:"amount_due"`
	AmountPaid float64 `json:"amount_paid"`
	DueDate    string  `json:"due_date,omitempty"` // YYYY-MM-DD
	Status     string  `json:"status"`
	Overdue    bool    `json:"overdue"`
}

// handleRecordFee handles POST /api/v1/students/{id}/fees.
func (s *Server) handleRecordFee(w http.ResponseWriter, r *http.Request) {
	var req feeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	var dueDate time.Time
	if req.DueDate != "" {
		var err error
		dueDate, err = timeutil.ParseDate(req.DueDate)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "due_date must be YYYY-MM-DD")
			return
		}
	}

	rec := academic.FeeRecord{
		StudentID:  r.PathValue("id"),
		FeeType:    req.FeeType,
		AmountDue:  req.AmountDue,
		AmountPaid: req.AmountPaid,
		DueDate:    dueDate,
		Status:     academic.FeeStatus(req.Status),
		Overdue:    req.Overdue,
	}
	if err := s.deps.Recorder.RecordFee(r.Context(), rec); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// ══════════════════════════════════════════════════════════════════════════════
// ASSESSMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListAssessments handles GET /api/v1/assessments.
func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	q := query.ListAssessmentsQuery{
		StudentID: getQueryParam(r, "student_id", ""),
		Level:     getQueryParam(r, "level", ""),
		Limit:     getQueryParamInt(r, "limit", 0),
		Offset:    getQueryParamInt(r, "offset", 0),
	}

	if from := getQueryParam(r, "from", ""); from != "" {
		t, err := timeutil.ParseDate(from)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "from must be YYYY-MM-DD")
			return
		}
		q.From = t
	}
	if to := getQueryParam(r, "to", ""); to != "" {
		t, err := timeutil.ParseDate(to)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "to must be YYYY-MM-DD")
			return
		}
		q.To = t
	}

	result, err := s.deps.ListAssessmentsHandler.Handle(r.Context(), q)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetSummary handles GET /api/v1/assessments/summary.
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetRiskSummaryHandler.Handle(r.Context(), query.GetRiskSummaryQuery{})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleDeleteAssessment handles DELETE /api/v1/assessments/{id}.
func (s *Server) handleDeleteAssessment(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.AssessmentRepo.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type assessRequest struct {
	StudentID string `json:"student_id"`
}

// handleAssessStudent handles POST /api/v1/assessments/assess.
func (s *Server) handleAssessStudent(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	result, err := s.deps.AssessStudentHandler.Handle(r.Context(), command.AssessStudentCommand{
		StudentID:  req.StudentID,
		AssessedBy: callerName(r),
	})
	if err != nil {
		s.log.Error("assessment failed", logger.StudentID(req.StudentID), logger.Err(err))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result.Assessment)
}

type assessBatchRequest struct {
	StudentIDs []string `json:"student_ids,omitempty"`
	All        bool     `json:"all,omitempty"`
}

// handleAssessBatch handles POST /api/v1/assessments/assess-batch.
func (s *Server) handleAssessBatch(w http.ResponseWriter, r *http.Request) {
	var req assessBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	result, err := s.deps.AssessBatchHandler.Handle(r.Context(), command.AssessBatchCommand{
		StudentIDs: req.StudentIDs,
		All:        req.All,
		AssessedBy: callerName(r),
	})
	if err != nil {
		s.log.Error("batch assessment failed", logger.Err(err))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// MODEL HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleTrainModels handles POST /api/v1/models/train.
func (s *Server) handleTrainModels(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.TrainModelsHandler.Handle(r.Context(), command.TrainModelsCommand{
		RequestedBy: callerName(r),
	})
	if err != nil {
		s.log.Error("model training failed", logger.Err(err))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// callerName identifies who triggered a command, for audit logs.
func callerName(r *http.Request) string {
	if u := authenticatedUser(r.Context()); u != nil {
		return u.Email
	}
	return "api"
}

// getQueryParam extracts a query parameter with a default value.
func getQueryParam(r *http.Request, key, defaultValue string) string {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getQueryParamInt extracts an integer query parameter with a default value.
func getQueryParamInt(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	var result int
	if _, err := fmt.Sscanf(value, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}
