// Package http implements the REST API for the Student Risk Hub. It
// exposes risk profiles and summaries to dashboards, lets staff trigger
// assessments and retraining, and ingests the attendance, exam and fee
// records the feature extractor feeds on.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/edusignal/student-risk-hub/internal/application/command"
	"github.com/edusignal/student-risk-hub/internal/application/query"
	"github.com/edusignal/student-risk-hub/internal/domain/academic"
	"github.com/edusignal/student-risk-hub/internal/domain/risk"
	"github.com/edusignal/student-risk-hub/internal/domain/shared"
	"github.com/edusignal/student-risk-hub/internal/domain/student"
	"github.com/edusignal/student-risk-hub/internal/domain/user"
	"github.com/edusignal/student-risk-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Host - address to bind (default: "0.0.0.0").
	Host string

	// Port - port to listen on (default: 8080).
	Port int

	// ReadTimeout - maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout - maximum duration for writing the response.
	WriteTimeout time.Duration

	// IdleTimeout - maximum duration for idle connections.
	IdleTimeout time.Duration

	// MaxHeaderBytes - maximum size of request headers.
	MaxHeaderBytes int

	// APITokens - bearer tokens for service-to-service access.
	// Token callers bypass role checks.
	APITokens []string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}
}

// Address returns the server address string.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Dependencies contains all dependencies required by HTTP handlers.
type Dependencies struct {
	// Command handlers (CQRS write side)
	AssessStudentHandler *command.AssessStudentHandler
	AssessBatchHandler   *command.AssessBatchHandler
	TrainModelsHandler   *command.TrainModelsHandler

	// Query handlers (CQRS read side)
	GetRiskProfileHandler  *query.GetRiskProfileHandler
	GetRiskSummaryHandler  *query.GetRiskSummaryHandler
	ListAssessmentsHandler *query.ListAssessmentsHandler

	// Repositories for the plain CRUD surface
	StudentRepo    student.Repository
	AssessmentRepo risk.Repository
	UserRepo       user.Repository
	Recorder       academic.Recorder

	// HealthChecker reports dependency health for /health and /ready.
	HealthChecker HealthChecker

	// Logger
	Logger *logger.Logger
}

// HealthChecker reports whether the server's dependencies are usable.
type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
}

// HealthStatus is the aggregate health of the service.
type HealthStatus struct {
	Healthy    bool              `json:"healthy"`
	Components map[string]string `json:"components,omitempty"`
	CheckedAt  time.Time         `json:"checked_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server represents the HTTP server.
type Server struct {
	config     Config
	deps       Dependencies
	httpServer *http.Server
	router     *http.ServeMux
	log        *logger.Logger

	mu        sync.RWMutex
	running   bool
	startedAt time.Time
}

// NewServer creates a new HTTP server with the given configuration and
// dependencies.
func NewServer(config Config, deps Dependencies) *Server {
	s := &Server{
		config: config,
		deps:   deps,
		router: http.NewServeMux(),
		log:    deps.Logger,
	}

	if s.log == nil {
		s.log = logger.Discard()
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           config.Address(),
		Handler:        s.buildMiddlewareChain(s.router),
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		IdleTimeout:    config.IdleTimeout,
		MaxHeaderBytes: config.MaxHeaderBytes,
	}

	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Health & status
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /healthz", s.handleHealth) // Kubernetes alias
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /live", s.handleLive)
	s.router.HandleFunc("GET /", s.handleRoot)

	// ─────────────────────────────────────────────────────────────────────────
	// Auth
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	// ─────────────────────────────────────────────────────────────────────────
	// Students and history ingestion
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("POST /api/v1/students", s.requireAuth(s.handleCreateStudent, nil))
	s.router.HandleFunc("GET /api/v1/students/{id}/risk", s.handleGetRiskProfile)
	s.router.HandleFunc("POST /api/v1/students/{id}/status", s.requireAuth(s.handleSetStudentStatus, nil))
	s.router.HandleFunc("POST /api/v1/students/{id}/attendance", s.requireAuth(s.handleRecordAttendance, nil))
	s.router.HandleFunc("POST /api/v1/students/{id}/exams", s.requireAuth(s.handleRecordExamScore, nil))
	s.router.HandleFunc("POST /api/v1/students/{id}/fees", s.requireAuth(s.handleRecordFee, nil))

	// ─────────────────────────────────────────────────────────────────────────
	// Assessments
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /api/v1/assessments", s.handleListAssessments)
	s.router.HandleFunc("GET /api/v1/assessments/summary", s.handleGetSummary)
	s.router.HandleFunc("DELETE /api/v1/assessments/{id}", s.requireAuth(s.handleDeleteAssessment, adminOnly))
	s.router.HandleFunc("POST /api/v1/assessments/assess", s.requireAuth(s.handleAssessStudent, canAssess))
	s.router.HandleFunc("POST /api/v1/assessments/assess-batch", s.requireAuth(s.handleAssessBatch, canAssess))

	// ─────────────────────────────────────────────────────────────────────────
	// Models
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("POST /api/v1/models/train", s.requireAuth(s.handleTrainModels, canManageModels))
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.log.Info("starting HTTP server", logger.String("address", s.config.Address()))

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Uptime returns the server uptime.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startedAt)
}

// Address returns the server address.
func (s *Server) Address() string {
	return s.config.Address()
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// JSONResponse represents a standard JSON response.
type JSONResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(JSONResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// writeJSONError writes an error JSON response.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(JSONResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
	})
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case shared.IsAlreadyExists(err):
		writeJSONError(w, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, shared.ErrMissingData):
		writeJSONError(w, http.StatusUnprocessableEntity, "missing_data", err.Error())
	case errors.Is(err, shared.ErrTrainingDataEmpty):
		writeJSONError(w, http.StatusUnprocessableEntity, "training_data_insufficient", err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
	}
}

// decodeJSON decodes a request body, limiting its size.
func decodeJSON(r *http.Request, dest interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}
