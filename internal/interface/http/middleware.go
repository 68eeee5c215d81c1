package http

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/edusignal/student-risk-hub/internal/domain/user"
	"github.com/edusignal/student-risk-hub/pkg/logger"
)

// errAuthFailed is deliberately generic: auth failures never reveal
// whether the account exists.
var errAuthFailed = errors.New("authentication failed")

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE CHAIN
// ══════════════════════════════════════════════════════════════════════════════

// buildMiddlewareChain wraps the router with all middleware.
func (s *Server) buildMiddlewareChain(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last middleware wraps first)
	h := handler
	h = s.loggingMiddleware(h)
	h = s.recoveryMiddleware(h)
	return h
}

// loggingMiddleware logs all HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.log.Info("http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", rw.statusCode),
			logger.Int64("duration_ms", time.Since(start).Milliseconds()))
	})
}

// recoveryMiddleware recovers from panics and returns 500.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error("panic recovered",
					logger.String("path", r.URL.Path),
					logger.String("stack", string(debug.Stack())))
				writeJSONError(w, http.StatusInternalServerError, "internal_server_error", "an unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION
// Two caller kinds: services authenticate with a configured bearer
// token and bypass role checks; staff authenticate with Basic auth
// against the users table and are subject to role checks.
// ══════════════════════════════════════════════════════════════════════════════

type contextKey string

const contextKeyUser contextKey = "authenticated_user"

// roleCheck gates an endpoint on the authenticated user's role.
// A nil check means any authenticated caller may proceed.
type roleCheck func(role user.Role) bool

func canAssess(role user.Role) bool       { return role.CanTriggerAssessment() }
func canManageModels(role user.Role) bool { return role.CanManageModels() }
func adminOnly(role user.Role) bool       { return role == user.RoleAdmin }

// requireAuth wraps a handler with authentication and an optional role
// check.
func (s *Server) requireAuth(next http.HandlerFunc, check roleCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		switch {
		case strings.HasPrefix(header, "Bearer "):
			token := strings.TrimPrefix(header, "Bearer ")
			if !s.validAPIToken(token) {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid API token")
				return
			}
			next(w, r)

		case strings.HasPrefix(header, "Basic "):
			u, err := s.authenticateBasic(r.Context(), header)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
				return
			}
			if check != nil && !check(u.Role) {
				writeJSONError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), contextKeyUser, u)))

		default:
			w.Header().Set("WWW-Authenticate", `Basic realm="student-risk-hub"`)
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		}
	}
}

// validAPIToken checks a bearer token against the configured set in
// constant time.
func (s *Server) validAPIToken(token string) bool {
	for _, t := range s.config.APITokens {
		if len(t) == len(token) && subtle.ConstantTimeCompare([]byte(t), []byte(token)) == 1 {
			return true
		}
	}
	return false
}

// authenticateBasic verifies Basic auth credentials against the users
// table.
func (s *Server) authenticateBasic(ctx context.Context, header string) (*user.User, error) {
	if s.deps.UserRepo == nil {
		return nil, errAuthFailed
	}

	payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "Basic "))
	if err != nil {
		return nil, err
	}

	email, password, ok := strings.Cut(string(payload), ":")
	if !ok {
		return nil, errAuthFailed
	}

	u, err := s.deps.UserRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, errAuthFailed
	}
	if err := u.CheckPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// authenticatedUser returns the user attached by requireAuth, if any.
func authenticatedUser(ctx context.Context) *user.User {
	u, _ := ctx.Value(contextKeyUser).(*user.User)
	return u
}
