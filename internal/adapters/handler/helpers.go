package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/IANDYI/maternal-care-service/internal/adapters/middleware"
	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader echoes the trace ID of a request back to the client
const RequestIDHeader = "X-Request-ID"

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// generateRequestID generates a unique request ID for tracing
func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	return hex.EncodeToString(b)
}

// requestScope carries the trace ID and caller of one request and logs its
// completion with the structured fields every endpoint shares.
type requestScope struct {
	logger    *logrus.Logger
	r         *http.Request
	requestID string
	start     time.Time
	userID    uuid.UUID
	role      string
}

func newScope(logger *logrus.Logger, w http.ResponseWriter, r *http.Request) *requestScope {
	s := &requestScope{
		logger:    logger,
		r:         r,
		requestID: generateRequestID(),
		start:     time.Now(),
	}
	s.role, _ = middleware.GetRole(r.Context())
	if userID, err := middleware.GetUserUUID(r.Context()); err == nil {
		s.userID = userID
	}
	w.Header().Set(RequestIDHeader, s.requestID)
	return s
}

// authenticate resolves the caller's user ID, answering 401 when absent
func (s *requestScope) authenticate(w http.ResponseWriter) bool {
	if s.userID == uuid.Nil {
		s.reject(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	return true
}

func (s *requestScope) isAdmin() bool {
	return s.role == domain.RoleAdmin
}

func (s *requestScope) entry(status int) *logrus.Entry {
	fields := logrus.Fields{
		"request_id":  s.requestID,
		"role":        s.role,
		"method":      s.r.Method,
		"endpoint":    s.r.URL.Path,
		"status_code": status,
		"duration_ms": time.Since(s.start).Milliseconds(),
	}
	if s.userID != uuid.Nil {
		fields["user_id"] = s.userID.String()
	}
	return s.logger.WithFields(fields)
}

// respond writes a JSON body and logs the request
func (s *requestScope) respond(w http.ResponseWriter, status int, body interface{}) {
	writeJSON(w, status, body)
	s.entry(status).Info("request completed")
}

// noContent answers 204 and logs the request
func (s *requestScope) noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
	s.entry(http.StatusNoContent).Info("request completed")
}

// reject answers with an explicit client error
func (s *requestScope) reject(w http.ResponseWriter, status int, message string) {
	writeError(w, status, message)
	s.entry(status).WithField("reason", message).Info("request rejected")
}

// fail maps a service error to its status. Server errors are logged in full
// but never echoed to the client.
func (s *requestScope) fail(w http.ResponseWriter, err error) {
	status, message := errorResponse(err)
	writeError(w, status, message)
	entry := s.entry(status).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
		return
	}
	entry.Info("request rejected")
}

// errorResponse maps domain errors to an HTTP status and public message
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNoSymptomData):
		return http.StatusNotFound, domain.ErrNoSymptomData.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.ErrNotFound.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.ErrForbidden.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	// Headers are gone at this point; an encode failure can only be dropped
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// decodeJSON reads a bounded JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// targetUser resolves the optional user_id query parameter.
// Defaults to the caller.
func (s *requestScope) targetUser() (uuid.UUID, error) {
	raw := s.r.URL.Query().Get("user_id")
	if raw == "" {
		return s.userID, nil
	}
	return uuid.Parse(raw)
}
