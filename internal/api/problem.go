package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nhle/todo-tracker/internal/store"
	"github.com/nhle/todo-tracker/internal/validation"
)

const (
	contentTypeJSON    = "application/json; charset=utf-8"
	contentTypeProblem = "application/problem+json; charset=utf-8"

	problemTypeValidation = "https://tools.ietf.org/html/rfc4918#section-11.2"
	problemTypeHTTP       = "https://tools.ietf.org/html/rfc2616#section-10"
	problemTitle          = "An error occurred"
)

// Problem is an RFC 7807 error body.
type Problem struct {
	Type       string                 `json:"type"`
	Title      string                 `json:"title"`
	Status     int                    `json:"status"`
	Detail     string                 `json:"detail"`
	Violations []validation.Violation `json:"violations,omitempty"`
}

// badRequestError marks a request that could not be decoded at all.
type badRequestError struct {
	detail string
}

func (e *badRequestError) Error() string { return e.detail }

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", contentTypeProblem)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func httpProblem(status int, detail string) Problem {
	return Problem{
		Type:   problemTypeHTTP,
		Title:  problemTitle,
		Status: status,
		Detail: detail,
	}
}

func violationProblem(violations validation.Violations) Problem {
	return Problem{
		Type:       problemTypeValidation,
		Title:      problemTitle,
		Status:     http.StatusUnprocessableEntity,
		Detail:     violations.Error(),
		Violations: violations,
	}
}

func notFound(w http.ResponseWriter) {
	writeProblem(w, httpProblem(http.StatusNotFound, "Not Found"))
}

// writeError maps err onto the HTTP error taxonomy. Enum failures are
// checked first so they take precedence over every other rendering.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if diag, ok := interceptEnumError(err); ok {
		s.logRequestError(r, diag.Status, err)
		writeJSON(w, diag.Status, diag)
		return
	}

	var violations validation.Violations
	var badRequest *badRequestError
	switch {
	case errors.As(err, &violations):
		s.logRequestError(r, http.StatusUnprocessableEntity, err)
		writeProblem(w, violationProblem(violations))
	case errors.Is(err, store.ErrNotFound):
		notFound(w)
	case errors.As(err, &badRequest):
		s.logRequestError(r, http.StatusBadRequest, err)
		writeProblem(w, httpProblem(http.StatusBadRequest, badRequest.detail))
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeProblem(w, httpProblem(http.StatusInternalServerError, "Internal Server Error"))
	}
}

func (s *Server) logRequestError(r *http.Request, status int, err error) {
	s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
}
