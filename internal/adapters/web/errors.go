package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"stockmaster/internal/core"

	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONStatus writes a JSON response with an explicit status code.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps a service error onto the HTTP error vocabulary:
// rejected input 400, unknown or unowned records 404, business-rule
// conflicts 409, bad credentials 401, everything else 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *core.ValidationError
	var notFound *core.NotFoundError
	var conflict *core.ConflictError
	switch {
	case errors.As(err, &validation):
		writeError(w, r, validation.Msg, "BAD_REQUEST", http.StatusBadRequest)
	case errors.As(err, &notFound):
		writeError(w, r, notFound.Msg, "NOT_FOUND", http.StatusNotFound)
	case errors.As(err, &conflict):
		writeError(w, r, conflict.Msg, "CONFLICT", http.StatusConflict)
	case errors.Is(err, core.ErrInvalidCredentials):
		writeError(w, r, "invalid email or password", "UNAUTHORIZED", http.StatusUnauthorized)
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"request_id": requestIDFromContext(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
		}).Error("request failed")
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
