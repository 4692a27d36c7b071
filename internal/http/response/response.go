// Package response provides standardized HTTP error formatting for middleware that rejects requests before routing.
package response

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"time"

	"github.com/kouichiii/paper-manager/internal/errors"
)

// Envelope is the JSON error body shared by all failure responses.
type Envelope struct {
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	Details   []errors.FieldError `json:"details,omitempty"`
	Path      string              `json:"path"`
	Timestamp string              `json:"timestamp"`
}

// Error writes an error response with the given status code using json/v2.
func Error(w http.ResponseWriter, r *http.Request, status int, code, message string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	envelope := Envelope{
		Code:      code,
		Message:   message,
		Path:      r.URL.Path,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.MarshalWrite(w, envelope); err != nil {
		if logger != nil {
			logger.Error("Failed to encode error response", "error", err)
		}
	}
}

// TooManyRequests writes a 429 Too Many Requests response.
func TooManyRequests(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	Error(w, r, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many requests, slow down", logger)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	Error(w, r, http.StatusInternalServerError, string(errors.CodeInternal), "An unexpected error occurred", logger)
}
