// Package respond provides utilities for sending HTTP responses in JSON format.
// It includes error handling with sanitization to prevent leaking sensitive information.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"link-preview/internal/usecase/preview"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	// Detail carries the sanitized internal error and is only set when
	// detail exposure is enabled (development mode).
	Detail string `json:"detail,omitempty"`
	// RetryAfter is set on rate limit responses, in seconds.
	RetryAfter int `json:"retryAfter,omitempty"`
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Log the error but cannot send error response as headers already sent
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes {"error": message, "field": field}. field may be empty.
func Error(w http.ResponseWriter, code int, message, field string) {
	JSON(w, code, ErrorBody{Error: message, Field: field})
}

// Failure maps err to a status with preview.StatusFor and writes the error
// body. Only client-safe messages are sent. 5xx errors are logged with
// secrets masked; with exposeDetail the masked error text is also returned.
func Failure(w http.ResponseWriter, logger *slog.Logger, err error, exposeDetail bool) {
	if err == nil {
		return
	}

	status, message, field := preview.StatusFor(err)
	body := ErrorBody{Error: message, Field: field}

	if status >= http.StatusInternalServerError {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("internal server error",
			slog.Int("code", status),
			slog.String("error", SanitizeError(err)))
		if exposeDetail {
			body.Detail = SanitizeError(err)
		}
	}

	JSON(w, status, body)
}
