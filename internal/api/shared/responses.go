package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/calvora/conduit/internal/redact"
)

// ErrorResponse is the error envelope every failing endpoint returns.
// Errors maps a field name (or "body" for non-field errors) to the messages
// raised against it.
type ErrorResponse struct {
	Errors map[string][]string `json:"errors"`
}

// NewErrorResponse builds an envelope carrying a single message under the
// given field.
func NewErrorResponse(field, message string) ErrorResponse {
	return ErrorResponse{Errors: map[string][]string{field: {message}}}
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithError writes an error envelope with the message filed under
// "body", the catch-all field for non-field errors.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	RespondWithFieldError(w, r, status, "body", message)
}

// RespondWithFieldError writes an error envelope attributing the message to
// a specific field.
func RespondWithFieldError(w http.ResponseWriter, r *http.Request, status int, field, message string) {
	traceID := GetTraceID(r.Context())

	slog.Debug("sending error response",
		"status_code", status,
		"field", field,
		"message", message,
		"trace_id", traceID,
		"path", r.URL.Path,
		"method", r.Method)

	RespondWithJSON(w, r, status, NewErrorResponse(field, message))
}

// RespondWithErrorAndLog writes an error envelope and logs the underlying
// error. The raw error never reaches the client, and its message is redacted
// before it reaches the logs.
//
// 5xx responses log at ERROR level, everything else at DEBUG.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
) {
	traceID := GetTraceID(r.Context())

	logAttrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}

	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	}

	slog.LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	RespondWithJSON(w, r, status, NewErrorResponse("body", userMessage))
}
