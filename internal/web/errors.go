package web

// errors.go provides unified error response handling for the web layer.
//
// Every batch-level failure is:
//   - Logged with full technical details and the request ID (server-side)
//   - Mapped via core.MapError to a coded, user-friendly message
//   - Returned as JSON {error, message, action, code}
//
// Row-level validation and commit errors are not errors at this layer; they
// travel inside normal 200/400 import responses.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
)

// statusClientClosedRequest is reported when the client went away mid-import.
const statusClientClosedRequest = 499

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the mapped user message with statusCode.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	writeJSON(w, statusCode, s.errorResponse(r, err, statusCode))
}

// errorResponse logs the technical error and returns its client-facing form.
// Errors with no known mapping (ERR000) are always logged at error level.
func (s *Server) errorResponse(r *http.Request, err error, statusCode int) ErrorResponse {
	ue := core.NewUserError(err)

	logger := logging.FromContext(r.Context())
	logArgs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", ue.Technical.Error(),
		"code", ue.User.Code,
	}
	if statusCode >= http.StatusInternalServerError || !core.IsUserFacing(err) {
		logger.Error("request error", logArgs...)
	} else {
		logger.Warn("request error", logArgs...)
	}

	return ErrorResponse{
		Error:   ue.Error(),
		Message: ue.User.Message,
		Action:  ue.User.Action,
		Code:    ue.User.Code,
	}
}

// statusFor picks the HTTP status for a batch-level service error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrTooManyRows):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(context.Background()).Error("json encode error", "error", err)
	}
}
