package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted as JSON or HTML depending on what the client accepts
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusCode)
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered in appropriate format for the client

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/datadash/internal/core"
	"github.com/JonMunkholm/datadash/internal/logging"
	"github.com/JonMunkholm/datadash/internal/web/templates"
)

var errRateLimited = errors.New("rate limit exceeded")

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`

	status int
}

// Render implements render.Renderer.
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.status)
	return nil
}

// statusFor picks the HTTP status for an error returned by the service.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUnsupportedFormat), errors.Is(err, core.ErrNoFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyAnalyses):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrChartUnavailable), errors.Is(err, core.ErrNoNumericColumns):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrEmptyFile), errors.Is(err, core.ErrNoEncoding),
		errors.Is(err, core.ErrParse), errors.Is(err, core.ErrSpreadsheet):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns an appropriate response
// based on the request type.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}

	if wantsJSON(r) {
		respondErrorJSON(w, r, userMsg, statusCode)
	} else {
		respondErrorHTML(w, r, userMsg, statusCode)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	_ = render.Render(w, r, &ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		status:  statusCode,
	})
}

// respondErrorHTML writes a full HTML error page.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := templates.ErrorPage(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error page", "error", err)
	}
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.HasSuffix(r.URL.Path, "/describe")
}
