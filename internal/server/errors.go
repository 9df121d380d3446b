package server

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIError is the JSON error body returned by every endpoint.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

// Render implements render.Renderer.
func (e *APIError) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func newAPIError(status int, code, msg string, details any) *APIError {
	return &APIError{StatusCode: status, ErrorCode: code, Message: msg, Details: details}
}

func errInvalidRequest(err error) *APIError {
	return newAPIError(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
}

func errTooLarge() *APIError {
	return newAPIError(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
}

func errEmptyExport(msg string) *APIError {
	return newAPIError(http.StatusUnprocessableEntity, "EMPTY_EXPORT", msg, nil)
}

func errExportFailed() *APIError {
	return newAPIError(http.StatusInternalServerError, "EXPORT_FAILED", "Failed to build the workbook, please retry", nil)
}
