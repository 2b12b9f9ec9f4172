package common

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// CodeTimeout is returned when a request deadline expires mid-build.
const CodeTimeout = "TIMEOUT"

// ErrorBody is the error payload returned by the API.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes v to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError renders {"error": {...}} with the given status.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// ErrorResponse maps err onto a status and body. Errors that are neither
// AppErrors nor expired deadlines become a 500 carrying fallback, so internal
// causes never reach the client.
func ErrorResponse(err error, fallback string) (int, ErrorBody) {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusBadRequest
		}
		code := appErr.Code
		if code == "" {
			code = CodeInvalidParameter
		}
		return status, ErrorBody{Code: code, Message: appErr.Message, Details: appErr.Details}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorBody{Code: CodeTimeout, Message: "request timed out"}
	default:
		return http.StatusInternalServerError, ErrorBody{Code: CodeInternal, Message: fallback}
	}
}
