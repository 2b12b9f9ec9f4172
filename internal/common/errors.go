package common

import (
	"errors"
	"net/http"
)

// Canonical error codes surfaced to API clients.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidParameter   = "INVALID_PARAMETER"
	CodeCatalogUnavailable = "CATALOG_UNAVAILABLE"
	CodeInternal           = "INTERNAL"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// NotFound reports a referenced record that does not exist or is filtered out.
func NotFound(message string, err error, details any) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, HTTPStatus: http.StatusNotFound, Err: err, Details: details}
}

// InvalidParameter reports input that cannot be resolved against stored data.
func InvalidParameter(message string, err error, details any) *AppError {
	return &AppError{Code: CodeInvalidParameter, Message: message, HTTPStatus: http.StatusBadRequest, Err: err, Details: details}
}

// Unavailable reports a failing upstream dependency.
func Unavailable(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: http.StatusServiceUnavailable, Err: err}
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var target *AppError
	return errors.As(err, &target) && target.Code == code
}
