package common

import (
	"errors"
	"net/http"
)

// AppError carries an error code and HTTP status alongside the cause.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

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

// NotFound builds a 404 AppError.
func NotFound(message string) *AppError {
	return NewAppError("NOT_FOUND", message, http.StatusNotFound, nil)
}

// BadRequest builds a 400 AppError.
func BadRequest(message string, err error) *AppError {
	return NewAppError("BAD_REQUEST", message, http.StatusBadRequest, err)
}

// IsAppError reports whether err wraps an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}
