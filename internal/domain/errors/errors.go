package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCursor      = errors.New("invalid cursor")
	ErrValidation         = errors.New("validation failed")
)

// Error codes surfaced to API callers
const (
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeBadRequest         = "BAD_REQUEST"
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidCursor      = "INVALID_CURSOR"
	CodeInternal           = "INTERNAL_ERROR"
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError represents application error with HTTP status
type AppError struct {
	Status  int          `json:"-"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"details,omitempty"`
	Err     error        `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeBadRequest, message, ErrBadRequest)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrConflict)
}

func InvalidCredentials() *AppError {
	return NewAppError(http.StatusUnauthorized, CodeInvalidCredentials, "Invalid Email or Password", ErrInvalidCredentials)
}

func InvalidCursor() *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidCursor, "cursor does not reference a visible item", ErrInvalidCursor)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternal, "internal server error", err)
}

// Validation builds a field-annotated validation error.
func Validation(fields ...FieldError) *AppError {
	e := NewAppError(http.StatusBadRequest, CodeValidation, "validation failed", ErrValidation)
	e.Fields = fields
	return e
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}

// FromError normalises any error into an AppError. Bare sentinels keep
// their meaning; anything unknown becomes an internal error.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return NotFound(err.Error())
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrTokenExpired):
		return Unauthorized(err.Error())
	case errors.Is(err, ErrForbidden):
		return Forbidden(err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return InvalidCredentials()
	case errors.Is(err, ErrInvalidCursor):
		return InvalidCursor()
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return Conflict(err.Error())
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrInvalidInput):
		return BadRequest(err.Error())
	}
	return InternalError(err)
}
