package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeNetwork      ErrorCode = "NETWORK_ERROR"
	ErrCodeServer       ErrorCode = "SERVER_ERROR"
	ErrCodeBusy         ErrorCode = "BUSY"
	ErrCodeCancelled    ErrorCode = "CANCELLED"
)

// AppError represents an application error as seen by the site and its clients
type AppError struct {
	Code    ErrorCode
	Message string
	Fields  map[string]string // per-field messages for validation failures
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an AppError
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation creates a validation error carrying per-field messages
func Validation(message string, fields map[string]string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Fields:  fields,
	}
}

// CodeOf returns the code of the first AppError in err's chain, or ErrCodeServer
// for any other non-nil error.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeServer
}

// IsValidation checks if error is a validation failure
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

// IsUnauthorized checks if error is Unauthorized
func IsUnauthorized(err error) bool {
	return hasCode(err, ErrCodeUnauthorized)
}

// IsNotFound checks if error is NotFound
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsNetwork checks if error is a transport failure
func IsNetwork(err error) bool {
	return hasCode(err, ErrCodeNetwork)
}

// IsBusy checks if error was caused by a submission already in flight
func IsBusy(err error) bool {
	return hasCode(err, ErrCodeBusy)
}

func hasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
