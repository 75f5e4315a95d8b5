package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	goa "goa.design/goa/v3/pkg"
	"go.uber.org/zap"

	apperrors "stadtwache/pkg/errors"
)

// Error names carried in the JSON error body
const (
	NameBadRequest      = "bad_request"
	NameUnauthorized    = "unauthorized"
	NameNotFound        = "not_found"
	NameValidation      = "validation_error"
	NameTooLarge        = "payload_too_large"
	NameTooManyRequests = "too_many_requests"
	NameInternal        = "internal_error"
)

var statusByName = map[string]int{
	NameBadRequest:      http.StatusBadRequest,
	NameUnauthorized:    http.StatusUnauthorized,
	NameNotFound:        http.StatusNotFound,
	NameValidation:      http.StatusUnprocessableEntity,
	NameTooLarge:        http.StatusRequestEntityTooLarge,
	NameTooManyRequests: http.StatusTooManyRequests,
	NameInternal:        http.StatusInternalServerError,
}

// ErrorBody is the JSON document written for every failed request
type ErrorBody struct {
	Name    string            `json:"name"`
	ID      string            `json:"id"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// BadRequest creates a properly formatted bad request error
func BadRequest(message string) *goa.ServiceError {
	return goa.NewServiceError(errors.New(message), NameBadRequest, false, false, false)
}

// Unauthorized creates a properly formatted unauthorized error
func Unauthorized(message string) *goa.ServiceError {
	return goa.NewServiceError(errors.New(message), NameUnauthorized, false, false, false)
}

// NotFound creates a properly formatted not found error
func NotFound(format string, args ...any) *goa.ServiceError {
	return goa.NewServiceError(fmt.Errorf(format, args...), NameNotFound, false, false, false)
}

// TooManyRequests creates a properly formatted rate limit error
func TooManyRequests(err error) *goa.ServiceError {
	return goa.NewServiceError(err, NameTooManyRequests, false, true, false)
}

// Internal creates a fault error; the cause is logged, never sent to the caller
func Internal(message string, err error) *goa.ServiceError {
	return goa.NewServiceError(fmt.Errorf("%s: %w", message, err), NameInternal, false, false, true)
}

// writeError maps err onto a status code and JSON body. Validation failures
// from the shared form schemas carry their per-field messages.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := ErrorBody{Name: NameInternal, Message: "internal server error"}
	status := http.StatusInternalServerError

	var appErr *apperrors.AppError
	var svcErr *goa.ServiceError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &appErr):
		switch appErr.Code {
		case apperrors.ErrCodeValidation:
			body.Name = NameValidation
		case apperrors.ErrCodeNotFound:
			body.Name = NameNotFound
		case apperrors.ErrCodeUnauthorized:
			body.Name = NameUnauthorized
		default:
			body.Name = NameBadRequest
		}
		status = statusByName[body.Name]
		body.Message = appErr.Message
		body.Fields = appErr.Fields
	case errors.As(err, &maxErr):
		body.Name = NameTooLarge
		status = http.StatusRequestEntityTooLarge
		body.Message = fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)
	case errors.As(err, &svcErr):
		body.Name = svcErr.Name
		body.ID = svcErr.ID
		if code, ok := statusByName[svcErr.Name]; ok {
			status = code
		}
		if !svcErr.Fault {
			body.Message = svcErr.Message
		}
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	} else {
		s.log.Debug("request rejected",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.String("reason", body.Message))
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON request body into v
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return BadRequest("malformed JSON body")
	}
	return nil
}
