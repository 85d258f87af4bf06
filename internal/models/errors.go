package models

import (
	"fmt"
	"net/http"
)

// StatusClientClosedRequest is the non-standard status logged for requests the client abandoned
const StatusClientClosedRequest = 499

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeValidation represents malformed requests (400)
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound represents a missing source file (400, as clients pass the path)
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeSource represents failures while reading a source (400)
	ErrorTypeSource ErrorType = "source"
	// ErrorTypeParse represents a line that is not an integer (400)
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeEmptyInput represents a source without values (400)
	ErrorTypeEmptyInput ErrorType = "empty_input"
	// ErrorTypeNoSequence represents a source without any monotonic run (400)
	ErrorTypeNoSequence ErrorType = "no_sequence"
	// ErrorTypeUnsupportedOperation represents an unknown operation kind (400)
	ErrorTypeUnsupportedOperation ErrorType = "unsupported_operation"
	// ErrorTypeRateLimit represents rate limiting errors (429)
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeTimeout represents timeout errors (504)
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeCanceled represents requests abandoned by the client (499)
	ErrorTypeCanceled ErrorType = "canceled"
	// ErrorTypeInternal represents internal server errors (500)
	ErrorTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Code       string    `json:"code,omitzero"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap allows error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// DebugMessage returns the underlying cause text, or the message when there is none
func (e *AppError) DebugMessage() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

// GetStatusCode returns the HTTP status code for the error
func (e *AppError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeSource, ErrorTypeParse,
		ErrorTypeEmptyInput, ErrorTypeNoSequence, ErrorTypeUnsupportedOperation:
		return http.StatusBadRequest
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeCanceled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		Code:       "INVALID_REQUEST",
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewNotFoundError creates an error for a source path that does not exist
func NewNotFoundError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    "No such file was found in the passed path",
		Code:       "FILE_NOT_FOUND",
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewSourceError creates an error for a source that could not be read
func NewSourceError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeSource,
		Message:    "Something went wrong during file processing",
		Code:       "SOURCE_READ_FAILED",
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(operation string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Message:    fmt.Sprintf("operation %s timed out", operation),
		Code:       "TIMEOUT",
		StatusCode: http.StatusGatewayTimeout,
		Cause:      cause,
	}
}

// NewCanceledError creates an error for an operation whose caller went away
func NewCanceledError(operation string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeCanceled,
		Message:    fmt.Sprintf("operation %s was canceled", operation),
		Code:       "CLIENT_CLOSED_REQUEST",
		StatusCode: StatusClientClosedRequest,
		Cause:      cause,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(limit string) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimit,
		Message:    "rate limit exceeded: " + limit,
		Code:       "RATE_LIMITED",
		StatusCode: http.StatusTooManyRequests,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		Code:       "INTERNAL_ERROR",
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}
