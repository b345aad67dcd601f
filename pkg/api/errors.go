package api

import (
	"fmt"
	"net/http"
)

// ErrorType represents the category of an API error.
type ErrorType string

const (
	ErrorTypeServerError     ErrorType = "server_error"
	ErrorTypeInvalidRequest  ErrorType = "invalid_request"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeUpstreamError   ErrorType = "upstream_error"
	ErrorTypeTooManyRequests ErrorType = "too_many_requests"
	ErrorTypeUnavailable     ErrorType = "service_unavailable"
)

// APIError represents a structured API error with type, code, param, and message.
type APIError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code,omitempty"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// HTTPStatus returns the status code an error of this type is served with.
func (e *APIError) HTTPStatus() int {
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrorTypeUpstreamError:
		return http.StatusBadGateway
	case ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse wraps an APIError for JSON serialization as the top-level error response.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// NewInvalidRequestError creates an APIError for invalid request parameters.
func NewInvalidRequestError(param, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRequest,
		Param:   param,
		Message: message,
	}
}

// NewNotFoundError creates an APIError for unknown routes or resources.
func NewNotFoundError(message string) *APIError {
	return &APIError{Type: ErrorTypeNotFound, Message: message}
}

// NewServerError creates an APIError for internal server errors.
func NewServerError(message string) *APIError {
	return &APIError{Type: ErrorTypeServerError, Message: message}
}

// NewUpstreamError creates an APIError for failures of a backend service
// (LLM, embeddings, calendar).
func NewUpstreamError(message string) *APIError {
	return &APIError{Type: ErrorTypeUpstreamError, Message: message}
}

// NewTooManyRequestsError creates an APIError for rate limiting.
func NewTooManyRequestsError(message string) *APIError {
	return &APIError{Type: ErrorTypeTooManyRequests, Message: message}
}

// NewUnavailableError creates an APIError for a server that is not ready.
func NewUnavailableError(message string) *APIError {
	return &APIError{Type: ErrorTypeUnavailable, Message: message}
}
