// Package errors provides custom error types for the llamachat engine client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrUnavailable     = errors.New("engine unavailable")
	ErrModelNotFound   = errors.New("model not found")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrNoContent       = errors.New("no content in response")
)

// NetworkError represents a failure to reach the engine server
type NetworkError struct {
	Op       string
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine unavailable during %s at %s: %v", e.Op, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("engine unavailable during %s at %s", e.Op, e.Endpoint)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *NetworkError) Is(target error) bool {
	// Match with ErrUnavailable sentinel error
	if target == ErrUnavailable {
		return true
	}
	// Match with another NetworkError (for error wrapping/unwrapping)
	_, ok := target.(*NetworkError)
	return ok
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(op, endpoint string, err error) *NetworkError {
	return &NetworkError{Op: op, Endpoint: endpoint, Err: err}
}

// APIError represents an API request failure
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates a new APIError carrying the raw response body
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
		Body:       body,
	}
}

// TimeoutError represents a request timeout
type TimeoutError struct {
	Endpoint string
	Err      error
}

func (e *TimeoutError) Error() string {
	if e.Endpoint == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out at %s", e.Endpoint)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(endpoint string, err error) *TimeoutError {
	return &TimeoutError{Endpoint: endpoint, Err: err}
}

// ModelError represents a model-related error
type ModelError struct {
	Name    string
	Message string
}

func (e *ModelError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("model error: %s", e.Message)
	}
	return fmt.Sprintf("model error [%s]: %s", e.Name, e.Message)
}

// Is allows comparison with sentinel errors
func (e *ModelError) Is(target error) bool {
	// Match with ErrModelNotFound sentinel error
	if target == ErrModelNotFound {
		return true
	}
	// Match with another ModelError (for error wrapping/unwrapping)
	_, ok := target.(*ModelError)
	return ok
}

// NewModelError creates a new ModelError
func NewModelError(name, message string) *ModelError {
	return &ModelError{Name: name, Message: message}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	// Match with ErrInvalidResponse sentinel error
	if target == ErrInvalidResponse {
		return true
	}
	// Match with another ParseError (for error wrapping/unwrapping)
	_, ok := target.(*ParseError)
	return ok
}
