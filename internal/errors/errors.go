// Package errors defines the normalized error shape used across stream
// processing. StreamError is the single error type crossing the adapter
// boundary, regardless of what the transport produced.
package errors

import (
	"fmt"
)

// StreamError represents errors that occur during stream processing.
type StreamError struct {
	Type    string
	Message string
	Cause   error
}

func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *StreamError) Unwrap() error {
	return e.Cause
}

// Error type constants
const (
	ErrorTypeConnectionFailed = "CONNECTION_FAILED"
	ErrorTypeBadStatus        = "BAD_STATUS"
	ErrorTypeDecodeFailed     = "DECODE_FAILED"
	ErrorTypeAuthUnavailable  = "AUTH_UNAVAILABLE"
	ErrorTypeAPIFailure       = "API_FAILURE"
)

// NewStreamError creates a new StreamError
func NewStreamError(errorType, message string, cause error) *StreamError {
	return &StreamError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewConnectionError creates an error for a stream request that failed to
// establish or failed mid-transfer.
func NewConnectionError(message string, cause error) *StreamError {
	return NewStreamError(ErrorTypeConnectionFailed, message, cause)
}

// NewBadStatusError creates an error for a non-success response status.
func NewBadStatusError(status int) *StreamError {
	return NewStreamError(ErrorTypeBadStatus, fmt.Sprintf("unexpected response status %d", status), nil)
}

// NewDecodeError creates an error for a frame that failed JSON parsing.
func NewDecodeError(message string, cause error) *StreamError {
	return NewStreamError(ErrorTypeDecodeFailed, message, cause)
}

// NewAPIError creates an error for a failed REST call.
func NewAPIError(message string, cause error) *StreamError {
	return NewStreamError(ErrorTypeAPIFailure, message, cause)
}
