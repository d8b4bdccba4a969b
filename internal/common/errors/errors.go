// internal/common/errors/errors.go
// Package errors provides standardized error handling for the coordination service.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Workflow and transport error codes.
const (
	ErrCodeUnauthenticated        ErrorCode = "UNAUTHENTICATED"
	ErrCodeForbidden              ErrorCode = "FORBIDDEN"
	ErrCodeNotFound               ErrorCode = "NOT_FOUND"
	ErrCodeInvalidInput           ErrorCode = "INVALID_INPUT"
	ErrCodeUnknownAction          ErrorCode = "UNKNOWN_ACTION"
	ErrCodeUpstreamFailure        ErrorCode = "UPSTREAM_FAILURE"
	ErrCodeSecondaryUpdateFailure ErrorCode = "SECONDARY_UPDATE_FAILURE"
	ErrCodeConflictRetry          ErrorCode = "CONFLICT_RETRY"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewUnauthenticatedError creates a non-retryable credential error.
func NewUnauthenticatedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthenticated,
		Message:   "Missing or invalid credentials",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewForbiddenError creates a non-retryable authorization error.
func NewForbiddenError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeForbidden,
		Message:   "Unauthorized: Admin access required",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable missing-resource error.
func NewNotFoundError(resource, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingFieldsError reports a review request body that fails schema
// validation.
func NewMissingFieldsError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Missing required fields: applicationId and action",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError creates a non-retryable request validation error.
func NewInvalidInputError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownActionError creates a non-retryable error for unrecognized actions.
func NewUnknownActionError(action string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownAction,
		Message:   fmt.Sprintf("Invalid action: %s", action),
		Details:   "expected one of: initiate, check_status, complete",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamFailureError creates a retryable repository write error.
func NewUpstreamFailureError(step string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamFailure,
		Message:   "Failed to update application",
		Details:   fmt.Sprintf("step: %s, error: %s", step, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSecondaryUpdateFailureError records a failed best-effort profile write.
// It never aborts a workflow transition.
func NewSecondaryUpdateFailureError(profileID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSecondaryUpdateFailure,
		Message:   "Profile role promotion failed",
		Details:   fmt.Sprintf("profileId: %s, error: %s", profileID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewConflictRetryError signals that a version-checked write lost a race.
func NewConflictRetryError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConflictRetry,
		Message:   "Application was modified concurrently, retry the action",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Normalize ensures any error is represented as a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return NewInternalError(err)
}

// IsCode reports whether err is a StandardError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	stdErr, ok := err.(*StandardError)
	return ok && stdErr.Code == code
}
