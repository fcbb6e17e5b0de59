// Package errors provides standardized error handling for the growth
// assistant pipeline and API.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeDuplicateRecord  ErrorCode = "DUPLICATE_RECORD"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeGatewayTimeout         ErrorCode = "GATEWAY_TIMEOUT"
	ErrCodeNoPhoneNumber          ErrorCode = "NO_PHONE_NUMBER"

	ErrCodeRunInProgress ErrorCode = "RUN_IN_PROGRESS"
	ErrCodeEmptyCart     ErrorCode = "EMPTY_CART"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a non-retryable input validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request payload validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable missing-record error.
func NewNotFoundError(kind, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", kind),
		Details:   id,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateRecordError creates a non-retryable uniqueness violation error.
func NewDuplicateRecordError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateRecord,
		Message:   "Record already exists",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionError creates a retryable database query error.
func NewQueryExecutionError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertError creates a retryable database write error.
func NewDatabaseInsertError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendError creates a retryable messaging gateway error.
func NewNotificationSendError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery attempt failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRunInProgressError signals that a pipeline run lock is already held.
func NewRunInProgressError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRunInProgress,
		Message:   fmt.Sprintf("%s is already running", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification Helpers
// ==========================

// IsRetryable reports whether the error is a retryable StandardError.
func IsRetryable(err error) bool {
	if se, ok := err.(*StandardError); ok {
		return se.Retryable
	}
	return false
}

// CodeOf extracts the error code, defaulting to QUERY_EXECUTION_FAILED for
// unclassified errors surfaced from the store.
func CodeOf(err error) ErrorCode {
	if se, ok := err.(*StandardError); ok {
		return se.Code
	}
	return ErrCodeQueryExecutionFailed
}
