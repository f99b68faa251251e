// Package errors provides standardized error handling for the matching engine.
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
	ErrCodeConfigInvalid   ErrorCode = "CONFIG_INVALID"
	ErrCodeRegistryInvalid ErrorCode = "REGISTRY_INVALID"
	ErrCodeMatrixInvalid   ErrorCode = "MATRIX_INVALID"

	ErrCodeSnapshotLoadFailed ErrorCode = "SNAPSHOT_LOAD_FAILED"
	ErrCodeMalformedResponse  ErrorCode = "MALFORMED_RESPONSE"

	ErrCodeRunLocked         ErrorCode = "RUN_LOCKED"
	ErrCodeDyadScoringFailed ErrorCode = "DYAD_SCORING_FAILED"
	ErrCodeResultStoreFailed ErrorCode = "RESULT_STORE_FAILED"
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

// NewConfigInvalidError marks a tunable that is out of range. The run must not
// start with a configuration in this state.
func NewConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Engine configuration is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRegistryInvalidError creates a non-retryable question registry error.
func NewRegistryInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryInvalid,
		Message:   "Question registry failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMatrixInvalidError creates a non-retryable compatibility matrix error.
func NewMatrixInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMatrixInvalid,
		Message:   "Conflict style compatibility matrix is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSnapshotLoadFailedError creates a retryable snapshot load error.
func NewSnapshotLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSnapshotLoadFailed,
		Message:   "Failed to load response snapshot",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedResponseError records a response whose shape does not match its
// question type. The response is treated as missing; the run continues.
func NewMalformedResponseError(userID, questionID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedResponse,
		Message:   "Response shape does not match question type",
		Details:   details,
		Retryable: false,
		Metadata: map[string]interface{}{
			"userId":     userID,
			"questionId": questionID,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewRunLockedError creates a non-retryable concurrent run error.
func NewRunLockedError(snapshotID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRunLocked,
		Message:   "A matching run is already in progress for this snapshot",
		Details:   fmt.Sprintf("snapshotId: %s", snapshotID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDyadScoringFailedError records a scoring failure isolated to one dyad.
func NewDyadScoringFailedError(userA, userB, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDyadScoringFailed,
		Message:   "Dyad scoring failed",
		Details:   details,
		Retryable: false,
		Metadata: map[string]interface{}{
			"userA": userA,
			"userB": userB,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewResultStoreFailedError creates a retryable result persistence error.
func NewResultStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResultStoreFailed,
		Message:   "Failed to store run result",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsRetryable reports whether err is a StandardError marked retryable.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}
