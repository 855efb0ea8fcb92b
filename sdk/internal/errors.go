package internal

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnboundContext is the panic value of an activity accessor used on a
	// context that has no activity bound to it.
	ErrUnboundContext = errors.New("activity context is not bound")

	// ErrCanceled matches every *CanceledError.
	ErrCanceled = errors.New("activity canceled")

	// ErrTaskTokenReleased is returned for calls on a token that already saw a
	// terminal response.
	ErrTaskTokenReleased = errors.New("task token already released")

	ErrActivityNotRegistered = errors.New("activity not registered")
	ErrInvalidFunction       = errors.New("invalid function: must be a function type")
	ErrDuplicateRegistration = errors.New("function already registered")
)

// CanceledError is returned by RecordHeartbeat when the service asked the
// activity to stop. It is also the cause of the activity context's
// cancellation.
type CanceledError struct {
	ActivityID string
	// Details carries the payload of the heartbeat that observed the request.
	Details []byte
}

func (e *CanceledError) Error() string {
	return fmt.Sprintf("activity %s: cancellation requested", e.ActivityID)
}

func (e *CanceledError) Is(target error) bool { return target == ErrCanceled }

func (e *CanceledError) Unwrap() error { return context.Canceled }

func NewCanceledError(activityID string, details []byte) *CanceledError {
	return &CanceledError{ActivityID: activityID, Details: details}
}

// PanicError is reported as the failure of an activity whose function panicked.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("activity panicked: %v", e.Value)
}

// RegistrationError represents an error that occurred during function registration
type RegistrationError struct {
	FunctionName string
	Cause        error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("failed to register function %s: %v", e.FunctionName, e.Cause)
}

func (e *RegistrationError) Unwrap() error {
	return e.Cause
}

func NewRegistrationError(functionName string, cause error) *RegistrationError {
	return &RegistrationError{
		FunctionName: functionName,
		Cause:        cause,
	}
}

// TaskProcessingError wraps a failure to report an activity outcome.
type TaskProcessingError struct {
	ActivityType string
	ActivityID   string
	WorkflowID   string
	Cause        error
}

func (e *TaskProcessingError) Error() string {
	return fmt.Sprintf("failed to process activity %s (%s, workflow=%s): %v",
		e.ActivityType, e.ActivityID, e.WorkflowID, e.Cause)
}

func (e *TaskProcessingError) Unwrap() error {
	return e.Cause
}

func NewTaskProcessingError(activityType, activityID, workflowID string, cause error) *TaskProcessingError {
	return &TaskProcessingError{
		ActivityType: activityType,
		ActivityID:   activityID,
		WorkflowID:   workflowID,
		Cause:        cause,
	}
}
