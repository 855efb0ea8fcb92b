package worker

import "github.com/ngnhng/cadence-go/sdk/internal"

var (
	// ErrInvalidFunction is returned when attempting to register an invalid function
	ErrInvalidFunction = internal.ErrInvalidFunction

	// ErrDuplicateRegistration is returned when attempting to register a function that is already registered
	ErrDuplicateRegistration = internal.ErrDuplicateRegistration

	// ErrActivityNotRegistered is the failure reported for a task whose type has no registration
	ErrActivityNotRegistered = internal.ErrActivityNotRegistered
)

// RegistrationError represents an error that occurred during function registration
type RegistrationError = internal.RegistrationError

// TaskProcessingError wraps a failure to report an activity outcome.
type TaskProcessingError = internal.TaskProcessingError

// PanicError is reported as the failure of an activity that panicked.
type PanicError = internal.PanicError
