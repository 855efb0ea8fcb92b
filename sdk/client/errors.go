package client

import (
	"errors"

	"github.com/ngnhng/cadence-go/sdk/internal/protocol/rpc"
)

// ServiceError is a failure the frontend declared in its response.
type ServiceError = rpc.ServiceError

// TransportError means a call did not produce a response.
type TransportError = rpc.TransportError

var (
	ErrBadRequest             = rpc.ErrBadRequest
	ErrInternalService        = rpc.ErrInternalService
	ErrDomainAlreadyExists    = rpc.ErrDomainAlreadyExists
	ErrWorkflowAlreadyStarted = rpc.ErrWorkflowAlreadyStarted
	ErrEntityNotExists        = rpc.ErrEntityNotExists
	ErrServiceBusy            = rpc.ErrServiceBusy
	ErrDomainNotActive        = rpc.ErrDomainNotActive
	ErrLimitExceeded          = rpc.ErrLimitExceeded
	ErrTaskAlreadyCompleted   = rpc.ErrTaskAlreadyCompleted
	// ErrUnmapped matches a response that carried more than one failure.
	ErrUnmapped = rpc.ErrUnmapped

	// ErrCodec wraps request encoding and response decoding failures.
	ErrCodec = rpc.ErrCodec
)

// IsTransportError reports whether err came from a call that never produced
// a response.
func IsTransportError(err error) bool {
	return rpc.IsTransportError(err)
}

// IsServiceError reports whether err is a failure the frontend declared.
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}
