// Copyright 2025 Nguyen Nhat Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rpc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ngnhng/cadence-go/api"
)

// FailureKind enumerates the service-declared failure variants.
type FailureKind string

const (
	KindBadRequest             FailureKind = "BadRequest"
	KindInternalService        FailureKind = "InternalService"
	KindDomainAlreadyExists    FailureKind = "DomainAlreadyExists"
	KindWorkflowAlreadyStarted FailureKind = "WorkflowExecutionAlreadyStarted"
	KindEntityNotExists        FailureKind = "EntityNotExists"
	KindServiceBusy            FailureKind = "ServiceBusy"
	KindDomainNotActive        FailureKind = "DomainNotActive"
	KindLimitExceeded          FailureKind = "LimitExceeded"
	KindTaskAlreadyCompleted   FailureKind = "TaskAlreadyCompleted"
	// KindUnmapped is returned when a result carries more than one failure slot.
	KindUnmapped FailureKind = "Unmapped"
)

// Sentinels for errors.Is against a *ServiceError of the same kind.
var (
	ErrBadRequest             = &ServiceError{Kind: KindBadRequest}
	ErrInternalService        = &ServiceError{Kind: KindInternalService}
	ErrDomainAlreadyExists    = &ServiceError{Kind: KindDomainAlreadyExists}
	ErrWorkflowAlreadyStarted = &ServiceError{Kind: KindWorkflowAlreadyStarted}
	ErrEntityNotExists        = &ServiceError{Kind: KindEntityNotExists}
	ErrServiceBusy            = &ServiceError{Kind: KindServiceBusy}
	ErrDomainNotActive        = &ServiceError{Kind: KindDomainNotActive}
	ErrLimitExceeded          = &ServiceError{Kind: KindLimitExceeded}
	ErrTaskAlreadyCompleted   = &ServiceError{Kind: KindTaskAlreadyCompleted}
	ErrUnmapped               = &ServiceError{Kind: KindUnmapped}
)

// ErrCodec wraps request encode and response decode failures.
var ErrCodec = errors.New("rpc codec failure")

// ServiceError is a failure the service declared in its response. Payload
// holds the original failure value (or the whole ServiceFailures for
// KindUnmapped).
type ServiceError struct {
	Kind    FailureKind
	Message string
	Payload any
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service error: %s", e.Kind)
	}
	return fmt.Sprintf("service error: %s: %s", e.Kind, e.Message)
}

func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	return ok && t.Kind == e.Kind
}

// Terminal reports whether the failure means the task token it was returned
// for can no longer be used.
func (e *ServiceError) Terminal() bool {
	return e.Kind == KindEntityNotExists || e.Kind == KindTaskAlreadyCompleted
}

// TransportErrorKind classifies why an exchange did not complete.
type TransportErrorKind string

const (
	TransportUnreachable TransportErrorKind = "unreachable"
	TransportTimeout     TransportErrorKind = "timeout"
	TransportCanceled    TransportErrorKind = "canceled"
	TransportRemote      TransportErrorKind = "remote"
	TransportIO          TransportErrorKind = "io"
)

// TransportError means the call could not be completed at all.
type TransportError struct {
	Service   string
	Procedure string
	Kind      TransportErrorKind
	Cause     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s calling %s on %s: %v", e.Kind, e.Procedure, e.Service, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

func NewTransportError(service, procedure string, kind TransportErrorKind, cause error) *TransportError {
	return &TransportError{
		Service:   service,
		Procedure: procedure,
		Kind:      kind,
		Cause:     cause,
	}
}

// IsTransportError reports whether err, or any error it wraps, is a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// MapError converts a method result into its typed error. It returns nil when
// no failure slot is set and the success slot is populated (or the method has
// no success payload), and an internal service error when nothing is set.
func MapError(result api.Result) error {
	if result == nil {
		return &ServiceError{Kind: KindInternalService, Message: "empty response"}
	}
	if err := MapFailures(result.Failures()); err != nil {
		return err
	}
	if result.Succeeded() {
		return nil
	}
	return &ServiceError{Kind: KindInternalService, Message: "empty response"}
}

// MapFailures inspects the failure slots only. More than one populated slot is
// reported as KindUnmapped listing the kinds found, in declaration order.
func MapFailures(f *api.ServiceFailures) error {
	if f == nil {
		return nil
	}

	var found []*ServiceError
	add := func(kind FailureKind, message string, payload any) {
		found = append(found, &ServiceError{Kind: kind, Message: message, Payload: payload})
	}

	if p := f.BadRequestError; p != nil {
		add(KindBadRequest, p.Message, p)
	}
	if p := f.InternalServiceError; p != nil {
		add(KindInternalService, p.Message, p)
	}
	if p := f.DomainAlreadyExistsError; p != nil {
		add(KindDomainAlreadyExists, p.Message, p)
	}
	if p := f.WorkflowExecutionAlreadyStartedError; p != nil {
		add(KindWorkflowAlreadyStarted, p.Message, p)
	}
	if p := f.EntityNotExistsError; p != nil {
		add(KindEntityNotExists, p.Message, p)
	}
	if p := f.ServiceBusyError; p != nil {
		add(KindServiceBusy, p.Message, p)
	}
	if p := f.DomainNotActiveError; p != nil {
		add(KindDomainNotActive, p.Message, p)
	}
	if p := f.LimitExceededError; p != nil {
		add(KindLimitExceeded, p.Message, p)
	}
	if p := f.TaskAlreadyCompletedError; p != nil {
		add(KindTaskAlreadyCompleted, p.Message, p)
	}

	switch len(found) {
	case 0:
		return nil
	case 1:
		return found[0]
	default:
		kinds := make([]string, len(found))
		for i, e := range found {
			kinds[i] = string(e.Kind)
		}
		return &ServiceError{
			Kind:    KindUnmapped,
			Message: "multiple failures in response: " + strings.Join(kinds, ","),
			Payload: *f,
		}
	}
}
