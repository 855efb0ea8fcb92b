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

package api

// Failure payloads declared by the service. At most one of them is set on a
// well-formed result.
type (
	BadRequestError struct {
		Message string `json:"message" msgpack:"message"`
	}

	InternalServiceError struct {
		Message string `json:"message" msgpack:"message"`
	}

	DomainAlreadyExistsError struct {
		Message string `json:"message" msgpack:"message"`
	}

	WorkflowExecutionAlreadyStartedError struct {
		Message        string `json:"message"        msgpack:"message"`
		StartRequestID string `json:"startRequestId" msgpack:"startRequestId"`
		RunID          string `json:"runId"          msgpack:"runId"`
	}

	EntityNotExistsError struct {
		Message        string `json:"message"                  msgpack:"message"`
		CurrentCluster string `json:"currentCluster,omitempty" msgpack:"currentCluster,omitempty"`
		ActiveCluster  string `json:"activeCluster,omitempty"  msgpack:"activeCluster,omitempty"`
	}

	ServiceBusyError struct {
		Message string `json:"message" msgpack:"message"`
	}

	DomainNotActiveError struct {
		Message        string `json:"message"        msgpack:"message"`
		DomainName     string `json:"domainName"     msgpack:"domainName"`
		CurrentCluster string `json:"currentCluster" msgpack:"currentCluster"`
		ActiveCluster  string `json:"activeCluster"  msgpack:"activeCluster"`
	}

	LimitExceededError struct {
		Message string `json:"message" msgpack:"message"`
	}

	TaskAlreadyCompletedError struct {
		Message string `json:"message" msgpack:"message"`
	}
)

// ServiceFailures holds one slot per service-declared failure kind. It is
// embedded in every method result.
type ServiceFailures struct {
	BadRequestError                      *BadRequestError                      `json:"badRequestError,omitempty"                      msgpack:"badRequestError,omitempty"`
	InternalServiceError                 *InternalServiceError                 `json:"internalServiceError,omitempty"                 msgpack:"internalServiceError,omitempty"`
	DomainAlreadyExistsError             *DomainAlreadyExistsError             `json:"domainExistsError,omitempty"                    msgpack:"domainExistsError,omitempty"`
	WorkflowExecutionAlreadyStartedError *WorkflowExecutionAlreadyStartedError `json:"sessionAlreadyExistError,omitempty"             msgpack:"sessionAlreadyExistError,omitempty"`
	EntityNotExistsError                 *EntityNotExistsError                 `json:"entityNotExistError,omitempty"                  msgpack:"entityNotExistError,omitempty"`
	ServiceBusyError                     *ServiceBusyError                     `json:"serviceBusyError,omitempty"                     msgpack:"serviceBusyError,omitempty"`
	DomainNotActiveError                 *DomainNotActiveError                 `json:"domainNotActiveError,omitempty"                 msgpack:"domainNotActiveError,omitempty"`
	LimitExceededError                   *LimitExceededError                   `json:"limitExceededError,omitempty"                   msgpack:"limitExceededError,omitempty"`
	TaskAlreadyCompletedError            *TaskAlreadyCompletedError            `json:"taskAlreadyCompletedError,omitempty"            msgpack:"taskAlreadyCompletedError,omitempty"`
}

func (f *ServiceFailures) Failures() *ServiceFailures { return f }

// Result is implemented by every method result union.
type Result interface {
	Failures() *ServiceFailures
	// Succeeded reports whether the success slot is populated. Results of
	// methods without a success payload always report true.
	Succeeded() bool
}

var (
	_ Result = (*StartWorkflowExecutionResult)(nil)
	_ Result = (*RegisterDomainResult)(nil)
	_ Result = (*PollForActivityTaskResult)(nil)
	_ Result = (*RespondActivityTaskCompletedResult)(nil)
	_ Result = (*RespondActivityTaskFailedResult)(nil)
	_ Result = (*RespondActivityTaskCanceledResult)(nil)
	_ Result = (*RecordActivityTaskHeartbeatResult)(nil)
)

type (
	StartWorkflowExecutionResult struct {
		Success         *StartWorkflowExecutionResponse `json:"success,omitempty" msgpack:"success,omitempty"`
		ServiceFailures `msgpack:",inline"`
	}

	RegisterDomainResult struct {
		ServiceFailures `msgpack:",inline"`
	}

	PollForActivityTaskResult struct {
		Success         *PollForActivityTaskResponse `json:"success,omitempty" msgpack:"success,omitempty"`
		ServiceFailures `msgpack:",inline"`
	}

	RespondActivityTaskCompletedResult struct {
		ServiceFailures `msgpack:",inline"`
	}

	RespondActivityTaskFailedResult struct {
		ServiceFailures `msgpack:",inline"`
	}

	RespondActivityTaskCanceledResult struct {
		ServiceFailures `msgpack:",inline"`
	}

	RecordActivityTaskHeartbeatResult struct {
		Success         *RecordActivityTaskHeartbeatResponse `json:"success,omitempty" msgpack:"success,omitempty"`
		ServiceFailures `msgpack:",inline"`
	}
)

func (r *StartWorkflowExecutionResult) Succeeded() bool       { return r.Success != nil }
func (r *RegisterDomainResult) Succeeded() bool               { return true }
func (r *PollForActivityTaskResult) Succeeded() bool          { return r.Success != nil }
func (r *RespondActivityTaskCompletedResult) Succeeded() bool { return true }
func (r *RespondActivityTaskFailedResult) Succeeded() bool    { return true }
func (r *RespondActivityTaskCanceledResult) Succeeded() bool  { return true }
func (r *RecordActivityTaskHeartbeatResult) Succeeded() bool  { return r.Success != nil }
