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

import "time"

// Remote service addressing
const (
	// FrontendServiceName is the service every worker-side call is addressed to.
	FrontendServiceName = "cadence-frontend"

	// WorkflowServiceName prefixes every procedure, e.g. "WorkflowService::PollForActivityTask".
	WorkflowServiceName = "WorkflowService"

	ProcedureSeparator = "::"
)

// Remote method names
const (
	MethodStartWorkflowExecution       = "StartWorkflowExecution"
	MethodRegisterDomain               = "RegisterDomain"
	MethodPollForActivityTask          = "PollForActivityTask"
	MethodRespondActivityTaskCompleted = "RespondActivityTaskCompleted"
	MethodRespondActivityTaskFailed    = "RespondActivityTaskFailed"
	MethodRespondActivityTaskCanceled  = "RespondActivityTaskCanceled"
	MethodRecordActivityTaskHeartbeat  = "RecordActivityTaskHeartbeat"
)

// NATS Subject Prefix
const (
	RPCSubjectPrefix = "rpc"
)

// NATS Subject Format
const (
	RPCSubjectPattern = RPCSubjectPrefix + ".%s" // service name
)

// RPC Headers
const (
	RPCServiceHeader   = "Rpc-Service"
	RPCProcedureHeader = "Rpc-Procedure"
	RPCEncodingHeader  = "Rpc-Encoding"
	// RPCErrorHeader is set by the remote end when the exchange itself failed
	// (unknown procedure, undecodable frame). It never carries service-declared failures.
	RPCErrorHeader = "Rpc-Error"
)

const (
	EncodingMsgpack = "msgpack"
	EncodingJSON    = "json"
)

// Defaults applied to StartWorkflowExecution when the caller leaves them unset.
const (
	DefaultExecutionStartToCloseTimeout = 24 * time.Hour
	DefaultTaskStartToCloseTimeout      = 2 * time.Minute
)
