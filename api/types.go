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

import "bytes"

// TaskToken identifies exactly one in-flight activity attempt. Its bytes are
// private to the service and must be passed back untouched.
type TaskToken []byte

func (t TaskToken) Equal(other TaskToken) bool { return bytes.Equal(t, other) }

func (t TaskToken) IsEmpty() bool { return len(t) == 0 }

type TaskListKind int32

const (
	TaskListKindNormal TaskListKind = iota
	TaskListKindSticky
)

type (
	WorkflowExecution struct {
		WorkflowID string `json:"workflowId" msgpack:"workflowId"`
		RunID      string `json:"runId"      msgpack:"runId"`
	}

	WorkflowType struct {
		Name string `json:"name" msgpack:"name"`
	}

	ActivityType struct {
		Name string `json:"name" msgpack:"name"`
	}

	TaskList struct {
		Name string       `json:"name"           msgpack:"name"`
		Kind TaskListKind `json:"kind,omitempty" msgpack:"kind,omitempty"`
	}
)

type (
	StartWorkflowExecutionRequest struct {
		Domain                              string        `json:"domain"                              msgpack:"domain"`
		WorkflowID                          string        `json:"workflowId"                          msgpack:"workflowId"`
		WorkflowType                        *WorkflowType `json:"workflowType"                        msgpack:"workflowType"`
		TaskList                            *TaskList     `json:"taskList"                            msgpack:"taskList"`
		Input                               []byte        `json:"input,omitempty"                     msgpack:"input,omitempty"`
		ExecutionStartToCloseTimeoutSeconds int32         `json:"executionStartToCloseTimeoutSeconds" msgpack:"executionStartToCloseTimeoutSeconds"`
		TaskStartToCloseTimeoutSeconds      int32         `json:"taskStartToCloseTimeoutSeconds"      msgpack:"taskStartToCloseTimeoutSeconds"`
		Identity                            string        `json:"identity"                            msgpack:"identity"`
		RequestID                           string        `json:"requestId"                           msgpack:"requestId"`
	}

	StartWorkflowExecutionResponse struct {
		RunID string `json:"runId" msgpack:"runId"`
	}

	RegisterDomainRequest struct {
		Name                                   string `json:"name"                                   msgpack:"name"`
		Description                            string `json:"description,omitempty"                  msgpack:"description,omitempty"`
		OwnerEmail                             string `json:"ownerEmail,omitempty"                   msgpack:"ownerEmail,omitempty"`
		WorkflowExecutionRetentionPeriodInDays int32  `json:"workflowExecutionRetentionPeriodInDays" msgpack:"workflowExecutionRetentionPeriodInDays"`
		EmitMetric                             bool   `json:"emitMetric,omitempty"                   msgpack:"emitMetric,omitempty"`
	}

	PollForActivityTaskRequest struct {
		Domain   string    `json:"domain"   msgpack:"domain"`
		TaskList *TaskList `json:"taskList" msgpack:"taskList"`
		Identity string    `json:"identity" msgpack:"identity"`
	}

	// PollForActivityTaskResponse describes one activity attempt. A response
	// with an empty TaskToken means the long poll expired with nothing to do.
	PollForActivityTaskResponse struct {
		TaskToken                     TaskToken          `json:"taskToken"                     msgpack:"taskToken"`
		WorkflowExecution             *WorkflowExecution `json:"workflowExecution"             msgpack:"workflowExecution"`
		ActivityID                    string             `json:"activityId"                    msgpack:"activityId"`
		ActivityType                  *ActivityType      `json:"activityType"                  msgpack:"activityType"`
		Input                         []byte             `json:"input,omitempty"               msgpack:"input,omitempty"`
		ScheduledTimestamp            int64              `json:"scheduledTimestamp"            msgpack:"scheduledTimestamp"`
		StartedTimestamp              int64              `json:"startedTimestamp"              msgpack:"startedTimestamp"`
		ScheduleToCloseTimeoutSeconds int32              `json:"scheduleToCloseTimeoutSeconds" msgpack:"scheduleToCloseTimeoutSeconds"`
		StartToCloseTimeoutSeconds    int32              `json:"startToCloseTimeoutSeconds"    msgpack:"startToCloseTimeoutSeconds"`
		HeartbeatTimeoutSeconds       int32              `json:"heartbeatTimeoutSeconds"       msgpack:"heartbeatTimeoutSeconds"`
		Attempt                       int32              `json:"attempt"                       msgpack:"attempt"`
		HeartbeatDetails              []byte             `json:"heartbeatDetails,omitempty"    msgpack:"heartbeatDetails,omitempty"`
		WorkflowType                  *WorkflowType      `json:"workflowType"                  msgpack:"workflowType"`
		WorkflowDomain                string             `json:"workflowDomain"                msgpack:"workflowDomain"`
	}

	RespondActivityTaskCompletedRequest struct {
		TaskToken TaskToken `json:"taskToken"        msgpack:"taskToken"`
		Result    []byte    `json:"result,omitempty" msgpack:"result,omitempty"`
		Identity  string    `json:"identity"         msgpack:"identity"`
	}

	RespondActivityTaskFailedRequest struct {
		TaskToken TaskToken `json:"taskToken"         msgpack:"taskToken"`
		Reason    string    `json:"reason"            msgpack:"reason"`
		Details   []byte    `json:"details,omitempty" msgpack:"details,omitempty"`
		Identity  string    `json:"identity"          msgpack:"identity"`
	}

	RespondActivityTaskCanceledRequest struct {
		TaskToken TaskToken `json:"taskToken"         msgpack:"taskToken"`
		Details   []byte    `json:"details,omitempty" msgpack:"details,omitempty"`
		Identity  string    `json:"identity"          msgpack:"identity"`
	}

	RecordActivityTaskHeartbeatRequest struct {
		TaskToken TaskToken `json:"taskToken"         msgpack:"taskToken"`
		Details   []byte    `json:"details,omitempty" msgpack:"details,omitempty"`
		Identity  string    `json:"identity"          msgpack:"identity"`
	}

	RecordActivityTaskHeartbeatResponse struct {
		CancelRequested bool `json:"cancelRequested" msgpack:"cancelRequested"`
	}
)
