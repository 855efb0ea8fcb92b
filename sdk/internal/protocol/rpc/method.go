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
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/ngnhng/cadence-go/api"
)

// Method describes one remote procedure with its request and result shapes.
// Values are created once at package init; calling a method that is not in
// the table is impossible by construction.
type Method[Req any, Resp api.Result] struct {
	name      string
	newResult func() Resp
}

func (m Method[Req, Resp]) Name() string { return m.name }

// Procedure is the remote method identifier, "WorkflowService::<Name>".
func (m Method[Req, Resp]) Procedure() string { return ProcedureName(m.name) }

func ProcedureName(method string) string {
	return api.WorkflowServiceName + api.ProcedureSeparator + method
}

// MethodInfo is the untyped view of a registered method, used by code that
// dispatches on the procedure name (servers, tooling).
type MethodInfo struct {
	Name         string
	Procedure    string
	RequestType  reflect.Type
	ResponseType reflect.Type
}

// NewRequest allocates a zero request value for the method.
func (mi MethodInfo) NewRequest() any { return reflect.New(mi.RequestType).Interface() }

// NewResponse allocates a zero result value for the method.
func (mi MethodInfo) NewResponse() api.Result {
	return reflect.New(mi.ResponseType).Interface().(api.Result)
}

var (
	tableMu sync.RWMutex
	table   = make(map[string]MethodInfo)
)

func newMethod[Req any, Resp any, PResp interface {
	*Resp
	api.Result
}](name string) Method[Req, PResp] {
	tableMu.Lock()
	defer tableMu.Unlock()

	if _, ok := table[name]; ok {
		panic(fmt.Sprintf("rpc: method %q registered twice", name))
	}
	info := MethodInfo{
		Name:         name,
		Procedure:    ProcedureName(name),
		RequestType:  reflect.TypeFor[Req](),
		ResponseType: reflect.TypeFor[Resp](),
	}
	table[name] = info
	table[info.Procedure] = info
	return Method[Req, PResp]{
		name:      name,
		newResult: func() PResp { return PResp(new(Resp)) },
	}
}

// Lookup resolves a method by name or by procedure identifier.
func Lookup(name string) (MethodInfo, bool) {
	tableMu.RLock()
	defer tableMu.RUnlock()
	mi, ok := table[name]
	return mi, ok
}

// Methods returns every registered method sorted by name.
func Methods() []MethodInfo {
	tableMu.RLock()
	defer tableMu.RUnlock()

	out := make([]MethodInfo, 0, len(table)/2)
	for key, mi := range table {
		if key == mi.Name {
			out = append(out, mi)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// The WorkflowService methods a worker uses.
var (
	StartWorkflowExecution = newMethod[api.StartWorkflowExecutionRequest, api.StartWorkflowExecutionResult](
		api.MethodStartWorkflowExecution)
	RegisterDomain = newMethod[api.RegisterDomainRequest, api.RegisterDomainResult](
		api.MethodRegisterDomain)
	PollForActivityTask = newMethod[api.PollForActivityTaskRequest, api.PollForActivityTaskResult](
		api.MethodPollForActivityTask)
	RespondActivityTaskCompleted = newMethod[api.RespondActivityTaskCompletedRequest, api.RespondActivityTaskCompletedResult](
		api.MethodRespondActivityTaskCompleted)
	RespondActivityTaskFailed = newMethod[api.RespondActivityTaskFailedRequest, api.RespondActivityTaskFailedResult](
		api.MethodRespondActivityTaskFailed)
	RespondActivityTaskCanceled = newMethod[api.RespondActivityTaskCanceledRequest, api.RespondActivityTaskCanceledResult](
		api.MethodRespondActivityTaskCanceled)
	RecordActivityTaskHeartbeat = newMethod[api.RecordActivityTaskHeartbeatRequest, api.RecordActivityTaskHeartbeatResult](
		api.MethodRecordActivityTaskHeartbeat)
)
