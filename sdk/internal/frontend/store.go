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

package frontend

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/ngnhng/cadence-go/api"
)

// Outcome is the terminal state of an activity task as seen by the frontend.
type Outcome string

const (
	OutcomeOpen      Outcome = ""
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeCanceled  Outcome = "canceled"
)

// ActivityTask is what ScheduleActivity enqueues for a poller.
type ActivityTask struct {
	WorkflowExecution api.WorkflowExecution
	WorkflowType      api.WorkflowType
	ActivityID        string
	ActivityType      string
	Input             []byte

	ScheduleToCloseTimeout time.Duration
	StartToCloseTimeout    time.Duration
	HeartbeatTimeout       time.Duration
	Attempt                int32

	// HeartbeatDetails are delivered as the details of a previous attempt.
	HeartbeatDetails []byte
}

// TaskRecord is the frontend's view of one delivered activity task.
type TaskRecord struct {
	Token            api.TaskToken
	Domain           string
	TaskList         string
	Task             ActivityTask
	Heartbeats       int
	HeartbeatDetails []byte
	CancelRequested  bool
	Outcome          Outcome
	Result           []byte
	Reason           string
	Details          []byte
	Identity         string
}

type queueKey struct {
	domain   string
	taskList string
}

// Store keeps domains, workflow runs and activity tasks in memory.
type Store struct {
	mu        sync.Mutex
	domains   map[string]api.RegisterDomainRequest
	workflows map[string]string // domain/workflowID -> runID
	queues    map[queueKey][]*TaskRecord
	tasks     map[string]*TaskRecord
	now       func() time.Time

	// pollWait is how long an empty poll waits for a task before
	// returning an empty response. Zero answers immediately.
	pollWait time.Duration
	// scheduled is closed and replaced every time a task is enqueued.
	scheduled chan struct{}
}

func NewStore() *Store {
	return &Store{
		domains:   make(map[string]api.RegisterDomainRequest),
		workflows: make(map[string]string),
		queues:    make(map[queueKey][]*TaskRecord),
		tasks:     make(map[string]*TaskRecord),
		now:       time.Now,
		scheduled: make(chan struct{}),
	}
}

// SetPollWait makes empty polls wait up to d for a task, the way the real
// frontend long-polls.
func (s *Store) SetPollWait(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollWait = d
}

func (s *Store) RegisterDomain(req *api.RegisterDomainRequest) *api.RegisterDomainResult {
	res := &api.RegisterDomainResult{}
	if req.Name == "" {
		res.BadRequestError = &api.BadRequestError{Message: "domain name is not set"}
		return res
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.domains[req.Name]; ok {
		res.DomainAlreadyExistsError = &api.DomainAlreadyExistsError{
			Message: fmt.Sprintf("domain %q already exists", req.Name),
		}
		return res
	}
	s.domains[req.Name] = *req
	return res
}

func (s *Store) StartWorkflowExecution(req *api.StartWorkflowExecutionRequest) *api.StartWorkflowExecutionResult {
	res := &api.StartWorkflowExecutionResult{}
	switch {
	case req.Domain == "":
		res.BadRequestError = &api.BadRequestError{Message: "domain is not set"}
		return res
	case req.WorkflowID == "":
		res.BadRequestError = &api.BadRequestError{Message: "workflow id is not set"}
		return res
	case req.TaskList == nil || req.TaskList.Name == "":
		res.BadRequestError = &api.BadRequestError{Message: "task list is not set"}
		return res
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.domains[req.Domain]; !ok {
		res.EntityNotExistsError = &api.EntityNotExistsError{Message: fmt.Sprintf("domain %q does not exist", req.Domain)}
		return res
	}
	key := req.Domain + "/" + req.WorkflowID
	if runID, ok := s.workflows[key]; ok {
		res.WorkflowExecutionAlreadyStartedError = &api.WorkflowExecutionAlreadyStartedError{
			Message:        fmt.Sprintf("workflow %q is already running", req.WorkflowID),
			StartRequestID: req.RequestID,
			RunID:          runID,
		}
		return res
	}
	runID := uuid.Must(uuid.NewV4()).String()
	s.workflows[key] = runID
	res.Success = &api.StartWorkflowExecutionResponse{RunID: runID}
	return res
}

// ScheduleActivity enqueues a task for the next poller of domain/taskList and
// returns the token it will be delivered with.
func (s *Store) ScheduleActivity(domain, taskList string, task ActivityTask) api.TaskToken {
	token := api.TaskToken(uuid.Must(uuid.NewV4()).Bytes())

	s.mu.Lock()
	defer s.mu.Unlock()
	rec := &TaskRecord{Token: token, Domain: domain, TaskList: taskList, Task: task}
	k := queueKey{domain: domain, taskList: taskList}
	s.queues[k] = append(s.queues[k], rec)
	s.tasks[string(token)] = rec
	close(s.scheduled)
	s.scheduled = make(chan struct{})
	return token
}

func (s *Store) PollForActivityTask(req *api.PollForActivityTaskRequest) *api.PollForActivityTaskResult {
	res := &api.PollForActivityTaskResult{}
	if req.Domain == "" || req.TaskList == nil || req.TaskList.Name == "" {
		res.BadRequestError = &api.BadRequestError{Message: "domain and task list are required"}
		return res
	}

	k := queueKey{domain: req.Domain, taskList: req.TaskList.Name}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queues[k]) == 0 && s.pollWait > 0 {
		deadline := time.NewTimer(s.pollWait)
		defer deadline.Stop()
		for len(s.queues[k]) == 0 {
			wake := s.scheduled
			s.mu.Unlock()
			select {
			case <-wake:
				s.mu.Lock()
			case <-deadline.C:
				s.mu.Lock()
				res.Success = &api.PollForActivityTaskResponse{}
				return res
			}
		}
	}
	queue := s.queues[k]
	if len(queue) == 0 {
		res.Success = &api.PollForActivityTaskResponse{}
		return res
	}
	rec := queue[0]
	s.queues[k] = queue[1:]
	rec.Identity = req.Identity

	now := s.now()
	t := rec.Task
	res.Success = &api.PollForActivityTaskResponse{
		TaskToken:                     rec.Token,
		WorkflowExecution:             &t.WorkflowExecution,
		ActivityID:                    t.ActivityID,
		ActivityType:                  &api.ActivityType{Name: t.ActivityType},
		Input:                         t.Input,
		ScheduledTimestamp:            now.UnixNano(),
		StartedTimestamp:              now.UnixNano(),
		ScheduleToCloseTimeoutSeconds: int32(t.ScheduleToCloseTimeout / time.Second),
		StartToCloseTimeoutSeconds:    int32(t.StartToCloseTimeout / time.Second),
		HeartbeatTimeoutSeconds:       int32(t.HeartbeatTimeout / time.Second),
		Attempt:                       t.Attempt,
		HeartbeatDetails:              t.HeartbeatDetails,
		WorkflowType:                  &t.WorkflowType,
		WorkflowDomain:                req.Domain,
	}
	return res
}

// open returns the record for a token with no terminal outcome yet, or the
// EntityNotExists failure the real frontend returns for unknown or closed tasks.
func (s *Store) open(token api.TaskToken) (*TaskRecord, *api.EntityNotExistsError) {
	rec, ok := s.tasks[string(token)]
	if !ok || rec.Outcome != OutcomeOpen {
		return nil, &api.EntityNotExistsError{Message: "activity task not found or already closed"}
	}
	return rec, nil
}

func (s *Store) RecordActivityTaskHeartbeat(req *api.RecordActivityTaskHeartbeatRequest) *api.RecordActivityTaskHeartbeatResult {
	res := &api.RecordActivityTaskHeartbeatResult{}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, notFound := s.open(req.TaskToken)
	if notFound != nil {
		res.EntityNotExistsError = notFound
		return res
	}
	rec.Heartbeats++
	rec.HeartbeatDetails = append([]byte(nil), req.Details...)
	res.Success = &api.RecordActivityTaskHeartbeatResponse{CancelRequested: rec.CancelRequested}
	return res
}

func (s *Store) RespondActivityTaskCompleted(req *api.RespondActivityTaskCompletedRequest) *api.RespondActivityTaskCompletedResult {
	res := &api.RespondActivityTaskCompletedResult{}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, notFound := s.open(req.TaskToken)
	if notFound != nil {
		res.EntityNotExistsError = notFound
		return res
	}
	rec.Outcome = OutcomeCompleted
	rec.Result = req.Result
	return res
}

func (s *Store) RespondActivityTaskFailed(req *api.RespondActivityTaskFailedRequest) *api.RespondActivityTaskFailedResult {
	res := &api.RespondActivityTaskFailedResult{}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, notFound := s.open(req.TaskToken)
	if notFound != nil {
		res.EntityNotExistsError = notFound
		return res
	}
	rec.Outcome = OutcomeFailed
	rec.Reason = req.Reason
	rec.Details = req.Details
	return res
}

func (s *Store) RespondActivityTaskCanceled(req *api.RespondActivityTaskCanceledRequest) *api.RespondActivityTaskCanceledResult {
	res := &api.RespondActivityTaskCanceledResult{}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, notFound := s.open(req.TaskToken)
	if notFound != nil {
		res.EntityNotExistsError = notFound
		return res
	}
	rec.Outcome = OutcomeCanceled
	rec.Details = req.Details
	return res
}

// RequestCancel makes the next heartbeat for token report CancelRequested.
func (s *Store) RequestCancel(token api.TaskToken) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tasks[string(token)]
	if !ok {
		return false
	}
	rec.CancelRequested = true
	return true
}

// Task returns a copy of the record for token.
func (s *Store) Task(token api.TaskToken) (TaskRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tasks[string(token)]
	if !ok {
		return TaskRecord{}, false
	}
	return *rec, true
}

func (s *Store) Domain(name string) (api.RegisterDomainRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.domains[name]
	return d, ok
}
