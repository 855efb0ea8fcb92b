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

package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ngnhng/cadence-go/api"
	"github.com/ngnhng/cadence-go/api/serde"
	"github.com/ngnhng/cadence-go/sdk/internal/protocol/rpc"
	"golang.org/x/sync/semaphore"
)

// ActivityState is the lifecycle position of one bound activity attempt.
type ActivityState int

const (
	ActivityStateBound ActivityState = iota
	ActivityStateHeartbeating
	ActivityStateCompleted
	ActivityStateCanceled
	ActivityStateFailed
)

func (s ActivityState) String() string {
	switch s {
	case ActivityStateBound:
		return "bound"
	case ActivityStateHeartbeating:
		return "heartbeating"
	case ActivityStateCompleted:
		return "completed"
	case ActivityStateCanceled:
		return "canceled"
	case ActivityStateFailed:
		return "failed"
	default:
		return fmt.Sprintf("ActivityState(%d)", int(s))
	}
}

func (s ActivityState) Terminal() bool { return s >= ActivityStateCompleted }

// ActivityInfo describes the attempt an activity function is running.
type ActivityInfo struct {
	TaskToken         api.TaskToken
	WorkflowExecution api.WorkflowExecution
	WorkflowType      string
	WorkflowDomain    string
	Domain            string
	TaskList          string
	ActivityID        string
	ActivityType      string
	Attempt           int32
	ScheduledTime     time.Time
	StartedTime       time.Time
	// Deadline is zero when the task carries no start-to-close timeout.
	Deadline         time.Time
	HeartbeatTimeout time.Duration
}

// ActivityContext binds one polled activity task to the code executing it.
// Heartbeats and outcome reports for its token are serialised by calls; a
// caller waiting for the slot gives up when its context is done.
type ActivityContext struct {
	info             ActivityInfo
	service          WorkflowService
	heartbeatDetails []byte
	codec            serde.BinarySerde
	cancel           context.CancelCauseFunc
	logger           *slog.Logger

	calls *semaphore.Weighted

	mu       sync.Mutex
	state    ActivityState
	released bool
}

type activityContextKey struct{}

// NewActivityContext builds the context for task and returns ctx with it
// bound. The returned context is canceled when the service requests
// cancellation through a heartbeat and expires at the task's deadline.
func NewActivityContext(
	parent context.Context,
	service WorkflowService,
	domain, taskList string,
	task *api.PollForActivityTaskResponse,
	logger *slog.Logger,
) (context.Context, *ActivityContext, context.CancelFunc) {
	info := activityInfoFromTask(domain, taskList, task)
	ac := &ActivityContext{
		info:             info,
		service:          service,
		heartbeatDetails: task.HeartbeatDetails,
		codec:            &serde.JsonSerde{},
		calls:            semaphore.NewWeighted(1),
		logger: defaultLogger(logger).With(
			"activity_id", info.ActivityID,
			"activity_type", info.ActivityType,
			"workflow_id", info.WorkflowExecution.WorkflowID,
			"run_id", info.WorkflowExecution.RunID,
			"attempt", info.Attempt,
		),
	}

	ctx, cancelCause := context.WithCancelCause(parent)
	ac.cancel = cancelCause
	cancel := func() { cancelCause(context.Canceled) }
	if !info.Deadline.IsZero() {
		var cancelDeadline context.CancelFunc
		ctx, cancelDeadline = context.WithDeadline(ctx, info.Deadline)
		cancel = func() {
			cancelDeadline()
			cancelCause(context.Canceled)
		}
	}
	return WithActivityContext(ctx, ac), ac, cancel
}

func activityInfoFromTask(domain, taskList string, task *api.PollForActivityTaskResponse) ActivityInfo {
	info := ActivityInfo{
		TaskToken:        bytes.Clone(task.TaskToken),
		WorkflowDomain:   task.WorkflowDomain,
		Domain:           domain,
		TaskList:         taskList,
		ActivityID:       task.ActivityID,
		Attempt:          task.Attempt,
		HeartbeatTimeout: time.Duration(task.HeartbeatTimeoutSeconds) * time.Second,
	}
	if task.WorkflowExecution != nil {
		info.WorkflowExecution = *task.WorkflowExecution
	}
	if task.WorkflowType != nil {
		info.WorkflowType = task.WorkflowType.Name
	}
	if task.ActivityType != nil {
		info.ActivityType = task.ActivityType.Name
	}
	if task.ScheduledTimestamp > 0 {
		info.ScheduledTime = time.Unix(0, task.ScheduledTimestamp)
	}
	if task.StartedTimestamp > 0 {
		info.StartedTime = time.Unix(0, task.StartedTimestamp)
	}
	if task.StartToCloseTimeoutSeconds > 0 {
		start := info.StartedTime
		if start.IsZero() {
			start = time.Now()
		}
		info.Deadline = start.Add(time.Duration(task.StartToCloseTimeoutSeconds) * time.Second)
	}
	return info
}

// WithActivityContext returns a copy of ctx with ac bound to it.
func WithActivityContext(ctx context.Context, ac *ActivityContext) context.Context {
	return context.WithValue(ctx, activityContextKey{}, ac)
}

// ActivityContextFrom returns the activity bound to ctx, if any.
func ActivityContextFrom(ctx context.Context) (*ActivityContext, bool) {
	if ctx == nil {
		return nil, false
	}
	ac, ok := ctx.Value(activityContextKey{}).(*ActivityContext)
	return ac, ok && ac != nil
}

// MustActivityContext panics with ErrUnboundContext when ctx has no activity.
func MustActivityContext(ctx context.Context) *ActivityContext {
	ac, ok := ActivityContextFrom(ctx)
	if !ok {
		panic(ErrUnboundContext)
	}
	return ac
}

// Info returns a copy; the token in it may be modified freely.
func (a *ActivityContext) Info() ActivityInfo {
	info := a.info
	info.TaskToken = a.TaskToken()
	return info
}

func (a *ActivityContext) TaskToken() api.TaskToken { return bytes.Clone(a.info.TaskToken) }

func (a *ActivityContext) WorkflowExecution() api.WorkflowExecution { return a.info.WorkflowExecution }

func (a *ActivityContext) Domain() string { return a.info.Domain }

func (a *ActivityContext) Logger() *slog.Logger { return a.logger }

func (a *ActivityContext) State() ActivityState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// HasHeartbeatDetails reports whether a previous attempt recorded details.
func (a *ActivityContext) HasHeartbeatDetails() bool { return len(a.heartbeatDetails) > 0 }

// HeartbeatDetails decodes the details a previous attempt recorded into
// valuePtr. It reports false, leaving valuePtr untouched, when there are none.
func (a *ActivityContext) HeartbeatDetails(valuePtr any) (bool, error) {
	if !a.HasHeartbeatDetails() {
		return false, nil
	}
	if err := a.codec.DeserializeBinary(a.heartbeatDetails, valuePtr); err != nil {
		return false, fmt.Errorf("failed to decode heartbeat details: %w", err)
	}
	return true, nil
}

// RecordHeartbeat reports progress for the task. A nil details sends no
// payload. When the service asks for cancellation it returns a
// *CanceledError and cancels the activity's context with the same error.
func (a *ActivityContext) RecordHeartbeat(ctx context.Context, details any) error {
	var payload []byte
	if details != nil {
		var err error
		payload, err = a.codec.SerializeBinary(details)
		if err != nil {
			return fmt.Errorf("failed to encode heartbeat details: %w", err)
		}
	}

	if err := a.calls.Acquire(ctx, 1); err != nil {
		heartbeatCounter.WithLabelValues(outcomeError).Inc()
		return fmt.Errorf("heartbeat not sent: %w", err)
	}
	defer a.calls.Release(1)
	if a.isReleased() {
		heartbeatCounter.WithLabelValues(outcomeReleased).Inc()
		return ErrTaskTokenReleased
	}

	resp, err := a.service.RecordActivityTaskHeartbeat(ctx, &api.RecordActivityTaskHeartbeatRequest{
		TaskToken: a.info.TaskToken,
		Details:   payload,
	})
	if err != nil {
		a.releaseOnTerminal(err)
		heartbeatCounter.WithLabelValues(outcomeError).Inc()
		return err
	}

	a.mu.Lock()
	if !a.state.Terminal() {
		a.state = ActivityStateHeartbeating
	}
	a.mu.Unlock()
	if resp.CancelRequested {
		heartbeatCounter.WithLabelValues(outcomeCancelRequested).Inc()
		a.logger.Debug("cancellation requested by heartbeat response")
		cerr := NewCanceledError(a.info.ActivityID, payload)
		a.cancel(cerr)
		return cerr
	}
	heartbeatCounter.WithLabelValues(outcomeOK).Inc()
	return nil
}

// Complete reports a successful result and releases the token.
func (a *ActivityContext) Complete(ctx context.Context, result []byte) error {
	return a.report(ctx, ActivityStateCompleted, func() error {
		return a.service.RespondActivityTaskCompleted(ctx, &api.RespondActivityTaskCompletedRequest{
			TaskToken: a.info.TaskToken,
			Result:    result,
		})
	})
}

// Fail reports an application failure and releases the token.
func (a *ActivityContext) Fail(ctx context.Context, reason string, details []byte) error {
	return a.report(ctx, ActivityStateFailed, func() error {
		return a.service.RespondActivityTaskFailed(ctx, &api.RespondActivityTaskFailedRequest{
			TaskToken: a.info.TaskToken,
			Reason:    reason,
			Details:   details,
		})
	})
}

// ReportCanceled acknowledges a cancellation request and releases the token.
func (a *ActivityContext) ReportCanceled(ctx context.Context, details []byte) error {
	return a.report(ctx, ActivityStateCanceled, func() error {
		return a.service.RespondActivityTaskCanceled(ctx, &api.RespondActivityTaskCanceledRequest{
			TaskToken: a.info.TaskToken,
			Details:   details,
		})
	})
}

func (a *ActivityContext) report(ctx context.Context, terminal ActivityState, call func() error) error {
	if err := a.calls.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%s report not sent: %w", terminal, err)
	}
	defer a.calls.Release(1)
	if a.isReleased() {
		return ErrTaskTokenReleased
	}

	if err := call(); err != nil {
		a.releaseOnTerminal(err)
		return err
	}
	a.mu.Lock()
	a.state = terminal
	a.released = true
	a.mu.Unlock()
	return nil
}

func (a *ActivityContext) isReleased() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.released
}

// releaseOnTerminal marks the token unusable when err says the service no
// longer knows it.
func (a *ActivityContext) releaseOnTerminal(err error) {
	var se *rpc.ServiceError
	if errors.As(err, &se) && se.Terminal() {
		a.mu.Lock()
		a.released = true
		a.mu.Unlock()
	}
}
