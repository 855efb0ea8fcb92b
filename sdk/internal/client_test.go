package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/ngnhng/cadence-go/api"
	"github.com/ngnhng/cadence-go/sdk/internal/protocol/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresTransport(t *testing.T) {
	_, err := NewClient(nil)
	require.Error(t, err)
	_, err = NewClient(&ClientOptions{})
	require.Error(t, err)
}

func TestDefaultIdentity(t *testing.T) {
	c, err := NewClient(&ClientOptions{Transport: newFakeTransport()})
	require.NoError(t, err)

	host, _ := os.Hostname()
	if host == "" {
		host = "unknown-host"
	}
	assert.Equal(t, fmt.Sprintf("%d@%s", os.Getpid(), host), c.Identity())
}

func TestStartWorkflowExecutionDefaults(t *testing.T) {
	ft := newFakeTransport()
	ft.on(api.MethodStartWorkflowExecution, func(any) api.Result {
		return &api.StartWorkflowExecutionResult{Success: &api.StartWorkflowExecutionResponse{RunID: "run-1"}}
	})
	c := newTestClient(t, ft)

	req := &api.StartWorkflowExecutionRequest{
		Domain:       "sample",
		WorkflowID:   "wf-1",
		WorkflowType: &api.WorkflowType{Name: "Greeting"},
		TaskList:     &api.TaskList{Name: "tl"},
	}
	resp, err := c.StartWorkflowExecution(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "run-1", resp.RunID)

	calls := ft.callsTo(api.MethodStartWorkflowExecution)
	require.Len(t, calls, 1)
	assert.Equal(t, api.FrontendServiceName, calls[0].service)
	sent := calls[0].request.(*api.StartWorkflowExecutionRequest)
	assert.Equal(t, "7@test-host", sent.Identity)
	assert.NotEmpty(t, sent.RequestID)
	assert.EqualValues(t, 86400, sent.ExecutionStartToCloseTimeoutSeconds)
	assert.EqualValues(t, 120, sent.TaskStartToCloseTimeoutSeconds)

	assert.Empty(t, req.Identity, "caller request must not be modified")
	assert.Empty(t, req.RequestID)
}

func TestStartWorkflowExecutionAlreadyStarted(t *testing.T) {
	ft := newFakeTransport()
	ft.on(api.MethodStartWorkflowExecution, func(any) api.Result {
		return &api.StartWorkflowExecutionResult{ServiceFailures: api.ServiceFailures{
			WorkflowExecutionAlreadyStartedError: &api.WorkflowExecutionAlreadyStartedError{RunID: "run-0"},
		}}
	})
	c := newTestClient(t, ft)

	resp, err := c.StartWorkflowExecution(context.Background(), &api.StartWorkflowExecutionRequest{Domain: "sample"})
	assert.Nil(t, resp)
	require.ErrorIs(t, err, rpc.ErrWorkflowAlreadyStarted)
	assert.False(t, rpc.IsTransportError(err))
}

func TestRegisterDomain(t *testing.T) {
	tests := []struct {
		name    string
		result  api.Result
		wantErr error
	}{
		{name: "no failure is success", result: &api.RegisterDomainResult{}},
		{
			name: "domain exists",
			result: &api.RegisterDomainResult{ServiceFailures: api.ServiceFailures{
				DomainAlreadyExistsError: &api.DomainAlreadyExistsError{Message: "exists"},
			}},
			wantErr: rpc.ErrDomainAlreadyExists,
		},
		{
			name: "bad request",
			result: &api.RegisterDomainResult{ServiceFailures: api.ServiceFailures{
				BadRequestError: &api.BadRequestError{Message: "name"},
			}},
			wantErr: rpc.ErrBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := newFakeTransport()
			ft.on(api.MethodRegisterDomain, func(any) api.Result { return tt.result })
			c := newTestClient(t, ft)

			err := c.RegisterDomain(context.Background(), &api.RegisterDomainRequest{Name: "sample"})
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPollForActivityTask(t *testing.T) {
	t.Run("wraps task list and stamps identity", func(t *testing.T) {
		ft := newFakeTransport()
		ft.on(api.MethodPollForActivityTask, func(any) api.Result {
			return &api.PollForActivityTaskResult{Success: &api.PollForActivityTaskResponse{
				TaskToken:         api.TaskToken("T1"),
				WorkflowExecution: &api.WorkflowExecution{WorkflowID: "wf-1", RunID: "run-1"},
			}}
		})
		c := newTestClient(t, ft)

		task, err := c.PollForActivityTask(context.Background(), "sample", "tl")
		require.NoError(t, err)
		require.NotNil(t, task)
		assert.Equal(t, api.TaskToken("T1"), task.TaskToken)

		sent := ft.callsTo(api.MethodPollForActivityTask)[0].request.(*api.PollForActivityTaskRequest)
		assert.Equal(t, "sample", sent.Domain)
		assert.Equal(t, &api.TaskList{Name: "tl"}, sent.TaskList)
		assert.Equal(t, "7@test-host", sent.Identity)
	})

	t.Run("long poll overrides the request timeout", func(t *testing.T) {
		ft := newFakeTransport()
		ft.on(api.MethodPollForActivityTask, func(any) api.Result {
			return &api.PollForActivityTaskResult{Success: &api.PollForActivityTaskResponse{}}
		})
		ft.on(api.MethodRecordActivityTaskHeartbeat, func(any) api.Result {
			return &api.RecordActivityTaskHeartbeatResult{Success: &api.RecordActivityTaskHeartbeatResponse{}}
		})
		c := newTestClient(t, ft)

		_, err := c.PollForActivityTask(context.Background(), "sample", "tl")
		require.NoError(t, err)
		_, err = c.RecordActivityTaskHeartbeat(context.Background(), &api.RecordActivityTaskHeartbeatRequest{TaskToken: api.TaskToken("T1")})
		require.NoError(t, err)

		assert.Equal(t, DefaultPollTimeout, ft.callsTo(api.MethodPollForActivityTask)[0].callTimeout)
		assert.Zero(t, ft.callsTo(api.MethodRecordActivityTaskHeartbeat)[0].callTimeout)
	})

	t.Run("empty token means no task", func(t *testing.T) {
		ft := newFakeTransport()
		ft.on(api.MethodPollForActivityTask, func(any) api.Result {
			return &api.PollForActivityTaskResult{Success: &api.PollForActivityTaskResponse{}}
		})
		c := newTestClient(t, ft)

		task, err := c.PollForActivityTask(context.Background(), "sample", "tl")
		require.NoError(t, err)
		assert.Nil(t, task)
	})

	t.Run("nothing populated is an internal error", func(t *testing.T) {
		c := newTestClient(t, newFakeTransport())
		task, err := c.PollForActivityTask(context.Background(), "sample", "tl")
		assert.Nil(t, task)
		require.ErrorIs(t, err, rpc.ErrInternalService)
	})

	t.Run("transport failure is distinct", func(t *testing.T) {
		ft := newFakeTransport()
		ft.fail(errors.New("no responders"))
		c := newTestClient(t, ft)

		task, err := c.PollForActivityTask(context.Background(), "sample", "tl")
		assert.Nil(t, task)
		require.True(t, rpc.IsTransportError(err))
		var se *rpc.ServiceError
		assert.False(t, errors.As(err, &se))
	})
}

// A stale token is a declared condition: it comes back as a value, not a panic.
func TestRespondCompletedStaleToken(t *testing.T) {
	ft := newFakeTransport()
	ft.on(api.MethodRespondActivityTaskCompleted, func(any) api.Result {
		return &api.RespondActivityTaskCompletedResult{ServiceFailures: api.ServiceFailures{
			TaskAlreadyCompletedError: &api.TaskAlreadyCompletedError{Message: "already completed"},
		}}
	})
	c := newTestClient(t, ft)

	var err error
	require.NotPanics(t, func() {
		err = c.RespondActivityTaskCompleted(context.Background(), &api.RespondActivityTaskCompletedRequest{
			TaskToken: api.TaskToken("T1"),
			Result:    []byte(`"done"`),
		})
	})
	require.ErrorIs(t, err, rpc.ErrTaskAlreadyCompleted)

	sent := ft.callsTo(api.MethodRespondActivityTaskCompleted)[0].request.(*api.RespondActivityTaskCompletedRequest)
	assert.Equal(t, api.TaskToken("T1"), sent.TaskToken)
	assert.Equal(t, "7@test-host", sent.Identity)
}

func TestRespondFailedAndCanceled(t *testing.T) {
	ft := newFakeTransport()
	c := newTestClient(t, ft)

	require.NoError(t, c.RespondActivityTaskFailed(context.Background(), &api.RespondActivityTaskFailedRequest{
		TaskToken: api.TaskToken("T1"),
		Reason:    "boom",
	}))
	require.NoError(t, c.RespondActivityTaskCanceled(context.Background(), &api.RespondActivityTaskCanceledRequest{
		TaskToken: api.TaskToken("T2"),
	}))

	failed := ft.callsTo(api.MethodRespondActivityTaskFailed)[0].request.(*api.RespondActivityTaskFailedRequest)
	assert.Equal(t, "boom", failed.Reason)
	assert.Equal(t, "7@test-host", failed.Identity)
	canceled := ft.callsTo(api.MethodRespondActivityTaskCanceled)[0].request.(*api.RespondActivityTaskCanceledRequest)
	assert.Equal(t, api.TaskToken("T2"), canceled.TaskToken)
}

func TestRecordActivityTaskHeartbeat(t *testing.T) {
	ft := newFakeTransport()
	ft.on(api.MethodRecordActivityTaskHeartbeat, func(any) api.Result {
		return &api.RecordActivityTaskHeartbeatResult{ServiceFailures: api.ServiceFailures{
			EntityNotExistsError: &api.EntityNotExistsError{Message: "gone"},
		}}
	})
	c := newTestClient(t, ft)

	resp, err := c.RecordActivityTaskHeartbeat(context.Background(), &api.RecordActivityTaskHeartbeatRequest{TaskToken: api.TaskToken("T1")})
	assert.Nil(t, resp)
	require.ErrorIs(t, err, rpc.ErrEntityNotExists)
}
