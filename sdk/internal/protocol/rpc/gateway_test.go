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
	"context"
	"errors"
	"testing"

	"github.com/ngnhng/cadence-go/api"
	"github.com/ngnhng/cadence-go/api/serde"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Exchange(ctx context.Context, service, procedure string, payload []byte) ([]byte, error) {
	args := m.Called(ctx, service, procedure, payload)
	reply, _ := args.Get(0).([]byte)
	return reply, args.Error(1)
}

func mustEncode(t *testing.T, v any) []byte {
	t.Helper()
	data, err := (&serde.MsgpackSerde{}).SerializeBinary(v)
	require.NoError(t, err)
	return data
}

func TestCallRoundTrip(t *testing.T) {
	transport := &mockTransport{}
	g, err := NewGateway(transport, nil)
	require.NoError(t, err)

	req := &api.RecordActivityTaskHeartbeatRequest{
		TaskToken: api.TaskToken("T1"),
		Details:   []byte(`{"progress":42}`),
		Identity:  "7@host",
	}
	reply := &api.RecordActivityTaskHeartbeatResult{
		Success: &api.RecordActivityTaskHeartbeatResponse{CancelRequested: true},
	}

	transport.On("Exchange", mock.Anything, api.FrontendServiceName,
		"WorkflowService::RecordActivityTaskHeartbeat", mustEncode(t, req)).
		Return(mustEncode(t, reply), nil).Once()

	got, err := Call(context.Background(), g, RecordActivityTaskHeartbeat, req)
	require.NoError(t, err)
	assert.Equal(t, reply, got)
	transport.AssertExpectations(t)
}

func TestCallCustomService(t *testing.T) {
	transport := &mockTransport{}
	g, err := NewGateway(transport, &serde.MsgpackSerde{}, WithService("frontend-b"))
	require.NoError(t, err)

	transport.On("Exchange", mock.Anything, "frontend-b", "WorkflowService::RegisterDomain", mock.Anything).
		Return(mustEncode(t, &api.RegisterDomainResult{}), nil).Once()

	_, err = Call(context.Background(), g, RegisterDomain, &api.RegisterDomainRequest{Name: "sample"})
	require.NoError(t, err)
	transport.AssertExpectations(t)
}

func TestCallTransportFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind TransportErrorKind
	}{
		{
			name:     "typed transport error passes through",
			err:      NewTransportError(api.FrontendServiceName, "WorkflowService::PollForActivityTask", TransportUnreachable, errors.New("no responders")),
			wantKind: TransportUnreachable,
		},
		{
			name:     "untyped error is wrapped",
			err:      errors.New("broken pipe"),
			wantKind: TransportIO,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &mockTransport{}
			g, err := NewGateway(transport, nil)
			require.NoError(t, err)
			transport.On("Exchange", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			res, err := Call(context.Background(), g, PollForActivityTask, &api.PollForActivityTaskRequest{Domain: "sample"})
			require.Error(t, err)
			assert.Nil(t, res)

			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.wantKind, te.Kind)
			assert.True(t, IsTransportError(err))
		})
	}
}

func TestCallUndecodableReply(t *testing.T) {
	transport := &mockTransport{}
	g, err := NewGateway(transport, nil)
	require.NoError(t, err)
	transport.On("Exchange", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]byte{0xc1}, nil)

	_, err = Call(context.Background(), g, StartWorkflowExecution, &api.StartWorkflowExecutionRequest{})
	require.ErrorIs(t, err, ErrCodec)
	assert.False(t, IsTransportError(err))
}

func TestNewGatewayRequiresTransport(t *testing.T) {
	_, err := NewGateway(nil, nil)
	require.Error(t, err)
}

func TestMethodTable(t *testing.T) {
	names := []string{
		api.MethodPollForActivityTask,
		api.MethodRecordActivityTaskHeartbeat,
		api.MethodRegisterDomain,
		api.MethodRespondActivityTaskCanceled,
		api.MethodRespondActivityTaskCompleted,
		api.MethodRespondActivityTaskFailed,
		api.MethodStartWorkflowExecution,
	}

	methods := Methods()
	require.Len(t, methods, len(names))
	for i, mi := range methods {
		assert.Equal(t, names[i], mi.Name)
		assert.Equal(t, "WorkflowService::"+names[i], mi.Procedure)

		byProcedure, ok := Lookup(mi.Procedure)
		require.True(t, ok)
		assert.Equal(t, mi, byProcedure)

		assert.NotNil(t, mi.NewRequest())
		assert.NotNil(t, mi.NewResponse())
	}

	_, ok := Lookup("DescribeDomain")
	assert.False(t, ok)
}

func TestDuplicateMethodPanics(t *testing.T) {
	assert.Panics(t, func() {
		newMethod[api.RegisterDomainRequest, api.RegisterDomainResult](api.MethodRegisterDomain)
	})
}
