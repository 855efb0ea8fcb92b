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
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/nats-io/nats.go"
	"github.com/ngnhng/cadence-go/api"
	natz "github.com/ngnhng/cadence-go/sdk/internal/protocol/nats"
	"github.com/ngnhng/cadence-go/sdk/internal/protocol/rpc"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultPollTimeout bounds one PollForActivityTask round-trip. It is longer
// than the frontend's own long-poll expiry so an idle poll returns empty
// instead of timing out.
const DefaultPollTimeout = 70 * time.Second

var _ WorkflowService = (*serviceClient)(nil)

type (
	// WorkflowService is the worker's typed view of the frontend. Service
	// declared failures come back as *rpc.ServiceError values with a nil
	// result; calls that could not complete return *rpc.TransportError.
	WorkflowService interface {
		StartWorkflowExecution(ctx context.Context, req *api.StartWorkflowExecutionRequest) (*api.StartWorkflowExecutionResponse, error)
		RegisterDomain(ctx context.Context, req *api.RegisterDomainRequest) error
		// PollForActivityTask returns (nil, nil) when no task was available.
		PollForActivityTask(ctx context.Context, domain, taskList string) (*api.PollForActivityTaskResponse, error)
		RespondActivityTaskCompleted(ctx context.Context, req *api.RespondActivityTaskCompletedRequest) error
		RespondActivityTaskFailed(ctx context.Context, req *api.RespondActivityTaskFailedRequest) error
		RespondActivityTaskCanceled(ctx context.Context, req *api.RespondActivityTaskCanceledRequest) error
		RecordActivityTaskHeartbeat(ctx context.Context, req *api.RecordActivityTaskHeartbeatRequest) (*api.RecordActivityTaskHeartbeatResponse, error)
		// Identity is the "<pid>@<hostname>" string stamped on every request.
		Identity() string
	}

	ClientOptions struct {
		// Conn is an established NATS connection. Ignored when Transport is set.
		Conn      *nats.Conn
		Namespace string
		// Transport replaces the NATS transport, e.g. with an in-process fake.
		Transport rpc.Transport
		// Service overrides the remote service name (default "cadence-frontend").
		Service        string
		Identity       string
		RequestTimeout time.Duration
		PollTimeout    time.Duration
		Logger         *slog.Logger
		// MetricsRegisterer receives the RPC collectors. Nil leaves them
		// unregistered.
		MetricsRegisterer prometheus.Registerer
	}
)

type serviceClient struct {
	gateway     *rpc.Gateway
	identity    string
	pollTimeout time.Duration
	logger      *slog.Logger
}

func NewClient(options *ClientOptions) (WorkflowService, error) {
	if options == nil || (options.Conn == nil && options.Transport == nil) {
		return nil, fmt.Errorf("client options must include an established NATS connection or a transport")
	}

	logger := defaultLogger(options.Logger)
	if err := rpc.RegisterMetrics(options.MetricsRegisterer); err != nil {
		return nil, fmt.Errorf("failed to register rpc metrics: %w", err)
	}
	transport := options.Transport
	if transport == nil {
		conn, err := natz.Wrap(options.Conn, options.Namespace,
			natz.WithLogger(logger),
			natz.WithRequestTimeout(options.RequestTimeout),
		)
		if err != nil {
			return nil, err
		}
		transport = conn
	}

	gateway, err := rpc.NewGateway(transport, nil, rpc.WithService(options.Service), rpc.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	identity := options.Identity
	if identity == "" {
		identity = defaultIdentity()
	}
	pollTimeout := options.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}

	return &serviceClient{
		gateway:     gateway,
		identity:    identity,
		pollTimeout: pollTimeout,
		logger:      logger.With("identity", identity),
	}, nil
}

func defaultIdentity() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown-host"
	}
	return fmt.Sprintf("%d@%s", os.Getpid(), host)
}

func (c *serviceClient) Identity() string { return c.identity }

// StartWorkflowExecution fills identity, a request id and the default
// timeouts when the caller leaves them unset. req is not modified.
func (c *serviceClient) StartWorkflowExecution(ctx context.Context, req *api.StartWorkflowExecutionRequest) (*api.StartWorkflowExecutionResponse, error) {
	r := *req
	if r.Identity == "" {
		r.Identity = c.identity
	}
	if r.RequestID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("failed to generate request id: %w", err)
		}
		r.RequestID = id.String()
	}
	if r.ExecutionStartToCloseTimeoutSeconds == 0 {
		r.ExecutionStartToCloseTimeoutSeconds = int32(api.DefaultExecutionStartToCloseTimeout / time.Second)
	}
	if r.TaskStartToCloseTimeoutSeconds == 0 {
		r.TaskStartToCloseTimeoutSeconds = int32(api.DefaultTaskStartToCloseTimeout / time.Second)
	}

	res, err := rpc.Call(ctx, c.gateway, rpc.StartWorkflowExecution, &r)
	if err != nil {
		return nil, err
	}
	if err := rpc.MapError(res); err != nil {
		return nil, err
	}
	return res.Success, nil
}

// RegisterDomain has no success payload; a nil error is success.
func (c *serviceClient) RegisterDomain(ctx context.Context, req *api.RegisterDomainRequest) error {
	res, err := rpc.Call(ctx, c.gateway, rpc.RegisterDomain, req)
	if err != nil {
		return err
	}
	return rpc.MapError(res)
}

func (c *serviceClient) PollForActivityTask(ctx context.Context, domain, taskList string) (*api.PollForActivityTaskResponse, error) {
	ctx, cancel := context.WithTimeout(rpc.WithCallTimeout(ctx, c.pollTimeout), c.pollTimeout)
	defer cancel()

	res, err := rpc.Call(ctx, c.gateway, rpc.PollForActivityTask, &api.PollForActivityTaskRequest{
		Domain:   domain,
		TaskList: &api.TaskList{Name: taskList},
		Identity: c.identity,
	})
	if err != nil {
		return nil, err
	}
	if err := rpc.MapError(res); err != nil {
		return nil, err
	}
	if res.Success.TaskToken.IsEmpty() {
		return nil, nil
	}
	return res.Success, nil
}

func (c *serviceClient) RespondActivityTaskCompleted(ctx context.Context, req *api.RespondActivityTaskCompletedRequest) error {
	r := *req
	if r.Identity == "" {
		r.Identity = c.identity
	}
	res, err := rpc.Call(ctx, c.gateway, rpc.RespondActivityTaskCompleted, &r)
	if err != nil {
		return err
	}
	return rpc.MapError(res)
}

func (c *serviceClient) RespondActivityTaskFailed(ctx context.Context, req *api.RespondActivityTaskFailedRequest) error {
	r := *req
	if r.Identity == "" {
		r.Identity = c.identity
	}
	res, err := rpc.Call(ctx, c.gateway, rpc.RespondActivityTaskFailed, &r)
	if err != nil {
		return err
	}
	return rpc.MapError(res)
}

func (c *serviceClient) RespondActivityTaskCanceled(ctx context.Context, req *api.RespondActivityTaskCanceledRequest) error {
	r := *req
	if r.Identity == "" {
		r.Identity = c.identity
	}
	res, err := rpc.Call(ctx, c.gateway, rpc.RespondActivityTaskCanceled, &r)
	if err != nil {
		return err
	}
	return rpc.MapError(res)
}

func (c *serviceClient) RecordActivityTaskHeartbeat(ctx context.Context, req *api.RecordActivityTaskHeartbeatRequest) (*api.RecordActivityTaskHeartbeatResponse, error) {
	r := *req
	if r.Identity == "" {
		r.Identity = c.identity
	}
	res, err := rpc.Call(ctx, c.gateway, rpc.RecordActivityTaskHeartbeat, &r)
	if err != nil {
		return nil, err
	}
	if err := rpc.MapError(res); err != nil {
		return nil, err
	}
	return res.Success, nil
}
