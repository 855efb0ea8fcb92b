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
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/ngnhng/cadence-go/api"
	"github.com/ngnhng/cadence-go/api/serde"
	"github.com/ngnhng/cadence-go/sdk/internal/protocol/rpc"
)

// Interceptor answers a request instead of the Store. Returning nil falls
// through to the Store.
type Interceptor func(req any) api.Result

// Call is one decoded request the handler received.
type Call struct {
	Service   string
	Procedure string
	Method    string
	Request   any
}

type Handler struct {
	conv   serde.BinarySerde
	store  *Store
	logger *slog.Logger

	mu           sync.Mutex
	interceptors map[string]Interceptor
	calls        []Call
}

func NewHandler(store *Store, conv serde.BinarySerde, logger *slog.Logger) *Handler {
	if conv == nil {
		conv = &serde.MsgpackSerde{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		conv:         conv,
		store:        store,
		logger:       logger,
		interceptors: make(map[string]Interceptor),
	}
}

// Intercept routes method (e.g. api.MethodRecordActivityTaskHeartbeat) to fn.
func (h *Handler) Intercept(method string, fn Interceptor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.interceptors[method] = fn
}

// Calls returns the requests received so far, optionally filtered by method.
func (h *Handler) Calls(method ...string) []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(method) == 0 {
		return append([]Call(nil), h.calls...)
	}
	var out []Call
	for _, c := range h.calls {
		for _, m := range method {
			if c.Method == m {
				out = append(out, c)
			}
		}
	}
	return out
}

func (h *Handler) HandleRequest(msg *nats.Msg) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic in frontend handler", "error", r)
			h.respondError(msg, fmt.Sprintf("internal frontend panic: %v", r))
		}
	}()

	service := msg.Header.Get(api.RPCServiceHeader)
	procedure := msg.Header.Get(api.RPCProcedureHeader)
	mi, ok := rpc.Lookup(procedure)
	if !ok || mi.Procedure != procedure {
		h.logger.Warn("unknown procedure", "procedure", procedure)
		h.respondError(msg, "unknown procedure "+procedure)
		return
	}
	if enc := msg.Header.Get(api.RPCEncodingHeader); enc != "" && enc != api.EncodingMsgpack {
		h.respondError(msg, "unsupported encoding "+enc)
		return
	}

	req := mi.NewRequest()
	if err := h.conv.DeserializeBinary(msg.Data, req); err != nil {
		h.logger.Debug("undecodable request", "procedure", procedure, "error", err)
		h.respondError(msg, "failed to decode request: "+err.Error())
		return
	}

	h.mu.Lock()
	h.calls = append(h.calls, Call{Service: service, Procedure: procedure, Method: mi.Name, Request: req})
	intercept := h.interceptors[mi.Name]
	h.mu.Unlock()

	var result api.Result
	if intercept != nil {
		result = intercept(req)
	}
	if result == nil {
		result = h.dispatch(req)
	}

	reply, err := h.conv.SerializeBinary(result)
	if err != nil {
		h.respondError(msg, "failed to encode response: "+err.Error())
		return
	}
	h.logger.Debug("frontend reply", "procedure", procedure, "bytes", len(reply))
	if err := msg.Respond(reply); err != nil {
		h.logger.Error("failed to send response", "error", err)
	}
}

func (h *Handler) dispatch(req any) api.Result {
	switch r := req.(type) {
	case *api.StartWorkflowExecutionRequest:
		return h.store.StartWorkflowExecution(r)
	case *api.RegisterDomainRequest:
		return h.store.RegisterDomain(r)
	case *api.PollForActivityTaskRequest:
		return h.store.PollForActivityTask(r)
	case *api.RespondActivityTaskCompletedRequest:
		return h.store.RespondActivityTaskCompleted(r)
	case *api.RespondActivityTaskFailedRequest:
		return h.store.RespondActivityTaskFailed(r)
	case *api.RespondActivityTaskCanceledRequest:
		return h.store.RespondActivityTaskCanceled(r)
	case *api.RecordActivityTaskHeartbeatRequest:
		return h.store.RecordActivityTaskHeartbeat(r)
	default:
		panic(fmt.Sprintf("no store operation for %T", req))
	}
}

func (h *Handler) respondError(msg *nats.Msg, reason string) {
	if msg.Reply == "" {
		return
	}
	reply := nats.NewMsg(msg.Reply)
	reply.Header.Set(api.RPCErrorHeader, reason)
	if err := msg.RespondMsg(reply); err != nil {
		h.logger.Error("failed to send error reply", "error", err)
	}
}

// Listen queue-subscribes h on subject and flushes so that the
// subscription is live on the server when it returns. Each request is
// handled on its own goroutine so that a long poll does not hold up
// heartbeats.
func Listen(nc *nats.Conn, subject string, h *Handler) (*nats.Subscription, error) {
	sub, err := nc.QueueSubscribe(subject, api.FrontendServiceName, func(msg *nats.Msg) {
		go h.HandleRequest(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to queue subscribe to subject %s: %w", subject, err)
	}
	if err := nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("failed to flush subscription on %s: %w", subject, err)
	}
	return sub, nil
}

// Serve runs Listen until ctx is done.
func Serve(ctx context.Context, nc *nats.Conn, subject string, h *Handler) error {
	sub, err := Listen(nc, subject, h)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	<-ctx.Done()
	return nil
}
