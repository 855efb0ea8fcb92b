// Package testsuite runs an in-memory Cadence frontend on an embedded NATS
// server, for tests and local development against real workers.
package testsuite

import (
	"github.com/ngnhng/cadence-go/api"
	"github.com/ngnhng/cadence-go/sdk/internal/frontend"
)

type (
	FrontendOptions = frontend.Options
	ActivityTask    = frontend.ActivityTask
	TaskRecord      = frontend.TaskRecord
	Outcome         = frontend.Outcome
	Interceptor     = frontend.Interceptor
	Call            = frontend.Call
)

const (
	OutcomeOpen      = frontend.OutcomeOpen
	OutcomeCompleted = frontend.OutcomeCompleted
	OutcomeFailed    = frontend.OutcomeFailed
	OutcomeCanceled  = frontend.OutcomeCanceled
)

// Frontend answers the worker-facing frontend methods from memory.
type Frontend struct {
	e *frontend.Embedded
}

// StartFrontend starts the NATS server and subscribes the frontend on the
// service subject of opts.Namespace.
func StartFrontend(opts FrontendOptions) (*Frontend, error) {
	e, err := frontend.Start(opts)
	if err != nil {
		return nil, err
	}
	return &Frontend{e: e}, nil
}

// URL is the NATS client URL workers connect to.
func (f *Frontend) URL() string { return f.e.URL() }

func (f *Frontend) Namespace() string { return f.e.Namespace() }

func (f *Frontend) Close() { f.e.Close() }

// ScheduleActivity queues task for the next poll on domain and taskList.
func (f *Frontend) ScheduleActivity(domain, taskList string, task ActivityTask) api.TaskToken {
	return f.e.Store.ScheduleActivity(domain, taskList, task)
}

// RequestCancel asks the worker holding token to stop. The request is
// delivered with the next heartbeat.
func (f *Frontend) RequestCancel(token api.TaskToken) bool {
	return f.e.Store.RequestCancel(token)
}

func (f *Frontend) Task(token api.TaskToken) (TaskRecord, bool) {
	return f.e.Store.Task(token)
}

func (f *Frontend) Domain(name string) (api.RegisterDomainRequest, bool) {
	return f.e.Store.Domain(name)
}

// Intercept answers method with fn instead of the store.
func (f *Frontend) Intercept(method string, fn Interceptor) {
	f.e.Handler.Intercept(method, fn)
}

func (f *Frontend) Calls(method ...string) []Call {
	return f.e.Handler.Calls(method...)
}
