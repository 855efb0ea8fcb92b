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
	"reflect"
	"runtime/debug"
	"sync"
	"time"

	"github.com/ngnhng/cadence-go/api"
	"github.com/ngnhng/cadence-go/api/serde"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultPollerCount                        = 2
	DefaultMaxConcurrentActivityExecutionSize = 100
	DefaultReportTimeout                      = 10 * time.Second
)

type (
	WorkerOptions struct {
		Domain   string
		TaskList string
		// Pollers is the number of concurrent PollForActivityTask loops.
		Pollers int
		// MaxConcurrentActivityExecutionSize caps running activities. Pollers
		// stop polling while the cap is reached.
		MaxConcurrentActivityExecutionSize int
		// ReportTimeout bounds each Respond* call made after an activity returns.
		ReportTimeout time.Duration
		PollRetryPolicy *RetryPolicy
		Logger          *slog.Logger
		// MetricsRegisterer receives the worker and RPC collectors. Nil
		// leaves them unregistered.
		MetricsRegisterer prometheus.Registerer
	}

	ActivityRegistry interface {
		RegisterActivity(fn any, options ...RegisterActivityOptions) error
	}
)

var _ ActivityRegistry = (*Worker)(nil)

// Worker polls one task list and runs the registered activity functions.
type Worker struct {
	service WorkflowService
	opts    WorkerOptions

	registry      *activityRegistry
	payloads      serde.BinarySerde
	typeConverter *serde.TypeConverter

	sem      *semaphore.Weighted
	inflight sync.WaitGroup
	logger   *slog.Logger
}

func NewWorker(service WorkflowService, opts WorkerOptions) (*Worker, error) {
	if service == nil {
		return nil, fmt.Errorf("worker requires a service client")
	}
	if opts.Domain == "" || opts.TaskList == "" {
		return nil, fmt.Errorf("worker requires a domain and a task list")
	}
	if opts.Pollers <= 0 {
		opts.Pollers = DefaultPollerCount
	}
	if opts.MaxConcurrentActivityExecutionSize <= 0 {
		opts.MaxConcurrentActivityExecutionSize = DefaultMaxConcurrentActivityExecutionSize
	}
	if opts.ReportTimeout <= 0 {
		opts.ReportTimeout = DefaultReportTimeout
	}
	if opts.PollRetryPolicy == nil {
		opts.PollRetryPolicy = DefaultPollRetryPolicy()
	}

	if err := RegisterMetrics(opts.MetricsRegisterer); err != nil {
		return nil, fmt.Errorf("failed to register worker metrics: %w", err)
	}

	payloads := &serde.JsonSerde{}
	return &Worker{
		service:       service,
		opts:          opts,
		registry:      newActivityRegistry(),
		payloads:      payloads,
		typeConverter: serde.NewTypeConverter(payloads),
		sem:           semaphore.NewWeighted(int64(opts.MaxConcurrentActivityExecutionSize)),
		logger:        defaultLogger(opts.Logger).With("domain", opts.Domain, "task_list", opts.TaskList),
	}, nil
}

func (w *Worker) RegisterActivity(fn any, options ...RegisterActivityOptions) error {
	var opts RegisterActivityOptions
	if len(options) > 0 {
		opts = options[0]
	}
	name, err := w.registry.register(fn, opts)
	if err != nil {
		return err
	}
	w.logger.Debug("activity registered", "activity_type", name)
	return nil
}

// Run polls until ctx is done, then waits for running activities to report.
func (w *Worker) Run(ctx context.Context) error {
	if w.registry.size() == 0 {
		return fmt.Errorf("worker has no registered activities")
	}
	w.logger.Info("worker started",
		"pollers", w.opts.Pollers,
		"max_concurrent", w.opts.MaxConcurrentActivityExecutionSize,
		"activities", w.registry.names(),
	)

	g, gCtx := errgroup.WithContext(ctx)
	for range w.opts.Pollers {
		g.Go(func() error {
			return w.pollLoop(gCtx)
		})
	}
	err := g.Wait()
	w.inflight.Wait()
	w.logger.Info("worker stopped")
	return err
}

func (w *Worker) pollLoop(ctx context.Context) error {
	failures := 0
	for {
		if err := w.sem.Acquire(ctx, 1); err != nil {
			return nil
		}

		task, err := w.service.PollForActivityTask(ctx, w.opts.Domain, w.opts.TaskList)
		if err != nil {
			w.sem.Release(1)
			if ctx.Err() != nil {
				return nil
			}
			failures++
			pollCounter.WithLabelValues(outcomeError).Inc()
			delay := w.opts.PollRetryPolicy.CalculateNextDelay(failures)
			w.logger.Warn("poll for activity task failed", "error", err, "attempt", failures, "next_delay", delay)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			continue
		}
		failures = 0

		if task == nil {
			w.sem.Release(1)
			pollCounter.WithLabelValues(outcomeEmpty).Inc()
			continue
		}
		pollCounter.WithLabelValues(outcomeOK).Inc()

		w.inflight.Add(1)
		go func() {
			defer w.inflight.Done()
			defer w.sem.Release(1)
			w.processTask(ctx, task)
		}()
	}
}

func (w *Worker) processTask(ctx context.Context, task *api.PollForActivityTaskResponse) {
	actx, ac, cancel := NewActivityContext(ctx, w.service, w.opts.Domain, w.opts.TaskList, task, w.logger)
	defer cancel()
	info := ac.Info()

	inflightGauge.Inc()
	start := time.Now()
	result, execErr := w.execute(actx, info.ActivityType, task.Input)
	executionLatency.WithLabelValues(info.ActivityType).Observe(time.Since(start).Seconds())
	inflightGauge.Dec()

	reportCtx, cancelReport := context.WithTimeout(context.WithoutCancel(ctx), w.opts.ReportTimeout)
	defer cancelReport()

	var (
		outcome   string
		reportErr error
	)
	switch {
	case execErr == nil:
		outcome = outcomeCompleted
		reportErr = ac.Complete(reportCtx, result)
	case errors.Is(execErr, ErrCanceled) || errors.Is(context.Cause(actx), ErrCanceled):
		outcome = outcomeCanceled
		var details []byte
		var cerr *CanceledError
		if errors.As(execErr, &cerr) || errors.As(context.Cause(actx), &cerr) {
			details = cerr.Details
		}
		reportErr = ac.ReportCanceled(reportCtx, details)
	default:
		outcome = outcomeFailed
		reason, details := failureOf(execErr)
		ac.Logger().Warn("activity failed", "error", execErr)
		reportErr = ac.Fail(reportCtx, reason, details)
	}
	executionCounter.WithLabelValues(info.ActivityType, outcome).Inc()

	if reportErr != nil {
		reportFailureCounter.WithLabelValues(info.ActivityType, outcome).Inc()
		ac.Logger().Error("failed to report activity outcome",
			"outcome", outcome,
			"error", NewTaskProcessingError(info.ActivityType, info.ActivityID, info.WorkflowExecution.WorkflowID, reportErr),
		)
		return
	}
	ac.Logger().Debug("activity outcome reported", "outcome", outcome)
}

// failureOf derives the reason and details of a RespondActivityTaskFailed.
func failureOf(err error) (string, []byte) {
	var perr *PanicError
	if errors.As(err, &perr) {
		return perr.Error(), []byte(perr.Stack)
	}
	return err.Error(), nil
}

// execute decodes input, calls the activity and encodes its result.
func (w *Worker) execute(ctx context.Context, activityType string, input []byte) (result []byte, err error) {
	entry, err := w.registry.get(activityType)
	if err != nil {
		return nil, err
	}

	args, err := w.decodeInput(input)
	if err != nil {
		return nil, err
	}
	argv, err := w.typeConverter.ConvertArgs(args, entry.typ, 1)
	if err != nil {
		return nil, fmt.Errorf("activity %s: %w", activityType, err)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &PanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()

	out := entry.fn.Call(append([]reflect.Value{reflect.ValueOf(ctx)}, argv...))
	if last := out[len(out)-1]; !last.IsNil() {
		return nil, last.Interface().(error)
	}
	if len(out) == 1 {
		return nil, nil
	}
	data, err := w.payloads.SerializeBinary(out[0].Interface())
	if err != nil {
		return nil, fmt.Errorf("failed to encode activity result: %w", err)
	}
	return data, nil
}

// decodeInput accepts a JSON array of positional arguments, or a single JSON
// value for one-argument activities.
func (w *Worker) decodeInput(input []byte) ([]any, error) {
	trimmed := bytes.TrimSpace(input)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var args []any
		if err := w.payloads.DeserializeBinary(trimmed, &args); err != nil {
			return nil, fmt.Errorf("failed to decode activity input: %w", err)
		}
		return args, nil
	}
	var arg any
	if err := w.payloads.DeserializeBinary(trimmed, &arg); err != nil {
		return nil, fmt.Errorf("failed to decode activity input: %w", err)
	}
	return []any{arg}, nil
}
