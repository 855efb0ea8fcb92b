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

package worker

import (
	"context"

	"github.com/ngnhng/cadence-go/sdk/client"
	"github.com/ngnhng/cadence-go/sdk/config"
	"github.com/ngnhng/cadence-go/sdk/internal"
)

// Worker polls one task list and runs the registered activity functions.
//
// Example:
//
//	w, err := worker.New(c, worker.Options{
//		Domain:   "sample",
//		TaskList: "downloads",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := w.RegisterActivity(Download); err != nil {
//		log.Fatal(err)
//	}
//
//	if err := w.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
type Worker interface {
	ActivityRegistry
	// Run polls until ctx is canceled, then waits for running activities to
	// report their outcome.
	Run(ctx context.Context) error
}

// ActivityRegistry provides methods for registering activity functions.
//
// The activity function signature must be func(context.Context, ...args) error
// or func(context.Context, ...args) (result, error).
type ActivityRegistry = internal.ActivityRegistry

// RegisterActivityOptions overrides the registered activity type name.
type RegisterActivityOptions = internal.RegisterActivityOptions

// Options contains configuration for creating a new Worker.
type Options = internal.WorkerOptions

// RetryPolicy controls the backoff between failed polls.
type RetryPolicy = internal.RetryPolicy

// New creates a Worker over c.
//
// Returns an error if c is nil or Options has no domain or task list.
func New(c client.Client, options Options) (Worker, error) {
	return internal.NewWorker(c, options)
}

// OptionsFromConfig reads the WORKER_ section of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Domain:                             cfg.Worker.Domain,
		TaskList:                           cfg.Worker.TaskList,
		Pollers:                            cfg.Worker.Pollers,
		MaxConcurrentActivityExecutionSize: cfg.Worker.MaxConcurrent,
	}
}
