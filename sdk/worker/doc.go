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

// Package worker provides the activity worker runtime.
//
// A worker long-polls the frontend for activity tasks on one domain and task
// list, runs the registered function for each task, and reports the outcome
// back with the task token.
//
// # Creating a Worker
//
//	c, err := client.NewClient(&client.Options{Conn: nc})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	w, err := worker.New(c, worker.Options{
//		Domain:   "sample",
//		TaskList: "downloads",
//		Logger:   slog.Default(),
//	})
//
// # Registering Activities
//
//	err = w.RegisterActivity(Download)
//	err = w.RegisterActivity(Resize, worker.RegisterActivityOptions{Name: "Resize"})
//
// Without a name, the activity type is the function's package-qualified name.
//
// # Outcomes
//
// A nil error completes the task with the JSON-encoded result. An error that
// matches activity.ErrCanceled reports the task canceled. Any other error, or
// a panic, fails the task with the error text as the reason.
//
// # Graceful Shutdown
//
// Cancel the context passed to Run. Pollers stop, running activities see
// their context canceled, and Run returns once every outcome is reported.
//
// # Concurrency
//
// Pollers sets the number of concurrent polls and
// MaxConcurrentActivityExecutionSize caps running activities. Pollers pause
// while the cap is reached.
package worker
