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

package activity

import (
	"context"
	"log/slog"

	"github.com/ngnhng/cadence-go/api"
	"github.com/ngnhng/cadence-go/sdk/internal"
)

// Info describes the attempt an activity function is running.
type Info = internal.ActivityInfo

// CanceledError is returned by RecordHeartbeat when the frontend asked the
// activity to stop.
type CanceledError = internal.CanceledError

var (
	// ErrCanceled matches every *CanceledError.
	ErrCanceled = internal.ErrCanceled
	// ErrUnboundContext is the panic value of an accessor called with a
	// context the worker did not create.
	ErrUnboundContext = internal.ErrUnboundContext
	// ErrTaskTokenReleased is returned after the task reached a terminal state.
	ErrTaskTokenReleased = internal.ErrTaskTokenReleased
)

// GetInfo returns the attempt ctx is running. It panics with
// ErrUnboundContext outside an activity.
func GetInfo(ctx context.Context) Info {
	return internal.MustActivityContext(ctx).Info()
}

// GetTaskToken returns the opaque token identifying this attempt.
func GetTaskToken(ctx context.Context) api.TaskToken {
	return internal.MustActivityContext(ctx).TaskToken()
}

func GetWorkflowExecution(ctx context.Context) api.WorkflowExecution {
	return internal.MustActivityContext(ctx).WorkflowExecution()
}

// GetDomain returns the domain the worker polls, which is the domain of the
// activity task.
func GetDomain(ctx context.Context) string {
	return internal.MustActivityContext(ctx).Domain()
}

// GetLogger returns a logger carrying the activity's identifiers.
func GetLogger(ctx context.Context) *slog.Logger {
	return internal.MustActivityContext(ctx).Logger()
}

// HasHeartbeatDetails reports whether a previous attempt recorded progress.
func HasHeartbeatDetails(ctx context.Context) bool {
	return internal.MustActivityContext(ctx).HasHeartbeatDetails()
}

// GetHeartbeatDetails decodes the progress a previous attempt recorded into
// valuePtr and reports whether there was any.
func GetHeartbeatDetails(ctx context.Context, valuePtr any) (bool, error) {
	return internal.MustActivityContext(ctx).HeartbeatDetails(valuePtr)
}

// RecordHeartbeat reports progress. details are JSON-encoded and handed to
// the next attempt if this one does not finish.
//
// When the frontend requests cancellation RecordHeartbeat returns a
// *CanceledError and ctx is canceled with it as the cause. Return the error
// from the activity to report the task canceled.
func RecordHeartbeat(ctx context.Context, details any) error {
	return internal.MustActivityContext(ctx).RecordHeartbeat(ctx, details)
}

// IsActivityContext reports whether ctx belongs to a running activity.
func IsActivityContext(ctx context.Context) bool {
	_, ok := internal.ActivityContextFrom(ctx)
	return ok
}
