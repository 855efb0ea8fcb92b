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

// Package activity provides the functions an activity uses to learn about
// the task it is running and to report progress.
//
// # Activity Functions
//
// An activity is a plain Go function whose first parameter is
// context.Context:
//
//	func Download(ctx context.Context, url string) (string, error) {
//		var offset int64
//		if activity.HasHeartbeatDetails(ctx) {
//			if _, err := activity.GetHeartbeatDetails(ctx, &offset); err != nil {
//				return "", err
//			}
//		}
//		for chunk := range fetch(url, offset) {
//			offset += chunk.Size
//			if err := activity.RecordHeartbeat(ctx, offset); err != nil {
//				return "", err
//			}
//		}
//		return url, nil
//	}
//
// # Activity Context
//
// The worker binds the task to the context.Context it passes to the
// function. Every accessor in this package reads from that binding, so
// activities running at the same time never see each other's task. Calling
// an accessor with any other context panics with ErrUnboundContext.
//
// # Heartbeats and Cancellation
//
// RecordHeartbeat tells the frontend the activity is alive. The frontend
// answers cancellation requests through the heartbeat response; when it
// does, RecordHeartbeat returns a *CanceledError and the activity's context
// is canceled. Heartbeat details are delivered to the next attempt, where
// GetHeartbeatDetails reads them back.
package activity
