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
	"errors"

	"github.com/ngnhng/cadence-go/sdk/internal/protocol/rpc"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK              = "ok"
	outcomeError           = "error"
	outcomeEmpty           = "empty"
	outcomeReleased        = "released"
	outcomeCancelRequested = "cancel_requested"
	outcomeCompleted       = "completed"
	outcomeFailed          = "failed"
	outcomeCanceled        = "canceled"
)

var (
	pollCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cadence_worker",
		Subsystem: "activity",
		Name:      "polls_total",
		Help:      "Activity task polls grouped by outcome (ok, empty, error).",
	}, []string{"outcome"})

	heartbeatCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cadence_worker",
		Subsystem: "activity",
		Name:      "heartbeats_total",
		Help:      "Activity heartbeats grouped by outcome.",
	}, []string{"outcome"})

	executionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cadence_worker",
		Subsystem: "activity",
		Name:      "executions_total",
		Help:      "Activity executions grouped by type and terminal outcome.",
	}, []string{"activity_type", "outcome"})

	executionLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cadence_worker",
		Subsystem: "activity",
		Name:      "execution_duration_seconds",
		Help:      "Time spent in activity functions.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 4, 10),
	}, []string{"activity_type"})

	reportFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cadence_worker",
		Subsystem: "activity",
		Name:      "report_failures_total",
		Help:      "Outcome reports the frontend did not accept.",
	}, []string{"activity_type", "outcome"})

	inflightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cadence_worker",
		Subsystem: "activity",
		Name:      "inflight",
		Help:      "Activity executions currently running.",
	})
)

// RegisterMetrics adds the worker and RPC collectors to reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	return errors.Join(
		rpc.RegisterCollectors(reg,
			pollCounter,
			heartbeatCounter,
			executionCounter,
			executionLatency,
			reportFailureCounter,
			inflightGauge,
		),
		rpc.RegisterMetrics(reg),
	)
}
