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
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK             = "ok"
	outcomeTransportError = "transport_error"
	outcomeCodecError     = "codec_error"
)

var (
	callCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cadence_worker",
		Subsystem: "rpc",
		Name:      "calls_total",
		Help:      "Number of RPC round-trips grouped by method and outcome.",
	}, []string{"method", "outcome"})

	callLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cadence_worker",
		Subsystem: "rpc",
		Name:      "call_duration_seconds",
		Help:      "Latency of RPC round-trips per method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
)

// RegisterMetrics adds the RPC collectors to reg. Nothing is registered
// until a caller asks; registering again with the same reg is not an error.
func RegisterMetrics(reg prometheus.Registerer) error {
	return RegisterCollectors(reg, callCounter, callLatency)
}

// RegisterCollectors registers cs with reg, ignoring collectors reg already
// holds. A nil reg registers nothing.
func RegisterCollectors(reg prometheus.Registerer, cs ...prometheus.Collector) error {
	if reg == nil {
		return nil
	}
	var errs []error
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) && are.ExistingCollector == c {
				continue
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func observeCall(method, outcome string, start time.Time) {
	callCounter.WithLabelValues(method, outcome).Inc()
	callLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
