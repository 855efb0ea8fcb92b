package internal

import (
	"context"
	"strings"
	"testing"

	"github.com/ngnhng/cadence-go/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func familyNames(t *testing.T, g prometheus.Gatherer) []string {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "cadence_worker_") {
			names = append(names, f.GetName())
		}
	}
	return names
}

func TestWorkerMetricsGoToChosenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	ft := newFakeTransport()
	ft.on(api.MethodRecordActivityTaskHeartbeat, heartbeatReplies(false))

	_, err := NewWorker(newTestClient(t, ft), WorkerOptions{
		Domain:            testDomain,
		TaskList:          testTaskList,
		MetricsRegisterer: reg,
	})
	require.NoError(t, err)

	ctx, ac := bind(t, ft, sampleTask())
	require.NoError(t, ac.RecordHeartbeat(ctx, nil))

	names := familyNames(t, reg)
	assert.Contains(t, names, "cadence_worker_activity_heartbeats_total")
	assert.Contains(t, names, "cadence_worker_activity_inflight")
	assert.Contains(t, names, "cadence_worker_rpc_calls_total")
	assert.Empty(t, familyNames(t, prometheus.DefaultGatherer))
}

func TestRegisterMetrics(t *testing.T) {
	t.Run("twice on the same registry", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		require.NoError(t, RegisterMetrics(reg))
		require.NoError(t, RegisterMetrics(reg))
	})

	t.Run("nil registry", func(t *testing.T) {
		require.NoError(t, RegisterMetrics(nil))
	})

	t.Run("name clash with a foreign collector", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		reg.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cadence_worker",
			Subsystem: "activity",
			Name:      "inflight",
			Help:      "something else",
		}))
		require.Error(t, RegisterMetrics(reg))

		_, err := NewClient(&ClientOptions{Transport: newFakeTransport(), MetricsRegisterer: reg})
		require.NoError(t, err, "rpc collectors do not clash")
	})
}

func TestClientMetricsRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	ft := newFakeTransport()
	c, err := NewClient(&ClientOptions{Transport: ft, MetricsRegisterer: reg})
	require.NoError(t, err)
	require.NoError(t, c.RegisterDomain(context.Background(), &api.RegisterDomainRequest{Name: "sample"}))

	assert.Equal(t, []string{"cadence_worker_rpc_call_duration_seconds", "cadence_worker_rpc_calls_total"}, familyNames(t, reg))
}
