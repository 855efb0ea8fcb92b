package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "nats://localhost:4222", cfg.Endpoint())
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout())
	assert.Equal(t, DefaultPollTimeout, cfg.Timeouts.PollTimeout)
	assert.Equal(t, DefaultFrontendService, cfg.Frontend.Service)
	assert.Empty(t, cfg.Namespace())
	assert.Equal(t, DefaultPollers, cfg.Worker.Pollers)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NATS_HOST", "nats.internal")
	t.Setenv("NATS_PORT", "5222")
	t.Setenv("TIMEOUTS_REQUEST_TIMEOUT", "3s")
	t.Setenv("TIMEOUTS_POLL_TIMEOUT", "30s")
	t.Setenv("FRONTEND_NAMESPACE", "team-a")
	t.Setenv("WORKER_DOMAIN", "sample")
	t.Setenv("WORKER_TASK_LIST", "tl")
	t.Setenv("WORKER_POLLERS", "4")
	t.Setenv("LOG_OTEL_EXPORTER", "grpc")
	t.Setenv("METRICS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "nats://nats.internal:5222", cfg.Endpoint())
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 30*time.Second, cfg.Timeouts.PollTimeout)
	assert.Equal(t, "team-a", cfg.Namespace())
	assert.Equal(t, 4, cfg.Worker.Pollers)
	assert.Equal(t, "grpc", cfg.Log.OTelExporter)
	assert.True(t, cfg.Metrics.Enabled)
	require.NoError(t, cfg.ValidateWorker())
}

func TestLoadExplicitURLWins(t *testing.T) {
	t.Setenv("NATS_URL", "nats://elsewhere:4333")
	t.Setenv("NATS_HOST", "ignored")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "nats://elsewhere:4333", cfg.Endpoint())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "zero request timeout", mutate: func(c *Config) { c.Timeouts.RequestTimeout = 0 }, wantErr: "request timeout"},
		{name: "poll shorter than request", mutate: func(c *Config) { c.Timeouts.PollTimeout = time.Second }, wantErr: "poll timeout"},
		{name: "no service", mutate: func(c *Config) { c.Frontend.Service = "" }, wantErr: "service is required"},
		{name: "negative pollers", mutate: func(c *Config) { c.Worker.Pollers = -1 }, wantErr: "must not be negative"},
		{name: "unknown exporter", mutate: func(c *Config) { c.Log.OTelExporter = "kafka" }, wantErr: "unknown otel exporter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestValidateWorkerRequiresDomainAndTaskList(t *testing.T) {
	err := Default().ValidateWorker()
	require.ErrorContains(t, err, "domain is required")
	require.ErrorContains(t, err, "task list is required")
}
