package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngnhng/cadence-go/api"
	"github.com/ngnhng/cadence-go/examples/scenarios"
	"github.com/ngnhng/cadence-go/sdk/client"
	"github.com/ngnhng/cadence-go/sdk/testsuite"
	"github.com/ngnhng/cadence-go/sdk/worker"
)

func executeCLI(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func startFrontend(t *testing.T) *testsuite.Frontend {
	t.Helper()
	fe, err := testsuite.StartFrontend(testsuite.FrontendOptions{PollWait: 20 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(fe.Close)
	t.Setenv("NATS_URL", fe.URL())
	t.Setenv("TIMEOUTS_REQUEST_TIMEOUT", "2s")
	t.Setenv("TIMEOUTS_POLL_TIMEOUT", "2s")
	return fe
}

func TestVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, context.Background(), "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", stdout)
}

func TestInvalidLogFormatIsRejected(t *testing.T) {
	_, _, err := executeCLI(t, context.Background(), "version", "--log-format", "xml")
	require.Error(t, err)
}

func TestDomainRegister(t *testing.T) {
	fe := startFrontend(t)

	stdout, _, err := executeCLI(t, context.Background(),
		"domain", "register", "sample",
		"--description", "samples",
		"--retention-days", "7",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "domain sample registered")

	d, ok := fe.Domain("sample")
	require.True(t, ok)
	assert.Equal(t, "samples", d.Description)
	assert.EqualValues(t, 7, d.WorkflowExecutionRetentionPeriodInDays)

	_, _, err = executeCLI(t, context.Background(), "domain", "register", "sample")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already")
}

func TestWorkflowStart(t *testing.T) {
	startFrontend(t)
	_, _, err := executeCLI(t, context.Background(), "domain", "register", "sample")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, context.Background(),
		"workflow", "start",
		"--domain", "sample",
		"--task-list", "tl",
		"--type", "Greeting",
		"--workflow-id", "wf-1",
		"--input", `{"name":"world"}`,
		"--json",
	)
	require.NoError(t, err)

	var exec api.WorkflowExecution
	require.NoError(t, json.Unmarshal([]byte(stdout), &exec))
	assert.Equal(t, "wf-1", exec.WorkflowID)
	assert.NotEmpty(t, exec.RunID)

	_, _, err = executeCLI(t, context.Background(),
		"workflow", "start",
		"--domain", "sample",
		"--task-list", "tl",
		"--type", "Greeting",
		"--workflow-id", "wf-1",
	)
	require.Error(t, err, "second start of a running workflow id")
}

func TestWorkflowStartValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing type", args: []string{"workflow", "start"}, wantErr: `required flag(s) "type" not set`},
		{name: "bad input", args: []string{"workflow", "start", "--type", "Greeting", "--input", "{"}, wantErr: "valid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCLI(t, context.Background(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWorkerRunValidation(t *testing.T) {
	_, _, err := executeCLI(t, context.Background(), "worker", "run", "--example", "nope")
	require.ErrorContains(t, err, "unknown example")

	_, _, err = executeCLI(t, context.Background(), "worker", "run", "--example", "greeting")
	require.ErrorContains(t, err, "domain is required")
}

func TestWorkerRunCompletesTasks(t *testing.T) {
	fe := startFrontend(t)
	_, _, err := executeCLI(t, context.Background(), "domain", "register", "sample")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := executeCLI(t, ctx,
			"worker", "run",
			"--example", "greeting",
			"--domain", "sample",
			"--task-list", "tl",
			"--pollers", "1",
		)
		done <- err
	}()

	var tokens []api.TaskToken
	for _, task := range greetingTasks(t) {
		tokens = append(tokens, fe.ScheduleActivity("sample", "tl", task))
	}
	for _, token := range tokens {
		require.Eventually(t, func() bool {
			rec, ok := fe.Task(token)
			return ok && rec.Outcome == testsuite.OutcomeCompleted
		}, 5*time.Second, 10*time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestDevFrontendRequiresDomainForExample(t *testing.T) {
	_, _, err := executeCLI(t, context.Background(), "dev-frontend", "--example", "greeting")
	require.ErrorContains(t, err, "--example needs --domain and --task-list")
}

func TestDevFrontendServesUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	stdout, _, err := executeCLI(t, ctx,
		"dev-frontend",
		"--port", "-1",
		"--domain", "sample",
		"--task-list", "tl",
		"--example", "greeting",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "NATS_URL=nats://127.0.0.1:")
}

func greetingTasks(t *testing.T) []testsuite.ActivityTask {
	t.Helper()
	ex, ok := scenarios.Get("greeting")
	require.True(t, ok)
	return ex.SampleTasks("wf-greeting")
}

type idleTransport struct{}

func (idleTransport) Exchange(context.Context, string, string, []byte) ([]byte, error) {
	return nil, errors.New("not connected")
}

func TestOpsServerServesWorkerRegistry(t *testing.T) {
	registry := newMetricsRegistry()
	c, err := client.NewClient(&client.Options{Transport: idleTransport{}})
	require.NoError(t, err)
	_, err = worker.New(c, worker.Options{Domain: "sample", TaskList: "tl", MetricsRegisterer: registry})
	require.NoError(t, err)

	handler := newOpsServer(":0", registry).Handler

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cadence_worker_activity_inflight")
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
