package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	color "github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestNewLoggerFormats(t *testing.T) {
	tests := []struct {
		format string
		check  func(t *testing.T, out string)
	}{
		{format: FormatJSON, check: func(t *testing.T, out string) {
			var rec map[string]any
			require.NoError(t, json.Unmarshal([]byte(out), &rec))
			assert.Equal(t, "polled", rec["msg"])
			assert.Equal(t, "tl", rec["task_list"])
		}},
		{format: FormatText, check: func(t *testing.T, out string) {
			assert.Contains(t, out, "msg=polled")
			assert.Contains(t, out, "task_list=tl")
		}},
		{format: FormatDebug, check: func(t *testing.T, out string) {
			assert.Contains(t, out, " INFO  polled task_list=\"tl\"")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := NewLogger(context.Background(), &LoggerOptions{Format: tt.format, Writer: &buf})
			require.NoError(t, err)
			l.Info("polled", "task_list", "tl")
			l.Debug("hidden at info level")
			require.NoError(t, l.Shutdown(context.Background()))

			assert.NotContains(t, buf.String(), "hidden")
			tt.check(t, buf.String())
		})
	}
}

func TestNewLoggerRejectsBadOptions(t *testing.T) {
	_, err := NewLogger(context.Background(), nil)
	require.Error(t, err)
	_, err = NewLogger(context.Background(), &LoggerOptions{Writer: &bytes.Buffer{}, Format: "xml"})
	require.ErrorContains(t, err, "unknown log format")
	_, err = NewLogger(context.Background(), &LoggerOptions{Writer: &bytes.Buffer{}, Level: "loud"})
	require.ErrorContains(t, err, "unknown log level")
	_, err = NewLogger(context.Background(), &LoggerOptions{Writer: &bytes.Buffer{}, OTelExporter: "kafka"})
	require.ErrorContains(t, err, "unknown otel exporter")
}

func TestNewLoggerWithOTLPExporter(t *testing.T) {
	for _, exporter := range []string{ExporterHTTP, ExporterGRPC} {
		t.Run(exporter, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := NewLogger(context.Background(), &LoggerOptions{
				Writer:       &buf,
				OTelExporter: exporter,
				OTelEndpoint: "http://127.0.0.1:4318",
			})
			require.NoError(t, err)
			require.IsType(t, &MultiHandler{}, l.Handler())
			l.Info("shipped")
			assert.Contains(t, buf.String(), "shipped")

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_ = l.Shutdown(ctx) // nothing listens on the endpoint
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestDebugHandlerGroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewDebugHandler(&buf, slog.LevelDebug)).
		With("worker", "w1").
		WithGroup("task").
		With("id", 7)
	l.Debug("heartbeat", "progress", 0.5, "err", errors.New("busy"))

	out := buf.String()
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, `worker="w1"`)
	assert.Contains(t, out, "task.id=7")
	assert.Contains(t, out, "task.progress=0.5")
	assert.Contains(t, out, `task.err="busy"`)
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandlerFansOut(t *testing.T) {
	var debug, warnOnly bytes.Buffer
	m := NewMultiHandler(
		NewDebugHandler(&debug, slog.LevelDebug),
		slog.NewJSONHandler(&warnOnly, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	l := slog.New(m)
	l.Info("info line")
	l.Warn("warn line")

	assert.Contains(t, debug.String(), "info line")
	assert.Contains(t, debug.String(), "warn line")
	assert.NotContains(t, warnOnly.String(), "info line")
	assert.Contains(t, warnOnly.String(), "warn line")

	failing := NewMultiHandler(
		failingHandler{slog.NewTextHandler(&bytes.Buffer{}, nil)},
		NewDebugHandler(&debug, slog.LevelDebug),
	)
	err := failing.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "x", 0))
	require.ErrorContains(t, err, "sink down")
}
