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

package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	FormatJSON  = "json"
	FormatText  = "text"
	FormatDebug = "debug"

	ExporterNone = ""
	ExporterHTTP = "http"
	ExporterGRPC = "grpc"
)

type Logger struct {
	*slog.Logger
	provider *sdklog.LoggerProvider
}

type LoggerOptions struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Format is json, text or debug (coloured, for terminals).
	Format string
	// Writer is the writer to write the logs to
	Writer io.Writer

	// OTelExporter additionally ships records over OTLP when set to http or grpc.
	OTelExporter string
	OTelEndpoint string

	ServiceName    string
	ServiceVersion string
}

func NewLogger(ctx context.Context, opts *LoggerOptions) (*Logger, error) {
	if opts == nil || opts.Writer == nil {
		return nil, fmt.Errorf("no log writer")
	}
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	handlers := make([]slog.Handler, 0, 2)
	switch opts.Format {
	case FormatDebug:
		handlers = append(handlers, NewDebugHandler(opts.Writer, level))
	case FormatText:
		handlers = append(handlers, slog.NewTextHandler(opts.Writer, &slog.HandlerOptions{Level: level}))
	case FormatJSON, "":
		handlers = append(handlers, slog.NewJSONHandler(opts.Writer, &slog.HandlerOptions{Level: level}))
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	var provider *sdklog.LoggerProvider
	if opts.OTelExporter != ExporterNone {
		provider, err = newProvider(ctx, opts)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, &levelFilter{
			level:   level,
			Handler: otelslog.NewHandler(serviceName(opts), otelslog.WithLoggerProvider(provider)),
		})
	}

	var h slog.Handler = handlers[0]
	if len(handlers) > 1 {
		h = &MultiHandler{handlers: handlers}
	}
	return &Logger{Logger: slog.New(h), provider: provider}, nil
}

// Shutdown flushes buffered OTLP records. It is a no-op without an exporter.
func (l *Logger) Shutdown(ctx context.Context) error {
	if l.provider == nil {
		return nil
	}
	return l.provider.Shutdown(ctx)
}

func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

func serviceName(opts *LoggerOptions) string {
	if opts.ServiceName != "" {
		return opts.ServiceName
	}
	return "cadence-go-worker"
}

func newProvider(ctx context.Context, opts *LoggerOptions) (*sdklog.LoggerProvider, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName(opts)),
			semconv.ServiceVersion(opts.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build otel resource: %w", err)
	}

	var exporter sdklog.Exporter
	switch opts.OTelExporter {
	case ExporterHTTP:
		var httpOpts []otlploghttp.Option
		if opts.OTelEndpoint != "" {
			httpOpts = append(httpOpts, otlploghttp.WithEndpointURL(opts.OTelEndpoint))
		}
		exporter, err = otlploghttp.New(ctx, httpOpts...)
	case ExporterGRPC:
		var grpcOpts []otlploggrpc.Option
		if opts.OTelEndpoint != "" {
			grpcOpts = append(grpcOpts, otlploggrpc.WithEndpointURL(opts.OTelEndpoint))
		}
		exporter, err = otlploggrpc.New(ctx, grpcOpts...)
	default:
		return nil, fmt.Errorf("unknown otel exporter %q", opts.OTelExporter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp %s log exporter: %w", opts.OTelExporter, err)
	}

	return sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	), nil
}

// levelFilter applies the configured level to a handler that has none.
type levelFilter struct {
	level slog.Level
	slog.Handler
}

func (f *levelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= f.level && f.Handler.Enabled(ctx, level)
}

func (f *levelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelFilter{level: f.level, Handler: f.Handler.WithAttrs(attrs)}
}

func (f *levelFilter) WithGroup(name string) slog.Handler {
	return &levelFilter{level: f.level, Handler: f.Handler.WithGroup(name)}
}
