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

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ngnhng/cadence-go/internal/logger"
	"github.com/ngnhng/cadence-go/sdk/client"
	"github.com/ngnhng/cadence-go/sdk/config"
)

// Version is stamped at build time with -ldflags.
var Version = "v0.1.0-dev"

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

// app is what every subcommand shares: configuration from env overridden by
// flags, and the process logger.
type app struct {
	cfg    *config.Config
	logger *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var natsURL, namespace, logLevel, logFormat string

	rootCmd := &cobra.Command{
		Use:           "cadence-worker",
		Short:         "Cadence activity worker and frontend tooling over NATS",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if natsURL != "" {
				cfg.NATS.URL = natsURL
			}
			if cmd.Flags().Changed("namespace") {
				cfg.Frontend.Namespace = namespace
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if logFormat != "" {
				cfg.Log.Format = logFormat
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}

			l, err := logger.NewLogger(cmd.Context(), &logger.LoggerOptions{
				Level:          cfg.Log.Level,
				Format:         cfg.Log.Format,
				Writer:         cmd.ErrOrStderr(),
				OTelExporter:   cfg.Log.OTelExporter,
				OTelEndpoint:   cfg.Log.OTelEndpoint,
				ServiceName:    "cadence-worker",
				ServiceVersion: Version,
			})
			if err != nil {
				return err
			}
			slog.SetDefault(l.Logger)
			a.cfg, a.logger = cfg, l
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.logger == nil {
				return nil
			}
			ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), 5*time.Second)
			defer cancel()
			return a.logger.Shutdown(ctx)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&natsURL, "nats-url", "", "NATS URL (overrides NATS_URL)")
	flags.StringVar(&namespace, "namespace", "", "subject namespace of the frontend (overrides FRONTEND_NAMESPACE)")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	flags.StringVar(&logFormat, "log-format", "", "json, text or debug (overrides LOG_FORMAT)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newDomainCmd(a),
		newWorkflowCmd(a),
		newWorkerCmd(a),
		newDevFrontendCmd(a),
	)
	return rootCmd
}

// dial connects a client with the current configuration.
func (a *app) dial() (client.Client, func(), error) {
	return client.Dial(a.cfg, a.logger.Logger)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
			return err
		},
	}
}

func printf(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
