package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ngnhng/cadence-go/examples/scenarios"
	_ "github.com/ngnhng/cadence-go/examples/scenarios/greeting"
	_ "github.com/ngnhng/cadence-go/examples/scenarios/heartbeat"
	"github.com/ngnhng/cadence-go/sdk/worker"
)

func newWorkerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run activity workers",
	}
	cmd.AddCommand(newWorkerRunCmd(a))
	return cmd
}

func newWorkerRunCmd(a *app) *cobra.Command {
	var (
		example, domain, taskList string
		pollers                   int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll a task list and run the activities of an example",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ex, ok := scenarios.Get(example)
			if !ok {
				return fmt.Errorf("unknown example %q, available: %s", example, strings.Join(scenarios.Names(), ", "))
			}
			if domain != "" {
				a.cfg.Worker.Domain = domain
			}
			if taskList != "" {
				a.cfg.Worker.TaskList = taskList
			}
			if pollers > 0 {
				a.cfg.Worker.Pollers = pollers
			}
			if err := a.cfg.ValidateWorker(); err != nil {
				return err
			}

			c, closeFn, err := a.dial()
			if err != nil {
				return err
			}
			defer closeFn()

			opts := worker.OptionsFromConfig(a.cfg)
			opts.Logger = a.logger.Logger
			var registry *prometheus.Registry
			if a.cfg.Metrics.Enabled {
				registry = newMetricsRegistry()
				opts.MetricsRegisterer = registry
			}
			w, err := worker.New(c, opts)
			if err != nil {
				return err
			}
			if err := ex.RegisterActivities(w); err != nil {
				return fmt.Errorf("register activities: %w", err)
			}

			a.logger.Info("worker starting",
				"example", ex.Name(),
				"domain", opts.Domain,
				"task_list", opts.TaskList,
				"nats_url", a.cfg.Endpoint(),
			)

			g, gCtx := errgroup.WithContext(cmd.Context())
			if a.cfg.Metrics.Enabled {
				srv := newOpsServer(a.cfg.Metrics.Address, registry)
				g.Go(func() error { return serveOps(gCtx, srv, a.logger.Logger) })
			}
			g.Go(func() error { return w.Run(gCtx) })

			err = g.Wait()
			a.logger.Info("worker stopped")
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&example, "example", "heartbeat", "example whose activities to register ("+strings.Join(scenarios.Names(), ", ")+")")
	flags.StringVar(&domain, "domain", "", "domain (overrides WORKER_DOMAIN)")
	flags.StringVar(&taskList, "task-list", "", "task list (overrides WORKER_TASK_LIST)")
	flags.IntVar(&pollers, "pollers", 0, "concurrent pollers (overrides WORKER_POLLERS)")
	return cmd
}

func newMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// newOpsServer exposes the metrics in gatherer and a health check.
func newOpsServer(addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func serveOps(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
