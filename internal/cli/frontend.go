package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/ngnhng/cadence-go/api"
	"github.com/ngnhng/cadence-go/examples/scenarios"
	"github.com/ngnhng/cadence-go/sdk/client"
	"github.com/ngnhng/cadence-go/sdk/testsuite"
)

func newDevFrontendCmd(a *app) *cobra.Command {
	var (
		host, domain, taskList, example string
		port                            int
		pollWait                        time.Duration
	)
	cmd := &cobra.Command{
		Use:   "dev-frontend",
		Short: "Serve an in-memory frontend on an embedded NATS server",
		Long: `Starts an embedded NATS server with an in-memory frontend answering the
worker-facing methods. With --domain the domain is registered on startup, and
with --example the example's sample activity tasks are queued on --task-list.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var ex scenarios.Example
			if example != "" {
				var ok bool
				if ex, ok = scenarios.Get(example); !ok {
					return fmt.Errorf("unknown example %q, available: %s", example, strings.Join(scenarios.Names(), ", "))
				}
				if domain == "" || taskList == "" {
					return errors.New("--example needs --domain and --task-list")
				}
			}

			fe, err := testsuite.StartFrontend(testsuite.FrontendOptions{
				Host:      host,
				Port:      port,
				Namespace: a.cfg.Namespace(),
				Service:   a.cfg.Frontend.Service,
				PollWait:  pollWait,
				Logger:    a.logger.Logger,
			})
			if err != nil {
				return err
			}
			defer fe.Close()

			log := a.logger.With("url", fe.URL(), "namespace", fe.Namespace())
			log.Info("dev frontend started")
			if err := printf(cmd.OutOrStdout(), "NATS_URL=%s\n", fe.URL()); err != nil {
				return err
			}

			if domain != "" {
				// Register through the wire so the command exercises the same path
				// a real client does.
				cfg := *a.cfg
				cfg.NATS.URL = fe.URL()
				c, closeFn, err := client.Dial(&cfg, a.logger.Logger)
				if err != nil {
					return err
				}
				err = c.RegisterDomain(cmd.Context(), &api.RegisterDomainRequest{Name: domain})
				closeFn()
				if err != nil && !errors.Is(err, client.ErrDomainAlreadyExists) {
					return fmt.Errorf("register domain %s: %w", domain, err)
				}
				log.Info("domain registered", "domain", domain)
			}

			var pending []api.TaskToken
			if ex != nil {
				workflowID := ex.Name() + "-" + uuid.Must(uuid.NewV4()).String()
				for _, task := range ex.SampleTasks(workflowID) {
					token := fe.ScheduleActivity(domain, taskList, task)
					pending = append(pending, token)
					log.Info("activity task scheduled",
						"activity_id", task.ActivityID,
						"activity_type", task.ActivityType,
						"task_list", taskList,
					)
				}
			}

			ticker := time.NewTicker(250 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-cmd.Context().Done():
					log.Info("dev frontend stopping")
					return nil
				case <-ticker.C:
					pending = reportClosed(fe, pending, func(rec testsuite.TaskRecord) {
						log.Info("activity task closed",
							"activity_id", rec.Task.ActivityID,
							"outcome", rec.Outcome,
							"heartbeats", rec.Heartbeats,
							"reason", rec.Reason,
						)
					})
				}
			}
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&host, "host", "127.0.0.1", "listen host of the embedded NATS server")
	flags.IntVar(&port, "port", 4222, "listen port of the embedded NATS server (-1 picks a random port)")
	flags.DurationVar(&pollWait, "poll-wait", time.Second, "how long an empty poll is held open")
	flags.StringVar(&domain, "domain", "", "domain to register on startup")
	flags.StringVar(&taskList, "task-list", "", "task list the sample tasks are queued on")
	flags.StringVar(&example, "example", "", "queue the sample tasks of this example")
	return cmd
}

// reportClosed calls fn for every token whose task has an outcome and returns
// the tokens still open.
func reportClosed(fe *testsuite.Frontend, tokens []api.TaskToken, fn func(testsuite.TaskRecord)) []api.TaskToken {
	open := tokens[:0]
	for _, token := range tokens {
		rec, ok := fe.Task(token)
		if ok && rec.Outcome != testsuite.OutcomeOpen {
			fn(rec)
			continue
		}
		open = append(open, token)
	}
	return open
}
