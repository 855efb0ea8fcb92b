package cli

import (
	"encoding/json"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/ngnhng/cadence-go/api"
)

func newWorkflowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Start workflow executions",
	}
	cmd.AddCommand(newWorkflowStartCmd(a))
	return cmd
}

func newWorkflowStartCmd(a *app) *cobra.Command {
	var (
		domain, workflowID, workflowType, taskList, input string
		executionTimeout, decisionTimeout                 int32
		asJSON                                            bool
	)
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a workflow execution",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input != "" && !json.Valid([]byte(input)) {
				return fmt.Errorf("--input must be valid JSON")
			}
			if domain == "" {
				domain = a.cfg.Worker.Domain
			}
			if taskList == "" {
				taskList = a.cfg.Worker.TaskList
			}
			if workflowID == "" {
				workflowID = uuid.Must(uuid.NewV4()).String()
			}

			c, closeFn, err := a.dial()
			if err != nil {
				return err
			}
			defer closeFn()

			req := &api.StartWorkflowExecutionRequest{
				Domain:                              domain,
				WorkflowID:                          workflowID,
				WorkflowType:                        &api.WorkflowType{Name: workflowType},
				TaskList:                            &api.TaskList{Name: taskList},
				ExecutionStartToCloseTimeoutSeconds: executionTimeout,
				TaskStartToCloseTimeoutSeconds:      decisionTimeout,
			}
			if input != "" {
				req.Input = []byte(input)
			}
			resp, err := c.StartWorkflowExecution(cmd.Context(), req)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(api.WorkflowExecution{WorkflowID: workflowID, RunID: resp.RunID})
			}
			return printf(cmd.OutOrStdout(), "workflow %s started, run id %s\n", workflowID, resp.RunID)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&domain, "domain", "", "domain (defaults to WORKER_DOMAIN)")
	flags.StringVar(&workflowID, "workflow-id", "", "workflow id (defaults to a random uuid)")
	flags.StringVar(&workflowType, "type", "", "workflow type name")
	flags.StringVar(&taskList, "task-list", "", "decision task list (defaults to WORKER_TASK_LIST)")
	flags.StringVar(&input, "input", "", "workflow input as JSON")
	flags.Int32Var(&executionTimeout, "execution-timeout", 0, "execution start-to-close timeout in seconds")
	flags.Int32Var(&decisionTimeout, "decision-timeout", 0, "decision task start-to-close timeout in seconds")
	flags.BoolVar(&asJSON, "json", false, "print the execution as JSON")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
