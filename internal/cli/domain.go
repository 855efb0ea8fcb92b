package cli

import (
	"github.com/spf13/cobra"

	"github.com/ngnhng/cadence-go/api"
)

func newDomainCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domain",
		Short: "Manage domains",
	}
	cmd.AddCommand(newDomainRegisterCmd(a))
	return cmd
}

func newDomainRegisterCmd(a *app) *cobra.Command {
	req := api.RegisterDomainRequest{}
	cmd := &cobra.Command{
		Use:   "register NAME",
		Short: "Register a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := a.dial()
			if err != nil {
				return err
			}
			defer closeFn()

			req.Name = args[0]
			if err := c.RegisterDomain(cmd.Context(), &req); err != nil {
				return err
			}
			return printf(cmd.OutOrStdout(), "domain %s registered\n", req.Name)
		},
	}
	cmd.Flags().StringVar(&req.Description, "description", "", "domain description")
	cmd.Flags().StringVar(&req.OwnerEmail, "owner-email", "", "owner email")
	cmd.Flags().Int32Var(&req.WorkflowExecutionRetentionPeriodInDays, "retention-days", 3, "closed workflow retention in days")
	cmd.Flags().BoolVar(&req.EmitMetric, "emit-metric", false, "emit domain metrics")
	return cmd
}
