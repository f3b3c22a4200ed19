package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"solshift/internal/ipc"
)

func newReapplyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reapply",
		Short: "Re-issue the filter command for the current solar phase",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Reapply()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if resp.Message != "" {
					fmt.Fprintln(stdout, resp.Message)
					return nil
				}
				state := "disabled"
				if resp.FilterEnabled {
					state = "enabled"
				}
				fmt.Fprintf(stdout, "Reapplied: phase %s, filter %s\n", resp.Phase, state)
				return nil
			})
		},
	}
}
