package main

import (
	"fmt"

	"github.com/4thel00z/wordscope/internal"
	"github.com/spf13/cobra"
)

func NewDepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "List the modules this binary was built with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			deps := internal.Dependencies()
			if asJSON {
				return writeJSON(cmd, deps)
			}
			for _, d := range deps {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", d.Path, d.Version)
			}
			return nil
		},
	}
}
