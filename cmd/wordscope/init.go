package main

import (
	"fmt"
	"os"

	"github.com/4thel00z/wordscope/internal"
	"github.com/spf13/cobra"
)

func NewInitCmd(config func() *internal.Config, path func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Long:  `Write the current configuration, defaults plus environment and flag overrides, to the config file so it can be edited.`,
		Args:  cobra.NoArgs,
		RunE:  makeInitRunner(config, path),
	}

	cmd.Flags().Bool("force", false, "Overwrite an existing config file")
	return cmd
}

func makeInitRunner(config func() *internal.Config, path func() string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")
		target := path()

		if _, err := os.Stat(target); err == nil && !force {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", target)
		}

		if err := internal.SaveConfig(target, config()); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", target)
		return nil
	}
}
