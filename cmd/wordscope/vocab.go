package main

import (
	"fmt"

	"github.com/4thel00z/wordscope/internal"
	"github.com/spf13/cobra"
)

func NewVocabCmd(svc func() *internal.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "List the most frequent vocabulary words",
		Args:  cobra.NoArgs,
		RunE:  makeVocabRunner(svc),
	}

	cmd.Flags().IntP("top", "t", 20, "Number of words (0 for all)")
	return cmd
}

func makeVocabRunner(svc func() *internal.App) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		top, _ := cmd.Flags().GetInt("top")
		asJSON, _ := cmd.Flags().GetBool("json")

		app := svc()
		if _, err := app.Initialize(cmd.Context()); err != nil {
			return fmt.Errorf("initialize: %w", err)
		}

		entries, err := app.Vocabulary(top)
		if err != nil {
			return fmt.Errorf("vocabulary: %w", err)
		}

		if asJSON {
			return writeJSON(cmd, entries)
		}

		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%8d  %s\n", e.Count, e.Word)
		}
		return nil
	}
}
