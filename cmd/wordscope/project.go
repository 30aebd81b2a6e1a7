package main

import (
	"fmt"

	"github.com/4thel00z/wordscope/internal"
	"github.com/spf13/cobra"
)

func NewProjectCmd(svc func() *internal.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project the most frequent words onto the plane",
		Long:  `Train the model if needed and print 2-D t-SNE coordinates for the most frequent vocabulary words.`,
		Args:  cobra.NoArgs,
		RunE:  makeProjectRunner(svc),
	}

	cmd.Flags().IntP("top", "t", internal.DefaultProjectionN, "Number of words to project, overrides query.projection_size")
	cmd.Flags().StringP("format", "f", "tsv", "Output format (tsv|json)")
	return cmd
}

func makeProjectRunner(svc func() *internal.App) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		top := 0
		if cmd.Flags().Changed("top") {
			top, _ = cmd.Flags().GetInt("top")
			if top <= 0 {
				return fmt.Errorf("--top must be positive, got %d", top)
			}
		}
		format, _ := cmd.Flags().GetString("format")
		asJSON, _ := cmd.Flags().GetBool("json")

		switch format {
		case "tsv", "json":
		default:
			return fmt.Errorf("unknown format %q", format)
		}
		app := svc()
		if _, err := app.Initialize(cmd.Context()); err != nil {
			return fmt.Errorf("initialize: %w", err)
		}

		res, err := app.Project(cmd.Context(), top)
		if err != nil {
			return fmt.Errorf("project: %w", err)
		}

		if asJSON || format == "json" {
			return writeJSON(cmd, res)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "word\tx\ty")
		for _, p := range res.Points {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.4f\t%.4f\n", p.Word, p.X, p.Y)
		}
		return nil
	}
}
