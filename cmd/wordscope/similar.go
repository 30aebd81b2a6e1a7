package main

import (
	"fmt"
	"strings"

	"github.com/4thel00z/wordscope/internal"
	"github.com/spf13/cobra"
)

func NewSimilarCmd(svc func() *internal.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar <word>",
		Short: "Show the nearest neighbours of a word",
		Long:  `Train the model if needed and list the vocabulary words closest to <word> by cosine similarity.`,
		Args:  cobra.ExactArgs(1),
		RunE:  makeSimilarRunner(svc),
	}

	cmd.Flags().IntP("number", "n", internal.DefaultTopK, "Number of neighbours, overrides query.top_k")
	cmd.Flags().Bool("approx", false, "Use the approximate Annoy index")
	return cmd
}

func makeSimilarRunner(svc func() *internal.App) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		word := strings.ToLower(strings.TrimSpace(args[0]))
		// zero defers to the configured query.top_k
		k := 0
		if cmd.Flags().Changed("number") {
			k, _ = cmd.Flags().GetInt("number")
			if k <= 0 {
				return fmt.Errorf("--number must be positive, got %d", k)
			}
		}
		approx, _ := cmd.Flags().GetBool("approx")
		asJSON, _ := cmd.Flags().GetBool("json")

		app := svc()
		if _, err := app.Initialize(cmd.Context()); err != nil {
			return fmt.Errorf("initialize: %w", err)
		}

		var (
			res internal.SimilarityResult
			err error
		)
		if approx {
			res, err = app.SimilarApprox(word, k)
		} else {
			res, err = app.Similar(word, k)
		}
		if err != nil {
			return fmt.Errorf("similar: %w", err)
		}

		if asJSON {
			return writeJSON(cmd, res)
		}

		if !res.Found {
			fmt.Fprintf(cmd.OutOrStdout(), "%q is not in the vocabulary\n", word)
			return nil
		}
		for _, n := range res.Neighbors {
			fmt.Fprintf(cmd.OutOrStdout(), "%.4f  %s\n", n.Score, n.Word)
		}
		return nil
	}
}
