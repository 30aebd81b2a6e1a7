package main

import (
	"fmt"

	"github.com/4thel00z/wordscope/internal"
	"github.com/spf13/cobra"
)

func NewFetchCmd(store func() *internal.NLTKStore) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download the corpus and stopword packages",
		Long:  `Download the Reuters corpus and the stopword lists into the cache. Packages already cached and readable are left alone.`,
		Args:  cobra.NoArgs,
		RunE:  makeFetchRunner(store),
	}
}

func makeFetchRunner(store func() *internal.NLTKStore) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		s := store()
		s.WithProgress(func(pkg string, written, total int64) {
			if total > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "\rDownloading %s: %.1f%%", pkg, float64(written)/float64(total)*100)
			}
		})

		if err := s.Fetch(cmd.Context()); err != nil {
			return fmt.Errorf("fetch: %w", err)
		}

		packages := s.Packages()
		if asJSON {
			return writeJSON(cmd, packages)
		}

		fmt.Fprintln(cmd.ErrOrStderr())
		for _, p := range packages {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", p.Name, p.Path)
		}
		return nil
	}
}
