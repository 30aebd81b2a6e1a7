package main

import (
	"fmt"

	"github.com/4thel00z/wordscope/internal"
	"github.com/spf13/cobra"
)

func NewStatusCmd(store func() *internal.NLTKStore, config func() *internal.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the data source and cache state",
		Args:  cobra.NoArgs,
		RunE:  makeStatusRunner(store, config),
	}
}

type statusOutput struct {
	DataURL  string                   `json:"data_url"`
	CacheDir string                   `json:"cache_dir"`
	Packages []internal.PackageStatus `json:"packages"`
}

func makeStatusRunner(store func() *internal.NLTKStore, config func() *internal.Config) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg := config()
		cacheDir, err := cfg.ResolveCacheDir()
		if err != nil {
			return fmt.Errorf("cache dir: %w", err)
		}

		out := statusOutput{
			DataURL:  cfg.Data.BaseURL,
			CacheDir: cacheDir,
			Packages: store().Packages(),
		}
		if asJSON {
			return writeJSON(cmd, out)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Data source: %s\n", out.DataURL)
		fmt.Fprintf(cmd.OutOrStdout(), "Cache:       %s\n", out.CacheDir)
		for _, p := range out.Packages {
			state := "missing"
			if p.Cached {
				state = "cached"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %s\n", p.Name, state)
		}
		return nil
	}
}
