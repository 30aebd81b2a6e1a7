package main

import (
	"encoding/json"

	"github.com/4thel00z/wordscope/internal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "wordscope",
		Short:   "Explore word embeddings trained on the Reuters corpus",
		Long:    `Downloads the NLTK Reuters corpus, trains a word2vec model once per process and answers nearest-neighbour and projection queries.`,
		Version: version,

		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)

	if a != nil {
		rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		}
		addSubcommands(rootCmd, a)
	}

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Config file (default <config dir>/wordscope/config.yaml)")
	cmd.PersistentFlags().String("cache-dir", "", "Directory for downloaded corpus data")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")
}

func addSubcommands(root *cobra.Command, a *app) {
	wordscope := func() *internal.App { return a.pipeline.App }
	store := func() *internal.NLTKStore { return a.pipeline.Store }
	config := func() *internal.Config { return a.cfg }
	configPath := func() string { return a.cfgPath }
	logger := func() *zap.Logger { return a.logger }

	root.AddCommand(
		NewFetchCmd(store),
		NewSimilarCmd(wordscope),
		NewProjectCmd(wordscope),
		NewVocabCmd(wordscope),
		NewDepsCmd(),
		NewServeCmd(wordscope, config, logger),
		NewStatusCmd(store, config),
		NewInitCmd(config, configPath),
	)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
