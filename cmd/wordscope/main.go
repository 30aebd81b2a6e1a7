package main

import (
	"context"
	"fmt"
	"os"

	"github.com/4thel00z/wordscope/internal"
	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	a := &app{}
	rootCmd := NewRootCmd(version, a)
	err := fang.Execute(ctx, rootCmd)
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg      *internal.Config
	cfgPath  string
	logger   *zap.Logger
	pipeline *internal.Pipeline
}

// setup loads the config, builds the logger and wires the pipeline once.
func (a *app) setup(cmd *cobra.Command) error {
	if a.pipeline != nil {
		return nil
	}

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := internal.DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("config path: %w", err)
		}
		path = p
	}

	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return err
	}
	internal.ApplyEnv(cfg)

	if dir, _ := cmd.Flags().GetString("cache-dir"); dir != "" {
		cfg.Data.CacheDir = dir
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	}

	logger, err := internal.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}

	p, err := internal.NewPipeline(cfg, logger, internal.PipelineOptions{})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.cfgPath = path
	a.logger = logger
	a.pipeline = p
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
