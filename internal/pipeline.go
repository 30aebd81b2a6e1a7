package internal

import (
	"fmt"
	"net/http"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"
)

// Pipeline is the production wiring: the NLTK store on the cache directory,
// the corpus loader, the default trainer and the app context on top.
type Pipeline struct {
	Config *Config
	Store  *NLTKStore
	App    *App
}

type PipelineOptions struct {
	// FS overrides the cache filesystem; nil opens the configured cache dir.
	FS         billy.Filesystem
	HTTPClient *http.Client
	Trainer    Trainer
	AppOptions []AppOption
}

func NewPipeline(cfg *Config, logger *zap.Logger, opts PipelineOptions) (*Pipeline, error) {
	logger = orNop(logger)

	fs := opts.FS
	if fs == nil {
		dir, err := cfg.ResolveCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolve cache dir: %w", err)
		}
		fs = osfs.New(dir)
	}

	downloader := NewDownloader(fs, cfg.Data.BaseURL, cfg.Data.Token)
	if opts.HTTPClient != nil {
		downloader.WithClient(opts.HTTPClient)
	}
	store := NewNLTKStore(fs, downloader, cfg.Data, logger.Named("store"))

	trainer := opts.Trainer
	if trainer == nil {
		trainer = NewWord2Vec(DefaultTrainingParams(), logger.Named("word2vec"))
	}

	appOpts := []AppOption{
		WithTSNEOptions(cfg.TSNEOptions()),
		WithQueryDefaults(cfg.Query.TopK, cfg.Query.ProjectionSize),
	}
	if cfg.Query.IndexTrees > 0 {
		appOpts = append(appOpts, WithNeighborIndex(cfg.Query.IndexTrees))
	}
	appOpts = append(appOpts, opts.AppOptions...)

	loader := NewCorpusLoader(store, cfg.Data.Language, logger.Named("corpus"))
	if filter := NewDocumentFilter(cfg.Data.Exclude); filter.Len() > 0 {
		loader.WithFilter(filter)
	}
	app := NewApp(loader, trainer, logger.Named("app"), appOpts...)

	return &Pipeline{Config: cfg, Store: store, App: app}, nil
}
