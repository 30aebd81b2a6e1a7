package v1

import (
	"context"
	"fmt"

	"github.com/4thel00z/wordscope/internal"
)

// Client trains and queries a Reuters word2vec model in-process.
type Client struct {
	app *internal.App
}

// New creates a new Client with the given options. Nothing is downloaded or
// trained until Initialize or the first query.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	conf := internal.DefaultConfig()
	if cfg.cacheDir != "" {
		conf.Data.CacheDir = cfg.cacheDir
	}
	if cfg.dataURL != "" {
		conf.Data.BaseURL = cfg.dataURL
	}
	conf.Data.Token = cfg.dataToken
	conf.Query.IndexTrees = cfg.indexTrees

	p, err := internal.NewPipeline(conf, cfg.logger, internal.PipelineOptions{
		FS:         cfg.fs,
		HTTPClient: cfg.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}

	return &Client{app: p.App}, nil
}

// Initialize downloads the corpus if needed and trains the model once.
func (c *Client) Initialize(ctx context.Context) (ModelInfo, error) {
	m, err := c.app.Initialize(ctx)
	if err != nil {
		return ModelInfo{}, err
	}
	return ModelInfo{ID: m.ID, Vocabulary: m.Len(), Dimension: m.Dim(), TrainedAt: m.TrainedAt}, nil
}

// Similar returns the k nearest neighbours of word. found is false, with no
// error, when word is not in the vocabulary.
func (c *Client) Similar(ctx context.Context, word string, k int) (neighbors []Neighbor, found bool, err error) {
	if _, err := c.app.Initialize(ctx); err != nil {
		return nil, false, err
	}

	res, err := c.app.Similar(word, k)
	if err != nil {
		return nil, false, fmt.Errorf("similar: %w", err)
	}

	neighbors = make([]Neighbor, 0, len(res.Neighbors))
	for _, n := range res.Neighbors {
		neighbors = append(neighbors, Neighbor{Word: n.Word, Score: n.Score})
	}
	return neighbors, res.Found, nil
}

// Project places the topN most frequent words on the plane.
func (c *Client) Project(ctx context.Context, topN int) ([]Point, error) {
	if _, err := c.app.Initialize(ctx); err != nil {
		return nil, err
	}

	res, err := c.app.Project(ctx, topN)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	points := make([]Point, 0, len(res.Points))
	for _, p := range res.Points {
		points = append(points, Point{Word: p.Word, X: p.X, Y: p.Y})
	}
	return points, nil
}

// Vocabulary returns the n most frequent words (all if n <= 0).
func (c *Client) Vocabulary(ctx context.Context, n int) ([]Word, error) {
	if _, err := c.app.Initialize(ctx); err != nil {
		return nil, err
	}

	entries, err := c.app.Vocabulary(n)
	if err != nil {
		return nil, fmt.Errorf("vocabulary: %w", err)
	}

	words := make([]Word, 0, len(entries))
	for _, e := range entries {
		words = append(words, Word{Text: e.Word, Count: e.Count})
	}
	return words, nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}
