package v1

import (
	"net/http"

	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	cacheDir   string
	dataURL    string
	dataToken  string
	fs         billy.Filesystem
	httpClient *http.Client
	logger     *zap.Logger
	indexTrees int
}

// WithCacheDir sets the directory downloaded corpus data is kept in.
func WithCacheDir(dir string) Option {
	return func(c *clientConfig) {
		c.cacheDir = dir
	}
}

// WithFilesystem keeps downloaded data on fs instead of the cache directory.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(c *clientConfig) {
		c.fs = fs
	}
}

// WithDataURL points the client at another NLTK data mirror.
func WithDataURL(url string) Option {
	return func(c *clientConfig) {
		c.dataURL = url
	}
}

// WithDataToken sends a bearer token to the data mirror.
func WithDataToken(token string) Option {
	return func(c *clientConfig) {
		c.dataToken = token
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithNeighborIndex builds the approximate index while initializing.
func WithNeighborIndex(trees int) Option {
	return func(c *clientConfig) {
		c.indexTrees = trees
	}
}
