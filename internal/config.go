package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDataURL       = "https://raw.githubusercontent.com/nltk/nltk_data/gh-pages"
	DefaultCorpusPackage = "reuters"
	DefaultStopwords     = "stopwords"
	DefaultLanguage      = "english"
	DefaultEncoding      = "iso-8859-2"
	DefaultTopK          = 10
	DefaultProjectionN   = 100
	DefaultServerAddr    = ":8080"
)

type DataConfig struct {
	CacheDir  string `yaml:"cache_dir,omitempty"`
	BaseURL   string `yaml:"base_url"`
	Token     string `yaml:"token,omitempty"`
	Corpus    string `yaml:"corpus"`
	Stopwords string `yaml:"stopwords"`
	Language  string `yaml:"language"`
	Encoding  string `yaml:"encoding"`
	// Exclude holds gitignore-style patterns over corpus file ids.
	Exclude []string `yaml:"exclude,omitempty"`
}

type QueryConfig struct {
	TopK           int     `yaml:"top_k"`
	ProjectionSize int     `yaml:"projection_size"`
	ProjectionSeed uint64  `yaml:"projection_seed"`
	Perplexity     float64 `yaml:"perplexity"`
	Iterations     int     `yaml:"iterations"`
	IndexTrees     int     `yaml:"index_trees"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config holds everything that may vary between runs. Training
// hyperparameters are not part of it; see DefaultTrainingParams.
type Config struct {
	Data   DataConfig   `yaml:"data"`
	Query  QueryConfig  `yaml:"query"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			BaseURL:   DefaultDataURL,
			Corpus:    DefaultCorpusPackage,
			Stopwords: DefaultStopwords,
			Language:  DefaultLanguage,
			Encoding:  DefaultEncoding,
		},
		Query: QueryConfig{
			TopK:           DefaultTopK,
			ProjectionSize: DefaultProjectionN,
			ProjectionSeed: 42,
			Perplexity:     30,
			Iterations:     1000,
		},
		Server: ServerConfig{Addr: DefaultServerAddr},
		Log:    LogConfig{Level: "info"},
	}
}

// DefaultConfigPath is <UserConfigDir>/wordscope/config.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "wordscope", "config.yaml"), nil
}

// LoadConfig reads path. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyConfigDefaults(cfg)
	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// ApplyEnv overrides config values from WORDSCOPE_* environment variables.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("WORDSCOPE_CACHE_DIR"); v != "" {
		cfg.Data.CacheDir = v
	}
	if v := os.Getenv("WORDSCOPE_DATA_URL"); v != "" {
		cfg.Data.BaseURL = v
	}
	if v := os.Getenv("WORDSCOPE_DATA_TOKEN"); v != "" {
		cfg.Data.Token = v
	}
	if v := os.Getenv("WORDSCOPE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyConfigDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Data.BaseURL == "" {
		cfg.Data.BaseURL = def.Data.BaseURL
	}
	if cfg.Data.Corpus == "" {
		cfg.Data.Corpus = def.Data.Corpus
	}
	if cfg.Data.Stopwords == "" {
		cfg.Data.Stopwords = def.Data.Stopwords
	}
	if cfg.Data.Language == "" {
		cfg.Data.Language = def.Data.Language
	}
	if cfg.Data.Encoding == "" {
		cfg.Data.Encoding = def.Data.Encoding
	}
	if cfg.Query.TopK <= 0 {
		cfg.Query.TopK = def.Query.TopK
	}
	if cfg.Query.ProjectionSize <= 0 {
		cfg.Query.ProjectionSize = def.Query.ProjectionSize
	}
	if cfg.Query.Perplexity <= 0 {
		cfg.Query.Perplexity = def.Query.Perplexity
	}
	if cfg.Query.Iterations <= 0 {
		cfg.Query.Iterations = def.Query.Iterations
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}

// ResolveCacheDir returns the configured cache dir or <UserCacheDir>/wordscope/nltk_data.
func (c *Config) ResolveCacheDir() (string, error) {
	if c.Data.CacheDir != "" {
		return c.Data.CacheDir, nil
	}
	return DefaultCacheDir()
}

// TSNEOptions derives the projection settings from the query section.
func (c *Config) TSNEOptions() TSNEOptions {
	return TSNEOptions{
		Perplexity: c.Query.Perplexity,
		Iterations: c.Query.Iterations,
		Seed:       c.Query.ProjectionSeed,
	}
}
