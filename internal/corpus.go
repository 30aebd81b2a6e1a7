package internal

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Sentence is the token sequence of one document, in document order.
type Sentence struct {
	DocumentID string
	Tokens     []string
}

type SkippedDocument struct {
	ID  string
	Err error
}

// Corpus is the tokenized form of every document that could be processed.
type Corpus struct {
	Sentences      []Sentence
	Skipped        []SkippedDocument
	TotalDocuments int
	// Excluded counts documents dropped by the loader's filter; they are not
	// part of TotalDocuments.
	Excluded int
}

// TokenCount is the number of tokens across all sentences.
func (c *Corpus) TokenCount() int {
	n := 0
	for _, s := range c.Sentences {
		n += len(s.Tokens)
	}
	return n
}

// CorpusProvider produces a Corpus. CorpusLoader is the production implementation.
type CorpusProvider interface {
	Load(ctx context.Context) (*Corpus, error)
}

var _ CorpusProvider = (*CorpusLoader)(nil)

type CorpusLoader struct {
	resources ResourceProvider
	language  string
	filter    *DocumentFilter
	logger    *zap.Logger
}

func NewCorpusLoader(resources ResourceProvider, language string, logger *zap.Logger) *CorpusLoader {
	if language == "" {
		language = DefaultLanguage
	}
	return &CorpusLoader{
		resources: resources,
		language:  language,
		logger:    orNop(logger),
	}
}

// WithFilter leaves out documents whose id the filter excludes.
func (l *CorpusLoader) WithFilter(f *DocumentFilter) *CorpusLoader {
	l.filter = f
	return l
}

// Load fetches the resources and tokenizes every document. Documents that
// fail to read or tokenize are recorded in Corpus.Skipped and left out.
func (l *CorpusLoader) Load(ctx context.Context) (*Corpus, error) {
	stopwords, err := l.resources.Stopwords(ctx, l.language)
	if err != nil {
		return nil, err
	}
	tokenizer := NewTokenizer(stopwords)

	source, err := l.resources.Documents(ctx)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	var (
		ids      []string
		excluded int
	)
	for _, id := range source.FileIDs() {
		if l.filter.Excluded(id) {
			excluded++
			continue
		}
		ids = append(ids, id)
	}

	corpus := &Corpus{
		Sentences:      make([]Sentence, 0, len(ids)),
		TotalDocuments: len(ids),
		Excluded:       excluded,
	}

	for _, id := range ids {
		tokens, err := l.tokenizeDocument(source, tokenizer, id)
		if err != nil {
			l.logger.Warn("skipping document", zap.String("id", id), zap.Error(err))
			corpus.Skipped = append(corpus.Skipped, SkippedDocument{ID: id, Err: err})
			continue
		}
		corpus.Sentences = append(corpus.Sentences, Sentence{DocumentID: id, Tokens: tokens})
	}

	l.logger.Info("corpus loaded",
		zap.Int("documents", corpus.TotalDocuments),
		zap.Int("sentences", len(corpus.Sentences)),
		zap.Int("skipped", len(corpus.Skipped)),
		zap.Int("excluded", corpus.Excluded),
		zap.Int("tokens", corpus.TokenCount()),
	)

	return corpus, nil
}

func (l *CorpusLoader) tokenizeDocument(source DocumentSource, tokenizer *Tokenizer, id string) ([]string, error) {
	raw, err := source.Raw(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocumentSkipped, err)
	}
	tokens, err := tokenizer.Tokenize(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: tokenize %s: %w", ErrDocumentSkipped, id, err)
	}
	return tokens, nil
}
