package internal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCorpusLoaderLoad(t *testing.T) {
	docs := testDocuments(5)
	loader := NewCorpusLoader(&StaticResources{Docs: docs, Words: testStopwords}, "", nil)

	corpus, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, corpus.TotalDocuments)
	assert.Empty(t, corpus.Skipped)
	require.Len(t, corpus.Sentences, 5)
	for i, s := range corpus.Sentences {
		assert.Equal(t, docs[i].ID, s.DocumentID)
	}
	assert.Equal(t, []string{"money", "supply", "rises", "central", "bank", "cuts", "interest", "rates"}, corpus.Sentences[0].Tokens[:8])
}

func TestCorpusLoaderSkipsMalformedDocuments(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	docs := []RawDocument{
		{ID: "training/1", Text: "Money supply rises."},
		{ID: "training/2", Text: "broken \xff text"},
		{ID: "training/3", Text: "Money market falls."},
	}
	loader := NewCorpusLoader(&StaticResources{Docs: docs, Words: testStopwords}, DefaultLanguage, zap.New(core))

	corpus, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, corpus.TotalDocuments)
	require.Len(t, corpus.Sentences, 2)
	assert.Equal(t, "training/1", corpus.Sentences[0].DocumentID)
	assert.Equal(t, "training/3", corpus.Sentences[1].DocumentID)
	assert.LessOrEqual(t, len(corpus.Sentences), corpus.TotalDocuments)

	require.Len(t, corpus.Skipped, 1)
	assert.Equal(t, "training/2", corpus.Skipped[0].ID)
	assert.ErrorIs(t, corpus.Skipped[0].Err, ErrDocumentSkipped)
	assert.Equal(t, KindDocumentSkipped, KindOf(corpus.Skipped[0].Err))

	warnings := logs.FilterMessage("skipping document").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "training/2", warnings[0].ContextMap()["id"])
}

func TestCorpusLoaderKeepsEmptySequences(t *testing.T) {
	docs := []RawDocument{{ID: "training/1", Text: "the a an"}}
	loader := NewCorpusLoader(&StaticResources{Docs: docs, Words: testStopwords}, "", nil)

	corpus, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, corpus.Sentences, 1)
	assert.Empty(t, corpus.Sentences[0].Tokens)
	assert.Equal(t, 0, corpus.TokenCount())
}

type failingResources struct{ err error }

func (f failingResources) Documents(context.Context) (DocumentSource, error) { return nil, f.err }

func (f failingResources) Stopwords(context.Context, string) ([]string, error) { return nil, f.err }

func TestCorpusLoaderResourceFailure(t *testing.T) {
	cause := resourceError("fetch reuters", errors.New("connection refused"))
	loader := NewCorpusLoader(failingResources{err: cause}, "", nil)

	_, err := loader.Load(context.Background())
	assert.ErrorIs(t, err, ErrResourceUnavailable)
}
