package internal

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarWordsOrdering(t *testing.T) {
	m := handModel(t,
		[]string{"money", "cash", "funds", "oil", "debt"},
		[][]float32{
			{1, 0, 0},
			{0.9, 0.1, 0},
			{0.9, 0.1, 0},
			{0, 0, 1},
			{-1, 0, 0},
		},
	)

	res := SimilarWords(m, "money", 10)
	require.True(t, res.Found)
	assert.Equal(t, "money", res.Query)

	words := make([]string, len(res.Neighbors))
	for i, n := range res.Neighbors {
		words[i] = n.Word
	}
	assert.Equal(t, []string{"cash", "funds", "oil", "debt"}, words, "ties keep vocabulary order")

	assert.InDelta(t, 0.0, res.Neighbors[2].Score, 1e-9)
	assert.InDelta(t, -1.0, res.Neighbors[3].Score, 1e-9)
	for i, n := range res.Neighbors {
		assert.GreaterOrEqual(t, n.Score, -1.0)
		assert.LessOrEqual(t, n.Score, 1.0)
		if i > 0 {
			assert.LessOrEqual(t, n.Score, res.Neighbors[i-1].Score)
		}
	}
}

func TestSimilarWordsTopK(t *testing.T) {
	words := []string{"a", "b", "c", "d", "e", "f"}
	vectors := make([][]float32, len(words))
	for i := range vectors {
		vectors[i] = []float32{1, float32(i)}
	}
	m := handModel(t, words, vectors)

	assert.Len(t, SimilarWords(m, "a", 3).Neighbors, 3)
	assert.Len(t, SimilarWords(m, "a", 100).Neighbors, 5)
	assert.Len(t, SimilarWords(m, "a", 0).Neighbors, 5, "k <= 0 falls back to the default")

	for _, n := range SimilarWords(m, "c", 10).Neighbors {
		assert.NotEqual(t, "c", n.Word)
	}
}

func TestSimilarWordsNotFound(t *testing.T) {
	m := handModel(t, []string{"money"}, [][]float32{{1, 0}})

	res := SimilarWords(m, "xyzzy_not_a_real_word", 10)
	assert.False(t, res.Found)
	assert.Empty(t, res.Neighbors)
	assert.NotNil(t, res.Neighbors)
}

func TestSimilarWordsZeroVector(t *testing.T) {
	m := handModel(t, []string{"zero", "one"}, [][]float32{{0, 0}, {1, 0}})

	res := SimilarWords(m, "zero", 5)
	require.Len(t, res.Neighbors, 1)
	assert.Equal(t, 0.0, res.Neighbors[0].Score)
}

func TestSimilarWordsSingleWordVocabulary(t *testing.T) {
	m := handModel(t, []string{"money"}, [][]float32{{1, 0}})

	res := SimilarWords(m, "money", 10)
	assert.True(t, res.Found)
	assert.Empty(t, res.Neighbors)
}

func projectionModel(t *testing.T, n int) *Model {
	t.Helper()
	words := make([]string, n)
	vectors := make([][]float32, n)
	for i := range words {
		words[i] = string(rune('a'+i%26)) + string(rune('a'+i/26))
		v := make([]float32, 8)
		for j := range v {
			v[j] = float32(math.Sin(float64(i*8 + j)))
		}
		vectors[i] = v
	}
	return handModel(t, words, vectors)
}

func TestProjectEmbeddingsSize(t *testing.T) {
	ctx := context.Background()
	opts := TSNEOptions{Perplexity: 30, Iterations: 250, Seed: 42}

	for _, tc := range []struct{ vocab, topN, want int }{
		{120, 100, 100},
		{30, 100, 30},
		{30, 0, 30},
		{1, 100, 1},
	} {
		m := projectionModel(t, tc.vocab)
		res, err := ProjectEmbeddings(ctx, m, tc.topN, opts)
		require.NoError(t, err)
		require.Len(t, res.Points, tc.want)

		words := m.Words()
		for i, p := range res.Points {
			assert.Equal(t, words[i], p.Word, "points follow the frequency ranking")
			assert.False(t, math.IsNaN(p.X) || math.IsInf(p.X, 0))
			assert.False(t, math.IsNaN(p.Y) || math.IsInf(p.Y, 0))
		}
	}
}

func TestProjectEmbeddingsSeeded(t *testing.T) {
	m := projectionModel(t, 20)
	opts := TSNEOptions{Perplexity: 5, Iterations: 300, Seed: 42}

	a, err := ProjectEmbeddings(context.Background(), m, 20, opts)
	require.NoError(t, err)
	b, err := ProjectEmbeddings(context.Background(), m, 20, opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
