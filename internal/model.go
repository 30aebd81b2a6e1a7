package internal

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Model is a trained word embedding. It is immutable once built and safe for
// concurrent readers.
type Model struct {
	ID        string
	TrainedAt time.Time
	Params    TrainingParams

	words   []string
	counts  []int64
	index   map[string]int
	vectors [][]float32
	norms   []float64
}

// NewModel assembles a model from a frequency-ordered vocabulary and one vector per word.
func NewModel(vocab []VocabEntry, vectors [][]float32) (*Model, error) {
	if len(vocab) != len(vectors) {
		return nil, fmt.Errorf("vocabulary has %d words but %d vectors", len(vocab), len(vectors))
	}

	m := &Model{
		ID:        uuid.NewString(),
		TrainedAt: time.Now().UTC(),
		words:     make([]string, len(vocab)),
		counts:    make([]int64, len(vocab)),
		index:     make(map[string]int, len(vocab)),
		vectors:   vectors,
		norms:     make([]float64, len(vocab)),
	}

	dim := -1
	for i, e := range vocab {
		if _, dup := m.index[e.Word]; dup {
			return nil, fmt.Errorf("duplicate word %q", e.Word)
		}
		if dim == -1 {
			dim = len(vectors[i])
		}
		if len(vectors[i]) != dim {
			return nil, fmt.Errorf("dimension mismatch for %q: expected %d, got %d", e.Word, dim, len(vectors[i]))
		}
		m.words[i] = e.Word
		m.counts[i] = e.Count
		m.index[e.Word] = i
		m.norms[i] = norm(vectors[i])
	}

	return m, nil
}

func (m *Model) Len() int {
	return len(m.words)
}

func (m *Model) Dim() int {
	if len(m.vectors) == 0 {
		return 0
	}
	return len(m.vectors[0])
}

// Words returns the vocabulary, most frequent first.
func (m *Model) Words() []string {
	out := make([]string, len(m.words))
	copy(out, m.words)
	return out
}

// Vocabulary returns the first n entries of the frequency ranking (all if n <= 0).
func (m *Model) Vocabulary(n int) []VocabEntry {
	if n <= 0 || n > len(m.words) {
		n = len(m.words)
	}
	out := make([]VocabEntry, n)
	for i := range out {
		out[i] = VocabEntry{Word: m.words[i], Count: m.counts[i]}
	}
	return out
}

func (m *Model) Contains(word string) bool {
	_, ok := m.index[word]
	return ok
}

// rank is the position of word in the frequency ranking.
func (m *Model) rank(word string) (int, bool) {
	i, ok := m.index[word]
	return i, ok
}

func (m *Model) Count(word string) int64 {
	i, ok := m.index[word]
	if !ok {
		return 0
	}
	return m.counts[i]
}

// Vector returns a copy of the embedding of word.
func (m *Model) Vector(word string) ([]float32, error) {
	i, ok := m.index[word]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrWordNotFound, word)
	}
	out := make([]float32, len(m.vectors[i]))
	copy(out, m.vectors[i])
	return out, nil
}

// cosine between two vocabulary rows, clamped to [-1, 1]. Zero vectors score 0.
func (m *Model) cosine(i, j int) float64 {
	if m.norms[i] == 0 || m.norms[j] == 0 {
		return 0
	}
	s := dot(m.vectors[i], m.vectors[j]) / (m.norms[i] * m.norms[j])
	return math.Max(-1, math.Min(1, s))
}

func dot(a, b []float32) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
